// Package prometheus renders portal session metrics in Prometheus text
// exposition format.
//
// [NewExporter] accepts a [portal.Session] and exposes an [http.Handler]
// that renders all counters and the request-latency histogram. Counter
// names are prefixed seatrans_*_total; the histogram is
// seatrans_request_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the
//     Handler.
//   - Mutate session state.
package prometheus

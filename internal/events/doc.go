// Package events provides the asynchronous event pipeline used by the SDK
// for observability: login outcomes, refresh outcomes, forced logouts, and
// role-derivation anomalies.
//
// # Architecture boundaries
//
// This package owns the event model, the sink contract, and the buffered
// dispatcher. Policy — what the application does when an event arrives —
// lives with the subscriber, never here.
//
// # What this package must NOT do
//
//   - Perform navigation or touch credential storage.
//   - Block an SDK operation on a slow sink (emission is buffered and,
//     when configured, lossy).
//   - Import the root portal package or any sibling package.
package events

// Package portal is the Go client SDK for the Seatrans logistics portal
// backend. It bundles credential persistence, an authenticated HTTP client,
// and a session state machine behind a single [Session] object built via
// [Builder.Build].
//
// A Session moves through three states: [StatusLoading] while stored
// credentials are being restored, then [StatusAuthenticated] or
// [StatusAnonymous]. Restoration is two-phase: cached identity is trusted
// immediately so the caller can render, and a background refresh against the
// backend reconciles it afterwards.
//
// # Architecture boundaries
//
// portal is the public surface. It exposes [Session], [Builder], [Config],
// and value types (UserProfile, Result, MetricsSnapshot). The HTTP layer
// lives in client/, credential tiers in credential/, and monitoring
// plumbing under internal/.
//
// # What this package must NOT do
//
//   - Interpret HTTP statuses itself (the 401 contract belongs to client/).
//   - Write credentials from anywhere but the session state transitions.
//   - Block a caller on the background identity refresh.
package portal

// Package client issues every HTTP call the SDK makes against the portal
// backend: base-URL resolution, header merging, JSON and multipart body
// encoding, a per-call timeout fanned in with caller cancellation, and
// interception of server-declared authentication failure.
//
// # The 401 contract
//
// Status 401 is reserved by the backend for "this credential is no longer
// valid". On a non-SkipAuth 401 the client consumes the response, raises a
// typed session_expired event, invokes the configured OnAuthExpired hook
// exactly once, and returns [ErrSessionExpired]. What the application does
// about it — wiping credentials, navigating to login — is the hook owner's
// policy, not this package's.
//
// Every other non-2xx status is returned untouched: callers decide per
// endpoint whether a 404 means "no data yet" or an error. This package
// never pre-parses response bodies.
//
// # What this package must NOT do
//
//   - Touch credential storage (it only reads tokens via [TokenSource]).
//   - Perform navigation.
//   - Convert HTTP error statuses other than the 401 interception into
//     Go errors.
package client

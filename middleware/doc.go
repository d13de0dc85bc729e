// Package middleware guards locally served routes with the session state
// machine, for hosts that render the portal UI from a Go process.
//
//   - [Guard] — requires an authenticated session, optionally of a
//     specific role group.
//   - [RequireInternal] / [RequireExternal] — role-group shorthands.
//
// A session still loading is answered with 503 and Retry-After rather than
// a redirect: restoration usually settles within milliseconds and bouncing
// the user to login during it would log out everyone on every restart.
//
// # Architecture boundaries
//
// This package translates session state into HTTP responses. It makes no
// backend calls and holds no state of its own.
//
// # What this package must NOT do
//
//   - Read or write credential storage.
//   - Trigger identity refreshes (Initialize owns that).
//   - Classify roles itself (delegates to Session.RoleGroup).
package middleware

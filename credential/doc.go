// Package credential owns persistence of the bearer token and cached user
// profile across two storage tiers: a durable tier that survives process
// restarts and a session tier scoped to the current process.
//
// # Tier precedence
//
// Exactly one tier is authoritative at a time. The tier is selected by the
// caller's remember preference at write time and recorded on the [Store];
// when no recorded tier exists (fresh process), presence is probed with the
// session tier taking precedence over the durable tier. Writes after the
// initial one (profile refresh, profile edit) always target the recorded
// authoritative tier. Clear is tier-agnostic: it always wipes both tiers so
// logout is total regardless of how the session was created.
//
// # Failure semantics
//
// Storage is best-effort. A backend that fails (unreachable Redis, unwritable
// file) degrades the affected operation to a no-op instead of surfacing an
// error: the session then simply fails to persist across restarts. Reads of
// corrupt stored JSON are treated as absence.
//
// # What this package must NOT do
//
//   - Issue network calls to the portal backend.
//   - Decide what a missing or expired credential means for the application.
//   - Import the root portal package (the root aliases types from here).
package credential

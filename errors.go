package portal

import "errors"

var (
	// ErrNotAuthenticated is returned by operations that require a live
	// session when the session is anonymous.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionClosed is returned after [Session.Close].
	ErrSessionClosed = errors.New("session closed")

	// ErrAlreadyInitialized is returned when Initialize is called twice.
	ErrAlreadyInitialized = errors.New("session already initialized")

	// ErrNotInitialized is returned by operations invoked before Initialize.
	ErrNotInitialized = errors.New("session not initialized")

	// ErrInvalidConfig wraps all configuration validation failures.
	ErrInvalidConfig = errors.New("invalid config")
)

package client

import (
	"errors"
	"fmt"
	"time"
)

// ErrSessionExpired signals an intercepted 401: the credential is dead and
// the forced-logout hook has already run. Most callers never need to branch
// on it.
var ErrSessionExpired = errors.New("session expired")

// NetworkError reports that the transport failed to reach the server at
// all, as opposed to the server returning an error status.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error reaching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// TimeoutError reports that the client-wide deadline elapsed before the
// caller's own cancellation fired.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out after %s", e.URL, e.Timeout)
}

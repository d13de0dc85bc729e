package portal

import (
	"net/url"
	"strings"
)

// Navigator is the session's outlet to the host application's routing. A
// web frontend navigates the browser; a TUI switches screens; tests record
// calls. The SDK only ever navigates on forced logout.
type Navigator interface {
	// Location returns the current application route, e.g.
	// "/shipments/42". It is preserved through the login redirect so the
	// user can resume where they were interrupted.
	Location() string

	// Navigate moves the application to the given route.
	Navigate(route string)
}

// NoOpNavigator ignores navigation. It is the default when the host has no
// routing concept (scripts, workers).
type NoOpNavigator struct{}

func (NoOpNavigator) Location() string { return "" }

func (NoOpNavigator) Navigate(string) {}

// expiredSessionRoute builds the forced-logout destination: the login route
// with reason=session_expired and, when the interrupted location is worth
// returning to, redirect=<location>.
func expiredSessionRoute(loginRoute, location string) string {
	values := url.Values{}
	values.Set("reason", "session_expired")
	if location != "" && !isLoginRoute(loginRoute, location) {
		values.Set("redirect", location)
	}
	return loginRoute + "?" + values.Encode()
}

// isLoginRoute reports whether location already sits on the login route,
// query string aside. Navigating again from there would loop.
func isLoginRoute(loginRoute, location string) bool {
	path := location
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path == loginRoute
}

package middleware

import (
	"net/http"

	portal "github.com/seatrans/portal-go"
)

// RequireInternal guards a route for company staff (admins and employees).
func RequireInternal(session *portal.Session) func(http.Handler) http.Handler {
	return Guard(session, Options{RequiredGroup: portal.RoleGroupInternal})
}

// RequireExternal guards a route for customers.
func RequireExternal(session *portal.Session) func(http.Handler) http.Handler {
	return Guard(session, Options{RequiredGroup: portal.RoleGroupExternal})
}

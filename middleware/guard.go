package middleware

import (
	"context"
	"net/http"
	"net/url"

	portal "github.com/seatrans/portal-go"
)

type profileContextKey struct{}

// ProfileFromContext returns the signed-in profile injected by [Guard].
func ProfileFromContext(ctx context.Context) (*portal.UserProfile, bool) {
	profile, ok := ctx.Value(profileContextKey{}).(*portal.UserProfile)
	return profile, ok
}

// Options tunes a [Guard].
type Options struct {
	// RequiredGroup restricts the route to one audience. The zero value
	// (RoleGroupUnknown) means any authenticated user.
	RequiredGroup portal.RoleGroup

	// LoginRoute is where anonymous visitors are redirected, carrying
	// redirect=<original URI>. Defaults to "/login".
	LoginRoute string
}

// Guard admits only authenticated sessions. Anonymous visitors are
// redirected to login with their destination preserved; sessions still
// restoring get 503 with Retry-After so the client retries instead of
// losing the session on every restart.
func Guard(session *portal.Session, opts Options) func(http.Handler) http.Handler {
	loginRoute := opts.LoginRoute
	if loginRoute == "" {
		loginRoute = "/login"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session == nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			switch session.Status() {
			case portal.StatusLoading:
				w.Header().Set("Retry-After", "1")
				http.Error(w, "session restoring", http.StatusServiceUnavailable)
				return
			case portal.StatusAnonymous:
				values := url.Values{}
				values.Set("redirect", r.URL.RequestURI())
				http.Redirect(w, r, loginRoute+"?"+values.Encode(), http.StatusFound)
				return
			}

			if opts.RequiredGroup != portal.RoleGroupUnknown && session.RoleGroup() != opts.RequiredGroup {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := r.Context()
			if profile, ok := session.Profile(); ok {
				ctx = context.WithValue(ctx, profileContextKey{}, &profile)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	portal "github.com/seatrans/portal-go"
	"github.com/seatrans/portal-go/credential"
)

// fakePortal is a minimal stand-in for the Seatrans backend API.
type fakePortal struct {
	mu         sync.Mutex
	validToken string
	user       credential.Profile

	server *httptest.Server
}

func newFakePortal(t *testing.T) *fakePortal {
	t.Helper()
	p := &fakePortal{
		validToken: "tok-1",
		user: credential.Profile{
			ID:       1,
			Email:    "cust@example.com",
			FullName: "Cass Customer",
			Phone:    "+4711111111",
			Company:  "Cargo AS",
			Roles:    []string{"CUSTOMER"},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.envelope(w, true, "", map[string]any{"token": p.validToken, "user": p.user})
	})
	mux.HandleFunc("GET /auth/current-user", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer "+p.validToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		p.envelope(w, true, "", p.user)
	})

	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakePortal) envelope(w http.ResponseWriter, success bool, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	env := map[string]any{"success": success}
	if message != "" {
		env["message"] = message
	}
	if data != nil {
		env["data"] = data
	}
	_ = json.NewEncoder(w).Encode(env)
}

func (p *fakePortal) revokeToken() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.validToken = "tok-rotated"
}

type recordingNavigator struct {
	mu       sync.Mutex
	location string
	visits   []string
}

func (n *recordingNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

func (n *recordingNavigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.location = route
	n.visits = append(n.visits, route)
}

func (n *recordingNavigator) visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.visits...)
}

// newSession builds a session sharing the given store, simulating one
// process lifetime. Each call is a fresh "restart".
func newSession(t *testing.T, baseURL string, store *credential.Store, nav portal.Navigator) *portal.Session {
	t.Helper()

	cfg := portal.DefaultConfig()
	cfg.API.BaseURL = baseURL
	cfg.API.Timeout = 2 * time.Second

	builder := portal.New().
		WithConfig(cfg).
		WithStore(store).
		WithLogger(zerolog.Nop())
	if nav != nil {
		builder = builder.WithNavigator(nav)
	}

	session, err := builder.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(session.Close)
	return session
}

func newMemoryStore() *credential.Store {
	return credential.NewStore(credential.NewMemoryBackend(), credential.NewMemoryBackend(), zerolog.Nop())
}

func initialize(t *testing.T, session *portal.Session) {
	t.Helper()
	if err := session.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
}

func settle(t *testing.T, session *portal.Session) {
	t.Helper()
	select {
	case <-session.Reconciled():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not settle")
	}
}

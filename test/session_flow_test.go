package test

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	portal "github.com/seatrans/portal-go"
	"github.com/seatrans/portal-go/credential"
)

// A remembered login must survive a "restart": a second session built over
// the same durable store is authenticated on the cached identity before the
// backend has answered.
func TestRememberedLoginSurvivesRestart(t *testing.T) {
	backend := newFakePortal(t)
	store := newMemoryStore()

	first := newSession(t, backend.server.URL, store, nil)
	initialize(t, first)
	result, err := first.Login(context.Background(), portal.LoginInput{
		Identifier: "cust@example.com",
		Password:   "pw",
		Remember:   true,
	})
	if err != nil || !result.OK {
		t.Fatalf("Login = %+v, %v", result, err)
	}
	first.Close()

	second := newSession(t, backend.server.URL, store, nil)
	initialize(t, second)

	if got := second.Status(); got != portal.StatusAuthenticated {
		t.Fatalf("status after restart = %v, want authenticated", got)
	}
	profile, ok := second.Profile()
	if !ok || profile.Email != "cust@example.com" {
		t.Fatalf("profile = %+v ok=%v", profile, ok)
	}
	settle(t, second)
	if got := second.Status(); got != portal.StatusAuthenticated {
		t.Fatalf("status after reconcile = %v", got)
	}
}

// A session-tier login must NOT survive a restart when the durable tier is
// distinct storage, which is the point of declining "remember me".
func TestSessionTierLoginDoesNotSurviveRestart(t *testing.T) {
	backend := newFakePortal(t)
	durable := credential.NewMemoryBackend()

	firstStore := credential.NewStore(durable, credential.NewMemoryBackend(), zerolog.Nop())
	first := newSession(t, backend.server.URL, firstStore, nil)
	initialize(t, first)
	if _, err := first.Login(context.Background(), portal.LoginInput{Identifier: "c@e.x", Password: "pw"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	first.Close()

	// restart: durable tier carries over, the session tier is fresh memory
	secondStore := credential.NewStore(durable, credential.NewMemoryBackend(), zerolog.Nop())
	second := newSession(t, backend.server.URL, secondStore, nil)
	initialize(t, second)

	if got := second.Status(); got != portal.StatusAnonymous {
		t.Fatalf("status after restart = %v, want anonymous", got)
	}
}

// A 401 on any authenticated call must wipe both tiers, force the state
// machine anonymous, and redirect to login preserving the interrupted
// location.
func TestDeadCredentialForcesLogoutEndToEnd(t *testing.T) {
	backend := newFakePortal(t)
	store := newMemoryStore()
	nav := &recordingNavigator{location: "/bookings/9"}

	session := newSession(t, backend.server.URL, store, nav)
	initialize(t, session)
	if _, err := session.Login(context.Background(), portal.LoginInput{Identifier: "c@e.x", Password: "pw", Remember: true}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	backend.revokeToken()

	if err := session.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh against revoked token should fail")
	}

	if got := session.Status(); got != portal.StatusAnonymous {
		t.Fatalf("status = %v, want anonymous", got)
	}
	if store.HasToken(context.Background()) {
		t.Fatal("both credential tiers must be wiped")
	}
	visits := nav.visited()
	if len(visits) != 1 {
		t.Fatalf("visits = %v, want exactly one", visits)
	}
	if !strings.Contains(visits[0], "reason=session_expired") ||
		!strings.Contains(visits[0], "redirect=%2Fbookings%2F9") {
		t.Fatalf("redirect = %q", visits[0])
	}

	// a restart after forced logout stays anonymous
	next := newSession(t, backend.server.URL, store, nil)
	initialize(t, next)
	if got := next.Status(); got != portal.StatusAnonymous {
		t.Fatalf("status after restart = %v, want anonymous", got)
	}
}

// An unreachable backend is not evidence the session is dead: the cached
// identity stands and nothing is wiped.
func TestOfflineRefreshLeavesSessionStanding(t *testing.T) {
	backend := newFakePortal(t)
	store := newMemoryStore()

	session := newSession(t, backend.server.URL, store, nil)
	initialize(t, session)
	if _, err := session.Login(context.Background(), portal.LoginInput{Identifier: "c@e.x", Password: "pw", Remember: true}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	backend.server.Close()

	if err := session.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh against dead server should error")
	}
	if got := session.Status(); got != portal.StatusAuthenticated {
		t.Fatalf("status = %v, want authenticated", got)
	}
	if !store.HasToken(context.Background()) {
		t.Fatal("credential must survive an offline refresh")
	}
}

// Redis as the durable tier: a remembered credential written through one
// session is restored by another process connected to the same Redis.
func TestRedisDurableTierAcrossProcesses(t *testing.T) {
	backend := newFakePortal(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := portal.DefaultConfig()
	cfg.API.BaseURL = backend.server.URL

	first, err := portal.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithLogger(zerolog.Nop()).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	initialize(t, first)
	if _, err := first.Login(context.Background(), portal.LoginInput{Identifier: "c@e.x", Password: "pw", Remember: true}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	first.Close()

	second, err := portal.New().
		WithConfig(cfg).
		WithRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()})).
		WithLogger(zerolog.Nop()).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(second.Close)
	initialize(t, second)

	if got := second.Status(); got != portal.StatusAuthenticated {
		t.Fatalf("status = %v, want authenticated via Redis tier", got)
	}
	settle(t, second)
}

// Metrics observe the whole journey.
func TestMetricsAccumulateAcrossFlow(t *testing.T) {
	backend := newFakePortal(t)
	store := newMemoryStore()

	session := newSession(t, backend.server.URL, store, nil)
	initialize(t, session)
	if _, err := session.Login(context.Background(), portal.LoginInput{Identifier: "c@e.x", Password: "pw"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := session.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if err := session.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	snap := session.MetricsSnapshot()
	for id, want := range map[portal.MetricID]uint64{
		portal.MetricLoginSuccess:   1,
		portal.MetricRefreshSuccess: 1,
		portal.MetricLogout:         1,
	} {
		if got := snap.Counters[id]; got != want {
			t.Fatalf("counter %d = %d, want %d", id, got, want)
		}
	}
	if snap.Counters[portal.MetricRequestIssued] < 2 {
		t.Fatalf("request counter = %d, want at least login+refresh", snap.Counters[portal.MetricRequestIssued])
	}
}

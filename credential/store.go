package credential

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Backend is a minimal key/value contract implemented by each storage tier.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store coordinates the two storage tiers. All methods are safe for
// concurrent use, degrade to no-ops on backend failure, and never return
// storage errors to the caller.
type Store struct {
	mu      sync.Mutex
	durable Backend
	session Backend

	active      Tier
	activeKnown bool

	logger    zerolog.Logger
	onDegrade func()
}

// NewStore creates a Store over the given tier backends. Either backend may
// be shared with other processes; the Store assumes it is the only logical
// writer within this process.
func NewStore(durable, session Backend, logger zerolog.Logger) *Store {
	if durable == nil {
		durable = NewMemoryBackend()
	}
	if session == nil {
		session = NewMemoryBackend()
	}
	return &Store{
		durable: durable,
		session: session,
		logger:  logger,
	}
}

// SetDegradeHook registers a callback invoked whenever a backend failure
// degrades an operation to a no-op. Used for metrics wiring.
func (s *Store) SetDegradeHook(fn func()) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.onDegrade = fn
	s.mu.Unlock()
}

// Read returns the stored credential, or nil when absent or unparseable.
// It never returns an error: corrupt stored JSON is treated as absence.
func (s *Store) Read(ctx context.Context) *Credential {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	backend, _, ok := s.authoritativeLocked(ctx)
	if !ok {
		return nil
	}

	token, err := backend.Get(ctx, TokenKey)
	if err != nil || token == "" {
		return nil
	}

	raw, err := backend.Get(ctx, ProfileKey)
	if err != nil {
		return nil
	}

	var profile Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil
	}

	return &Credential{Token: token, User: profile}
}

// Write persists the credential into the tier selected by remember and
// records that tier as authoritative. The other tier is left untouched.
// The pair is written profile-first so that a partial failure never leaves
// a token without a profile.
func (s *Store) Write(ctx context.Context, cred Credential, remember bool) {
	if s == nil {
		return
	}
	tier := TierSession
	if remember {
		tier = TierDurable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(cred.User)
	if err != nil {
		s.degradeLocked(tier, "marshal profile", err)
		return
	}

	backend := s.backendLocked(tier)
	if err := backend.Set(ctx, ProfileKey, string(raw)); err != nil {
		s.degradeLocked(tier, "write profile", err)
		return
	}
	if err := backend.Set(ctx, TokenKey, cred.Token); err != nil {
		_ = backend.Delete(ctx, ProfileKey)
		s.degradeLocked(tier, "write token", err)
		return
	}

	s.active = tier
	s.activeKnown = true
}

// WriteProfile updates only the profile half in the authoritative tier.
// A no-op when no credential exists: a profile must never invent a tier.
func (s *Store) WriteProfile(ctx context.Context, profile Profile) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	backend, tier, ok := s.authoritativeLocked(ctx)
	if !ok {
		return
	}

	raw, err := json.Marshal(profile)
	if err != nil {
		s.degradeLocked(tier, "marshal profile", err)
		return
	}
	if err := backend.Set(ctx, ProfileKey, string(raw)); err != nil {
		s.degradeLocked(tier, "write profile", err)
	}
}

// Clear removes token and profile from both tiers unconditionally and
// forgets the recorded authoritative tier.
func (s *Store) Clear(ctx context.Context) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tier := range []Tier{TierDurable, TierSession} {
		backend := s.backendLocked(tier)
		for _, key := range []string{TokenKey, ProfileKey} {
			if err := backend.Delete(ctx, key); err != nil {
				s.degradeLocked(tier, "clear "+key, err)
			}
		}
	}

	s.activeKnown = false
}

// HasToken reports token presence without deserializing the profile.
func (s *Store) HasToken(ctx context.Context) bool {
	_, ok := s.Token(ctx)
	return ok
}

// Token returns the bearer token from the authoritative tier.
func (s *Store) Token(ctx context.Context) (string, bool) {
	if s == nil {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	backend, _, ok := s.authoritativeLocked(ctx)
	if !ok {
		return "", false
	}
	token, err := backend.Get(ctx, TokenKey)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

// ActiveTier returns the currently authoritative tier, if any.
func (s *Store) ActiveTier(ctx context.Context) (Tier, bool) {
	if s == nil {
		return 0, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, tier, ok := s.authoritativeLocked(ctx)
	return tier, ok
}

// authoritativeLocked resolves the authoritative tier: the recorded tier
// when its token is still present, otherwise a presence probe with session
// tier precedence. The probe result is recorded so later writes stay on the
// same tier.
func (s *Store) authoritativeLocked(ctx context.Context) (Backend, Tier, bool) {
	if s.activeKnown {
		backend := s.backendLocked(s.active)
		if s.hasTokenInLocked(ctx, backend) {
			return backend, s.active, true
		}
		// Token vanished underneath us (external wipe); fall back to probing.
		s.activeKnown = false
	}

	if s.hasTokenInLocked(ctx, s.session) {
		s.active = TierSession
		s.activeKnown = true
		return s.session, TierSession, true
	}
	if s.hasTokenInLocked(ctx, s.durable) {
		s.active = TierDurable
		s.activeKnown = true
		return s.durable, TierDurable, true
	}

	return nil, 0, false
}

func (s *Store) hasTokenInLocked(ctx context.Context, backend Backend) bool {
	token, err := backend.Get(ctx, TokenKey)
	return err == nil && token != ""
}

func (s *Store) backendLocked(tier Tier) Backend {
	if tier == TierSession {
		return s.session
	}
	return s.durable
}

func (s *Store) degradeLocked(tier Tier, op string, err error) {
	if !errors.Is(err, ErrKeyNotFound) {
		s.logger.Warn().
			Str("tier", tier.String()).
			Str("op", op).
			Err(err).
			Msg("credential storage degraded to no-op")
	}
	if s.onDegrade != nil {
		s.onDegrade()
	}
}

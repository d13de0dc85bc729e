package portal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/seatrans/portal-go/client"
	"github.com/seatrans/portal-go/credential"
	"github.com/seatrans/portal-go/internal/events"
	"github.com/seatrans/portal-go/internal/metrics"
)

// Status is the session lifecycle state.
type Status uint8

const (
	// StatusLoading holds until Initialize has read stored credentials.
	// Callers must not treat it as anonymous; route guards defer instead
	// of redirecting.
	StatusLoading Status = iota
	StatusAnonymous
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Result reports the business outcome of login and registration. A false OK
// with a message is the normal "wrong password" case, not a Go error;
// errors are reserved for transport and decoding failures.
type Result struct {
	OK      bool
	Message string
}

// LoginInput carries login credentials. Identifier is sent to the backend
// as the email field; the backend accepts any registered identifier there.
type LoginInput struct {
	Identifier string
	Password   string

	// Remember targets the durable credential tier so the session
	// survives restarts.
	Remember bool
}

// RegisterInput creates a customer account. Email, FullName and Password
// are required by the backend; Phone and Company are optional at signup.
type RegisterInput struct {
	Email    string
	FullName string
	Password string
	Phone    string
	Company  string
	Remember bool
}

// ProfileUpdate is a partial profile edit. Nil fields are left untouched by
// the backend.
type ProfileUpdate struct {
	FullName *string
	Phone    *string
	Company  *string
	Nation   *string
}

// Session is the authenticated connection to the portal backend. Build one
// per application via [Builder.Build], call [Session.Initialize] once, then
// use it from any goroutine.
type Session struct {
	config    Config
	store     *credential.Store
	client    *client.Client
	navigator Navigator
	events    *events.Dispatcher
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	mu          sync.RWMutex
	status      Status
	profile     *credential.Profile
	initialized bool
	closed      bool

	closedCh    chan struct{}
	refreshDone chan struct{}
	closeOnce   sync.Once
}

// Initialize restores the session from stored credentials. It returns as
// soon as the cached identity is known: with a stored credential the
// session is immediately [StatusAuthenticated] on the cached profile, and a
// background refresh reconciles against the backend afterwards. Without one
// the session settles at [StatusAnonymous]. A stored token whose cached
// profile is unreadable stays [StatusLoading] until the reconcile answers.
//
// The background refresh outlives ctx; it stops on [Session.Close].
func (s *Session) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.initialized {
		s.mu.Unlock()
		return ErrAlreadyInitialized
	}
	s.initialized = true

	cred := s.store.Read(ctx)
	if cred == nil && !s.store.HasToken(ctx) {
		s.status = StatusAnonymous
		s.mu.Unlock()
		close(s.refreshDone)
		s.logger.Debug().Msg("no stored credential, session anonymous")
		return nil
	}

	if cred != nil {
		s.status = StatusAuthenticated
		s.setProfileLocked(cred.User)
		s.mu.Unlock()

		s.metrics.Inc(metrics.MetricSessionRestored)
		s.emit(events.TypeSessionRestored, cred.User, true, "")
		s.logger.Info().Int64("user_id", cred.User.ID).Msg("session restored from cache")
	} else {
		// A token without a readable profile: hold at loading and let the
		// backend's answer decide.
		s.mu.Unlock()
		s.logger.Warn().Msg("stored token without readable profile, reconciling")
	}

	go func() {
		defer close(s.refreshDone)
		bgCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		defer cancel()
		go func() {
			<-s.closedCh
			cancel()
		}()
		if err := s.refresh(bgCtx); err != nil {
			s.logger.Debug().Err(err).Msg("background identity refresh did not complete")
			s.mu.Lock()
			if s.status == StatusLoading {
				s.status = StatusAnonymous
			}
			s.mu.Unlock()
		}
	}()
	return nil
}

// Reconciled is closed once the post-Initialize background refresh has
// finished (or was never needed). Useful for tests and for callers that
// want a fully verified identity before proceeding.
func (s *Session) Reconciled() <-chan struct{} {
	return s.refreshDone
}

// Login authenticates against the backend. Rejected credentials come back
// as a Result with OK false; the returned error is reserved for transport
// failure.
func (s *Session) Login(ctx context.Context, input LoginInput) (Result, error) {
	if err := s.operational(); err != nil {
		return Result{}, err
	}

	resp, err := s.client.Post(ctx, "/auth/login", loginRequest{
		Email:    input.Identifier,
		Password: input.Password,
	}, client.Options{SkipAuth: true})
	if err != nil {
		return Result{}, err
	}

	env, err := decodeEnvelope(resp)
	if err != nil {
		return Result{}, err
	}
	if !env.Success {
		s.metrics.Inc(metrics.MetricLoginFailure)
		s.emit(events.TypeLoginFailure, credential.Profile{}, false, env.Message)
		return Result{OK: false, Message: messageOr(env.Message, "invalid credentials")}, nil
	}

	var payload authPayload
	if err := decodeData(env, &payload); err != nil {
		return Result{}, err
	}

	s.adoptCredential(ctx, payload, input.Remember)
	s.metrics.Inc(metrics.MetricLoginSuccess)
	s.emit(events.TypeLoginSuccess, payload.User, true, "")
	s.logger.Info().Int64("user_id", payload.User.ID).Bool("remember", input.Remember).Msg("login succeeded")
	return Result{OK: true, Message: env.Message}, nil
}

// Register creates a customer account. On success the backend returns a
// credential and the session signs in immediately.
func (s *Session) Register(ctx context.Context, input RegisterInput) (Result, error) {
	if err := s.operational(); err != nil {
		return Result{}, err
	}

	resp, err := s.client.Post(ctx, "/auth/register/customer", registerRequest{
		Email:    input.Email,
		FullName: input.FullName,
		Password: input.Password,
		Phone:    input.Phone,
		Company:  input.Company,
	}, client.Options{SkipAuth: true})
	if err != nil {
		return Result{}, err
	}

	env, err := decodeEnvelope(resp)
	if err != nil {
		return Result{}, err
	}
	if !env.Success {
		s.metrics.Inc(metrics.MetricRegisterFailure)
		s.emit(events.TypeRegisterFailure, credential.Profile{}, false, env.Message)
		return Result{OK: false, Message: messageOr(env.Message, "registration rejected")}, nil
	}

	var payload authPayload
	if err := decodeData(env, &payload); err != nil {
		return Result{}, err
	}

	s.adoptCredential(ctx, payload, input.Remember)
	s.metrics.Inc(metrics.MetricRegisterSuccess)
	s.emit(events.TypeRegisterSuccess, payload.User, true, "")
	s.logger.Info().Int64("user_id", payload.User.ID).Msg("registration succeeded, auto signed in")
	return Result{OK: true, Message: env.Message}, nil
}

// Logout clears both credential tiers and returns the session to
// [StatusAnonymous]. It is purely client-side: the backend holds no
// server session to destroy.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.operational(); err != nil {
		return err
	}

	s.store.Clear(ctx)

	s.mu.Lock()
	profile := s.profile
	s.status = StatusAnonymous
	s.profile = nil
	s.mu.Unlock()

	s.metrics.Inc(metrics.MetricLogout)
	if profile != nil {
		s.emit(events.TypeLogout, *profile, true, "")
	}
	s.logger.Info().Msg("logged out")

	s.navigator.Navigate(s.config.Routes.Login)
	return nil
}

// Refresh re-fetches the identity from the backend and reconciles the
// cached profile. A dead credential (401) forces the session anonymous via
// the standard expiry path and returns [client.ErrSessionExpired]. A
// transport failure leaves the cached identity standing: an unreachable
// backend is not evidence the session is invalid.
func (s *Session) Refresh(ctx context.Context) error {
	if err := s.operational(); err != nil {
		return err
	}
	return s.refresh(ctx)
}

func (s *Session) refresh(ctx context.Context) error {
	resp, err := s.client.Get(ctx, "/auth/current-user", client.Options{})
	if err != nil {
		if errors.Is(err, client.ErrSessionExpired) {
			// forceAnonymous already ran via the client hook.
			return err
		}
		s.metrics.Inc(metrics.MetricRefreshFailure)
		s.emit(events.TypeRefreshFailure, credential.Profile{}, false, err.Error())
		return err
	}

	env, err := decodeEnvelope(resp)
	if err != nil {
		s.metrics.Inc(metrics.MetricRefreshFailure)
		return err
	}
	var profile credential.Profile
	if !env.Success {
		s.metrics.Inc(metrics.MetricRefreshFailure)
		s.emit(events.TypeRefreshFailure, credential.Profile{}, false, env.Message)
		return fmt.Errorf("identity refresh rejected: %s", messageOr(env.Message, "no reason given"))
	}
	if err := decodeData(env, &profile); err != nil {
		s.metrics.Inc(metrics.MetricRefreshFailure)
		return err
	}

	s.store.WriteProfile(ctx, profile)
	s.mu.Lock()
	if s.status == StatusAuthenticated || s.status == StatusLoading {
		s.status = StatusAuthenticated
		s.setProfileLocked(profile)
	}
	s.mu.Unlock()

	s.metrics.Inc(metrics.MetricRefreshSuccess)
	s.emit(events.TypeRefreshSuccess, profile, true, "")
	return nil
}

// UpdateProfile edits the signed-in user's profile and reconciles the
// cached copy with the backend's response.
func (s *Session) UpdateProfile(ctx context.Context, update ProfileUpdate) (UserProfile, error) {
	if err := s.operational(); err != nil {
		return UserProfile{}, err
	}
	if s.Status() != StatusAuthenticated {
		return UserProfile{}, ErrNotAuthenticated
	}

	resp, err := s.client.Put(ctx, "/user/profile/me", profileUpdateRequest{
		FullName: update.FullName,
		Phone:    update.Phone,
		Company:  update.Company,
		Nation:   update.Nation,
	}, client.Options{})
	if err != nil {
		s.metrics.Inc(metrics.MetricProfileUpdateFailure)
		return UserProfile{}, err
	}

	env, err := decodeEnvelope(resp)
	if err != nil {
		s.metrics.Inc(metrics.MetricProfileUpdateFailure)
		return UserProfile{}, err
	}
	if !env.Success {
		s.metrics.Inc(metrics.MetricProfileUpdateFailure)
		return UserProfile{}, fmt.Errorf("profile update rejected: %s", messageOr(env.Message, "no reason given"))
	}

	var profile credential.Profile
	if err := decodeData(env, &profile); err != nil {
		s.metrics.Inc(metrics.MetricProfileUpdateFailure)
		return UserProfile{}, err
	}

	s.store.WriteProfile(ctx, profile)
	s.mu.Lock()
	s.setProfileLocked(profile)
	s.mu.Unlock()

	s.metrics.Inc(metrics.MetricProfileUpdateSuccess)
	return profile, nil
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Profile returns the cached profile. ok is false while loading, anonymous,
// or when the stored profile was unreadable.
func (s *Session) Profile() (UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return UserProfile{}, false
	}
	return *s.profile, true
}

// RoleGroup classifies the signed-in user, derived from the current profile
// on every read. Anonymous and loading sessions report [RoleGroupUnknown].
func (s *Session) RoleGroup() RoleGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return RoleGroupUnknown
	}
	return DeriveProfileRoleGroup(*s.profile)
}

// ProfileComplete reports whether the cached profile carries all four
// fields the portal requires before certain customer flows unlock: full
// name, company, email, and phone.
func (s *Session) ProfileComplete() bool {
	profile, ok := s.Profile()
	if !ok {
		return false
	}
	return profile.FullName != "" && profile.Company != "" && profile.Email != "" && profile.Phone != ""
}

// Client exposes the authenticated HTTP client for application calls
// beyond the session's own endpoints.
func (s *Session) Client() *client.Client {
	return s.client
}

// MetricsSnapshot returns a point-in-time copy of all session metrics.
func (s *Session) MetricsSnapshot() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// EventsDropped reports monitoring events dropped under dispatcher
// backpressure.
func (s *Session) EventsDropped() uint64 {
	return s.events.Dropped()
}

// Close stops the background refresh, waits for it, and shuts down the
// event dispatcher. The session rejects further operations afterwards.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		initialized := s.initialized
		s.mu.Unlock()
		close(s.closedCh)
		if initialized {
			<-s.refreshDone
		}
		s.events.Close()
	})
}

// forceAnonymous is the forced-logout policy, invoked by the HTTP layer's
// 401 interception. It wipes both credential tiers, flips the state, and
// redirects to login preserving the interrupted location. Re-entry while
// already anonymous only re-clears storage; it never navigates again, so a
// burst of concurrent 401s cannot redirect in a loop.
func (s *Session) forceAnonymous(ctx context.Context) {
	s.store.Clear(ctx)

	s.mu.Lock()
	wasAuthenticated := s.status != StatusAnonymous
	s.status = StatusAnonymous
	s.profile = nil
	s.mu.Unlock()

	if !wasAuthenticated {
		return
	}

	location := s.navigator.Location()
	if isLoginRoute(s.config.Routes.Login, location) {
		return
	}
	s.navigator.Navigate(expiredSessionRoute(s.config.Routes.Login, location))
}

func (s *Session) adoptCredential(ctx context.Context, payload authPayload, remember bool) {
	s.store.Write(ctx, credential.Credential{Token: payload.Token, User: payload.User}, remember)
	s.mu.Lock()
	s.status = StatusAuthenticated
	s.setProfileLocked(payload.User)
	s.mu.Unlock()
}

// setProfileLocked stores the profile. A profile that classifies to no role
// group despite carrying roles is surfaced as a role_unmatched event so new
// backend roles are noticed in monitoring instead of silently denying both
// audiences.
func (s *Session) setProfileLocked(profile credential.Profile) {
	p := profile
	s.profile = &p

	roles := rolesOf(profile)
	if DeriveProfileRoleGroup(profile) == RoleGroupUnknown && len(roles) > 0 {
		s.metrics.Inc(metrics.MetricRoleUnmatched)
		s.events.Emit(events.Event{
			Timestamp: time.Now(),
			EventType: events.TypeRoleUnmatched,
			UserID:    strconv.FormatInt(profile.ID, 10),
			Success:   false,
			Error:     "roles matched no known group",
			Metadata:  map[string]string{"roles": strings.Join(roles, ",")},
		})
	}
}

func (s *Session) operational() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrSessionClosed
	}
	if !s.initialized {
		return ErrNotInitialized
	}
	return nil
}

func (s *Session) emit(eventType string, profile credential.Profile, success bool, errMsg string) {
	event := events.Event{
		Timestamp: time.Now(),
		EventType: eventType,
		Success:   success,
		Error:     errMsg,
	}
	if profile.ID != 0 {
		event.UserID = strconv.FormatInt(profile.ID, 10)
	}
	s.events.Emit(event)
}

func messageOr(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}

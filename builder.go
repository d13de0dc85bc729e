package portal

import (
	"net/http"
	"net/http/cookiejar"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/seatrans/portal-go/client"
	"github.com/seatrans/portal-go/credential"
	"github.com/seatrans/portal-go/internal/events"
	"github.com/seatrans/portal-go/internal/metrics"
)

// Builder assembles a [Session]. Configure it with the With* methods and
// call [Builder.Build] once.
type Builder struct {
	config     Config
	store      *credential.Store
	redis      redis.UniversalClient
	httpClient *http.Client
	navigator  Navigator
	eventSink  EventSink
	logger     *zerolog.Logger

	built bool
}

func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore supplies a pre-built credential store, overriding the
// file/Redis wiring derived from [CredentialConfig].
func (b *Builder) WithStore(store *credential.Store) *Builder {
	b.store = store
	return b
}

// WithRedis selects a Redis-backed durable credential tier.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithNavigator connects the host application's routing. Defaults to
// [NoOpNavigator].
func (b *Builder) WithNavigator(nav Navigator) *Builder {
	b.navigator = nav
	return b
}

// WithEventSink receives monitoring events. Defaults to [NoOpSink].
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.eventSink = sink
	return b
}

func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = &logger
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wires the session. The returned
// Session is inert until [Session.Initialize].
func (b *Builder) Build() (*Session, error) {
	if b.built {
		return nil, ErrAlreadyInitialized
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	b.built = true

	logger := zerolog.New(os.Stderr).With().Timestamp().Str("component", "portal").Logger()
	if b.logger != nil {
		logger = *b.logger
	}

	store := b.store
	if store == nil {
		var durable credential.Backend
		switch {
		case b.redis != nil:
			durable = credential.NewRedisBackend(b.redis, b.config.Credentials.RedisPrefix)
		case b.config.Credentials.FilePath != "":
			durable = credential.NewFileBackend(b.config.Credentials.FilePath)
		}
		store = credential.NewStore(durable, credential.NewMemoryBackend(), logger)
	}

	sink := b.eventSink
	if sink == nil {
		sink = events.NoOpSink{}
	}
	dispatcher := events.NewDispatcher(events.Config{
		Enabled:    b.config.Events.Enabled,
		BufferSize: b.config.Events.BufferSize,
	}, sink)

	meter := metrics.New(metrics.Config{
		Enabled:       b.config.Metrics.Enabled,
		EnableLatency: b.config.Metrics.EnableLatencyHistograms,
	})
	store.SetDegradeHook(func() {
		meter.Inc(metrics.MetricCredentialWriteDegraded)
	})

	navigator := b.navigator
	if navigator == nil {
		navigator = NoOpNavigator{}
	}

	httpClient := b.httpClient
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		httpClient = &http.Client{Jar: jar}
	}

	s := &Session{
		config:      b.config,
		store:       store,
		navigator:   navigator,
		events:      dispatcher,
		metrics:     meter,
		logger:      logger,
		status:      StatusLoading,
		closedCh:    make(chan struct{}),
		refreshDone: make(chan struct{}),
	}

	s.client = client.New(client.Config{
		BaseURL:       b.config.API.BaseURL,
		Timeout:       b.config.API.Timeout,
		HTTPClient:    httpClient,
		Tokens:        store,
		Events:        dispatcher,
		Metrics:       meter,
		Logger:        logger,
		OnAuthExpired: s.forceAnonymous,
	})

	return s, nil
}

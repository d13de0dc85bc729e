package portal

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config carries everything a [Session] needs. Zero values are filled in by
// [DefaultConfig]; instances are treated as immutable after [Builder.Build].
type Config struct {
	API         APIConfig
	Routes      RouteConfig
	Credentials CredentialConfig
	Events      EventConfig
	Metrics     MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig locates the portal backend and bounds every call against it.
type APIConfig struct {
	// BaseURL is the backend root, e.g. "https://api.seatrans.example".
	// Required.
	BaseURL string `env:"SEATRANS_API_BASE_URL"`

	// Timeout is the client-wide per-request deadline.
	Timeout time.Duration `env:"SEATRANS_REQUEST_TIMEOUT, default=15s"`
}

/*
====================================
ROUTE CONFIG
====================================
*/

// RouteConfig names the application routes the forced-logout policy
// navigates to.
type RouteConfig struct {
	// Login is the route a dead session is redirected to. The redirect
	// carries reason=session_expired plus the interrupted location.
	Login string `env:"SEATRANS_LOGIN_ROUTE, default=/login"`
}

/*
====================================
CREDENTIAL CONFIG
====================================
*/

// CredentialConfig selects the durable credential tier. When neither
// FilePath nor a Redis client (via [Builder.WithRedis]) is supplied, the
// durable tier falls back to process memory and "remember me" does not
// survive restarts.
type CredentialConfig struct {
	// FilePath is the JSON credential file for the file-backed durable
	// tier. Empty means no file tier.
	FilePath string `env:"SEATRANS_CREDENTIALS_FILE"`

	// RedisPrefix namespaces credential keys when a Redis client is
	// supplied.
	RedisPrefix string `env:"SEATRANS_CREDENTIALS_REDIS_PREFIX, default=seatrans:cred"`
}

/*
====================================
EVENT CONFIG
====================================
*/

// EventConfig tunes the async monitoring event dispatcher. A full buffer
// drops events rather than stalling the emitting operation; dropped counts
// are visible via [Session.EventsDropped].
type EventConfig struct {
	Enabled    bool `env:"SEATRANS_EVENTS_ENABLED, default=true"`
	BufferSize int  `env:"SEATRANS_EVENTS_BUFFER, default=256"`
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig tunes the in-process metrics registry.
type MetricsConfig struct {
	Enabled                 bool `env:"SEATRANS_METRICS_ENABLED, default=true"`
	EnableLatencyHistograms bool `env:"SEATRANS_METRICS_LATENCY, default=true"`
}

// DefaultConfig returns a Config with every tunable at its default. BaseURL
// stays empty and must be set before Build.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Timeout: 15 * time.Second,
		},
		Routes: RouteConfig{
			Login: "/login",
		},
		Credentials: CredentialConfig{
			RedisPrefix: "seatrans:cred",
		},
		Events: EventConfig{
			Enabled:    true,
			BufferSize: 256,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

// LoadConfig builds a Config from SEATRANS_* environment variables,
// validated before return.
func LoadConfig(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the config for internal consistency. All failures wrap
// [ErrInvalidConfig].
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("%w: API.BaseURL is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: API.BaseURL must be an absolute http(s) URL", ErrInvalidConfig)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("%w: API.Timeout must be positive", ErrInvalidConfig)
	}
	if !strings.HasPrefix(c.Routes.Login, "/") {
		return fmt.Errorf("%w: Routes.Login must start with /", ErrInvalidConfig)
	}
	if c.Events.Enabled && c.Events.BufferSize <= 0 {
		return fmt.Errorf("%w: Events.BufferSize must be positive when events are enabled", ErrInvalidConfig)
	}
	return nil
}

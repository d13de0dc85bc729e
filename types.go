package portal

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/seatrans/portal-go/credential"
	internalevents "github.com/seatrans/portal-go/internal/events"
	internalmetrics "github.com/seatrans/portal-go/internal/metrics"
)

// UserProfile is the backend's view of the signed-in user, cached alongside
// the token.
type UserProfile = credential.Profile

// Credential pairs a bearer token with its cached profile.
type Credential = credential.Credential

// Tier identifies which credential tier holds the active session.
type Tier = credential.Tier

const (
	// TierDurable survives process restarts (file or Redis backed).
	TierDurable = credential.TierDurable
	// TierSession lives only as long as the process.
	TierSession = credential.TierSession
)

// Event is a structured monitoring record emitted on session transitions.
type Event = internalevents.Event

// EventSink receives [Event] values from the session's dispatcher.
type EventSink = internalevents.Sink

// NoOpSink is an [EventSink] that silently discards all events.
type NoOpSink = internalevents.NoOpSink

// ChannelSink is a buffered channel-based [EventSink].
type ChannelSink = internalevents.ChannelSink

// JSONWriterSink is an [EventSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalevents.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalevents.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalevents.NewJSONWriterSink(w)
}

// LogSink is an [EventSink] that forwards events to a zerolog logger.
type LogSink = internalevents.LogSink

// NewLogSink creates a [LogSink] writing to logger.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return internalevents.NewLogSink(logger)
}

// MetricID identifies a specific counter or histogram in the in-process
// metrics system.
type MetricID = internalmetrics.MetricID

const (
	MetricRequestIssued           = internalmetrics.MetricRequestIssued
	MetricRequestNetworkError     = internalmetrics.MetricRequestNetworkError
	MetricRequestTimeout          = internalmetrics.MetricRequestTimeout
	MetricSessionExpired          = internalmetrics.MetricSessionExpired
	MetricLoginSuccess            = internalmetrics.MetricLoginSuccess
	MetricLoginFailure            = internalmetrics.MetricLoginFailure
	MetricRegisterSuccess         = internalmetrics.MetricRegisterSuccess
	MetricRegisterFailure         = internalmetrics.MetricRegisterFailure
	MetricRefreshSuccess          = internalmetrics.MetricRefreshSuccess
	MetricRefreshFailure          = internalmetrics.MetricRefreshFailure
	MetricProfileUpdateSuccess    = internalmetrics.MetricProfileUpdateSuccess
	MetricProfileUpdateFailure    = internalmetrics.MetricProfileUpdateFailure
	MetricLogout                  = internalmetrics.MetricLogout
	MetricSessionRestored         = internalmetrics.MetricSessionRestored
	MetricRoleUnmatched           = internalmetrics.MetricRoleUnmatched
	MetricCredentialWriteDegraded = internalmetrics.MetricCredentialWriteDegraded
	MetricRequestLatency          = internalmetrics.MetricRequestLatency
)

// Metrics holds atomic counters and an optional latency histogram.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

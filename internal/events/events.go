package events

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event types emitted by the SDK.
const (
	TypeLoginSuccess    = "login_success"
	TypeLoginFailure    = "login_failure"
	TypeRegisterSuccess = "register_success"
	TypeRegisterFailure = "register_failure"
	TypeLogout          = "logout"
	TypeRefreshSuccess  = "refresh_success"
	TypeRefreshFailure  = "refresh_failure"
	TypeSessionExpired  = "session_expired"
	TypeSessionRestored = "session_restored"
	TypeRoleUnmatched   = "role_unmatched"
)

// Event is the canonical event model used by internal dispatching and root APIs.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Endpoint  string            `json:"endpoint,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Sink receives emitted events.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink writes events into a buffered channel.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

// LogSink forwards events to a zerolog logger. Failures log at warn,
// successes at debug.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(_ context.Context, event Event) {
	if s == nil {
		return
	}

	evt := s.logger.Debug()
	if !event.Success {
		evt = s.logger.Warn()
	}

	evt.Str("event_type", event.EventType).
		Str("user_id", event.UserID).
		Str("endpoint", event.Endpoint).
		Bool("success", event.Success).
		Str("error", event.Error).
		Msg("portal event")
}

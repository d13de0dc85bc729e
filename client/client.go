package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/seatrans/portal-go/internal/events"
	"github.com/seatrans/portal-go/internal/metrics"
)

// DefaultTimeout is the client-wide deadline applied to every call.
const DefaultTimeout = 15 * time.Second

// TokenSource supplies the bearer token attached to non-SkipAuth calls.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// Config wires a Client. BaseURL is the only required field.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Tokens     TokenSource
	Events     *events.Dispatcher
	Metrics    *metrics.Metrics
	Logger     zerolog.Logger

	// OnAuthExpired is invoked exactly once per intercepted 401, after the
	// session_expired event has been emitted. It owns the forced-logout
	// policy (credential wipe, navigation).
	OnAuthExpired func(ctx context.Context)
}

// Options shapes a single call.
type Options struct {
	Method    string
	Body      any               // JSON-serialized when non-nil
	Multipart *MultipartPayload // takes precedence over Body
	Header    http.Header
	SkipAuth  bool
}

// Client issues requests against the portal backend. Construct once via
// [New] and share; all methods are safe for concurrent use.
type Client struct {
	baseURL       string
	timeout       time.Duration
	http          *http.Client
	tokens        TokenSource
	events        *events.Dispatcher
	metrics       *metrics.Metrics
	logger        zerolog.Logger
	onAuthExpired func(ctx context.Context)
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		timeout:       timeout,
		http:          httpClient,
		tokens:        cfg.Tokens,
		events:        cfg.Events,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
		onAuthExpired: cfg.OnAuthExpired,
	}
}

// Do issues a single request. Absolute endpoints pass through unchanged;
// relative ones are prefixed with the configured base URL.
//
// Cancellation is a fan-in: the call aborts on whichever fires first of the
// caller's ctx or the client-wide timeout. Caller cancellation is returned
// as the ctx error; the timeout as [*TimeoutError]; transport failure as
// [*NetworkError]. Non-2xx responses are returned, not converted — except
// the non-SkipAuth 401 interception, which returns [ErrSessionExpired].
func (c *Client) Do(ctx context.Context, endpoint string, opts Options) (*http.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	url := c.resolveURL(endpoint)

	body, contentType, err := c.resolveBody(opts)
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)

	req, err := http.NewRequestWithContext(reqCtx, method, url, body)
	if err != nil {
		cancel()
		return nil, err
	}

	requestID := requestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, values := range opts.Header {
		req.Header.Del(key)
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("X-Request-ID", requestID)

	if !opts.SkipAuth && c.tokens != nil {
		if token, ok := c.tokens.Token(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.metrics.Inc(metrics.MetricRequestIssued)
	c.logger.Debug().
		Str("method", method).
		Str("url", url).
		Str("request_id", requestID).
		Bool("skip_auth", opts.SkipAuth).
		Msg("issuing request")

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.Observe(metrics.MetricRequestLatency, time.Since(start))

	if err != nil {
		cancel()
		return nil, c.classifyTransportError(ctx, reqCtx, url, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && !opts.SkipAuth {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		cancel()
		c.interceptAuthFailure(ctx, endpoint, requestID)
		return nil, ErrSessionExpired
	}

	// The timeout must keep covering the body read; the timer is released
	// when the caller closes the body.
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, endpoint string, opts Options) (*http.Response, error) {
	opts.Method = http.MethodGet
	return c.Do(ctx, endpoint, opts)
}

// Post issues a POST request with the given JSON body (or opts.Multipart
// when set).
func (c *Client) Post(ctx context.Context, endpoint string, body any, opts Options) (*http.Response, error) {
	opts.Method = http.MethodPost
	if opts.Multipart == nil {
		opts.Body = body
	}
	return c.Do(ctx, endpoint, opts)
}

// Put issues a PUT request with the given JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, body any, opts Options) (*http.Response, error) {
	opts.Method = http.MethodPut
	opts.Body = body
	return c.Do(ctx, endpoint, opts)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string, opts Options) (*http.Response, error) {
	opts.Method = http.MethodDelete
	return c.Do(ctx, endpoint, opts)
}

func (c *Client) resolveURL(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + endpoint
}

func (c *Client) resolveBody(opts Options) (io.Reader, string, error) {
	if opts.Multipart != nil {
		reader, err := opts.Multipart.seal()
		if err != nil {
			return nil, "", err
		}
		return reader, opts.Multipart.ContentType(), nil
	}
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
	return nil, "application/json", nil
}

// classifyTransportError distinguishes caller cancellation, the client
// timeout, and genuine transport failure. Whichever cancellation source
// fired first determines the reported kind.
func (c *Client) classifyTransportError(ctx, reqCtx context.Context, url string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if reqCtx.Err() == context.DeadlineExceeded {
		c.metrics.Inc(metrics.MetricRequestTimeout)
		return &TimeoutError{URL: url, Timeout: c.timeout}
	}
	c.metrics.Inc(metrics.MetricRequestNetworkError)
	return &NetworkError{URL: url, Err: err}
}

func (c *Client) interceptAuthFailure(ctx context.Context, endpoint, requestID string) {
	c.metrics.Inc(metrics.MetricSessionExpired)
	c.logger.Warn().
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Msg("received 401, session declared expired")
	c.events.Emit(events.Event{
		Timestamp: time.Now(),
		EventType: events.TypeSessionExpired,
		Endpoint:  endpoint,
		RequestID: requestID,
		Success:   false,
		Error:     "credential rejected by backend",
	})
	if c.onAuthExpired != nil {
		c.onAuthExpired(ctx)
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

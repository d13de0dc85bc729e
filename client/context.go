package client

import "context"

type requestIDContextKey struct{}

// WithRequestID pins the X-Request-ID header value for calls issued under
// ctx. Without it, the client generates a fresh UUID per call.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

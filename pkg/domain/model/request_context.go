package model

import (
	"context"

	"github.com/secmon-lab/incidex/pkg/domain/types"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// WithRequestID attaches the request ID of the inbound HTTP request or CLI
// invocation. Backend calls made under ctx reuse it as X-Request-ID.
func WithRequestID(ctx context.Context, id types.RequestID) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom returns the request ID attached to ctx
func RequestIDFrom(ctx context.Context) (types.RequestID, bool) {
	id, ok := ctx.Value(requestIDKey).(types.RequestID)
	return id, ok && id != ""
}

// RequestIDOrNew returns the attached request ID, or a new one if none
func RequestIDOrNew(ctx context.Context) types.RequestID {
	if id, ok := RequestIDFrom(ctx); ok {
		return id
	}
	return types.NewRequestID()
}

package transport

import (
	"context"

	"github.com/blueflyio/ossa-go/tracing"
)

type contextKey struct{}

// NewContext returns a context carrying tc.
func NewContext(ctx context.Context, tc *tracing.TraceContext) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext retrieves the active trace context, or nil when none is set.
func FromContext(ctx context.Context) *tracing.TraceContext {
	tc, _ := ctx.Value(contextKey{}).(*tracing.TraceContext)
	return tc
}

// MustFromContext retrieves the active trace context, creating a fresh root
// when none is set so callers always hold a usable context.
func MustFromContext(ctx context.Context) *tracing.TraceContext {
	if tc := FromContext(ctx); tc != nil {
		return tc
	}
	return tracing.FromHeaders(nil)
}

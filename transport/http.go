package transport

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/blueflyio/ossa-go/internal/metrics"
	"github.com/blueflyio/ossa-go/logging"
	"github.com/blueflyio/ossa-go/tracing"
)

const ginContextKey = "ossa.trace_context"

// HTTPMiddleware creates Gin middleware that reconstructs the trace context
// from the incoming "baggage" header, attaches it to the request context,
// and echoes the header on the response. Missing or garbled baggage degrades
// to a fresh context; the request is never rejected over tracing.
//
// logger and m may be nil to disable logging and instrumentation.
func HTTPMiddleware(logger *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(tracing.HeaderName)
		tc := tracing.FromHeaders(map[string]string{tracing.HeaderName: raw})

		if raw == "" {
			m.ObserveParse(metrics.OutcomeEmpty)
		} else {
			m.ObserveParse(metrics.OutcomeOK)
		}
		m.ObserveContext(metrics.KindRemote, len(tc.Headers[tracing.HeaderName]))

		c.Request = c.Request.WithContext(NewContext(c.Request.Context(), tc))
		c.Set(ginContextKey, tc)

		for name, value := range tc.Headers {
			c.Header(name, value)
		}

		if logger != nil {
			logger.Debug("trace context attached",
				append(logging.TraceFields(tc),
					zap.String("http.method", c.Request.Method),
					zap.String("http.path", c.FullPath()),
				)...)
		}

		c.Next()
	}
}

// FromGin retrieves the trace context attached by HTTPMiddleware, falling
// back to the request context, then to a fresh root.
func FromGin(c *gin.Context) *tracing.TraceContext {
	if v, ok := c.Get(ginContextKey); ok {
		if tc, ok := v.(*tracing.TraceContext); ok {
			return tc
		}
	}
	return MustFromContext(c.Request.Context())
}

package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueflyio/ossa-go/internal/metrics"
	"github.com/blueflyio/ossa-go/tracing"
)

func newTestRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(HTTPMiddleware(nil, metrics.New(prometheus.NewRegistry())))
	router.GET("/work", handler)
	return router
}

func TestHTTPMiddlewarePropagatesIncoming(t *testing.T) {
	sender, err := tracing.New("orchestrator", "int-1")
	require.NoError(t, err)

	var seen *tracing.TraceContext
	router := newTestRouter(func(c *gin.Context) {
		seen = FromGin(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/work", nil)
	req.Header.Set(tracing.HeaderName, sender.Headers[tracing.HeaderName])
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.NotNil(t, seen)
	assert.Equal(t, sender.Correlation.TraceID, seen.Correlation.TraceID)
	assert.Equal(t, "orchestrator", seen.Correlation.AgentID)

	// Header echoed on the response.
	assert.NotEmpty(t, rec.Header().Get(tracing.HeaderName))
}

func TestHTTPMiddlewareDegradesWithoutHeader(t *testing.T) {
	var seen *tracing.TraceContext
	router := newTestRouter(func(c *gin.Context) {
		seen = FromGin(c)
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/work", nil))

	require.NotNil(t, seen)
	assert.True(t, tracing.ValidateTraceID(seen.Correlation.TraceID))
	assert.True(t, tracing.ValidateSpanID(seen.Correlation.SpanID))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPMiddlewareContextOnRequest(t *testing.T) {
	router := newTestRouter(func(c *gin.Context) {
		tc := FromContext(c.Request.Context())
		require.NotNil(t, tc)
		child, err := tc.Child("worker")
		require.NoError(t, err)
		assert.Equal(t, tc.Correlation.TraceID, child.Correlation.TraceID)
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/work", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMustFromContext(t *testing.T) {
	tc := MustFromContext(t.Context())
	require.NotNil(t, tc)
	assert.True(t, tracing.ValidateTraceID(tc.Correlation.TraceID))
}

func TestInjectHeaders(t *testing.T) {
	tc, err := tracing.New("agent-001", "int-1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	InjectHeaders(tc, req)
	assert.Equal(t, tc.Headers[tracing.HeaderName], req.Header.Get(tracing.HeaderName))

	InjectHeaders(nil, req) // no-op
}

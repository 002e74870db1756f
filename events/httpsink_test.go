package events

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueflyio/ossa-go/internal/resilience"
	"github.com/blueflyio/ossa-go/tracing"
)

type recordedRequest struct {
	header http.Header
	body   []byte
}

type recordingServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
	status   int
}

func newRecordingServer(t *testing.T) *recordingServer {
	t.Helper()
	rs := &recordingServer{status: http.StatusAccepted}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rs.mu.Lock()
		rs.requests = append(rs.requests, recordedRequest{header: r.Header.Clone(), body: body})
		status := rs.status
		rs.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *recordingServer) setStatus(code int) {
	rs.mu.Lock()
	rs.status = code
	rs.mu.Unlock()
}

func (rs *recordingServer) all() []recordedRequest {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]recordedRequest(nil), rs.requests...)
}

func TestHTTPSinkStructuredSingle(t *testing.T) {
	server := newRecordingServer(t)
	sink := NewHTTPSink(HTTPSinkConfig{URL: server.URL, Retries: 1})

	event := New("dev.ossa.task.done", "ossa/worker", map[string]string{"result": "ok"})
	require.NoError(t, sink.Send(t.Context(), []*Event{event}))

	reqs := server.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, ContentTypeCloudEvent, reqs[0].header.Get("Content-Type"))

	var got Event
	require.NoError(t, sonic.Unmarshal(reqs[0].body, &got))
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, "dev.ossa.task.done", got.Type)
}

func TestHTTPSinkStructuredBatch(t *testing.T) {
	server := newRecordingServer(t)
	sink := NewHTTPSink(HTTPSinkConfig{URL: server.URL, Retries: 1})

	batch := []*Event{
		New("dev.ossa.task.done", "ossa/worker", nil),
		New("dev.ossa.task.done", "ossa/worker", nil),
	}
	require.NoError(t, sink.Send(t.Context(), batch))

	reqs := server.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, ContentTypeBatch, reqs[0].header.Get("Content-Type"))

	var got []Event
	require.NoError(t, sonic.Unmarshal(reqs[0].body, &got))
	assert.Len(t, got, 2)
}

func TestHTTPSinkBinaryMode(t *testing.T) {
	server := newRecordingServer(t)
	sink := NewHTTPSink(HTTPSinkConfig{URL: server.URL, Mode: ModeBinary, Retries: 1})

	tc, err := tracing.New("agent-7", "int_01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.NoError(t, err)

	event := New("dev.ossa.task.done", "ossa/worker", map[string]string{"result": "ok"}).WithTrace(tc)
	require.NoError(t, sink.Send(t.Context(), []*Event{event}))

	reqs := server.all()
	require.Len(t, reqs, 1)
	h := reqs[0].header
	assert.Equal(t, SpecVersion, h.Get("ce-specversion"))
	assert.Equal(t, "dev.ossa.task.done", h.Get("ce-type"))
	assert.Equal(t, event.ID, h.Get("ce-id"))
	assert.Equal(t, "agent-7", h.Get("ce-ossaagentid"))
	assert.Equal(t, tc.Correlation.TraceID, h.Get("ce-ossatraceid"))
	assert.Equal(t, tc.Correlation.SpanID, h.Get("ce-ossaspanid"))

	var data map[string]string
	require.NoError(t, sonic.Unmarshal(reqs[0].body, &data))
	assert.Equal(t, "ok", data["result"])
}

func TestHTTPSinkRejectsErrorStatus(t *testing.T) {
	server := newRecordingServer(t)
	server.setStatus(http.StatusBadRequest)
	sink := NewHTTPSink(HTTPSinkConfig{URL: server.URL, Retries: 1})

	err := sink.Send(t.Context(), []*Event{New("t", "s", nil)})
	assert.Error(t, err)
}

func TestHTTPSinkBreakerTrips(t *testing.T) {
	server := newRecordingServer(t)
	server.setStatus(http.StatusInternalServerError)
	sink := NewHTTPSink(HTTPSinkConfig{
		URL:       server.URL,
		Retries:   1,
		TripAfter: 2,
		Cooldown:  time.Minute,
	})

	for range 2 {
		assert.Error(t, sink.Send(t.Context(), []*Event{New("t", "s", nil)}))
	}
	seen := len(server.all())

	err := sink.Send(t.Context(), []*Event{New("t", "s", nil)})
	assert.ErrorIs(t, err, resilience.ErrOpen)
	assert.Len(t, server.all(), seen, "open circuit must not reach the server")
}

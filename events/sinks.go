package events

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/blueflyio/ossa-go/internal/resilience"
)

// Sink delivers batches of events to a destination.
type Sink interface {
	Send(ctx context.Context, events []*Event) error
}

// StdoutSink writes events as JSON lines, one per event. Useful for local
// development and for piping into log aggregators.
type StdoutSink struct {
	Pretty bool

	mu sync.Mutex
	w  io.Writer
}

// NewStdoutSink creates a sink writing to stdout.
func NewStdoutSink(pretty bool) *StdoutSink {
	return &StdoutSink{Pretty: pretty, w: os.Stdout}
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer, pretty bool) *StdoutSink {
	return &StdoutSink{Pretty: pretty, w: w}
}

// Send writes each event on its own line.
func (s *StdoutSink) Send(_ context.Context, events []*Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, event := range events {
		var (
			data []byte
			err  error
		)
		if s.Pretty {
			data, err = event.PrettyJSON()
		} else {
			data, err = event.JSON()
		}
		if err != nil {
			return fmt.Errorf("encode event %s: %w", event.ID, err)
		}
		if _, err := fmt.Fprintln(s.w, string(data)); err != nil {
			return err
		}
	}
	return nil
}

// LogSink forwards events to a zap logger as structured entries.
type LogSink struct {
	Logger *zap.Logger
}

// Send logs one entry per event.
func (s *LogSink) Send(_ context.Context, events []*Event) error {
	for _, event := range events {
		s.Logger.Info("cloudevent",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.String("source", event.Source),
			zap.String("trace_id", event.TraceID),
			zap.String("span_id", event.SpanID),
			zap.Any("data", event.Data),
		)
	}
	return nil
}

// HTTP sink delivery modes.
const (
	// ModeStructured posts the whole event (or batch) as a CloudEvents JSON body.
	ModeStructured = "structured"
	// ModeBinary posts the data as the body with CloudEvents attributes in
	// ce-* headers, one request per event.
	ModeBinary = "binary"
)

// HTTPSinkConfig configures an HTTP sink.
type HTTPSinkConfig struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
	Mode    string // ModeStructured (default) or ModeBinary
	Retries int
	// RequestsPerSecond throttles delivery; zero means unlimited.
	RequestsPerSecond float64
	Burst             int
	// TripAfter opens the delivery circuit after that many consecutive
	// failed posts; zero disables the breaker.
	TripAfter uint32
	// Cooldown is how long a tripped circuit sheds posts before probing.
	Cooldown time.Duration
}

// HTTPSink delivers events to an HTTP endpoint with retries and optional
// client-side rate limiting.
type HTTPSink struct {
	cfg     HTTPSinkConfig
	client  *retryablehttp.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
}

// NewHTTPSink creates a production-ready HTTP sink.
func NewHTTPSink(cfg HTTPSinkConfig) *HTTPSink {
	if cfg.Mode == "" {
		cfg.Mode = ModeStructured
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.Retries
	client.RetryWaitMin = 1 * time.Second
	client.RetryWaitMax = 30 * time.Second
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = nil

	limit := rate.Inf
	burst := 0
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = cfg.Burst
		if burst <= 0 {
			burst = 1
		}
	}

	var breaker *resilience.Breaker
	if cfg.TripAfter > 0 {
		breaker = resilience.New(cfg.URL, resilience.Config{
			TripAfter: cfg.TripAfter,
			Cooldown:  cfg.Cooldown,
		})
	}

	return &HTTPSink{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
		breaker: breaker,
	}
}

// Send delivers events according to the configured mode.
func (s *HTTPSink) Send(ctx context.Context, events []*Event) error {
	if len(events) == 0 {
		return nil
	}
	if s.cfg.Mode == ModeBinary {
		for _, event := range events {
			if err := s.sendBinary(ctx, event); err != nil {
				return err
			}
		}
		return nil
	}
	return s.sendStructured(ctx, events)
}

func (s *HTTPSink) sendStructured(ctx context.Context, events []*Event) error {
	var (
		body        []byte
		contentType string
		err         error
	)
	if len(events) == 1 {
		body, err = events[0].JSON()
		contentType = ContentTypeCloudEvent
	} else {
		body, err = marshalBatch(events)
		contentType = ContentTypeBatch
	}
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	return s.post(ctx, body, map[string]string{"Content-Type": contentType})
}

func (s *HTTPSink) sendBinary(ctx context.Context, event *Event) error {
	// Binary mode carries only the data payload in the body.
	var body []byte
	if event.Data != nil {
		var err error
		body, err = marshalData(event.Data)
		if err != nil {
			return fmt.Errorf("encode event %s data: %w", event.ID, err)
		}
	}

	headers := map[string]string{
		"Content-Type":   ContentTypeJSON,
		"ce-specversion": event.SpecVersion,
		"ce-type":        event.Type,
		"ce-source":      event.Source,
		"ce-id":          event.ID,
	}
	if event.Time != "" {
		headers["ce-time"] = event.Time
	}
	if event.Subject != "" {
		headers["ce-subject"] = event.Subject
	}
	if event.AgentID != "" {
		headers["ce-ossaagentid"] = event.AgentID
	}
	if event.InteractionID != "" {
		headers["ce-ossainteractionid"] = event.InteractionID
	}
	if event.TraceID != "" {
		headers["ce-ossatraceid"] = event.TraceID
	}
	if event.SpanID != "" {
		headers["ce-ossaspanid"] = event.SpanID
	}
	return s.post(ctx, body, headers)
}

func (s *HTTPSink) post(ctx context.Context, body []byte, headers map[string]string) error {
	if s.breaker == nil {
		return s.doPost(ctx, body, headers)
	}
	return s.breaker.Do(func() error {
		return s.doPost(ctx, body, headers)
	})
}

func (s *HTTPSink) doPost(ctx context.Context, body []byte, headers map[string]string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}
	for name, value := range s.cfg.Headers {
		req.Header.Set(name, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver events to %s: %w", s.cfg.URL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("deliver events to %s: unexpected status %d", s.cfg.URL, resp.StatusCode)
	}
	return nil
}

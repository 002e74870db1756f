package events

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/blueflyio/ossa-go/internal/metrics"
	"github.com/blueflyio/ossa-go/tracing"
)

func marshalBatch(events []*Event) ([]byte, error) {
	return sonic.Marshal(events)
}

func marshalData(data any) ([]byte, error) {
	return sonic.Marshal(data)
}

// EmitterConfig configures an Emitter.
type EmitterConfig struct {
	// Source is the CloudEvents source attribute, required.
	Source string
	// BatchSize flushes the buffer once this many events accumulate.
	// Defaults to 1 (immediate delivery).
	BatchSize int
	// FlushInterval flushes partial batches on a timer; zero disables the timer.
	FlushInterval time.Duration
	// BufferSize is the emit queue depth; events beyond it are dropped with a
	// warning rather than blocking the caller.
	BufferSize int
}

// Emitter batches CloudEvents and forwards them to a Sink from a background
// collector goroutine. Emit never blocks on sink latency; a full buffer
// drops the event and warns.
type Emitter struct {
	cfg     EmitterConfig
	sink    Sink
	logger  *zap.Logger
	metrics *metrics.Metrics

	queue     chan *Event
	flush     chan chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewEmitter starts an emitter delivering to sink. logger and m may be nil.
func NewEmitter(cfg EmitterConfig, sink Sink, logger *zap.Logger, m *metrics.Metrics) *Emitter {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Emitter{
		cfg:     cfg,
		sink:    sink,
		logger:  logger,
		metrics: m,
		queue:   make(chan *Event, cfg.BufferSize),
		flush:   make(chan chan struct{}),
		done:    make(chan struct{}),
	}
	go e.collect()
	return e
}

// Emit queues an event of eventType carrying data.
func (e *Emitter) Emit(eventType string, data any) {
	e.submit(New(eventType, e.cfg.Source, data))
}

// EmitTraced queues an event with OSSA trace extensions taken from tc.
func (e *Emitter) EmitTraced(tc *tracing.TraceContext, eventType string, data any) {
	e.submit(New(eventType, e.cfg.Source, data).WithTrace(tc))
}

// EmitEvent queues a caller-constructed event. Invalid events are rejected
// with a warning instead of an error; emission never fails the caller.
func (e *Emitter) EmitEvent(event *Event) {
	e.submit(event)
}

func (e *Emitter) submit(event *Event) {
	if err := event.Validate(); err != nil {
		e.logger.Warn("dropping invalid event", zap.Error(err))
		return
	}
	select {
	case e.queue <- event:
		if e.metrics != nil {
			e.metrics.EventsEmitted.Inc()
		}
	default:
		if e.metrics != nil {
			e.metrics.EventsDropped.Inc()
		}
		e.logger.Warn("event buffer full, dropping event",
			zap.String("event_type", event.Type),
			zap.String("event_id", event.ID),
		)
	}
}

// Flush synchronously delivers everything buffered so far.
func (e *Emitter) Flush() {
	ack := make(chan struct{})
	select {
	case e.flush <- ack:
		<-ack
	case <-e.done:
	}
}

// Close flushes remaining events and stops the collector. The emitter must
// not be used afterwards.
func (e *Emitter) Close() {
	e.closeOnce.Do(func() {
		close(e.queue)
	})
	<-e.done
}

func (e *Emitter) collect() {
	defer close(e.done)

	var ticker *time.Ticker
	var tick <-chan time.Time
	if e.cfg.FlushInterval > 0 {
		ticker = time.NewTicker(e.cfg.FlushInterval)
		tick = ticker.C
		defer ticker.Stop()
	}

	batch := make([]*Event, 0, e.cfg.BatchSize)
	deliver := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := e.sink.Send(ctx, batch)
		cancel()
		if err != nil {
			if e.metrics != nil {
				e.metrics.SinkErrors.Inc()
			}
			e.logger.Error("sink delivery failed",
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
		}
		batch = batch[:0]
	}

	for {
		select {
		case event, ok := <-e.queue:
			if !ok {
				deliver()
				return
			}
			batch = append(batch, event)
			if len(batch) >= e.cfg.BatchSize {
				deliver()
			}
		case ack := <-e.flush:
			// Drain anything already queued before acknowledging.
			for drained := false; !drained; {
				select {
				case event, ok := <-e.queue:
					if !ok {
						drained = true
						break
					}
					batch = append(batch, event)
				default:
					drained = true
				}
			}
			deliver()
			close(ack)
		case <-tick:
			deliver()
		}
	}
}

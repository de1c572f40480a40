package events

import (
	"context"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/smartplan/internal/log"
	"github.com/felixgeelhaar/smartplan/internal/metrics"
	"github.com/felixgeelhaar/smartplan/internal/telemetry"
)

// DefaultBuffer is the queue size used when none is configured.
const DefaultBuffer = 256

// Dispatcher queues events and delivers them to every sink from one worker
// goroutine. Emit never blocks: when the queue is full the event is dropped.
type Dispatcher struct {
	sinks   []Sink
	queue   chan Event
	logger  *log.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	closed bool

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	dropped atomic.Int64
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger for delivery failures.
func WithDispatcherLogger(logger *log.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithDispatcherMetrics records delivery outcomes and queue depth to m.
func WithDispatcherMetrics(m *metrics.Metrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

// NewDispatcher starts a dispatcher delivering to sinks. Call Close to drain
// and stop it.
func NewDispatcher(buffer int, sinks []Sink, opts ...DispatcherOption) *Dispatcher {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		sinks:  sinks,
		queue:  make(chan Event, buffer),
		logger: log.Discard(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	go d.run()
	return d
}

// Emit queues e and reports whether it was accepted. Events emitted after
// Close, or while the queue is full, are dropped.
func (d *Dispatcher) Emit(e Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(e, "closed")
		return false
	}
	select {
	case d.queue <- e:
		d.metrics.SetQueueDepth(len(d.queue))
		return true
	default:
		d.drop(e, "queue full")
		return false
	}
}

func (d *Dispatcher) drop(e Event, reason string) {
	d.dropped.Add(1)
	d.metrics.RecordEvent("dispatcher", "dropped")
	d.logger.Warn("event dropped", "event_id", e.ID, "plan_id", e.PlanID, "reason", reason)
}

// Pending returns the number of queued events.
func (d *Dispatcher) Pending() int { return len(d.queue) }

// Capacity returns the queue size.
func (d *Dispatcher) Capacity() int { return cap(d.queue) }

// Dropped returns how many events were not queued.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Close stops accepting events and waits for queued ones to be delivered.
// If ctx expires first, in-flight deliveries are cancelled and ctx's error
// is returned.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-d.done
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.queue {
		d.metrics.SetQueueDepth(len(d.queue))
		if d.ctx.Err() != nil {
			d.drop(e, "shutdown")
			continue
		}
		for _, sink := range d.sinks {
			d.deliver(sink, e)
		}
	}
}

func (d *Dispatcher) deliver(sink Sink, e Event) {
	ctx, span := telemetry.StartEventSpan(d.ctx, sink.Name(), e.Type)
	defer span.End()

	if err := sink.Deliver(ctx, e); err != nil {
		telemetry.RecordError(span, err)
		d.metrics.RecordEvent(sink.Name(), "failed")
		d.logger.WithError(err).Warn("event delivery failed",
			"sink", sink.Name(),
			"event_id", e.ID,
			"plan_id", e.PlanID,
		)
		return
	}
	telemetry.RecordSuccess(span, attribute.String("plan.id", e.PlanID))
	d.metrics.RecordEvent(sink.Name(), "delivered")
}

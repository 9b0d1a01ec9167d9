// Package dispatcher routes upstream change signals (layers, user location,
// venue data) to registered handlers, optionally through per-topic buffers.
package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/vivatulum/mapkit/internal/logging"
)

// Signal topics.
const (
	TopicLayers   = "layers"
	TopicLocation = "location"
	TopicVenues   = "venues"
)

// Signal is one upstream change notification.
type Signal struct {
	Topic     string
	Payload   any
	Timestamp time.Time
}

// HandlerFunc processes a signal.
type HandlerFunc func(Signal) error

// Option configures handler registration.
type Option func(*config)

type config struct {
	bufferSize int
	blocking   bool
	logged     bool
}

// Buffered makes the handler async with a queue of the given size.
func Buffered(size int) Option {
	return func(c *config) {
		c.bufferSize = size
	}
}

// Blocking makes a buffered handler block when the queue is full instead of dropping.
func Blocking() Option {
	return func(c *config) {
		c.blocking = true
	}
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Dispatcher routes signals to registered handlers.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   logging.Logger

	// OTel metrics
	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter

	// Track buffers for gauge callback
	mu      sync.RWMutex
	buffers map[string]chan Signal
}

// New creates a new Dispatcher with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger logging.Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		buffers:  make(map[string]chan Signal),
		logger:   logger,
	}

	m := meter()

	var err error

	d.queueSize, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Current number of signals in queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			d.mu.RLock()
			defer d.mu.RUnlock()
			for topic, buf := range d.buffers {
				o.ObserveInt64(d.queueSize, int64(len(buf)),
					metric.WithAttributes(attribute.String("topic", topic)))
			}
			return nil
		},
		d.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	d.processed, err = m.Int64Counter(
		"dispatcher.signals.processed",
		metric.WithDescription("Total signals processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.dropped, err = m.Int64Counter(
		"dispatcher.signals.dropped",
		metric.WithDescription("Total signals dropped due to full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return d, nil
}

// Register adds a handler for the given topic with optional configuration.
func (d *Dispatcher) Register(topic string, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h

	if cfg.bufferSize > 0 {
		handler = d.withBuffer(topic, cfg.bufferSize, cfg.blocking, handler)
	}

	if cfg.logged {
		handler = d.withLogging(topic, handler)
	}

	d.handlers[topic] = handler
}

// Dispatch routes a signal to its registered handler.
func (d *Dispatcher) Dispatch(s Signal) error {
	h, ok := d.handlers[s.Topic]
	if !ok {
		return fmt.Errorf("unknown topic: %s", s.Topic)
	}
	return h(s)
}

// HasHandler returns true if a handler is registered for the topic.
func (d *Dispatcher) HasHandler(topic string) bool {
	_, ok := d.handlers[topic]
	return ok
}

func (d *Dispatcher) withBuffer(topic string, size int, blocking bool, h HandlerFunc) HandlerFunc {
	buffer := make(chan Signal, size)

	d.mu.Lock()
	d.buffers[topic] = buffer
	d.mu.Unlock()

	topicAttr := attribute.String("topic", topic)

	go func() {
		for s := range buffer {
			if err := h(s); err != nil {
				d.logger.Error("buffered signal failed", "topic", topic, "error", err)
			}
			d.processed.Add(context.Background(), 1, metric.WithAttributes(topicAttr))
		}
	}()

	if blocking {
		return func(s Signal) error {
			buffer <- s
			return nil
		}
	}

	return func(s Signal) error {
		select {
		case buffer <- s:
			return nil
		default:
			d.dropped.Add(context.Background(), 1, metric.WithAttributes(topicAttr))
			return fmt.Errorf("queue full: %s", topic)
		}
	}
}

func (d *Dispatcher) withLogging(topic string, h HandlerFunc) HandlerFunc {
	return func(s Signal) error {
		start := time.Now()
		d.logger.Debug("handling signal", "topic", topic)

		err := h(s)

		if err != nil {
			d.logger.Error("signal failed", "topic", topic, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("signal complete", "topic", topic, "duration", time.Since(start))
		}

		return err
	}
}

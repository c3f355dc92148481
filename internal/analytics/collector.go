package analytics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/oxterm/termsearch/pkg/kafka"
)

// Collector buffers analytics events in memory and publishes them to
// Kafka from a single background goroutine. Track never blocks the
// request path; events are dropped when the buffer is full.
type Collector struct {
	producer *kafka.Producer
	eventCh  chan interface{}
	logger   *slog.Logger
	done     chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewCollector(producer *kafka.Producer, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan interface{}, bufferSize),
		logger:   slog.Default().With("component", "analytics-collector"),
		done:     make(chan struct{}),
	}
}

func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track queues an event for publishing. Safe to call from any
// goroutine, including concurrently with Close: events arriving after
// shutdown has begun are dropped.
func (c *Collector) Track(event interface{}) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops accepting events, then waits for the background goroutine
// to drain and exit. Idempotent.
func (c *Collector) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	close(c.eventCh)
	<-c.done
}

func (c *Collector) publish(ctx context.Context, event interface{}) {
	key := "query"
	if _, ok := event.(SuggestEvent); ok {
		key = "suggest"
	}
	if err := c.producer.Publish(ctx, kafka.Event{
		Key:   key,
		Value: event,
	}); err != nil {
		c.logger.Error("failed to publish analytics event", "error", err)
	}
}

func (c *Collector) drainRemaining() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(context.Background(), event)
		default:
			return
		}
	}
}

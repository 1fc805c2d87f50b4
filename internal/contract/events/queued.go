package events

import (
	"context"

	"github.com/gartstein/contracto/internal/contract/domain"
	"go.uber.org/zap"
)

// QueuedPublisher decouples Publish from handler execution: Publish enqueues
// and returns immediately. A single background consumer drains the queue in
// FIFO order and delegates each event to the base fan-out. When the queue is
// full the newest event is dropped with a warning; Publish never blocks.
type QueuedPublisher struct {
	base      *Publisher
	queue     chan domain.Event
	closeChan chan struct{}
	done      chan struct{}
	logger    *zap.Logger
}

// NewQueuedPublisher wraps a base publisher with a bounded queue. Call Start
// before publishing and Stop on shutdown.
func NewQueuedPublisher(base *Publisher, queueSize int, logger *zap.Logger) *QueuedPublisher {
	if queueSize < 1 {
		queueSize = 1000
	}
	return &QueuedPublisher{
		base:      base,
		queue:     make(chan domain.Event, queueSize),
		closeChan: make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Named("queued_publisher"),
	}
}

// Start launches the consumer goroutine.
func (p *QueuedPublisher) Start() {
	go p.consumeLoop()
}

// Stop signals the consumer and waits for it to exit. An in-flight fan-out is
// not interrupted; only the next dequeue is skipped. Events still queued when
// Stop is called are not delivered.
func (p *QueuedPublisher) Stop() {
	close(p.closeChan)
	<-p.done
}

// Publish enqueues the event, dropping it with a warning when the queue is full.
func (p *QueuedPublisher) Publish(_ context.Context, event domain.Event) {
	select {
	case p.queue <- event:
	default:
		p.logger.Warn("event queue full, dropping event",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
		)
	}
}

func (p *QueuedPublisher) consumeLoop() {
	defer close(p.done)
	for {
		select {
		case event := <-p.queue:
			p.base.Publish(context.Background(), event)
		case <-p.closeChan:
			return
		}
	}
}

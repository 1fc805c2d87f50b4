package events

import (
	"context"
	"sync"

	"github.com/gartstein/contracto/internal/contract/domain"
	"go.uber.org/zap"
)

// RecordingPublisher behaves like Publisher but also keeps every published
// event for later inspection. Meant for tests, not for production side effects.
type RecordingPublisher struct {
	*Publisher

	mu        sync.Mutex
	published []domain.Event
}

// NewRecordingPublisher constructs a recording publisher.
func NewRecordingPublisher(logger *zap.Logger) *RecordingPublisher {
	return &RecordingPublisher{Publisher: NewPublisher(logger)}
}

// Publish records the event, then fans it out like the base publisher.
func (p *RecordingPublisher) Publish(ctx context.Context, event domain.Event) {
	p.mu.Lock()
	p.published = append(p.published, event)
	p.mu.Unlock()

	p.Publisher.Publish(ctx, event)
}

// Published returns a copy of everything published so far.
func (p *RecordingPublisher) Published() []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Event(nil), p.published...)
}

// Reset drops the recorded events, keeping registrations intact.
func (p *RecordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = nil
}

package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/flexprice/partnerbilling/internal/publisher"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/samber/lo"
)

// InMemoryEventPublisher records published invoice events for assertions
type InMemoryEventPublisher struct {
	mu     sync.RWMutex
	events []*publisher.InvoiceEvent
}

var _ publisher.EventPublisher = (*InMemoryEventPublisher)(nil)

// NewInMemoryEventPublisher creates a new instance of InMemoryEventPublisher
func NewInMemoryEventPublisher() *InMemoryEventPublisher {
	return &InMemoryEventPublisher{
		events: make([]*publisher.InvoiceEvent, 0),
	}
}

func (p *InMemoryEventPublisher) Publish(ctx context.Context, event *publisher.InvoiceEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	e := *event
	if e.ID == "" {
		e.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_EVENT)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	p.events = append(p.events, &e)
	return nil
}

// GetEvents returns every published event in publish order
func (p *InMemoryEventPublisher) GetEvents() []*publisher.InvoiceEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*publisher.InvoiceEvent(nil), p.events...)
}

// EventNames returns the names of the published events in publish order
func (p *InMemoryEventPublisher) EventNames() []publisher.InvoiceEventName {
	return lo.Map(p.GetEvents(), func(e *publisher.InvoiceEvent, _ int) publisher.InvoiceEventName {
		return e.EventName
	})
}

func (p *InMemoryEventPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = make([]*publisher.InvoiceEvent, 0)
}

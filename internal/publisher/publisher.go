package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/flexprice/partnerbilling/internal/config"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/pubsub"
	"github.com/flexprice/partnerbilling/internal/types"
)

// InvoiceEventName names a change in an invoice's lifecycle
type InvoiceEventName string

const (
	EventInvoiceGenerated    InvoiceEventName = "invoice.generated"
	EventInvoiceRegenerated  InvoiceEventName = "invoice.regenerated"
	EventInvoiceFinalized    InvoiceEventName = "invoice.finalized"
	EventInvoiceVoided       InvoiceEventName = "invoice.voided"
	EventInvoiceReopened     InvoiceEventName = "invoice.reopened"
	EventInvoiceLineOverride InvoiceEventName = "invoice.line_overridden"
)

// InvoiceEvent is the payload published for every invoice state change
type InvoiceEvent struct {
	ID            string              `json:"id"`
	EventName     InvoiceEventName    `json:"event_name"`
	InvoiceID     string              `json:"invoice_id"`
	InvoiceNumber string              `json:"invoice_number"`
	PartnerID     string              `json:"partner_id"`
	InvoiceMonth  types.YearMonth     `json:"invoice_month"`
	FromStatus    types.InvoiceStatus `json:"from_status,omitempty"`
	ToStatus      types.InvoiceStatus `json:"to_status"`
	Actor         string              `json:"actor"`
	GrandTotal    string              `json:"grand_total"`
	Timestamp     time.Time           `json:"timestamp"`
}

// EventPublisher publishes invoice lifecycle events
type EventPublisher interface {
	Publish(ctx context.Context, event *InvoiceEvent) error
}

type eventPublisher struct {
	pubsub pubsub.Publisher
	config *config.EventConfig
	logger *logger.Logger
}

// NewEventPublisher creates a publisher writing to the configured topic.
// When events are disabled publishing is a no-op.
func NewEventPublisher(cfg *config.Configuration, ps pubsub.PubSub, logger *logger.Logger) EventPublisher {
	return &eventPublisher{
		pubsub: ps,
		config: &cfg.Event,
		logger: logger,
	}
}

func (p *eventPublisher) Publish(ctx context.Context, event *InvoiceEvent) error {
	if !p.config.Enabled {
		return nil
	}

	if event.ID == "" {
		event.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_EVENT)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode invoice event").
			Mark(ierr.ErrSystem)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_name", string(event.EventName))
	if requestID := types.GetRequestID(ctx); requestID != "" {
		middleware.SetCorrelationID(requestID, msg)
	}

	p.logger.Debugw("publishing invoice event",
		"event_id", event.ID,
		"event_name", event.EventName,
		"invoice_id", event.InvoiceID,
	)

	if err := p.pubsub.Publish(ctx, p.config.Topic, msg); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to publish invoice event").
			Mark(ierr.ErrSystem)
	}
	return nil
}

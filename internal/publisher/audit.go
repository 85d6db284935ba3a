package publisher

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/flexprice/partnerbilling/internal/config"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/pubsub"
	"github.com/flexprice/partnerbilling/internal/pubsub/router"
)

// AuditLogHandler writes every invoice event to the application log
type AuditLogHandler struct {
	logger *logger.Logger
}

func NewAuditLogHandler(logger *logger.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger}
}

// Handle decodes and logs one event. Malformed payloads are validation errors
// and are not retried.
func (h *AuditLogHandler) Handle(msg *message.Message) error {
	var event InvoiceEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return ierr.WithError(err).
			WithHint("Invoice event payload is malformed").
			WithReportableDetails(map[string]any{
				"message_uuid": msg.UUID,
			}).
			Mark(ierr.ErrValidation)
	}

	h.logger.Infow("invoice event",
		"event_id", event.ID,
		"event_name", event.EventName,
		"invoice_id", event.InvoiceID,
		"invoice_number", event.InvoiceNumber,
		"partner_id", event.PartnerID,
		"from_status", event.FromStatus,
		"to_status", event.ToStatus,
		"actor", event.Actor,
		"grand_total", event.GrandTotal,
		"correlation_id", middleware.MessageCorrelationID(msg),
	)
	return nil
}

// RegisterAuditLogHandler subscribes the audit log to the invoice event topic
func RegisterAuditLogHandler(r *router.Router, ps pubsub.PubSub, cfg *config.Configuration, h *AuditLogHandler) {
	if !cfg.Event.Enabled {
		return
	}
	r.AddNoPublishHandler("invoice_audit_log", cfg.Event.Topic, ps, h.Handle)
}

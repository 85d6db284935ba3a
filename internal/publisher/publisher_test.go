package publisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/flexprice/partnerbilling/internal/config"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/pubsub/memory"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishInvoiceEvent(t *testing.T) {
	cfg := config.GetDefaultConfig()
	ps := memory.NewPubSub(cfg, logger.NewNoopLogger())
	defer ps.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ctx = context.WithValue(ctx, types.CtxRequestID, "req_123")

	msgs, err := ps.Subscribe(ctx, cfg.Event.Topic)
	require.NoError(t, err)

	pub := NewEventPublisher(cfg, ps, logger.NewNoopLogger())
	event := &InvoiceEvent{
		EventName: EventInvoiceFinalized,
		InvoiceID: "inv_1",
		ToStatus:  types.InvoiceStatusFinal,
	}
	require.NoError(t, pub.Publish(ctx, event))
	assert.NotEmpty(t, event.ID)

	select {
	case msg := <-msgs:
		var got InvoiceEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, EventInvoiceFinalized, got.EventName)
		assert.Equal(t, "req_123", middleware.MessageCorrelationID(msg))
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("event not delivered")
	}
}

func TestDisabledPublisherIsNoop(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Event.Enabled = false
	pub := NewEventPublisher(cfg, memory.NewPubSub(cfg, logger.NewNoopLogger()), logger.NewNoopLogger())

	event := &InvoiceEvent{EventName: EventInvoiceVoided}
	require.NoError(t, pub.Publish(context.Background(), event))
	assert.Empty(t, event.ID)
}

func TestAuditLogHandler(t *testing.T) {
	h := NewAuditLogHandler(logger.NewNoopLogger())

	payload, err := json.Marshal(InvoiceEvent{ID: "evt_1", EventName: EventInvoiceReopened})
	require.NoError(t, err)
	assert.NoError(t, h.Handle(message.NewMessage("evt_1", payload)))

	err = h.Handle(message.NewMessage("evt_2", []byte("not json")))
	assert.True(t, ierr.IsValidation(err))
}

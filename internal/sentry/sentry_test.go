package sentry

import (
	"context"
	"errors"
	"testing"

	"github.com/flexprice/partnerbilling/internal/config"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestDisabledServiceIsNoop(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Sentry.Enabled = false
	svc := NewSentryService(cfg, logger.NewNoopLogger())

	ctx := context.Background()
	span, spanCtx := svc.StartDBSpan(ctx, "postgres.transaction", nil)
	assert.Nil(t, span)
	assert.Equal(t, ctx, spanCtx)

	tx, txCtx := svc.StartTransaction(ctx, "POST /v1/invoices")
	assert.Nil(t, tx)
	assert.Equal(t, ctx, txCtx)

	assert.False(t, svc.Enabled())
	assert.NotPanics(t, func() { svc.CaptureException(ctx, errors.New("boom")) })
}

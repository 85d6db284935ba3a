package router

import (
	"errors"
	"testing"

	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestShouldRetry(t *testing.T) {
	log := logger.NewNoopLogger()

	assert.True(t, shouldRetry(log, errors.New("connection refused")))
	assert.True(t, shouldRetry(log, ierr.NewError("db down").Mark(ierr.ErrDatabase)))
	assert.False(t, shouldRetry(log, ierr.NewError("bad payload").Mark(ierr.ErrValidation)))
	assert.False(t, shouldRetry(log, ierr.NewError("gone").Mark(ierr.ErrNotFound)))
}

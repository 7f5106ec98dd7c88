package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicError(t *testing.T) {
	err := NewPublicError(ErrValidation, "Missing required fields", nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "Missing required fields")

	wrapped := fmt.Errorf("upload: %w", NewPublicError(ErrorInternal, "Error during transcription", context.Canceled))
	assert.ErrorIs(t, wrapped, ErrorInternal)
	assert.ErrorIs(t, wrapped, context.Canceled)

	var pe *PublicError
	assert.True(t, errors.As(wrapped, &pe))
	assert.Equal(t, "Error during transcription", pe.Msg)
	assert.EqualError(t, pe, "Error during transcription: context canceled")
}

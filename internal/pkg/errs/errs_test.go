//go:build unit

package errs_test

import (
	"errors"
	"testing"

	"playpal-booking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestMark(t *testing.T) {
	t.Run("marked error matches both the marker and the cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		marked := errs.Mark(cause, errs.ErrStoreUnavailable)

		assert.True(t, errs.Is(marked, errs.ErrStoreUnavailable))
		assert.True(t, errs.Is(marked, cause))
		assert.False(t, errs.Is(marked, errs.ErrSlotUnavailable))
	})

	t.Run("nil error returns the marker itself", func(t *testing.T) {
		assert.Equal(t, errs.ErrInvalidState, errs.Mark(nil, errs.ErrInvalidState))
	})
}

func TestWrap(t *testing.T) {
	assert.Nil(t, errs.Wrap(nil, "ignored"))

	wrapped := errs.Wrapf(errs.ErrBookingNotFound, "confirm booking %d", 901)
	assert.True(t, errs.Is(wrapped, errs.ErrBookingNotFound))
	assert.Contains(t, wrapped.Error(), "confirm booking 901")
}

func TestExtractStackLines(t *testing.T) {
	assert.Nil(t, errs.ExtractStackLines(nil, 5))

	lines := errs.ExtractStackLines(errs.New("boom"), 3)
	assert.LessOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[0], "boom")
}

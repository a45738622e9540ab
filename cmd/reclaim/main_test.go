//go:build unit

package main

import (
	"testing"
	"time"

	"playpal-booking/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFlags(t *testing.T) {
	base := config.ReservationConfig{
		HoldDuration:   10 * time.Minute,
		SweepInterval:  time.Minute,
		SweepBatchSize: 500,
	}

	t.Run("flags override env values", func(t *testing.T) {
		cfg, err := applyFlags(base, false, 30*time.Second, 50)
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, cfg.SweepInterval)
		assert.Equal(t, int32(50), cfg.SweepBatchSize)
	})

	t.Run("zero flags keep env values", func(t *testing.T) {
		cfg, err := applyFlags(base, false, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, time.Minute, cfg.SweepInterval)
		assert.Equal(t, int32(500), cfg.SweepBatchSize)
	})

	t.Run("loop mode rejects zero interval", func(t *testing.T) {
		disabled := base
		disabled.SweepEnabled = false
		disabled.SweepInterval = 0

		_, err := applyFlags(disabled, false, 0, 0)
		assert.ErrorContains(t, err, "sweep interval must be positive")
	})

	t.Run("single run ignores interval", func(t *testing.T) {
		disabled := base
		disabled.SweepInterval = 0

		_, err := applyFlags(disabled, true, 0, 0)
		assert.NoError(t, err)
	})
}

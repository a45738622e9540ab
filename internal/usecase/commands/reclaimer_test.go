//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"playpal-booking/internal/pkg/clock"
	"playpal-booking/internal/pkg/config"
	"playpal-booking/internal/usecase/commands"
	commandsmock "playpal-booking/tests/mock/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestReclaimer_SweepOnce(t *testing.T) {
	t.Run("drains batches until empty then purges keys", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		cmds := commandsmock.NewMockReservationCommands(ctrl)

		gomock.InOrder(
			cmds.EXPECT().ReclaimExpired(gomock.Any(), now).Return(500, nil),
			cmds.EXPECT().ReclaimExpired(gomock.Any(), now).Return(12, nil),
			cmds.EXPECT().ReclaimExpired(gomock.Any(), now).Return(0, nil),
			cmds.EXPECT().PurgeExpiredIdempotencyKeys(gomock.Any(), now).Return(int64(3), nil),
		)

		r := commands.NewReclaimer(cmds, clock.NewMockClock(now), config.NewTestConfig().Reservation)
		result, err := r.SweepOnce(context.Background())

		require.NoError(t, err)
		assert.Equal(t, commands.SweepResult{ReclaimedSlots: 512, PurgedIdemKeys: 3}, result)
	})

	t.Run("stops on reclaim error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		cmds := commandsmock.NewMockReservationCommands(ctrl)
		cmds.EXPECT().ReclaimExpired(gomock.Any(), now).Return(0, assert.AnError)

		r := commands.NewReclaimer(cmds, clock.NewMockClock(now), config.NewTestConfig().Reservation)
		_, err := r.SweepOnce(context.Background())

		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestReclaimer_StartStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	cmds := commandsmock.NewMockReservationCommands(ctrl)

	swept := make(chan struct{}, 1)
	cmds.EXPECT().ReclaimExpired(gomock.Any(), gomock.Any()).Return(0, nil).AnyTimes()
	cmds.EXPECT().PurgeExpiredIdempotencyKeys(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, time.Time) (int64, error) {
			select {
			case swept <- struct{}{}:
			default:
			}
			return 0, nil
		}).AnyTimes()

	cfg := config.NewTestConfig().Reservation
	cfg.SweepInterval = 10 * time.Millisecond
	r := commands.NewReclaimer(cmds, clock.NewMockClock(now), cfg)

	r.Start()
	r.Start() // second start is a no-op

	select {
	case <-swept:
	case <-time.After(2 * time.Second):
		t.Fatal("reclaimer did not sweep")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Stop(ctx))
	require.NoError(t, r.Stop(ctx))
}

func TestReclaimer_RestartAfterStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	cmds := commandsmock.NewMockReservationCommands(ctrl)
	cmds.EXPECT().ReclaimExpired(gomock.Any(), gomock.Any()).Return(0, nil).AnyTimes()
	cmds.EXPECT().PurgeExpiredIdempotencyKeys(gomock.Any(), gomock.Any()).Return(int64(0), nil).AnyTimes()

	r := commands.NewReclaimer(cmds, clock.NewMockClock(now), config.NewTestConfig().Reservation)

	for range 3 {
		r.Start()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		require.NoError(t, r.Stop(ctx))
		cancel()
	}

	// the loop goroutine must have exited cleanly after the last Stop
	time.Sleep(50 * time.Millisecond)
}

package commands

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"playpal-booking/internal/pkg/clock"
	"playpal-booking/internal/pkg/config"
)

// Reclaimer periodically returns lapsed holds to available. Holds are
// already reclaimable lazily by Hold, so a missed tick only delays cleanup.
type Reclaimer struct {
	commands ReservationCommands
	clock    clock.Clock
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type SweepResult struct {
	ReclaimedSlots int
	PurgedIdemKeys int64
}

func NewReclaimer(commands ReservationCommands, clk clock.Clock, cfg config.ReservationConfig) *Reclaimer {
	return &Reclaimer{
		commands: commands,
		clock:    clk,
		interval: cfg.SweepInterval,
	}
}

// SweepOnce drains lapsed holds batch by batch, then purges expired idempotency keys.
func (r *Reclaimer) SweepOnce(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	now := r.clock.Now()

	for {
		n, err := r.commands.ReclaimExpired(ctx, now)
		if err != nil {
			return result, err
		}
		result.ReclaimedSlots += n
		if n == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
	}

	purged, err := r.commands.PurgeExpiredIdempotencyKeys(ctx, now)
	if err != nil {
		return result, err
	}
	result.PurgedIdemKeys = purged

	if result.ReclaimedSlots > 0 || result.PurgedIdemKeys > 0 {
		slog.Info("reclaimer sweep finished",
			"reclaimed_slots", result.ReclaimedSlots,
			"purged_idempotency_keys", result.PurgedIdemKeys)
	}
	return result, nil
}

// Run sweeps on every tick until ctx is cancelled. Sweep errors are logged
// and the loop continues.
func (r *Reclaimer) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				slog.Warn("reclaimer sweep failed", "error", err.Error())
			}
		}
	}
}

// Start launches Run in the background. Stop waits for the loop to exit.
func (r *Reclaimer) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go func() {
		defer close(done)
		r.Run(ctx)
	}()
	slog.Info("reclaimer started", "interval", r.interval.String())
}

func (r *Reclaimer) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		slog.Info("reclaimer stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

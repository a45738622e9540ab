// Command reclaim runs the expired-hold sweep outside the API process,
// either once (for cron) or as a long-running loop.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"playpal-booking/internal/handler/middleware"
	"playpal-booking/internal/infra/db"
	"playpal-booking/internal/infra/querier"
	"playpal-booking/internal/infra/uow"
	"playpal-booking/internal/pkg/clock"
	"playpal-booking/internal/pkg/config"
	"playpal-booking/internal/usecase/commands"
	"playpal-booking/migrations"

	"github.com/spf13/pflag"
)

func main() {
	once := pflag.Bool("once", false, "run a single sweep and exit")
	interval := pflag.Duration("interval", 0, "sweep interval (overrides RESERVATION_SWEEP_INTERVAL)")
	batchSize := pflag.Int32("batch-size", 0, "holds reclaimed per transaction (overrides RESERVATION_SWEEP_BATCH_SIZE)")
	migrate := pflag.Bool("migrate", false, "apply migrations before sweeping")
	pflag.Parse()

	if err := run(*once, *interval, *batchSize, *migrate); err != nil {
		slog.Error("reclaim failed", "error", err)
		os.Exit(1)
	}
}

// applyFlags layers flag overrides on the env config. Loop mode needs a
// positive interval even when RESERVATION_SWEEP_ENABLED is false.
func applyFlags(cfg config.ReservationConfig, once bool, interval time.Duration, batchSize int32) (config.ReservationConfig, error) {
	if interval > 0 {
		cfg.SweepInterval = interval
	}
	if batchSize > 0 {
		cfg.SweepBatchSize = batchSize
	}
	if !once && cfg.SweepInterval <= 0 {
		return cfg, fmt.Errorf("sweep interval must be positive, got %s", cfg.SweepInterval)
	}
	return cfg, nil
}

func run(once bool, interval time.Duration, batchSize int32, migrate bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	cfg.Reservation, err = applyFlags(cfg.Reservation, once, interval, batchSize)
	if err != nil {
		return err
	}
	logger := middleware.NewLogger(cfg.Log).GetSlogLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, cleanup, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer cleanup()

	if migrate {
		if err := migrations.Apply(ctx, pool); err != nil {
			return err
		}
	}

	clk := clock.NewRealClock()
	uc := commands.NewReservationUseCase(uow.NewPostgresUoW(pool, querier.New()), clk, cfg.Reservation)
	reclaimer := commands.NewReclaimer(uc, clk, cfg.Reservation)

	if once {
		result, err := reclaimer.SweepOnce(ctx)
		if err != nil {
			return err
		}
		logger.Info("sweep finished",
			"reclaimed_slots", result.ReclaimedSlots,
			"purged_idempotency_keys", result.PurgedIdemKeys)
		return nil
	}

	logger.Info("reclaimer running", "interval", cfg.Reservation.SweepInterval.String(), "batch_size", cfg.Reservation.SweepBatchSize)
	reclaimer.Run(ctx)
	logger.Info("reclaimer stopped")
	return nil
}

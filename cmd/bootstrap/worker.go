package bootstrap

import (
	"context"
	"log/slog"

	"playpal-booking/internal/infra/relay"
	"playpal-booking/internal/pkg/clock"
	"playpal-booking/internal/pkg/config"
	"playpal-booking/internal/usecase/commands"
	"playpal-booking/internal/usecase/shared"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Invoke(
		startReclaimer,
		startRelay,
	),
)

func startReclaimer(lc fx.Lifecycle, cfg config.ReservationConfig, reclaimer *commands.Reclaimer) {
	if !cfg.SweepEnabled {
		slog.Info("reclaimer disabled")
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			reclaimer.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return reclaimer.Stop(ctx)
		},
	})
}

func startRelay(lc fx.Lifecycle, cfg config.RelayConfig, uow shared.UnitOfWork, clk clock.Clock) {
	if !cfg.Enabled {
		slog.Info("outbox relay disabled")
		return
	}

	var r *relay.Relay
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			publisher, err := relay.DialAMQP(cfg.AMQPURL, cfg.Exchange, clk)
			if err != nil {
				return err
			}
			r = relay.NewRelay(uow, publisher, clk, cfg)
			r.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if r == nil {
				return nil
			}
			return r.Stop(ctx)
		},
	})
}

package bootstrap

import (
	"context"

	"playpal-booking/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

// MigrationModule brings the schema up to date before any worker or
// listener starts.
var MigrationModule = fx.Module("migrate",
	fx.Invoke(runMigrations),
)

func runMigrations(lc fx.Lifecycle, pool *pgxpool.Pool) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return migrations.Apply(ctx, pool)
		},
	})
}

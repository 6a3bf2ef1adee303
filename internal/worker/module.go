package worker

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"node-linker/internal/config"
	"node-linker/internal/domain"
	"node-linker/internal/link"
)

var Module = fx.Options(
	fx.Provide(NewPool),
	fx.Provide(func(cfg *config.Config, source *link.Source, metrics domain.MetricsCollector, logger *zap.Logger) Scheduler {
		return NewScheduler(
			cfg.Workers.Interval(),
			source,
			metrics,
			logger,
		)
	}),
	fx.Invoke(registerHooks),
)

func registerHooks(lc fx.Lifecycle, pool *Pool) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return pool.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return pool.Stop()
		},
	})
}

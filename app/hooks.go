package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"node-linker/internal/config"
	"node-linker/internal/domain"
)

type hookParams struct {
	fx.In

	Logger    *zap.Logger
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Links     []domain.ParsedLink
	Env       Env
}

func registerHooks(p hookParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting application",
				zap.String("env", string(p.Env)),
				zap.Int("links", len(p.Links)),
				zap.String("links_file", p.Config.LinksFile),
				zap.Int("workers", p.Config.Workers.Count),
				zap.Duration("check_interval", p.Config.Workers.Interval()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("stopping application")
			return nil
		},
	})
}

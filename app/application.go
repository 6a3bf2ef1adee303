package app

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"node-linker/internal/common"
	"node-linker/internal/config"
	"node-linker/internal/exporter"
	"node-linker/internal/link"
	"node-linker/internal/metrics"
	"node-linker/internal/worker"
	"node-linker/internal/xray"
)

// Env names the deployment environment, e.g. "production".
type Env string

type Application struct {
	app *fx.App
}

func NewApplication(opts ...common.Option) *Application {
	options := common.Apply(opts...)

	return &Application{
		app: fx.New(
			modules(options),

			// Set timeouts
			fx.StopTimeout(30*time.Second),
			fx.StartTimeout(30*time.Second),
		),
	}
}

// modules wires every component of the checker.
func modules(options *common.ServiceOptions) fx.Option {
	cfg := config.Module
	if options.Config != nil {
		cfg = fx.Supply(options.Config)
	}

	return fx.Options(
		// Core modules
		cfg,
		link.Module,
		metrics.Module,
		exporter.Module,
		worker.Module,
		xray.Module,

		// Provide base dependencies
		fx.Supply(options.Logger),
		fx.Supply(Env(options.Env)),

		// Configure fx
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),

		// Register lifecycle hooks
		fx.Invoke(registerHooks),
	)
}

// Err reports a dependency graph error found while building the app.
func (a *Application) Err() error {
	return a.app.Err()
}

func (a *Application) Start(ctx context.Context) error {
	return a.app.Start(ctx)
}

func (a *Application) Stop(ctx context.Context) error {
	return a.app.Stop(ctx)
}

package common

import (
	"go.uber.org/zap"

	"node-linker/internal/config"
)

// ServiceOptions defines common options for the application constructors
type ServiceOptions struct {
	Logger *zap.Logger
	Config *config.Config
	Env    string
}

// Option defines a service option modifier
type Option func(*ServiceOptions)

func WithLogger(logger *zap.Logger) Option {
	return func(o *ServiceOptions) {
		o.Logger = logger
	}
}

// WithConfig skips loading CONFIG_PATH and uses cfg instead.
func WithConfig(cfg *config.Config) Option {
	return func(o *ServiceOptions) {
		o.Config = cfg
	}
}

func WithEnv(env string) Option {
	return func(o *ServiceOptions) {
		o.Env = env
	}
}

// Apply builds ServiceOptions from opts, defaulting to a no-op logger.
func Apply(opts ...Option) *ServiceOptions {
	options := &ServiceOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	return options
}

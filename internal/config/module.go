package config

import "go.uber.org/fx"

// Module loads the configuration from CONFIG_PATH.
var Module = fx.Options(
	fx.Provide(NewConfig),
)

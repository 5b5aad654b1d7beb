package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every env tag of Config.
const EnvPrefix = "SESSIONKEEPER_"

// parseEnv overlays cfg with SESSIONKEEPER_* variables. Unset variables keep
// the values loaded so far.
func parseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

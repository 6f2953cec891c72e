package config

import "github.com/dmitrijs2005/postplanner/internal/configx"

// EnvPrefix prefixes every environment variable read by the CLI.
const EnvPrefix = "POSTPLANNER_CLIENT_"

func parseEnv(cfg *Config) error {
	if err := configx.LoadDotEnv(); err != nil {
		return err
	}

	configx.String(EnvPrefix+"ADDR", &cfg.ServerEndpointAddr)
	configx.String(EnvPrefix+"DB", &cfg.DatabasePath)
	configx.String(EnvPrefix+"LOG_LEVEL", &cfg.LogLevel)
	return configx.Duration(EnvPrefix+"REQUEST_TIMEOUT", &cfg.RequestTimeout)
}

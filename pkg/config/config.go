package config

import (
	"os"

	"rangebook/pkg/logger"
)

// Config carries the ambient dependencies shared by the services. The booking
// core itself recognizes no external configuration; only logging is tunable,
// and only for the process entrypoint.
type Config struct {
	LogLevel  string
	LogFormat string

	Log *logger.Logger
}

func Load(serviceName string) *Config {
	cfg := &Config{
		LogLevel:  getEnvStr(EnvLogLevel, DefaultLogLevel),
		LogFormat: getEnvStr(EnvLogFormat, DefaultLogFormat),
	}

	cfg.Log = logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})

	return cfg
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

package config

const (
	EnvLogLevel  = "RANGEBOOK_LOG_LEVEL"
	EnvLogFormat = "RANGEBOOK_LOG_FORMAT"
)

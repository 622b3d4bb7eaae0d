package config

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

package app

import (
	"io"

	"telescope/internal/config"
	"telescope/pkg/logging"
)

// Config holds the application configuration
type Config struct {
	// Logging settings
	LogLevel  logging.LogLevel
	JSONLogs  bool
	LogOutput io.Writer // Defaults to os.Stderr

	// Configuration directory; empty means ~/.config/telescope
	ConfigPath string

	// Loaded configuration. When set, the configuration directory is not read.
	Telescope *config.Config
}

// NewConfig creates a new application configuration
func NewConfig(level logging.LogLevel, jsonLogs bool, configPath string) *Config {
	return &Config{
		LogLevel:   level,
		JSONLogs:   jsonLogs,
		ConfigPath: configPath,
	}
}

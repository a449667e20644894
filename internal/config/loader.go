package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"telescope/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir    = ".config/telescope"
	configFileName   = "config.yaml"
	databaseFileName = "telescope.db"
)

// Environment variables that override file values.
const (
	EnvClientID     = "TELESCOPE_CLIENT_ID"
	EnvClientSecret = "TELESCOPE_CLIENT_SECRET"
	EnvDatabasePath = "TELESCOPE_DB"
)

// osUserHomeDir is swapped in tests.
var osUserHomeDir = os.UserHomeDir

// Env looks up environment variables.
type Env interface {
	Getenv(key string) string
}

type osEnv struct{}

func (osEnv) Getenv(key string) string { return os.Getenv(key) }

// DefaultConfigDir returns ~/.config/telescope.
func DefaultConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads configuration from the given directory and the process
// environment.
func LoadConfig(configDir string) (Config, error) {
	return LoadConfigWithEnv(configDir, osEnv{})
}

// LoadConfigWithEnv loads config.yaml from configDir on top of the defaults,
// then applies env overrides and validates the result.
func LoadConfigWithEnv(configDir string, env Env) (Config, error) {
	config := GetDefaultConfig()
	configFilePath := filepath.Join(configDir, configFileName)

	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		return Config{}, &ConfigurationError{FilePath: configFilePath, Message: "cannot read file", Err: err}
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, &ConfigurationError{FilePath: configFilePath, Message: "malformed YAML", Err: err}
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	if v := env.Getenv(EnvClientID); v != "" {
		config.ClientID = v
	}
	if v := env.Getenv(EnvClientSecret); v != "" {
		config.ClientSecret = v
	}
	if v := env.Getenv(EnvDatabasePath); v != "" {
		config.DatabasePath = v
	}

	if config.DatabasePath == "" {
		config.DatabasePath = filepath.Join(configDir, databaseFileName)
	}
	config.DatabasePath, err = expandHome(config.DatabasePath)
	if err != nil {
		return Config{}, err
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not expand %q: %w", path, err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}

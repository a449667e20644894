package config

import "fmt"

// ConfigurationError is returned when the configuration file cannot be read or parsed.
type ConfigurationError struct {
	FilePath string // Full path to the file that caused the error
	Message  string // Human-readable error message
	Err      error
}

// Error implements the error interface
func (ce *ConfigurationError) Error() string {
	return fmt.Sprintf("config %s: %s: %v", ce.FilePath, ce.Message, ce.Err)
}

// Unwrap returns the underlying error.
func (ce *ConfigurationError) Unwrap() error {
	return ce.Err
}

package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// Validate checks the settings every command relies on.
func (c Config) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(c.UserAgent) == "" {
		errs.Add("userAgent", "is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		errs.Add("databasePath", "is required")
	}
	if err := validateCallbackURL(c.CallbackURL); err != nil {
		errs.Add("callbackUrl", err.Error(), c.CallbackURL)
	}
	if c.ListenerPort < 0 || c.ListenerPort > 65535 {
		errs.Add("listenerPort", "must be between 0 and 65535", c.ListenerPort)
	}
	if c.LoginTimeout < 0 {
		errs.Add("loginTimeout", "must not be negative", c.LoginTimeout)
	}
	if c.ESI.RequestsPerSecond < 0 {
		errs.Add("esi.requestsPerSecond", "must not be negative", c.ESI.RequestsPerSecond)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ValidateCredentials checks the settings needed to talk to SSO.
func (c Config) ValidateCredentials() error {
	var errs ValidationErrors
	if strings.TrimSpace(c.ClientID) == "" {
		errs.Add("clientId", fmt.Sprintf("is required (set it in %s or %s)", configFileName, EnvClientID))
	}
	if len(c.Scopes) == 0 {
		errs.Add("scopes", "must have at least one item")
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}

// validateCallbackURL accepts only plain-HTTP loopback URLs, which is all
// the local listener can serve.
func validateCallbackURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("is not a valid URL")
	}
	if u.Scheme != "http" {
		return fmt.Errorf("must use the http scheme")
	}
	host := u.Hostname()
	if host == "localhost" {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return nil
	}
	return fmt.Errorf("must point at a loopback host")
}

package config

import (
	"time"

	"telescope/pkg/esi"
	"telescope/pkg/oauth"
)

const (
	// DefaultUserAgent identifies telescope to SSO and ESI.
	DefaultUserAgent = "telescope/v0"

	// DefaultCallbackURL is where SSO sends the browser back to.
	DefaultCallbackURL = "http://localhost:56123/login"

	// DefaultLoginTimeout bounds how long a login waits for the redirect.
	DefaultLoginTimeout = 5 * time.Minute
)

// DefaultScopes are requested when the configuration names none.
var DefaultScopes = []string{"publicData", "esi-location.read_location.v1"}

// GetDefaultConfig returns the default configuration. DatabasePath is left
// empty; the loader places it in the configuration directory.
func GetDefaultConfig() Config {
	return Config{
		UserAgent:    DefaultUserAgent,
		CallbackURL:  DefaultCallbackURL,
		Scopes:       append([]string(nil), DefaultScopes...),
		LoginTimeout: DefaultLoginTimeout,
		SSO: SSOConfig{
			AuthorizeURL: oauth.DefaultAuthorizeURL,
			TokenURL:     oauth.DefaultTokenURL,
		},
		ESI: ESIConfig{
			BaseURL:           esi.DefaultBaseURL,
			RequestsPerSecond: esi.DefaultRequestsPerSecond,
		},
	}
}

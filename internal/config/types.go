package config

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Config is the top-level configuration structure for telescope.
type Config struct {
	UserAgent    string        `yaml:"userAgent"`
	ClientID     string        `yaml:"clientId,omitempty"`
	ClientSecret string        `yaml:"clientSecret,omitempty"`
	CallbackURL  string        `yaml:"callbackUrl"`
	Scopes       []string      `yaml:"scopes,omitempty"`
	DatabasePath string        `yaml:"databasePath,omitempty"`
	ListenerPort int           `yaml:"listenerPort,omitempty"` // Overrides the port of callbackUrl when set
	LoginTimeout time.Duration `yaml:"loginTimeout,omitempty"`
	SSO          SSOConfig     `yaml:"sso"`
	ESI          ESIConfig     `yaml:"esi"`
}

// SSOConfig holds the SSO endpoints.
type SSOConfig struct {
	AuthorizeURL string `yaml:"authorizeUrl,omitempty"`
	TokenURL     string `yaml:"tokenUrl,omitempty"`
}

// ESIConfig configures the ESI client.
type ESIConfig struct {
	BaseURL           string  `yaml:"baseUrl,omitempty"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond,omitempty"`
}

// CallbackPort returns the port the login listener binds: ListenerPort when
// set, otherwise the port of CallbackURL (80 when it has none).
func (c Config) CallbackPort() (int, error) {
	if c.ListenerPort != 0 {
		return c.ListenerPort, nil
	}
	u, err := url.Parse(c.CallbackURL)
	if err != nil {
		return 0, fmt.Errorf("invalid callback URL %q: %w", c.CallbackURL, err)
	}
	if u.Port() == "" {
		return 80, nil
	}
	return strconv.Atoi(u.Port())
}

// CallbackPath returns the path of CallbackURL, "/" when empty.
func (c Config) CallbackPath() string {
	u, err := url.Parse(c.CallbackURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

package app

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"telescope/internal/config"
	"telescope/internal/metrics"
	"telescope/internal/oauth"
	"telescope/internal/session"
	"telescope/internal/store"
	"telescope/pkg/esi"
	"telescope/pkg/logging"
	pkgoauth "telescope/pkg/oauth"
)

// Services holds all initialized components used by the application.
type Services struct {
	Store    *store.Store
	Sessions *session.Manager
	Metrics  *metrics.Metrics
	ESI      *esi.Client

	// SSO is nil when the configuration lacks credentials; SSOErr says why.
	SSO    *pkgoauth.Client
	SSOErr error
}

// missingCredentials stands in for the SSO client when it cannot be built.
type missingCredentials struct {
	err error
}

func (m missingCredentials) RefreshToken(context.Context, string) (*pkgoauth.Token, error) {
	return nil, m.err
}

// InitializeServices opens the store and builds the clients. The caller owns
// Services.Store and must close it.
func InitializeServices(cfg *config.Config) (*Services, error) {
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open character cache at %s: %w", cfg.DatabasePath, err)
	}

	m := metrics.New()
	svc := &Services{
		Store:   st,
		Metrics: m,
		ESI: esi.NewClient(cfg.UserAgent,
			esi.WithBaseURL(cfg.ESI.BaseURL),
			esi.WithRateLimit(cfg.ESI.RequestsPerSecond),
		),
	}

	var refresher session.Refresher
	if err := cfg.ValidateCredentials(); err != nil {
		svc.SSOErr = err
		refresher = missingCredentials{err: err}
		logging.Warn("Services", "SSO client disabled: %v", err)
	} else {
		svc.SSO = pkgoauth.NewClient(pkgoauth.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			CallbackURL:  cfg.CallbackURL,
			Scopes:       cfg.Scopes,
			UserAgent:    cfg.UserAgent,
			AuthorizeURL: cfg.SSO.AuthorizeURL,
			TokenURL:     cfg.SSO.TokenURL,
		})
		refresher = svc.SSO
	}

	svc.Sessions = session.NewManager(st, refresher, session.WithMetrics(m))
	return svc, nil
}

// callbackConfig derives the listener settings from the registered callback URL.
func callbackConfig(cfg *config.Config, m *metrics.Metrics) (oauth.CallbackConfig, error) {
	port, err := cfg.CallbackPort()
	if err != nil {
		return oauth.CallbackConfig{}, err
	}
	u, err := url.Parse(cfg.CallbackURL)
	if err != nil {
		return oauth.CallbackConfig{}, fmt.Errorf("invalid callback URL: %w", err)
	}

	host := oauth.DefaultCallbackHost
	if ip := net.ParseIP(u.Hostname()); ip != nil {
		host = ip.String()
	}

	return oauth.CallbackConfig{
		Host:    host,
		Port:    port,
		Path:    cfg.CallbackPath(),
		Metrics: m,
	}, nil
}

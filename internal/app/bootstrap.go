package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"telescope/internal/config"
	"telescope/internal/oauth"
	"telescope/internal/store"
	"telescope/pkg/logging"
)

// Application represents the main application structure that bootstraps and
// runs telescope commands.
//
// Example usage:
//
//	cfg := app.NewConfig(logging.LevelInfo, false, "")
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	defer application.Close()
//	character, err := application.Login(ctx, app.LoginOptions{OpenBrowser: true})
type Application struct {
	config   *Config
	services *Services

	mu         sync.RWMutex
	characters []store.Character
}

// NewApplication creates and initializes a new application instance: logging,
// configuration, store, clients, then the eager load of characters and session.
func NewApplication(cfg *Config) (*Application, error) {
	var logOutput io.Writer = os.Stderr
	if cfg.LogOutput != nil {
		logOutput = cfg.LogOutput
	}
	logging.InitForCLI(cfg.LogLevel, logOutput, cfg.JSONLogs)

	if cfg.Telescope == nil {
		configPath := cfg.ConfigPath
		if configPath == "" {
			var err error
			if configPath, err = config.DefaultConfigDir(); err != nil {
				return nil, err
			}
		}
		telescopeCfg, err := config.LoadConfig(configPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration from %s", configPath)
			return nil, fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
		}
		cfg.Telescope = &telescopeCfg
	}

	services, err := InitializeServices(cfg.Telescope)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a := &Application{config: cfg, services: services}
	if err := a.load(context.Background()); err != nil {
		_ = services.Store.Close()
		return nil, err
	}
	return a, nil
}

func (a *Application) load(ctx context.Context) error {
	characters, err := a.services.Store.ReadCharacters(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to load cached characters: %w", err)
	}
	if err := a.services.Sessions.Load(ctx); err != nil {
		return err
	}

	a.mu.Lock()
	a.characters = characters
	a.mu.Unlock()

	logging.Debug("Bootstrap", "Loaded %d cached characters", len(characters))
	return nil
}

// Services exposes the initialized components.
func (a *Application) Services() *Services {
	return a.services
}

// LoginOptions tunes one login.
type LoginOptions struct {
	// Timeout overrides the configured login timeout when positive.
	Timeout time.Duration

	// OpenBrowser launches the system browser on the authorize URL.
	OpenBrowser bool

	// Notify receives the authorize URL before the listener starts waiting.
	Notify func(url string)
}

// Login runs an interactive SSO login and refreshes the character list.
func (a *Application) Login(ctx context.Context, opts LoginOptions) (*store.Character, error) {
	if a.services.SSO == nil {
		return nil, fmt.Errorf("login unavailable: %w", a.services.SSOErr)
	}

	cbCfg, err := callbackConfig(a.config.Telescope, a.services.Metrics)
	if err != nil {
		return nil, err
	}

	orchestratorCfg := oauth.OrchestratorConfig{
		Provider:   a.services.SSO,
		Directory:  a.services.ESI,
		Characters: a.services.Store,
		Sessions:   a.services.Sessions,
		Callback:   cbCfg,
		Notify:     opts.Notify,
		Metrics:    a.services.Metrics,
	}
	if opts.OpenBrowser {
		orchestratorCfg.OpenBrowser = oauth.OpenBrowser
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = a.config.Telescope.LoginTimeout
	}

	character, err := oauth.NewOrchestrator(orchestratorCfg).Login(ctx, timeout)
	if err != nil {
		return nil, err
	}
	if previous, ok := ownerChanged(a.Characters(), character); ok {
		logging.Warn("Login", "Character %d (%s) changed owner since its last login (was %s)", character.ID, character.Name, previous)
	}
	if err := a.reloadCharacters(ctx); err != nil {
		return nil, err
	}
	return character, nil
}

// ownerChanged reports whether a cached character with the same id was
// last seen under a different owner hash, and returns that hash.
func ownerChanged(cached []store.Character, c *store.Character) (string, bool) {
	if c == nil || c.Owner == "" {
		return "", false
	}
	for _, prev := range cached {
		if prev.ID == c.ID {
			return prev.Owner, prev.Owner != "" && prev.Owner != c.Owner
		}
	}
	return "", false
}

// Characters returns the in-memory character list.
func (a *Application) Characters() []store.Character {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]store.Character(nil), a.characters...)
}

// RemoveCharacters deletes characters from the cache and returns how many
// were removed.
func (a *Application) RemoveCharacters(ctx context.Context, ids []int64) (int64, error) {
	n, err := a.services.Store.RemoveCharacters(ctx, ids)
	if err != nil {
		return 0, err
	}
	return n, a.reloadCharacters(ctx)
}

func (a *Application) reloadCharacters(ctx context.Context) error {
	characters, err := a.services.Store.ReadCharacters(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to reload cached characters: %w", err)
	}
	a.mu.Lock()
	a.characters = characters
	a.mu.Unlock()
	return nil
}

// Logout forgets the SSO session. Cached characters are kept.
func (a *Application) Logout(ctx context.Context) error {
	return a.services.Sessions.Clear(ctx)
}

// Status summarizes the session and the cache.
type Status struct {
	Session       store.Session
	Valid         bool
	Characters    int
	SchemaVersion int
	DatabasePath  string
}

// Status reports the session state, refreshing it first when refresh is set.
func (a *Application) Status(ctx context.Context, refresh bool) (Status, error) {
	if refresh {
		if _, err := a.services.Sessions.EnsureValid(ctx); err != nil {
			return Status{}, err
		}
	}

	version, err := a.services.Store.SchemaVersion(ctx)
	if err != nil {
		return Status{}, err
	}

	a.mu.RLock()
	count := len(a.characters)
	a.mu.RUnlock()

	return Status{
		Session:       a.services.Sessions.Current(),
		Valid:         a.services.Sessions.IsValid(),
		Characters:    count,
		SchemaVersion: version,
		DatabasePath:  a.config.Telescope.DatabasePath,
	}, nil
}

// Close logs a metrics summary and closes the store.
func (a *Application) Close() error {
	if samples, err := a.services.Metrics.Snapshot(); err == nil {
		for _, s := range samples {
			if s.Value == 0 {
				continue
			}
			logging.Debug("Metrics", "%s %v = %g", s.Name, s.Labels, s.Value)
		}
	}
	return a.services.Store.Close()
}

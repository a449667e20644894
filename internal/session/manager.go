// Package session keeps the single SSO session of the application: it loads
// the persisted tokens, decides whether they may be used for privileged calls
// and refreshes them when stale.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"telescope/internal/metrics"
	"telescope/internal/store"
	"telescope/pkg/logging"
	"telescope/pkg/oauth"
)

// Store persists the session record.
type Store interface {
	ReadSession(ctx context.Context) (store.Session, error)
	WriteSession(ctx context.Context, session store.Session) error
	ClearSession(ctx context.Context) error
}

// Refresher exchanges a refresh token for a new token.
type Refresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (*oauth.Token, error)
}

// Manager owns the in-memory copy of the session and keeps it in sync with
// the store. It is safe for concurrent use.
type Manager struct {
	store     Store
	refresher Refresher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.RWMutex
	current store.Session

	refreshGroup singleflight.Group
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithMetrics records refresh results.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a Manager. Call Load to pick up a persisted session.
func NewManager(st Store, refresher Refresher, opts ...Option) *Manager {
	m := &Manager{
		store:     st,
		refresher: refresher,
		now:       time.Now,
		logger:    logging.For("Session"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load reads the persisted session into memory.
func (m *Manager) Load(ctx context.Context) error {
	s, err := m.store.ReadSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	m.logger.Debug("Session loaded", "present", !s.IsZero(), "expires_at", s.ExpiresAt)
	return nil
}

// Current returns a copy of the in-memory session.
func (m *Manager) Current() store.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// IsValid reports whether the in-memory session can be used right now.
func (m *Manager) IsValid() bool {
	return m.Current().ValidAt(m.now())
}

// Update stores a freshly issued token as the session. The expiration is the
// current time plus the provider-reported lifetime. A token without a refresh
// token keeps the previous one.
func (m *Manager) Update(ctx context.Context, token *oauth.Token) (store.Session, error) {
	if token == nil || token.AccessToken == "" {
		return store.Session{}, fmt.Errorf("cannot update session: empty access token")
	}

	now := m.now()
	next := store.Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if ttl := token.TTL(now); ttl > 0 {
		next.ExpiresAt = now.Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if next.RefreshToken == "" {
		next.RefreshToken = m.current.RefreshToken
	}
	if err := m.store.WriteSession(ctx, next); err != nil {
		return store.Session{}, fmt.Errorf("failed to persist session: %w", err)
	}
	m.current = next

	m.logger.Debug("Session updated", "expires_at", next.ExpiresAt)
	return next, nil
}

// Refresh exchanges the refresh token for a new access token and persists
// the result. Concurrent calls share a single exchange.
func (m *Manager) Refresh(ctx context.Context) (store.Session, error) {
	return m.do(func() (store.Session, error) {
		return m.refresh(ctx)
	})
}

// do runs fn in the refresh group so concurrent refreshes share one exchange.
func (m *Manager) do(fn func() (store.Session, error)) (store.Session, error) {
	v, err, shared := m.refreshGroup.Do("refresh", func() (interface{}, error) {
		return fn()
	})
	if shared {
		m.logger.Debug("Joined in-flight session refresh")
	}
	if err != nil {
		return store.Session{}, err
	}
	return v.(store.Session), nil
}

func (m *Manager) refresh(ctx context.Context) (store.Session, error) {
	refreshToken := m.Current().RefreshToken
	if refreshToken == "" {
		return store.Session{}, ErrNoSession
	}

	m.logger.Info("Refreshing session")
	token, err := m.refresher.RefreshToken(ctx, refreshToken)
	m.metrics.ObserveRefresh(err)
	if err != nil {
		m.logger.Warn("Session refresh failed", "error", err)
		return store.Session{}, &RefreshError{Err: err}
	}
	return m.Update(ctx, token)
}

// EnsureValid returns the session, refreshing it first when it is not valid.
// Validity is checked again inside the refresh group, so a caller that saw a
// stale session after another caller finished refreshing does not refresh it
// a second time.
func (m *Manager) EnsureValid(ctx context.Context) (store.Session, error) {
	if s := m.Current(); s.ValidAt(m.now()) {
		return s, nil
	}
	return m.do(func() (store.Session, error) {
		if s := m.Current(); s.ValidAt(m.now()) {
			return s, nil
		}
		return m.refresh(ctx)
	})
}

// Clear drops the session from memory and from the store.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	m.current = store.Session{}
	m.logger.Info("Session cleared")
	return nil
}

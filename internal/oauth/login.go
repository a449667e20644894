package oauth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"telescope/internal/metrics"
	"telescope/internal/store"
	"telescope/pkg/esi"
	"telescope/pkg/logging"
	pkgoauth "telescope/pkg/oauth"
)

// IdentityProvider is the SSO side of a login.
type IdentityProvider interface {
	AuthorizeURL() (*pkgoauth.AuthRequest, error)
	Authenticate(ctx context.Context, code, verifier string) (*pkgoauth.Claims, *pkgoauth.Token, error)
}

// Directory resolves character details after authentication.
type Directory interface {
	CharacterInfo(ctx context.Context, characterID int64) (*esi.CharacterInfo, error)
	CorporationName(ctx context.Context, corporationID int64) (string, error)
	AllianceName(ctx context.Context, allianceID int64) (string, error)
	Portrait(ctx context.Context, characterID int64) (*esi.Portrait, error)
	Location(ctx context.Context, characterID int64, accessToken string) (*esi.Location, error)
}

// CharacterWriter persists the logged-in character.
type CharacterWriter interface {
	WriteCharacter(ctx context.Context, c *store.Character) (int64, error)
}

// SessionManager takes the freshly issued token and vouches for it before
// privileged calls.
type SessionManager interface {
	Update(ctx context.Context, token *pkgoauth.Token) (store.Session, error)
	EnsureValid(ctx context.Context) (store.Session, error)
}

// OrchestratorConfig wires an Orchestrator.
type OrchestratorConfig struct {
	Provider   IdentityProvider
	Directory  Directory
	Characters CharacterWriter
	Sessions   SessionManager

	// Callback is the template for each attempt's listener.
	Callback CallbackConfig

	// OpenBrowser is called with the authorize URL. Nil skips it.
	OpenBrowser func(url string) error

	// Notify is called with the authorize URL before waiting, so the user
	// can open it by hand.
	Notify func(url string)

	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Now     func() time.Time
}

// Orchestrator runs login attempts. Attempts are independent; each one gets
// its own listener and delivery slot.
type Orchestrator struct {
	cfg OrchestratorConfig
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.Logger == nil {
		cfg.Logger = logging.For("Login")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Callback.Metrics == nil {
		cfg.Callback.Metrics = cfg.Metrics
	}
	return &Orchestrator{cfg: cfg}
}

// Login runs one interactive login and returns the cached character. A
// timeout of zero or less uses DefaultCallbackTimeout. The callback listener
// is stopped before Login returns.
func (o *Orchestrator) Login(ctx context.Context, timeout time.Duration) (*store.Character, error) {
	if timeout <= 0 {
		timeout = DefaultCallbackTimeout
	}

	attempt := uuid.NewString()
	logger := o.cfg.Logger.With("attempt", attempt)
	start := o.cfg.Now()

	logger.Info("Starting SSO login", "timeout", timeout)
	character, err := o.login(ctx, logger, attempt, timeout)

	o.cfg.Metrics.ObserveLogin(loginOutcome(err), o.cfg.Now().Sub(start))
	if err != nil {
		logger.Warn("SSO login failed", "error", err)
		return nil, err
	}
	logger.Info("SSO login complete", "character_id", character.ID, "name", character.Name)
	return character, nil
}

func (o *Orchestrator) login(ctx context.Context, logger *slog.Logger, attempt string, timeout time.Duration) (*store.Character, error) {
	req, err := o.cfg.Provider.AuthorizeURL()
	if err != nil {
		return nil, fmt.Errorf("failed to build authorize URL: %w", err)
	}

	result, err := o.awaitRedirect(ctx, logger, attempt, req, timeout)
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(result.State), []byte(req.State)) != 1 {
		logger.Warn("SSO state mismatch detected - possible CSRF attack")
		return nil, ErrStateMismatch
	}

	claims, token, err := o.cfg.Provider.Authenticate(ctx, result.Code, req.Verifier)
	if err != nil {
		return nil, &ExchangeError{Err: err}
	}
	characterID, err := claims.CharacterID()
	if err != nil {
		return nil, &ExchangeError{Err: err}
	}
	logger = logger.With("character_id", characterID)

	if _, err := o.cfg.Sessions.Update(ctx, token); err != nil {
		return nil, err
	}

	character, err := o.describe(ctx, logger, characterID, claims.Name)
	if err != nil {
		return nil, err
	}
	character.Owner = claims.Owner

	if _, err := o.cfg.Characters.WriteCharacter(ctx, character); err != nil {
		return nil, fmt.Errorf("failed to cache character %d: %w", characterID, err)
	}
	return character, nil
}

// awaitRedirect runs the listener for one attempt and always stops it.
func (o *Orchestrator) awaitRedirect(ctx context.Context, logger *slog.Logger, attempt string, req *pkgoauth.AuthRequest, timeout time.Duration) (AuthorizationResult, error) {
	cbCfg := o.cfg.Callback
	if cbCfg.Logger == nil {
		cbCfg.Logger = logging.For("Callback")
	}
	cbCfg.Logger = cbCfg.Logger.With("attempt", attempt)
	listener := NewCallbackServer(cbCfg, NewDeliverySlot())
	if err := listener.Start(); err != nil {
		return AuthorizationResult{}, err
	}
	defer func() {
		if err := listener.Stop(); err != nil {
			logger.Warn("Callback listener did not stop cleanly", "error", err)
		}
	}()

	if o.cfg.Notify != nil {
		o.cfg.Notify(req.URL)
	}
	if o.cfg.OpenBrowser != nil {
		if err := o.cfg.OpenBrowser(req.URL); err != nil {
			logger.Warn("Could not open browser, open the login URL manually", "error", err)
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return listener.Wait(waitCtx)
}

// describe gathers the character sheet. Public info and the catalog names
// are required; portrait and location are best effort.
func (o *Orchestrator) describe(ctx context.Context, logger *slog.Logger, characterID int64, name string) (*store.Character, error) {
	info, err := o.cfg.Directory.CharacterInfo(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up character %d: %w", characterID, err)
	}
	if name == "" {
		name = info.Name
	}

	character := &store.Character{
		ID:        characterID,
		Name:      name,
		LastLogin: o.cfg.Now().UTC(),
	}

	g, gctx := errgroup.WithContext(ctx)

	if info.CorporationID != 0 {
		g.Go(func() error {
			corpName, err := o.cfg.Directory.CorporationName(gctx, info.CorporationID)
			if err != nil {
				return fmt.Errorf("failed to look up corporation %d: %w", info.CorporationID, err)
			}
			character.Organization = &store.Organization{ID: info.CorporationID, Name: corpName}
			return nil
		})
	}
	if info.AllianceID != 0 {
		g.Go(func() error {
			allianceName, err := o.cfg.Directory.AllianceName(gctx, info.AllianceID)
			if err != nil {
				return fmt.Errorf("failed to look up alliance %d: %w", info.AllianceID, err)
			}
			character.Affiliation = &store.Affiliation{ID: info.AllianceID, Name: allianceName}
			return nil
		})
	}
	g.Go(func() error {
		portrait, err := o.cfg.Directory.Portrait(gctx, characterID)
		if err != nil {
			logger.Warn("Portrait lookup failed", "error", err)
			o.cfg.Metrics.LookupFailed("portrait")
			return nil
		}
		character.Portrait = portrait.Px128
		return nil
	})
	g.Go(func() error {
		session, err := o.cfg.Sessions.EnsureValid(gctx)
		if err != nil {
			logger.Warn("Skipping location lookup without a valid session", "error", err)
			o.cfg.Metrics.LookupFailed("location")
			return nil
		}
		location, err := o.cfg.Directory.Location(gctx, characterID, session.AccessToken)
		if err != nil {
			logger.Warn("Location lookup failed", "error", err)
			o.cfg.Metrics.LookupFailed("location")
			return nil
		}
		character.Location = location.SolarSystemID
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return character, nil
}

func loginOutcome(err error) string {
	var exchangeErr *ExchangeError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrTimeout):
		return metrics.OutcomeTimeout
	case errors.Is(err, ErrStateMismatch):
		return metrics.OutcomeStateMismatch
	case errors.As(err, &exchangeErr):
		return metrics.OutcomeExchange
	default:
		return metrics.OutcomeError
	}
}

package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultAuthorizeURL is the EVE SSO v2 authorization endpoint.
	DefaultAuthorizeURL = "https://login.eveonline.com/v2/oauth/authorize"

	// DefaultTokenURL is the EVE SSO v2 token endpoint.
	// #nosec G101 -- OAuth endpoint URL, not a credential.
	DefaultTokenURL = "https://login.eveonline.com/v2/oauth/token"
)

// ErrNoRefreshToken is returned by RefreshToken when there is nothing to refresh with.
var ErrNoRefreshToken = errors.New("no refresh token available")

// Config describes the registered SSO application.
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Scopes       []string
	UserAgent    string

	// AuthorizeURL and TokenURL default to the EVE SSO v2 endpoints.
	AuthorizeURL string
	TokenURL     string
}

// AuthRequest is everything a caller needs to run one authorization attempt.
type AuthRequest struct {
	// URL is the browser-visitable authorization URL.
	URL string

	// State is the value the redirect must echo back.
	State string

	// Verifier is the PKCE code verifier to forward on exchange.
	Verifier string
}

// Client handles SSO protocol operations: authorization URL construction,
// code exchange and token refresh.
type Client struct {
	oauthConfig oauth2.Config
	httpClient  *http.Client
	logger      *slog.Logger
}

// ClientOption configures the OAuth client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new SSO client.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	authURL := cfg.AuthorizeURL
	if authURL == "" {
		authURL = DefaultAuthorizeURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	authStyle := oauth2.AuthStyleInParams
	if cfg.ClientSecret != "" {
		authStyle = oauth2.AuthStyleInHeader
	}

	c := &Client{
		oauthConfig: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: authStyle,
			},
		},
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if cfg.UserAgent != "" {
		c.httpClient = withUserAgent(c.httpClient, cfg.UserAgent)
	}

	return c
}

// RedirectURL returns the callback URL registered with the provider.
func (c *Client) RedirectURL() string {
	return c.oauthConfig.RedirectURL
}

// AuthorizeURL builds a fresh authorization URL with a new state and PKCE challenge.
func (c *Client) AuthorizeURL() (*AuthRequest, error) {
	state, err := GenerateState()
	if err != nil {
		return nil, err
	}

	pkce, err := GeneratePKCE()
	if err != nil {
		return nil, err
	}

	authURL := c.oauthConfig.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", pkce.CodeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", pkce.CodeChallengeMethod),
	)

	return &AuthRequest{
		URL:      authURL,
		State:    state,
		Verifier: pkce.CodeVerifier,
	}, nil
}

// Authenticate exchanges an authorization code for tokens and decodes the
// character claims carried by the access token. The PKCE verifier is only
// forwarded when non-empty.
func (c *Client) Authenticate(ctx context.Context, code, verifier string) (*Claims, *Token, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil, errors.New("authorization code is empty")
	}

	var opts []oauth2.AuthCodeOption
	if verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}

	raw, err := c.oauthConfig.Exchange(c.context(ctx), code, opts...)
	if err != nil {
		c.logger.Debug("Token exchange failed", "error", err)
		return nil, nil, fmt.Errorf("token exchange failed: %w", err)
	}

	claims, err := ParseClaims(raw.AccessToken)
	if err != nil {
		return nil, nil, err
	}

	c.logger.Debug("Token exchange succeeded",
		"subject", claims.Subject,
		"expires_in", raw.ExpiresIn)

	return claims, tokenFromOAuth2(raw), nil
}

// RefreshToken obtains a new access token using a refresh token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*Token, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	src := c.oauthConfig.TokenSource(c.context(ctx), &oauth2.Token{RefreshToken: refreshToken})
	raw, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	return tokenFromOAuth2(raw), nil
}

// context attaches the client's HTTP client for x/oauth2 to pick up.
func (c *Client) context(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// userAgentTransport sets the User-Agent header on every request.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}

func withUserAgent(httpClient *http.Client, userAgent string) *http.Client {
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	clone := *httpClient
	clone.Transport = &userAgentTransport{base: base, userAgent: userAgent}
	return &clone
}

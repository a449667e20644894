// Package esi is a small client for the EVE Swagger Interface endpoints
// telescope needs to describe a logged-in character.
package esi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public ESI endpoint.
	DefaultBaseURL = "https://esi.evetech.net/latest"

	// DefaultHTTPTimeout is the default timeout for ESI requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultRequestsPerSecond keeps telescope well below the ESI error budget.
	DefaultRequestsPerSecond = 10
)

// APIError is returned when ESI answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("esi %s: status %d: %s", e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("esi %s: status %d", e.Path, e.StatusCode)
}

// CharacterInfo is the public part of a character sheet.
type CharacterInfo struct {
	Name          string `json:"name"`
	CorporationID int64  `json:"corporation_id"`
	AllianceID    int64  `json:"alliance_id,omitempty"`
}

// Portrait lists the character portrait URLs by size.
type Portrait struct {
	Px64  string `json:"px64x64"`
	Px128 string `json:"px128x128"`
	Px256 string `json:"px256x256"`
	Px512 string `json:"px512x512"`
}

// Location is the character's current position.
type Location struct {
	SolarSystemID int64 `json:"solar_system_id"`
	StationID     int64 `json:"station_id,omitempty"`
}

type namedEntity struct {
	Name string `json:"name"`
}

// Client calls ESI with a shared rate limit.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// ClientOption configures the ESI client.
type ClientOption func(*Client)

// WithBaseURL overrides the ESI base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit sets the sustained request rate. Zero or negative disables limiting.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), int(perSecond)+1)
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates an ESI client. userAgent is sent with every request as
// ESI asks third-party applications to identify themselves.
func NewClient(userAgent string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), DefaultRequestsPerSecond),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CharacterInfo returns the public character sheet.
func (c *Client) CharacterInfo(ctx context.Context, characterID int64) (*CharacterInfo, error) {
	var info CharacterInfo
	if err := c.get(ctx, fmt.Sprintf("/characters/%d/", characterID), "", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// CorporationName returns the name of a corporation.
func (c *Client) CorporationName(ctx context.Context, corporationID int64) (string, error) {
	var corp namedEntity
	if err := c.get(ctx, fmt.Sprintf("/corporations/%d/", corporationID), "", &corp); err != nil {
		return "", err
	}
	return corp.Name, nil
}

// AllianceName returns the name of an alliance.
func (c *Client) AllianceName(ctx context.Context, allianceID int64) (string, error) {
	var ally namedEntity
	if err := c.get(ctx, fmt.Sprintf("/alliances/%d/", allianceID), "", &ally); err != nil {
		return "", err
	}
	return ally.Name, nil
}

// Portrait returns the portrait URLs of a character.
func (c *Client) Portrait(ctx context.Context, characterID int64) (*Portrait, error) {
	var p Portrait
	if err := c.get(ctx, fmt.Sprintf("/characters/%d/portrait/", characterID), "", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Location returns the character's current location. It is a privileged
// call: accessToken must carry the esi-location.read_location.v1 scope.
func (c *Client) Location(ctx context.Context, characterID int64, accessToken string) (*Location, error) {
	var loc Location
	if err := c.get(ctx, fmt.Sprintf("/characters/%d/location/", characterID), accessToken, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

func (c *Client) get(ctx context.Context, path, accessToken string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("esi %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("esi %s: failed to read response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &payload)
		c.logger.Debug("ESI request failed", "path", path, "status", resp.StatusCode)
		return &APIError{StatusCode: resp.StatusCode, Path: path, Message: payload.Error}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("esi %s: failed to parse response: %w", path, err)
	}
	return nil
}

package oauth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

const (
	// SubjectTypeCharacter is the subject type EVE SSO issues for character logins.
	SubjectTypeCharacter = "CHARACTER"

	// subjectTenant is the middle part of every EVE SSO subject.
	subjectTenant = "EVE"
)

// ErrInvalidSubject is returned when a subject claim cannot be mapped to a
// numeric character id.
var ErrInvalidSubject = errors.New("invalid subject claim")

// Token represents an OAuth access token with associated metadata.
type Token struct {
	// AccessToken is the bearer token used for authorization.
	AccessToken string `json:"access_token"`

	// TokenType is typically "Bearer".
	TokenType string `json:"token_type,omitempty"`

	// RefreshToken is used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresIn is the token lifetime in seconds as reported by the provider.
	ExpiresIn int64 `json:"expires_in,omitempty"`

	// ExpiresAt is the absolute expiry computed by the transport, if any.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// TTL returns the provider-reported lifetime of the token. When the provider
// did not report expires_in, the remaining time until ExpiresAt is used.
func (t *Token) TTL(now time.Time) time.Duration {
	if t.ExpiresIn > 0 {
		return time.Duration(t.ExpiresIn) * time.Second
	}
	if !t.ExpiresAt.IsZero() {
		return t.ExpiresAt.Sub(now)
	}
	return 0
}

// tokenFromOAuth2 converts a golang.org/x/oauth2 token.
func tokenFromOAuth2(t *oauth2.Token) *Token {
	return &Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		ExpiresIn:    t.ExpiresIn,
		ExpiresAt:    t.Expiry,
	}
}

// Claims holds the identity assertions EVE SSO embeds in its JWT access token.
type Claims struct {
	// Name is the character name.
	Name string `json:"name"`

	// Owner is the owner hash; it changes when the character is transferred.
	Owner string `json:"owner"`

	// Scopes granted to the token. EVE SSO sends a string for a single scope
	// and an array otherwise.
	Scopes jwt.ClaimStrings `json:"scp,omitempty"`

	jwt.RegisteredClaims
}

// SubjectParts splits a subject of the form "CHARACTER:EVE:<id>" into its
// type and id parts.
func (c *Claims) SubjectParts() (kind, id string, err error) {
	parts := strings.Split(c.Subject, ":")
	if len(parts) != 3 || parts[1] != subjectTenant {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSubject, c.Subject)
	}
	return parts[0], parts[2], nil
}

// CharacterID returns the numeric character id carried in the subject claim.
func (c *Claims) CharacterID() (int64, error) {
	kind, raw, err := c.SubjectParts()
	if err != nil {
		return 0, err
	}
	if kind != SubjectTypeCharacter {
		return 0, fmt.Errorf("%w: unexpected subject type %q", ErrInvalidSubject, kind)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: non-numeric character id %q", ErrInvalidSubject, raw)
	}
	return id, nil
}

// ParseClaims decodes the claims of a JWT access token.
//
// The signature is not verified: the token was received directly from the
// token endpoint over TLS and is only read to learn who logged in.
func ParseClaims(accessToken string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token claims: %w", err)
	}
	return claims, nil
}

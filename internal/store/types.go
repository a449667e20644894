package store

import "time"

// Organization is a catalog row for a character's corporation.
type Organization struct {
	ID   int64
	Name string
}

// Affiliation is a catalog row for a character's alliance.
type Affiliation struct {
	ID   int64
	Name string
}

// Character is a cached, previously authenticated character.
type Character struct {
	ID           int64
	Name         string
	LastLogin    time.Time
	Organization *Organization
	Affiliation  *Affiliation
	Portrait     string
	Location     int64

	// Owner is the SSO owner hash. It changes when the character is
	// transferred to another account.
	Owner string
}

// Session holds the SSO tokens. A zero ExpiresAt means no expiration is known.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// ValidAt reports whether the session can be used for privileged calls at
// the given instant: both tokens are present and the expiration is set and
// still in the future.
func (s Session) ValidAt(now time.Time) bool {
	if s.AccessToken == "" || s.RefreshToken == "" {
		return false
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	return now.Before(s.ExpiresAt)
}

// IsZero reports whether no session data is present at all.
func (s Session) IsZero() bool {
	return s.AccessToken == "" && s.RefreshToken == "" && s.ExpiresAt.IsZero()
}

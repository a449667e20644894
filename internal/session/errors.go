package session

import (
	"errors"
	"fmt"
)

// ErrNoSession is returned when a refresh is needed but no refresh token is stored.
var ErrNoSession = errors.New("no session: login required")

// RefreshError is returned when the provider rejects a token refresh.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh failed: %v", e.Err)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *RefreshError) Unwrap() error {
	return e.Err
}

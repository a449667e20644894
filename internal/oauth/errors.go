package oauth

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when no valid redirect arrived before the deadline.
	// The attempt can be retried.
	ErrTimeout = errors.New("login timed out waiting for the SSO redirect")

	// ErrStateMismatch is returned when the redirect carries a state that does
	// not match the one sent with the authorize request.
	ErrStateMismatch = errors.New("login state mismatch")

	// ErrListenerReused is returned when Start is called on a listener that
	// already left the Idle state.
	ErrListenerReused = errors.New("callback listener cannot be started twice")

	// ErrNotListening is returned by Wait on a listener that was never started
	// or has been stopped.
	ErrNotListening = errors.New("callback listener is not listening")
)

// BindError is returned when the callback address cannot be bound.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to start callback listener on %s: %v", e.Addr, e.Err)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *BindError) Unwrap() error {
	return e.Err
}

// ExchangeError is returned when the SSO provider rejects the authorization
// code or the issued token cannot be read.
type ExchangeError struct {
	Err error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("authorization code exchange failed: %v", e.Err)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *ExchangeError) Unwrap() error {
	return e.Err
}

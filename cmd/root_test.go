package cmd

import (
	"errors"
	"fmt"
	"testing"

	"telescope/internal/oauth"
	"telescope/internal/session"

	"github.com/stretchr/testify/assert"
)

func TestSetVersion(t *testing.T) {
	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", GetVersion())
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "telescope", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.True(t, rootCmd.SilenceUsage)

	for _, name := range []string{"login", "characters", "logout", "status", "version"} {
		found, _, err := rootCmd.Find([]string{name})
		if assert.NoError(t, err, name) {
			assert.Equal(t, name, found.Name())
		}
	}

	for _, flag := range []string{"config", "log-level", "log-json"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitCodeSuccess},
		{"generic", errors.New("boom"), ExitCodeError},
		{"timeout", fmt.Errorf("login: %w", oauth.ErrTimeout), ExitCodeTimeout},
		{"state mismatch", oauth.ErrStateMismatch, ExitCodeAuthFailed},
		{"exchange", &oauth.ExchangeError{Err: errors.New("invalid_grant")}, ExitCodeAuthFailed},
		{"refresh", &session.RefreshError{Err: errors.New("revoked")}, ExitCodeAuthFailed},
		{"no session", session.ErrNoSession, ExitCodeAuthFailed},
		{"bind", &oauth.BindError{Addr: "127.0.0.1:1", Err: errors.New("in use")}, ExitCodeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}

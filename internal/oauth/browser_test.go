package oauth

import (
	"errors"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenBrowser(t *testing.T) {
	var launched *exec.Cmd
	original := browserLauncher
	browserLauncher = func(cmd *exec.Cmd) error {
		launched = cmd
		return nil
	}
	defer func() { browserLauncher = original }()

	err := OpenBrowser("https://login.example.com/authorize")
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "darwin", "windows":
		assert.NoError(t, err)
		if assert.NotNil(t, launched) {
			assert.Contains(t, launched.Args, "https://login.example.com/authorize")
		}
	default:
		assert.ErrorContains(t, err, "unsupported platform")
	}
}

func TestOpenBrowser_LaunchFailure(t *testing.T) {
	original := browserLauncher
	browserLauncher = func(*exec.Cmd) error { return errors.New("no display") }
	defer func() { browserLauncher = original }()

	err := OpenBrowser("https://login.example.com")
	assert.Error(t, err)
}

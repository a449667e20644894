package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type mapEnv map[string]string

func (m mapEnv) Getenv(key string) string { return m[key] }

// Helper function to create a config file in dir
func writeConfigFile(t *testing.T, dir string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0o600))
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfigWithEnv(dir, mapEnv{})
	require.NoError(t, err)

	want := GetDefaultConfig()
	want.DatabasePath = filepath.Join(dir, databaseFileName)
	assert.Equal(t, want, cfg)
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, `
userAgent: telescope/test
clientId: file-client
callbackUrl: http://127.0.0.1:4500/cb
scopes: [publicData]
loginTimeout: 90s
esi:
  requestsPerSecond: 2.5
`)

	cfg, err := LoadConfigWithEnv(dir, mapEnv{})
	require.NoError(t, err)

	assert.Equal(t, "telescope/test", cfg.UserAgent)
	assert.Equal(t, "file-client", cfg.ClientID)
	assert.Equal(t, []string{"publicData"}, cfg.Scopes)
	assert.Equal(t, 90*time.Second, cfg.LoginTimeout)
	assert.Equal(t, 2.5, cfg.ESI.RequestsPerSecond)
	// Untouched nested values keep their defaults.
	assert.Equal(t, GetDefaultConfig().ESI.BaseURL, cfg.ESI.BaseURL)
	assert.Equal(t, GetDefaultConfig().SSO, cfg.SSO)

	port, err := cfg.CallbackPort()
	require.NoError(t, err)
	assert.Equal(t, 4500, port)
	assert.Equal(t, "/cb", cfg.CallbackPath())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "clientId: file-client\nclientSecret: file-secret\n")

	cfg, err := LoadConfigWithEnv(dir, mapEnv{
		EnvClientID:     "env-client",
		EnvClientSecret: "env-secret",
		EnvDatabasePath: "/tmp/other.db",
	})
	require.NoError(t, err)
	assert.Equal(t, "env-client", cfg.ClientID)
	assert.Equal(t, "env-secret", cfg.ClientSecret)
	assert.Equal(t, "/tmp/other.db", cfg.DatabasePath)
}

func TestLoadConfig_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	original := osUserHomeDir
	osUserHomeDir = func() (string, error) { return home, nil }
	defer func() { osUserHomeDir = original }()

	dir := t.TempDir()
	writeConfigFile(t, dir, "databasePath: ~/data/telescope.db\n")

	cfg, err := LoadConfigWithEnv(dir, mapEnv{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data", "telescope.db"), cfg.DatabasePath)

	defaultDir, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, userConfigDir), defaultDir)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "scopes: [unterminated\n")

	_, err := LoadConfigWithEnv(dir, mapEnv{})
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, filepath.Join(dir, configFileName), cfgErr.FilePath)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "callbackUrl: https://example.com/login\nloginTimeout: -1s\n")

	_, err := LoadConfigWithEnv(dir, mapEnv{})
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
	assert.Contains(t, err.Error(), "callbackUrl")
	assert.Contains(t, err.Error(), "loginTimeout")
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	cfg := GetDefaultConfig()
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "loginTimeout: 5m0s")

	var decoded Config
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, cfg, decoded)
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTOML = `
[smtp]
username = "relay"
password = "secret"
server = "smtp.example.org"
port = 2525
to = "ops@example.org"
from = "gate@example.org"

[app]
listen = "127.0.0.1:1827"
loop_interval_seconds = 3
rate_limit = 7
`

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadConfigFromFile(t *testing.T) {
	os.Setenv("CONFIG", writeTestConfig(t, testTOML))
	defer os.Unsetenv("CONFIG")

	cfg := &AppConfig{}
	err := LoadConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "relay", cfg.SMTP.Username)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "127.0.0.1:1827", cfg.App.Listen)
	assert.Equal(t, 3, cfg.App.LoopIntervalSeconds)
	assert.Equal(t, 7, cfg.App.RateLimit)
	// defaults fill in what the file omits
	assert.Equal(t, 300, cfg.App.QueueTTLSeconds)
	assert.Equal(t, 0, cfg.App.ErrorLogLimit)
	assert.False(t, cfg.App.StrictReload)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	os.Setenv("CONFIG", writeTestConfig(t, testTOML))
	os.Setenv("MAILGATE_RATE_LIMIT", "42")
	defer os.Unsetenv("CONFIG")
	defer os.Unsetenv("MAILGATE_RATE_LIMIT")

	cfg := &AppConfig{}
	err := LoadConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.App.RateLimit)
}

func TestLoadConfigLocalOverride(t *testing.T) {
	p := writeTestConfig(t, testTOML)
	local := strings.TrimSuffix(p, ".toml") + ".local.toml"
	require.NoError(t, os.WriteFile(local, []byte("[app]\nrate_limit = 99\n"), 0o644))
	os.Setenv("CONFIG", p)
	defer os.Unsetenv("CONFIG")

	cfg := &AppConfig{}
	err := LoadConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.App.RateLimit)
}

func TestLoadConfigMissingRequired(t *testing.T) {
	os.Setenv("CONFIG", writeTestConfig(t, "[smtp]\nusername = \"relay\"\n"))
	defer os.Unsetenv("CONFIG")

	cfg := &AppConfig{}
	err := LoadConfig(cfg)
	assert.Error(t, err)
}

func TestStringMasksPassword(t *testing.T) {
	cfg := &AppConfig{}
	cfg.SMTP.Password = "hunter2"
	cfg.SMTP.Username = "relay"
	out := cfg.String()
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "********")
}

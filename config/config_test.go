package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, `
api:
  endpoint: "https://scraper.example/api/scrape?numpages={numpages}"
  request_timeout: 5s
pages:
  max: 7
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://scraper.example/api/scrape?numpages={numpages}", cfg.API.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.API.RequestTimeout)
	assert.Equal(t, 7, cfg.Pages.Max)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "api: [unterminated")
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), logger)
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig().API.Endpoint, cfg.API.Endpoint)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GIVEAWAY_API_ENDPOINT", "/api/scrape")
	t.Setenv("GIVEAWAY_API_BASE_URL", "http://backend:9000")
	t.Setenv("GIVEAWAY_REQUEST_TIMEOUT", "0s")
	t.Setenv("GIVEAWAY_MAX_PAGES", "3")
	t.Setenv("GIVEAWAY_TG_TOKEN", " token \n")

	cfg := GetDefaultConfig()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "/api/scrape", cfg.API.Endpoint)
	assert.Equal(t, "http://backend:9000", cfg.API.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.API.RequestTimeout)
	assert.Equal(t, 3, cfg.Pages.Max)
	assert.Equal(t, "token", cfg.Telegram.Token)
}

func TestApplyEnvRejectsGarbage(t *testing.T) {
	t.Setenv("GIVEAWAY_MAX_PAGES", "many")
	require.Error(t, GetDefaultConfig().ApplyEnv())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty endpoint", func(c *Config) { c.API.Endpoint = "  " }, true},
		{"negative timeout", func(c *Config) { c.API.RequestTimeout = -time.Second }, true},
		{"zero max pages", func(c *Config) { c.Pages.Max = 0 }, true},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"json log format", func(c *Config) { c.Log.Format = "json" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsAllowedUser(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.True(t, cfg.IsAllowedUser(1))

	cfg.Telegram.AllowedUserIDs = []int64{42}
	assert.True(t, cfg.IsAllowedUser(42))
	assert.False(t, cfg.IsAllowedUser(1))
}

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_Overlay(t *testing.T) {
	dir := t.TempDir()
	path := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"server_url":        "https://app.example.com",
		"request_timeout":   "3s",
		"expiry_leeway":     int64(2 * time.Minute),
		"otel_enabled":      false,
		"otel_service_name": "sk-staging",
	})

	t.Run("overrides named keys only", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, path))

		assert.Equal(t, "https://app.example.com", cfg.ServerURL)
		assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
		assert.Equal(t, 2*time.Minute, cfg.ExpiryLeeway)
		assert.False(t, cfg.OTelEnabled)
		assert.Equal(t, "sk-staging", cfg.OTelServiceName)
		assert.Equal(t, 1.0, cfg.OTelSampleRatio, "absent key keeps default")
		assert.Equal(t, "/signed-out", cfg.SignedOutRoute, "absent key keeps default")
		assert.Equal(t, time.Hour, cfg.ExpiryWarning)
	})

	t.Run("empty path → no changes", func(t *testing.T) {
		cfg := &Config{ServerURL: "http://keep:1"}
		require.NoError(t, parseJson(cfg, ""))
		assert.Equal(t, "http://keep:1", cfg.ServerURL)
	})

	t.Run("missing file → error", func(t *testing.T) {
		cfg := &Config{}
		require.Error(t, parseJson(cfg, filepath.Join(dir, "nope.json")))
	})

	t.Run("invalid JSON → error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		cfg := &Config{}
		require.Error(t, parseJson(cfg, bad))
	})
}

func TestLoadConfig_EnvBeatsJSON(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"server_url": "https://from-json.example.com",
		"log_level":  "warn",
	})
	t.Setenv("SESSIONKEEPER_SERVER_URL", "https://from-env.example.com")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://from-env.example.com", cfg.ServerURL)
	assert.Equal(t, "warn", cfg.LogLevel)
}

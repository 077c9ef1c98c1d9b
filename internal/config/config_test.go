package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultThreshold(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3200, cfg.Audio.Threshold())
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Addr())
	require.NoError(t, cfg.Validate())
}

func TestLoadOverlay(t *testing.T) {
	t.Setenv("CALLBRIDGE_TEST_DSN", "postgres://u:p@localhost/cb")

	embedded := []byte(`
server:
  port: 5000
audio:
  frame_duration: 400ms
`)
	path := filepath.Join(t.TempDir(), "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 6000
audio:
  frame_duration: 200ms
database:
  driver: postgres
  dsn: ${CALLBRIDGE_TEST_DSN}
`), 0o600))

	cfg, err := Load(embedded, path)
	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.Server.Port)
	assert.Equal(t, 200*time.Millisecond, cfg.Audio.FrameDuration)
	assert.Equal(t, 1600, cfg.Audio.Threshold())
	assert.Equal(t, "postgres://u:p@localhost/cb", cfg.Database.DSN)
	// untouched sections keep their defaults
	assert.Equal(t, "/stream", cfg.Server.StreamPath)
	assert.Equal(t, 50*time.Millisecond, cfg.Agent.ResponsePacing)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"zero port":         func(c *Config) { c.Server.Port = 0 },
		"relative path":     func(c *Config) { c.Server.StreamPath = "stream" },
		"zero threshold":    func(c *Config) { c.Audio.FrameDuration = 0 },
		"empty queue":       func(c *Config) { c.Audio.QueueSize = 0 },
		"unknown driver":    func(c *Config) { c.Database.Driver = "mysql" },
		"postgres no dsn":   func(c *Config) { c.Database.Driver = "postgres" },
		"missing agent url": func(c *Config) { c.Agent.URL = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestResolveAPIKey(t *testing.T) {
	keychain := func() (string, error) { return "from-keychain", nil }
	broken := func() (string, error) { return "", errors.New("no keychain") }

	t.Run("env wins", func(t *testing.T) {
		t.Setenv(APIKeyEnv, "from-env")
		key, err := AgentConfig{APIKey: "from-file"}.ResolveAPIKey(keychain)
		require.NoError(t, err)
		assert.Equal(t, "from-env", key)
	})

	t.Run("config before keychain", func(t *testing.T) {
		t.Setenv(APIKeyEnv, "")
		key, err := AgentConfig{APIKey: "from-file"}.ResolveAPIKey(keychain)
		require.NoError(t, err)
		assert.Equal(t, "from-file", key)
	})

	t.Run("keychain fallback", func(t *testing.T) {
		t.Setenv(APIKeyEnv, "")
		key, err := AgentConfig{}.ResolveAPIKey(keychain)
		require.NoError(t, err)
		assert.Equal(t, "from-keychain", key)
	})

	t.Run("missing", func(t *testing.T) {
		t.Setenv(APIKeyEnv, "")
		_, err := AgentConfig{}.ResolveAPIKey(broken)
		assert.ErrorIs(t, err, ErrMissingCredential)
	})
}

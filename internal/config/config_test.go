package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, validator.New().Struct(Default()))
}

func TestLoad(t *testing.T) {
	t.Run("Overrides defaults", func(t *testing.T) {
		path := writeConfig(t, `
server:
  port: 9090
routing:
  maxExplored: 500
  timeout: 2s
  maxItineraries: 5
  nearestNodes: 4
  dumpFrontier: true
cache:
  enabled: false
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, 500, cfg.Routing.MaxExplored)
		assert.Equal(t, 2*time.Second, cfg.Routing.Timeout)
		assert.Equal(t, 5, cfg.Routing.MaxItineraries)
		assert.True(t, cfg.Routing.DumpFrontier)
		assert.False(t, cfg.Cache.Enabled)

		// untouched keys keep their defaults
		assert.Equal(t, 30.0, cfg.Routing.HeuristicSpeed)
		assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
		assert.Equal(t, 5*time.Second, cfg.Cache.LockTTL)
	})

	t.Run("Validation failure", func(t *testing.T) {
		path := writeConfig(t, "server:\n  port: -1\n")
		_, err := Load(path)
		assert.Error(t, err)

		path = writeConfig(t, "cache:\n  lockTTL: 0s\n")
		_, err = Load(path)
		assert.Error(t, err)
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		path := writeConfig(t, "server: [\n")
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("Missing file uses defaults", func(t *testing.T) {
		t.Setenv("PLANNER_CONFIG", filepath.Join(t.TempDir(), "absent.yml"))
		cfg, err := LoadFromEnv()
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("Reads the named file", func(t *testing.T) {
		t.Setenv("PLANNER_CONFIG", writeConfig(t, "routing:\n  maxWeight: 100\n"))
		cfg, err := LoadFromEnv()
		require.NoError(t, err)
		assert.Equal(t, 100.0, cfg.Routing.MaxWeight)
	})
}

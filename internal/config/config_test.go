package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
api:
  base_url: https://condo.example.com/api/v1
  refresh_skew: 1m
storage:
  backend: memory
log:
  level: debug
`), 0o600))
	t.Setenv("CONDOCTL_API_RATE_PER_SECOND", "5")
	t.Setenv("CONDOCTL_LOG_LEVEL", "warn")

	cfg, err := Load(viper.New(), file)
	require.NoError(t, err)
	require.Equal(t, "https://condo.example.com/api/v1", cfg.API.BaseURL)
	require.Equal(t, time.Minute, cfg.API.RefreshSkew)
	require.Equal(t, 30*time.Second, cfg.API.Timeout)
	require.Equal(t, 5.0, cfg.API.RatePerSecond)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, "memory", cfg.Storage.Options().Backend)
	require.Equal(t, file, cfg.File)
}

func TestMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{API: API{BaseURL: "http://x", Timeout: time.Second}, Storage: Storage{Backend: "memory"}}
	require.NoError(t, base.Validate())

	cases := map[string]func(*Config){
		"no base url":   func(c *Config) { c.API.BaseURL = " " },
		"zero timeout":  func(c *Config) { c.API.Timeout = 0 },
		"negative rate": func(c *Config) { c.API.RatePerSecond = -1 },
		"unknown":       func(c *Config) { c.Storage.Backend = "s3" },
		"postgres dsn":  func(c *Config) { c.Storage.Backend = "postgres" },
		"redis addr":    func(c *Config) { c.Storage.Backend = "redis" },
		"file path":     func(c *Config) { c.Storage.Backend = "file" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}

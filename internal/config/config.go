// Package config loads condoctl settings from a YAML file and CONDOCTL_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/CjlConsultoria/convivium2/internal/storage"
)

const EnvPrefix = "CONDOCTL"

type API struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	RateBurst     int           `mapstructure:"rate_burst"`
	RefreshSkew   time.Duration `mapstructure:"refresh_skew"`
}

type Storage struct {
	Backend   string `mapstructure:"backend"`
	Path      string `mapstructure:"path"`
	DSN       string `mapstructure:"dsn"`
	RedisAddr string `mapstructure:"redis_addr"`
}

// Options converts the section for storage.Open.
func (s Storage) Options() storage.Options {
	return storage.Options{Backend: s.Backend, Path: s.Path, DSN: s.DSN, RedisAddr: s.RedisAddr}
}

type Log struct {
	Level string `mapstructure:"level"`
}

// Mock configures the mock-server command. A zero RatePerSecond disables
// per-client rate limiting.
type Mock struct {
	Addr          string        `mapstructure:"addr"`
	AccessTTL     time.Duration `mapstructure:"access_ttl"`
	RefreshDelay  time.Duration `mapstructure:"refresh_delay"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	RateBurst     int           `mapstructure:"rate_burst"`
}

type Config struct {
	API     API     `mapstructure:"api"`
	Storage Storage `mapstructure:"storage"`
	Log     Log     `mapstructure:"log"`
	Mock    Mock    `mapstructure:"mock"`

	// File is the config file that was read, or "".
	File string `mapstructure:"-"`
}

// DefaultDir is $HOME/.config/condoctl.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "condoctl")
}

// SetDefaults registers every key so that environment overrides apply even
// without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8080/api/v1")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.rate_per_second", 0.0)
	v.SetDefault("api.rate_burst", 1)
	v.SetDefault("api.refresh_skew", 30*time.Second)
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.path", filepath.Join(DefaultDir(), "state.json"))
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.redis_addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("mock.addr", "127.0.0.1:8080")
	v.SetDefault("mock.access_ttl", 15*time.Minute)
	v.SetDefault("mock.refresh_delay", time.Duration(0))
	v.SetDefault("mock.rate_per_second", 0.0)
	v.SetDefault("mock.rate_burst", 20)
}

// Load reads file (or the default location when file is empty) and the
// environment into v and decodes the result. A missing default file is not
// an error; a missing explicit file is.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultDir())
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("config: api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return errors.New("config: api.timeout must be positive")
	}
	if c.API.RatePerSecond < 0 {
		return errors.New("config: api.rate_per_second must not be negative")
	}
	switch c.Storage.Backend {
	case "file":
		if c.Storage.Path == "" {
			return errors.New("config: storage.path is required for the file backend")
		}
	case "postgres":
		if c.Storage.DSN == "" {
			return errors.New("config: storage.dsn is required for the postgres backend")
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			return errors.New("config: storage.redis_addr is required for the redis backend")
		}
	case "memory":
	default:
		return fmt.Errorf("config: unknown storage.backend %q", c.Storage.Backend)
	}
	return nil
}

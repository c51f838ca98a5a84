// Package config holds the registry's runtime configuration.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. PETREG_PORT.
const EnvPrefix = "PETREG"

// MinVerifySecretLength is the shortest accepted HMAC secret.
const MinVerifySecretLength = 32

// Config is the full registry configuration.
type Config struct {
	Port         string          `mapstructure:"port"`
	DataDir      string          `mapstructure:"data_dir"`
	Store        StoreConfig     `mapstructure:"store"`
	VerifySecret string          `mapstructure:"verify_secret"`
	IDLength     int             `mapstructure:"id_length"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`
}

// StoreConfig selects the registration store backend.
type StoreConfig struct {
	Backend    string `mapstructure:"backend"`     // "jsonl" (default) or "sqlite"
	SQLitePath string `mapstructure:"sqlite_path"` // defaults to {data_dir}/registry.db
}

// RateLimitConfig bounds form submissions per client IP.
type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"` // 0 disables limiting
	Burst     int `mapstructure:"burst"`
}

// Store backends.
const (
	BackendJSONL  = "jsonl"
	BackendSQLite = "sqlite"
)

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:    "8080",
		DataDir: "./data",
		Store: StoreConfig{
			Backend: BackendJSONL,
		},
		IDLength: 12,
		RateLimit: RateLimitConfig{
			PerMinute: 10,
			Burst:     5,
		},
	}
}

// SetDefaults registers every default on v so env vars and config files
// can override them key by key.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("port", d.Port)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.sqlite_path", d.Store.SQLitePath)
	v.SetDefault("verify_secret", d.VerifySecret)
	v.SetDefault("id_length", d.IDLength)
	v.SetDefault("rate_limit.per_minute", d.RateLimit.PerMinute)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)
}

// Load reads configuration from the optional file at path and from
// PETREG_* environment variables, then validates the result. An empty path
// means environment and defaults only.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges. An empty verify secret is allowed; callers
// generate an ephemeral one.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	switch c.Store.Backend {
	case BackendJSONL, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("store.backend must be %q or %q, got %q", BackendJSONL, BackendSQLite, c.Store.Backend))
	}
	if c.VerifySecret != "" && len(c.VerifySecret) < MinVerifySecretLength {
		errs = append(errs, fmt.Errorf("verify_secret must be at least %d characters", MinVerifySecretLength))
	}
	if c.IDLength < 8 || c.IDLength > 64 {
		errs = append(errs, fmt.Errorf("id_length must be between 8 and 64, got %d", c.IDLength))
	}
	if c.RateLimit.PerMinute < 0 {
		errs = append(errs, errors.New("rate_limit.per_minute must not be negative"))
	}
	if c.RateLimit.PerMinute > 0 && c.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("rate_limit.burst must be at least 1"))
	}
	return errors.Join(errs...)
}

// LogPath is the JSONL registration log under DataDir.
func (c Config) LogPath() string { return filepath.Join(c.DataDir, "registrations.jsonl") }

// UploadDir holds stored avatars.
func (c Config) UploadDir() string { return filepath.Join(c.DataDir, "uploads") }

// ScrollDir holds rendered scrolls.
func (c Config) ScrollDir() string { return filepath.Join(c.DataDir, "scrolls") }

// SQLitePath returns the configured database path or the default under DataDir.
func (c Config) SQLitePath() string {
	if c.Store.SQLitePath != "" {
		return c.Store.SQLitePath
	}
	return filepath.Join(c.DataDir, "registry.db")
}

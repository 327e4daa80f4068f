// Package config loads the strata configuration from a YAML file and the
// STRATA_* environment variables.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "strata.yaml"

// Config is the process configuration shared by the CLI commands.
type Config struct {
	LogLevel     string      `mapstructure:"log_level" yaml:"log_level"`
	Debug        bool        `mapstructure:"debug" yaml:"debug"`
	HistoryLimit int         `mapstructure:"history_limit" yaml:"history_limit"`
	Store        StoreConfig `mapstructure:"store" yaml:"store"`
	HTTP         HTTPConfig  `mapstructure:"http" yaml:"http"`
}

// StoreConfig selects where documents are persisted.
type StoreConfig struct {
	// Backend is one of memory, file or redis.
	Backend string      `mapstructure:"backend" yaml:"backend"`
	Path    string      `mapstructure:"path" yaml:"path"`
	Format  string      `mapstructure:"format" yaml:"format"`
	Redis   RedisConfig `mapstructure:"redis" yaml:"redis"`
	// Encryption seals snapshots at rest when a key is set.
	Encryption EncryptionConfig `mapstructure:"encryption" yaml:"encryption"`
}

// EncryptionConfig holds base64 encoded AES-256 keys.
type EncryptionConfig struct {
	Key          string   `mapstructure:"key" yaml:"key"`
	FallbackKeys []string `mapstructure:"fallback_keys" yaml:"fallback_keys"`
}

// Enabled reports whether snapshots should be encrypted.
func (e EncryptionConfig) Enabled() bool { return e.Key != "" }

// Keys decodes the active key and the fallback keys.
func (e EncryptionConfig) Keys() ([]byte, [][]byte, error) {
	active, err := decodeKey(e.Key)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid config: encryption key: %w", err)
	}
	var fallback [][]byte
	for i, k := range e.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid config: fallback key %d: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("want 32 bytes, got %d", len(key))
	}
	return key, nil
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
	LockTTL  time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`
}

type HTTPConfig struct {
	Port    string `mapstructure:"port" yaml:"port"`
	Metrics bool   `mapstructure:"metrics" yaml:"metrics"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		LogLevel:     "info",
		HistoryLimit: 100,
		Store: StoreConfig{
			Backend: "file",
			Path:    ".strata/documents",
			Format:  "json",
			Redis: RedisConfig{
				Addr:    "localhost:6379",
				Prefix:  "strata:document:",
				LockTTL: 30 * time.Second,
			},
		},
		HTTP: HTTPConfig{
			Port:    "8080",
			Metrics: true,
		},
	}
}

// envKeys maps environment variables to configuration paths.
var envKeys = map[string][]string{
	"STRATA_LOG_LEVEL":      {"log_level"},
	"STRATA_DEBUG":          {"debug"},
	"STRATA_HISTORY_LIMIT":  {"history_limit"},
	"STRATA_STORE":          {"store", "backend"},
	"STRATA_STORE_PATH":     {"store", "path"},
	"STRATA_STORE_FORMAT":   {"store", "format"},
	"STRATA_REDIS_ADDR":     {"store", "redis", "addr"},
	"STRATA_REDIS_PASSWORD": {"store", "redis", "password"},
	"STRATA_REDIS_DB":       {"store", "redis", "db"},
	"STRATA_REDIS_PREFIX":   {"store", "redis", "prefix"},
	"STRATA_REDIS_TTL":      {"store", "redis", "ttl"},
	"STRATA_REDIS_LOCK_TTL": {"store", "redis", "lock_ttl"},
	"STRATA_ENCRYPTION_KEY": {"store", "encryption", "key"},
	"STRATA_HTTP_PORT":      {"http", "port"},
	"STRATA_HTTP_METRICS":   {"http", "metrics"},
}

// Load reads path (or DefaultFile when path is empty and the file exists) and
// applies the process environment on top.
func Load(path string) (Config, error) {
	return LoadFrom(path, os.Environ())
}

// LoadFrom is Load with an explicit environment, as returned by os.Environ.
func LoadFrom(path string, environ []string) (Config, error) {
	raw := make(map[string]any)

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if raw == nil {
			raw = make(map[string]any)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if keys, known := envKeys[name]; known {
			set(raw, keys, value)
		}
	}

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func set(m map[string]any, keys []string, value string) {
	for _, k := range keys[:len(keys)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[k] = next
		}
		m = next
	}
	m[keys[len(keys)-1]] = value
}

// Validate checks the values that cannot be caught by decoding.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("invalid config: unknown store backend %q", c.Store.Backend)
	}
	switch c.Store.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("invalid config: unknown store format %q", c.Store.Format)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Store.Encryption.Enabled() {
		if _, _, err := c.Store.Encryption.Keys(); err != nil {
			return err
		}
	} else if len(c.Store.Encryption.FallbackKeys) > 0 {
		return fmt.Errorf("invalid config: fallback_keys require an encryption key")
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("invalid config: history_limit must not be negative")
	}
	return nil
}

// Level returns the slog level, Debug when Debug is set.
func (c Config) Level() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid config: log_level: %w", err)
	}
	return level, nil
}

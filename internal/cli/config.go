package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/epitools/tracetab/pkg/errors"
)

// =============================================================================
// Configuration
// =============================================================================

// Cache backends selectable via config or flags.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

// Config holds the persistent tracetab configuration, loaded from a TOML
// file. All fields are optional; zero values fall back to defaults.
type Config struct {
	// Listen is the address the serve command binds to.
	Listen string `toml:"listen"`

	Cache CacheConfig `toml:"cache"`
	Store StoreConfig `toml:"store"`
}

// CacheConfig selects and configures the table cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis" or "none".
	Backend string `toml:"backend"`

	// Dir overrides the file cache directory.
	Dir string `toml:"dir"`

	// RedisURL is the redis connection URL (redis:// or rediss://).
	RedisURL string `toml:"redis_url"`
}

// StoreConfig configures the persistent result store.
type StoreConfig struct {
	// MongoURI is the MongoDB connection string. Empty disables the store.
	MongoURI string `toml:"mongo_uri"`

	// Database is the MongoDB database name.
	Database string `toml:"database"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Listen: ":8080",
		Cache:  CacheConfig{Backend: CacheBackendFile},
		Store:  StoreConfig{Database: "tracetab"},
	}
}

// LoadConfig reads a TOML configuration file, layering it over the defaults.
// A missing file at the default location is not an error; a missing file at
// an explicitly given path is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config: %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config: %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration for internally inconsistent values.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case "", CacheBackendFile, CacheBackendNone:
	case CacheBackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend %q requires redis_url", CacheBackendRedis)
		}
		if err := errors.ValidateURL(c.Cache.RedisURL); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend: %q", c.Cache.Backend)
	}
	if c.Store.MongoURI != "" {
		if err := errors.ValidateURL(c.Store.MongoURI); err != nil {
			return err
		}
	}
	return nil
}

// defaultConfigPath returns the XDG config file location, or "" when no
// home directory can be determined.
func defaultConfigPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

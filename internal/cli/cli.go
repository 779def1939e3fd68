// Package cli implements the tracetab command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/epitools/tracetab/pkg/buildinfo"
	"github.com/epitools/tracetab/pkg/cache"
	"github.com/epitools/tracetab/pkg/pipeline"
	"github.com/epitools/tracetab/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "tracetab"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "tracetab",
		Short:        "Tracetab flattens livestock contact traces into network tables",
		Long:         `Tracetab is a CLI tool for flattening epidemiological contact traces (directional, bidirectional, or whole collections) into flat, ordered network tables for analysis and export.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/tracetab/config.toml)")

	// Register all subcommands
	root.AddCommand(c.flattenCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.resultsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration from the --config flag or default path.
func (c *CLI) config() (Config, error) {
	return LoadConfig(c.configPath)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The store is nil unless
// the configuration names a MongoDB URI.
func (c *CLI) newRunner(ctx context.Context, cfg Config, noCache bool) (*pipeline.Runner, error) {
	cch, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	st, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cch, nil, st, c.Logger), nil
}

func newCache(ctx context.Context, cfg Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == CacheBackendNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Backend == CacheBackendRedis {
		return cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

func newStore(ctx context.Context, cfg Config) (store.Store, error) {
	if cfg.Store.MongoURI == "" {
		return nil, nil
	}
	return store.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.Database)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/tracetab/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatJSON}
	}
	return strings.Split(s, ",")
}

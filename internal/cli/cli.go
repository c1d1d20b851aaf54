// Package cli implements the artfit command-line interface.
//
// Commands resolve a print region (from the catalog or a JSON file), place
// an artwork in it and derive the print file, a canvas preview or a shop
// product from the placement:
//   - region: show a resolved print region and its print geometry
//   - place: place an artwork and print the resulting placement
//   - export: render the print file at 300 DPI
//   - preview: render the configurator canvas
//   - edit: interactive placement editor in the terminal
//   - submit: create or update a shop product
//   - serve: run the session HTTP API
//   - cache, config, completion: housekeeping
//
// All commands accept --verbose (-v) for debug logging and --config to
// point at a configuration file other than the default.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/artfit/artfit/pkg/cache"
	"github.com/artfit/artfit/pkg/config"
	"github.com/artfit/artfit/pkg/integrations/podapi"
	"github.com/artfit/artfit/pkg/observability"
	"github.com/artfit/artfit/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "artfit"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a CLI writing logs to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	l, err := c.loader()
	if err != nil {
		return nil, err
	}
	cfg, err := l.Load()
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "path", l.Path(), "exists", l.Exists())
	c.cfg = cfg
	return cfg, nil
}

// loader returns the loader for --config, or for the default path.
func (c *CLI) loader() (*config.Loader, error) {
	if c.configPath != "" {
		return config.NewLoaderWithPath(c.configPath), nil
	}
	return config.NewLoader()
}

// newCache opens the configured cache. noCache forces a NullCache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return rc, nil
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		if dir, err = cacheDir(); err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// newAPI returns a backend client using cache c.
func (c *CLI) newAPI(cc cache.Cache) (*podapi.Client, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	return podapi.NewClient(cfg.API.URL, cfg.API.ShopToken, cc, cfg.API.CatalogTTL.Duration), nil
}

// newRunner creates a submission runner sharing the API client's cache.
func (c *CLI) newRunner(api *podapi.Client, cc cache.Cache) *pipeline.Runner {
	return pipeline.NewRunner(api, cc, nil, c.Logger)
}

// registerHooks routes observability events to the debug log.
func (c *CLI) registerHooks() {
	observability.NewLogHooks(c.Logger).Register()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/artfit/).
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

// Package config loads artfit settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/artfit/config.toml (usually
// ~/.config/artfit/config.toml). Values may reference the environment as
// ${VAR}, and ARTFIT_API_URL, ARTFIT_SHOP_TOKEN and ARTFIT_REDIS_ADDR
// override the file. A missing file yields [Default].
//
//	[api]
//	url = "https://pod.example.com"
//	shop_token = "${SHOP_TOKEN}"
//
//	[export]
//	format = "webp"
//
//	[server]
//	addr = ":8080"
//	session_store = "redis"
//
//	[redis]
//	addr = "localhost:6379"
package config

import (
	"time"

	"github.com/artfit/artfit/pkg/bounds"
	"github.com/artfit/artfit/pkg/cache"
	"github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/export"
	"github.com/artfit/artfit/pkg/integrations/podapi"
	"github.com/artfit/artfit/pkg/preview"
	"github.com/artfit/artfit/pkg/session"
)

// Cache and session store backends.
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the complete artfit configuration.
type Config struct {
	API    APIConfig          `toml:"api"`
	Canvas preview.Options    `toml:"canvas"`
	Export export.Options     `toml:"export"`
	Bounds BoundsConfig       `toml:"bounds"`
	Cache  CacheConfig        `toml:"cache"`
	Server ServerConfig       `toml:"server"`
	Redis  cache.RedisOptions `toml:"redis"`
}

// APIConfig points at the print-on-demand backend.
type APIConfig struct {
	URL        string   `toml:"url"`
	ShopToken  string   `toml:"shop_token"`
	CatalogTTL Duration `toml:"catalog_ttl"`
}

// BoundsConfig selects how the out-of-bounds check treats rotation.
type BoundsConfig struct {
	Mode string `toml:"mode"`
}

// CacheConfig selects where API responses and print files are cached.
type CacheConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir,omitempty"`
}

// ServerConfig configures `artfit serve`.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	SessionTTL   Duration `toml:"session_ttl"`
	SessionStore string   `toml:"session_store"`
	SessionDir   string   `toml:"session_dir,omitempty"`
	// MaxUploadMB bounds multipart artwork uploads.
	MaxUploadMB int `toml:"max_upload_mb"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		API: APIConfig{
			URL:        podapi.DefaultBaseURL,
			CatalogTTL: Duration{cache.TTLCatalog},
		},
		Canvas: preview.Options{
			Width:      preview.DefaultWidth,
			Height:     preview.DefaultHeight,
			Background: preview.DefaultBackground,
		},
		Export: export.Options{
			Format:        export.FormatPNG,
			Interpolation: export.DefaultInterpolation,
		},
		Bounds: BoundsConfig{Mode: "axis-aligned"},
		Cache:  CacheConfig{Backend: BackendFile},
		Server: ServerConfig{
			Addr:         ":8080",
			SessionTTL:   Duration{session.DefaultTTL},
			SessionStore: BackendMemory,
			MaxUploadMB:  25,
		},
		Redis: cache.RedisOptions{Addr: "localhost:6379", Prefix: "artfit:"},
	}
}

// BoundsMode parses Bounds.Mode.
func (c *Config) BoundsMode() (bounds.Mode, error) {
	return bounds.ParseMode(c.Bounds.Mode)
}

// Validate rejects values no component could run with.
func (c *Config) Validate() error {
	if c.API.URL != "" {
		if err := errors.ValidateURL(c.API.URL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "api.url")
		}
	}
	if _, err := c.BoundsMode(); err != nil {
		return err
	}
	exp := c.Export
	if err := exp.ValidateAndSetDefaults(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case "", BackendNone, BackendFile, BackendRedis:
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid cache.backend %q (must be none, file or redis)", c.Cache.Backend)
	}
	switch c.Server.SessionStore {
	case "", BackendMemory, BackendFile, BackendRedis:
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid server.session_store %q (must be memory, file or redis)", c.Server.SessionStore)
	}
	if c.Server.MaxUploadMB < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server.max_upload_mb must not be negative")
	}
	return nil
}

// UsesRedis reports whether any component is configured to use Redis.
func (c *Config) UsesRedis() bool {
	return c.Cache.Backend == BackendRedis || c.Server.SessionStore == BackendRedis
}

// Duration is a time.Duration written as "15m" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid duration %q", text)
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

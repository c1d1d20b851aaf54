package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/artfit/artfit/pkg/bounds"
	"github.com/artfit/artfit/pkg/export"
)

func writeConfig(t *testing.T, body string) *Loader {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return NewLoaderWithPath(path)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Canvas.Width != 500 || cfg.Canvas.Background != "#f8f9fa" {
		t.Errorf("canvas = %+v", cfg.Canvas)
	}
	if cfg.Server.SessionTTL.Duration != 2*time.Hour {
		t.Errorf("session ttl = %v", cfg.Server.SessionTTL)
	}
	if mode, _ := cfg.BoundsMode(); mode != bounds.ModeAxisAligned {
		t.Errorf("bounds mode = %v", mode)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	cfg, err := NewLoaderWithPath(filepath.Join(t.TempDir(), "none.toml")).Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.URL != Default().API.URL {
		t.Errorf("API.URL = %q", cfg.API.URL)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_SHOP_TOKEN", "secret")
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvShopToken, "")
	t.Setenv(EnvRedisAddr, "")

	l := writeConfig(t, `
[api]
url = "https://pod.example.com"
shop_token = "${TEST_SHOP_TOKEN}"
catalog_ttl = "30m"

[export]
format = "webp"

[bounds]
mode = "rotated"

[server]
addr = ":9000"
session_store = "redis"
`)
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.URL != "https://pod.example.com" || cfg.API.ShopToken != "secret" {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.API.CatalogTTL.Duration != 30*time.Minute {
		t.Errorf("catalog_ttl = %v", cfg.API.CatalogTTL)
	}
	if cfg.Export.Format != export.FormatWebP {
		t.Errorf("export.format = %q", cfg.Export.Format)
	}
	// Unset keys keep their defaults.
	if cfg.Export.Interpolation != export.DefaultInterpolation || cfg.Canvas.Height != 500 {
		t.Errorf("defaults lost: %+v %+v", cfg.Export, cfg.Canvas)
	}
	if mode, _ := cfg.BoundsMode(); mode != bounds.ModeRotated {
		t.Errorf("bounds mode = %v", mode)
	}
	if !cfg.UsesRedis() {
		t.Error("UsesRedis() = false")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIURL, "https://override.example.com")
	t.Setenv(EnvShopToken, "env-token")
	t.Setenv(EnvRedisAddr, "redis:6380")

	cfg, err := writeConfig(t, "[api]\nurl = \"https://file.example.com\"\n").Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.URL != "https://override.example.com" || cfg.API.ShopToken != "env-token" {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.Redis.Addr != "redis:6380" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "[api\n", "parse"},
		{"unknown key", "[api]\ncolour = 1\n", "unknown key"},
		{"bad duration", "[server]\nsession_ttl = \"soon\"\n", "duration"},
		{"bad url", "[api]\nurl = \"ftp://x\"\n", "api.url"},
		{"bad format", "[export]\nformat = \"gif\"\n", "format"},
		{"bad bounds", "[bounds]\nmode = \"diagonal\"\n", "diagonal"},
		{"bad cache", "[cache]\nbackend = \"s3\"\n", "cache.backend"},
		{"bad store", "[server]\nsession_store = \"mongo\"\n", "session_store"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := writeConfig(t, tt.body).Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestSaveAndInit(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvShopToken, "")
	l := NewLoaderWithPath(filepath.Join(t.TempDir(), "nested", FileName))
	if l.Exists() {
		t.Fatal("file should not exist yet")
	}
	if err := l.Init(false); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := l.Init(false); err == nil {
		t.Error("second Init without force should fail")
	}

	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load after Init: %v", err)
	}
	cfg.API.ShopToken = "tok"
	cfg.Server.SessionTTL = Duration{45 * time.Minute}
	if err := l.Save(cfg); err != nil {
		t.Fatal(err)
	}
	got, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.API.ShopToken != "tok" || got.Server.SessionTTL.Duration != 45*time.Minute {
		t.Errorf("round trip lost values: %+v %+v", got.API, got.Server)
	}
	info, err := os.Stat(l.Path())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("ARTFIT_TEST_A", "alpha")
	got := expandEnvVars("a=${ARTFIT_TEST_A} b=${ARTFIT_TEST_UNSET_B}")
	if got != "a=alpha b=" {
		t.Errorf("expandEnvVars = %q", got)
	}
}

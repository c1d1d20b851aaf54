package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// DirName is the directory under the user config directory.
	DirName = "artfit"
	// FileName is the configuration file name.
	FileName = "config.toml"
)

// Environment overrides, applied after the file.
const (
	EnvAPIURL    = "ARTFIT_API_URL"
	EnvShopToken = "ARTFIT_SHOP_TOKEN"
	EnvRedisAddr = "ARTFIT_REDIS_ADDR"
)

// envVarPattern matches ${VAR_NAME}.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Loader reads and writes one configuration file.
type Loader struct {
	path string
}

// NewLoader returns a loader for the default path.
func NewLoader() (*Loader, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("get config dir: %w", err)
	}
	return &Loader{path: filepath.Join(dir, DirName, FileName)}, nil
}

// NewLoaderWithPath returns a loader for path.
func NewLoaderWithPath(path string) *Loader {
	return &Loader{path: path}
}

// Path returns the configuration file path.
func (l *Loader) Path() string { return l.path }

// Exists reports whether the file exists.
func (l *Loader) Exists() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

// Load reads the file over the defaults, expands ${VAR} references,
// applies environment overrides and validates the result.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(l.path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		md, err := toml.Decode(expandEnvVars(string(data)), cfg)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", l.path, err)
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return nil, fmt.Errorf("parse %s: unknown key %q", l.path, undec[0].String())
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}
	return cfg, nil
}

// Save writes cfg, creating the directory if needed.
func (l *Loader) Save(cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	// The file may hold a shop token.
	if err := os.WriteFile(l.path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Init writes the default configuration. It refuses to overwrite an
// existing file unless force is set.
func (l *Loader) Init(force bool) error {
	if l.Exists() && !force {
		return fmt.Errorf("config file already exists: %s", l.path)
	}
	return l.Save(Default())
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.API.URL = v
	}
	if v := os.Getenv(EnvShopToken); v != "" {
		cfg.API.ShopToken = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		cfg.Redis.Addr = v
	}
}

// expandEnvVars replaces ${VAR} with its value, or "" when unset.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(name)
	})
}

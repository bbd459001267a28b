// Package config loads the blockpress CLI configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/blockpress/config.toml
// unless --config names another path. Environment variables in the file
// are expanded before decoding. A missing file at the default location is
// not an error; every field has a default.
//
//	[render]
//	context = "email"
//	asset_base = "https://cdn.example.com"
//
//	[settings.email]
//	contentWidth = 600
//
//	[cache]
//	backend = "redis"
//	ttl = "12h"
//	namespace = "site-a"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//	metrics = true
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/errors"
	"github.com/matzehuels/blockpress/pkg/registry"
)

const appName = "blockpress"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the decoded configuration file.
type Config struct {
	Render   RenderConfig              `toml:"render"`
	Settings map[string]block.Settings `toml:"settings"`
	Cache    CacheConfig               `toml:"cache"`
	Server   ServerConfig              `toml:"server"`
}

// RenderConfig holds render defaults.
type RenderConfig struct {
	Context string `toml:"context"`
	// AssetBase is prepended to root-relative image and video sources.
	AssetBase string `toml:"asset_base"`
}

// CacheConfig selects and configures the render cache.
type CacheConfig struct {
	Backend string        `toml:"backend"`
	Dir     string        `toml:"dir"`
	TTL     time.Duration `toml:"ttl"`
	// Namespace scopes cache keys so several sites can share one backend.
	Namespace string      `toml:"namespace"`
	Redis     RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// ServerConfig configures `blockpress serve`.
type ServerConfig struct {
	Addr    string        `toml:"addr"`
	Metrics bool          `toml:"metrics"`
	Timeout time.Duration `toml:"timeout"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Render.Context == "" {
		c.Render.Context = registry.ContextEmail
	}
	if c.Settings == nil {
		c.Settings = map[string]block.Settings{}
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendFile
	}
	if c.Cache.Dir == "" {
		if dir, err := CacheDir(); err == nil {
			c.Cache.Dir = dir
		}
	}
	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = "localhost:6379"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = appName + ":"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}
}

// Validate checks field values after defaults are applied.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidSettings, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidSettings, "cache ttl must not be negative")
	}
	if c.Render.AssetBase != "" {
		if err := errors.ValidateURL(c.Render.AssetBase); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSettings, err, "render asset_base")
		}
	}
	if strings.ContainsAny(c.Cache.Namespace, " \t\n") {
		return errors.New(errors.ErrCodeInvalidSettings, "cache namespace must not contain whitespace")
	}
	if c.Server.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidSettings, "server timeout must not be negative")
	}
	return nil
}

// SettingsFor returns the configured settings for a render context. The
// result is never nil.
func (c *Config) SettingsFor(ctx string) block.Settings {
	if s, ok := c.Settings[ctx]; ok && s != nil {
		return s
	}
	return block.Settings{}
}

// Load reads the file at path. An empty path loads the default location,
// where a missing file yields the defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "configuration file not found: %s", path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if _, err := toml.Decode(os.ExpandEnv(string(data)), &c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSettings, err, "decode %s", path)
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Init writes an example configuration to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	example := Default()
	example.Cache.Dir = ""
	example.Settings = map[string]block.Settings{
		registry.ContextEmail: {"contentWidth": 600, "fontFamily": "Arial, Helvetica, sans-serif"},
		registry.ContextPage:  {"title": "Untitled", "lang": "en"},
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(example); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/blockpress/config.toml.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// CacheDir returns the file cache directory (~/.cache/blockpress/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

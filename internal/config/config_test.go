package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/blockpress/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("BP_REDIS", "cache.internal:6380")
	path := writeConfig(t, `
[render]
context = "page"
asset_base = "https://cdn.example.com"

[settings.email]
contentWidth = 640

[settings.page]
title = "Docs"

[cache]
backend = "redis"
ttl = "2h"
namespace = "docs"

[cache.redis]
addr = "${BP_REDIS}"

[server]
addr = ":9090"
metrics = true
`)

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Render.Context != "page" {
		t.Errorf("context = %q", c.Render.Context)
	}
	if got := c.SettingsFor("email").Int("contentWidth", 0); got != 640 {
		t.Errorf("email contentWidth = %d", got)
	}
	if got := c.SettingsFor("page").String("title", ""); got != "Docs" {
		t.Errorf("page title = %q", got)
	}
	if c.Cache.Backend != BackendRedis || c.Cache.TTL != 2*time.Hour {
		t.Errorf("cache = %+v", c.Cache)
	}
	if c.Render.AssetBase != "https://cdn.example.com" || c.Cache.Namespace != "docs" {
		t.Errorf("asset_base = %q, namespace = %q", c.Render.AssetBase, c.Cache.Namespace)
	}
	if c.Cache.Redis.Addr != "cache.internal:6380" {
		t.Errorf("redis addr = %q, want expanded env", c.Cache.Redis.Addr)
	}
	if c.Cache.Redis.Prefix != "blockpress:" {
		t.Errorf("redis prefix = %q", c.Cache.Redis.Prefix)
	}
	if c.Server.Addr != ":9090" || !c.Server.Metrics || c.Server.Timeout != 30*time.Second {
		t.Errorf("server = %+v", c.Server)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		code errors.Code
	}{
		{"missing explicit file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.toml") }, errors.ErrCodeFileNotFound},
		{"bad toml", func(t *testing.T) string { return writeConfig(t, "[render\n") }, errors.ErrCodeInvalidSettings},
		{"bad backend", func(t *testing.T) string { return writeConfig(t, "[cache]\nbackend = \"memcached\"\n") }, errors.ErrCodeInvalidSettings},
		{"negative ttl", func(t *testing.T) string { return writeConfig(t, "[cache]\nttl = \"-1h\"\n") }, errors.ErrCodeInvalidSettings},
		{"relative asset base", func(t *testing.T) string { return writeConfig(t, "[render]\nasset_base = \"/static\"\n") }, errors.ErrCodeInvalidSettings},
		{"ftp asset base", func(t *testing.T) string {
			return writeConfig(t, "[render]\nasset_base = \"ftp://files.example.com\"\n")
		}, errors.ErrCodeInvalidSettings},
		{"namespace with spaces", func(t *testing.T) string { return writeConfig(t, "[cache]\nnamespace = \"site a\"\n") }, errors.ErrCodeInvalidSettings},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoadDefaultLocationMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", "/tmp/bp-cache")

	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c.Render.Context != "email" || c.Cache.Backend != BackendFile {
		t.Errorf("defaults not applied: %+v", c)
	}
	if c.Cache.Dir != filepath.Join("/tmp/bp-cache", "blockpress") {
		t.Errorf("cache dir = %q", c.Cache.Dir)
	}
	if s := c.SettingsFor("page"); s == nil {
		t.Error("SettingsFor returned nil")
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := Init(path, false); err != nil {
		t.Fatal(err)
	}
	if err := Init(path, false); err == nil {
		t.Error("Init() over an existing file should fail without force")
	}
	if err := Init(path, true); err != nil {
		t.Errorf("Init(force) error = %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load(example) error = %v", err)
	}
	if c.SettingsFor("email").Int("contentWidth", 0) != 600 {
		t.Errorf("example settings = %v", c.Settings)
	}
}

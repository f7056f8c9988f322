package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/squaremap/pkg/cache"
	"github.com/matzehuels/squaremap/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
width = 1200.0
height = 800.0
depth = 2
style = "cushion"
exclude = ["node_modules/", "*.tmp"]

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/0"
ttl = "2h"

[server]
addr = ":9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Width != 1200 || cfg.Height != 800 || cfg.Depth != 2 {
		t.Errorf("frame = %gx%g depth %d", cfg.Width, cfg.Height, cfg.Depth)
	}
	if cfg.Style != "cushion" {
		t.Errorf("Style = %q", cfg.Style)
	}
	if cfg.Palette != "rgb" {
		t.Errorf("Palette = %q, want default rgb", cfg.Palette)
	}
	if len(cfg.Exclude) != 2 || cfg.Exclude[0] != "node_modules/" {
		t.Errorf("Exclude = %v", cfg.Exclude)
	}
	if cfg.Cache.Backend != cache.BackendRedis || cfg.Cache.TTL != 2*time.Hour {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
width: 300
height: 200
palette: depth
exclude: []
server:
  write_timeout: 5s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Width != 300 || cfg.Palette != "depth" {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Exclude) != 0 {
		t.Errorf("Exclude = %v, want empty", cfg.Exclude)
	}
	if cfg.Server.WriteTimeout != 5*time.Second {
		t.Errorf("WriteTimeout = %v", cfg.Server.WriteTimeout)
	}
	if cfg.Depth != 1 {
		t.Errorf("Depth = %d, want default 1", cfg.Depth)
	}
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("Load should return defaults for a missing file, got %v", err)
	}
	if cfg.Width != 600 || cfg.Height != 400 {
		t.Errorf("default frame = %gx%g, want 600x400", cfg.Width, cfg.Height)
	}
	if len(cfg.Exclude) == 0 {
		t.Error("default config should have exclusions")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		code    errors.Code
	}{
		{"bad toml", "c.toml", "width = ", errors.ErrCodeInvalidFormat},
		{"bad yaml", "c.yaml", "width: [", errors.ErrCodeInvalidFormat},
		{"extension", "c.ini", "width=1", errors.ErrCodeInvalidInput},
		{"style", "c.toml", `style = "sketchy"`, errors.ErrCodeInvalidStyle},
		{"palette", "c.toml", `palette = "neon"`, errors.ErrCodeInvalidPalette},
		{"dimensions", "c.toml", "width = 0.0", errors.ErrCodeInvalidArgument},
		{"depth", "c.toml", "depth = -1", errors.ErrCodeInvalidArgument},
		{"redis url", "c.toml", "[cache]\nbackend = \"redis\"", errors.ErrCodeInvalidInput},
		{"backend", "c.toml", "[cache]\nbackend = \"s3\"", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestCacheOptions(t *testing.T) {
	cfg := Default()
	if got := cfg.CacheOptions("/tmp/c").Dir; got != "/tmp/c" {
		t.Errorf("Dir = %q, want fallback", got)
	}
	cfg.Cache.Dir = "/data"
	if got := cfg.CacheOptions("/tmp/c").Dir; got != "/data" {
		t.Errorf("Dir = %q, want configured", got)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	got, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/xdg", "squaremap", "config.toml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}

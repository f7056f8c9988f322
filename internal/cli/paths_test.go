package cli

import (
	"path/filepath"
	"testing"

	"github.com/matzehuels/squaremap/pkg/config"
)

func TestCacheDir(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		xdg := t.TempDir()
		t.Setenv("XDG_CACHE_HOME", xdg)
		dir, err := cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error = %v", err)
		}
		if want := filepath.Join(xdg, appName); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})

	t.Run("home", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("XDG_CACHE_HOME", "")
		t.Setenv("HOME", home)
		dir, err := cacheDir()
		if err != nil {
			t.Fatalf("cacheDir() error = %v", err)
		}
		if want := filepath.Join(home, ".cache", appName); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})
}

func TestLocalCacheDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	c := &CLI{Config: config.Default()}
	dir, err := c.localCacheDir()
	if err != nil {
		t.Fatalf("localCacheDir() error = %v", err)
	}
	if want := filepath.Join(xdg, appName); dir != want {
		t.Errorf("localCacheDir() = %q, want %q", dir, want)
	}

	c.Config.Cache.Dir = "/srv/squaremap-cache"
	if dir, _ := c.localCacheDir(); dir != "/srv/squaremap-cache" {
		t.Errorf("localCacheDir() with configured dir = %q", dir)
	}
}

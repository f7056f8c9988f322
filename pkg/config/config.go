// Package config loads squaremap settings from a TOML or YAML file.
//
// A missing file is not an error: [Load] returns [Default]. Values present
// in the file override the defaults field by field.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/squaremap/pkg/cache"
	"github.com/matzehuels/squaremap/pkg/errors"
	"github.com/matzehuels/squaremap/pkg/render/styles"
	"github.com/matzehuels/squaremap/pkg/scan"
	"github.com/matzehuels/squaremap/pkg/treemap"
)

const appName = "squaremap"

// Config holds all file-configurable settings.
type Config struct {
	Width   float64  `toml:"width" yaml:"width"`
	Height  float64  `toml:"height" yaml:"height"`
	Depth   int      `toml:"depth" yaml:"depth"`
	MinArea float64  `toml:"min_area" yaml:"min_area"`
	Style   string   `toml:"style" yaml:"style"`
	Palette string   `toml:"palette" yaml:"palette"`
	Exclude []string `toml:"exclude" yaml:"exclude"`
	Cache   Cache    `toml:"cache" yaml:"cache"`
	Server  Server   `toml:"server" yaml:"server"`
}

// Cache selects the cache backend.
type Cache struct {
	Backend         string        `toml:"backend" yaml:"backend"`
	Dir             string        `toml:"dir" yaml:"dir"`
	RedisURL        string        `toml:"redis_url" yaml:"redis_url"`
	MongoURI        string        `toml:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase   string        `toml:"mongo_database" yaml:"mongo_database"`
	MongoCollection string        `toml:"mongo_collection" yaml:"mongo_collection"`
	TTL             time.Duration `toml:"ttl" yaml:"ttl"`
}

// Server configures the HTTP service.
type Server struct {
	Addr         string        `toml:"addr" yaml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout" yaml:"write_timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Width:   600,
		Height:  400,
		Depth:   1,
		Style:   styles.DefaultName,
		Palette: treemap.DefaultPaletteName,
		Exclude: slices.Clone(scan.DefaultExclude),
		Cache: Cache{
			Backend: cache.BackendFile,
			TTL:     cache.TTLLayout,
		},
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
	}
}

// Load reads the file at path. The format follows the extension: .toml, or
// .yaml/.yml. A missing file yields Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported config format %q (use .toml or .yaml)", ext)
	}

	if cfg.Exclude == nil {
		cfg.Exclude = []string{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	if err := errors.ValidateDimensions(c.Width, c.Height); err != nil {
		return err
	}
	if c.Depth < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "depth cannot be negative: %d", c.Depth)
	}
	if c.MinArea < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "min_area cannot be negative: %g", c.MinArea)
	}
	if _, ok := styles.Lookup(c.Style); !ok {
		return errors.New(errors.ErrCodeInvalidStyle, "unknown style %q (available: %s)",
			c.Style, strings.Join(styles.Names(), ", "))
	}
	if _, err := treemap.LookupPalette(c.Palette); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendNone:
	case cache.BackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.redis_url is required for the redis backend")
		}
	case cache.BackendMongo:
		if c.Cache.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "cache.ttl cannot be negative")
	}
	return nil
}

// CacheOptions converts the cache section for [cache.Open]. An empty
// directory falls back to fallbackDir.
func (c *Config) CacheOptions(fallbackDir string) cache.Options {
	dir := c.Cache.Dir
	if dir == "" {
		dir = fallbackDir
	}
	return cache.Options{
		Backend:         c.Cache.Backend,
		Dir:             dir,
		RedisURL:        c.Cache.RedisURL,
		MongoURI:        c.Cache.MongoURI,
		MongoDatabase:   c.Cache.MongoDatabase,
		MongoCollection: c.Cache.MongoCollection,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/squaremap/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

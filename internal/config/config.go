// Package config loads the drawkit configuration file.
//
// The file lives at $XDG_CONFIG_HOME/drawkit/config.toml, falling back to
// ~/.config/drawkit/config.toml. A missing file yields [Default].
//
//	compression = "preserve"
//	max_decompressed_size = 67108864
//	pretty = false
//
//	[cache]
//	backend = "file"
//	ttl = "168h"
//
//	[server]
//	addr = ":8080"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/drawkit/pkg/cache"
	"github.com/matzehuels/drawkit/pkg/compress"
	drawio "github.com/matzehuels/drawkit/pkg/io"
)

const appName = "drawkit"

// Config is the decoded configuration file.
type Config struct {
	Compression         string `toml:"compression"`
	MaxDecompressedSize int64  `toml:"max_decompressed_size"`
	Pretty              bool   `toml:"pretty"`

	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`
}

// Cache configures the artifact cache.
type Cache struct {
	Backend         string `toml:"backend"` // file, redis, mongo or none
	Dir             string `toml:"dir,omitempty"`
	RedisAddr       string `toml:"redis_addr,omitempty"`
	RedisDB         int    `toml:"redis_db,omitempty"`
	RedisPrefix     string `toml:"redis_prefix,omitempty"`
	MongoURI        string `toml:"mongo_uri,omitempty"`
	MongoDatabase   string `toml:"mongo_database,omitempty"`
	MongoCollection string `toml:"mongo_collection,omitempty"`
	TTL             string `toml:"ttl,omitempty"`
}

// Server configures `drawkit serve`.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Compression:         drawio.CompressionPreserve.String(),
		MaxDecompressedSize: compress.DefaultMaxDecompressedSize,
		Cache: Cache{
			Backend:     cache.BackendFile,
			RedisPrefix: appName + ":",
		},
		Server: Server{Addr: ":8080"},
	}
}

// Dir returns the configuration directory.
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// Path returns the configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the configuration file at the default path.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the configuration at path. Keys absent from the file keep
// their defaults; a missing file is not an error.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Validate reports values that cannot be used.
func (c Config) Validate() error {
	if _, err := drawio.ParseCompression(c.Compression); err != nil {
		return fmt.Errorf("compression: must be preserve, always or never, got %q", c.Compression)
	}
	if c.MaxDecompressedSize < 0 {
		return fmt.Errorf("max_decompressed_size must not be negative")
	}
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendMongo, cache.BackendNone:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q", c.Cache.Backend)
	}
	if _, err := c.Cache.TTLDuration(); err != nil {
		return err
	}
	return nil
}

// TTLDuration parses the ttl setting. Empty means zero, which leaves each
// entry kind at its default.
func (c Cache) TTLDuration() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("cache.ttl: invalid duration %q", c.TTL)
	}
	return d, nil
}

// CacheConfig maps the cache section onto [cache.Config]. defaultDir is
// used when no directory is configured. An invalid ttl is ignored; Load
// rejects it earlier.
func (c Config) CacheConfig(defaultDir string) cache.Config {
	ttl, _ := c.Cache.TTLDuration()
	dir := c.Cache.Dir
	if dir == "" {
		dir = defaultDir
	}
	return cache.Config{
		Backend: c.Cache.Backend,
		Dir:     dir,
		Redis: cache.RedisOptions{
			Addr:   c.Cache.RedisAddr,
			DB:     c.Cache.RedisDB,
			Prefix: c.Cache.RedisPrefix,
		},
		Mongo: cache.MongoOptions{
			URI:        c.Cache.MongoURI,
			Database:   c.Cache.MongoDatabase,
			Collection: c.Cache.MongoCollection,
		},
		TTL: ttl,
	}
}

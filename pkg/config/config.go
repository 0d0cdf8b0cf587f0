// Package config loads burrow's settings from TOML or YAML files and the
// environment.
//
// Precedence, lowest first: built-in defaults, the config file, environment
// variables, command-line flags (applied by the CLI).
//
// Example config.toml:
//
//	[search]
//	memoize = true
//	timeout = "2m"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[[catalog]]
//	symbol = "A"
//	weight = 1
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/burrow/pkg/burrow"
	errs "github.com/matzehuels/burrow/pkg/errors"
)

// AppName names the config and cache directories.
const AppName = "burrow"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvRedisAddr = "BURROW_REDIS_ADDR"
	EnvMongoURI  = "BURROW_MONGO_URI"
	EnvCacheDir  = "BURROW_CACHE_DIR"
	EnvAddr      = "BURROW_ADDR"
)

// Config is the complete configuration.
type Config struct {
	Catalog []Class       `toml:"catalog" yaml:"catalog" json:"catalog"`
	Search  SearchConfig  `toml:"search" yaml:"search" json:"search"`
	Cache   CacheConfig   `toml:"cache" yaml:"cache" json:"cache"`
	Server  ServerConfig  `toml:"server" yaml:"server" json:"server"`
	History HistoryConfig `toml:"history" yaml:"history" json:"history"`
}

// Class is one catalog entry. Symbol must be a single character.
type Class struct {
	Symbol string `toml:"symbol" yaml:"symbol" json:"symbol"`
	Weight int    `toml:"weight" yaml:"weight" json:"weight"`
}

// SearchConfig holds defaults for solve requests.
type SearchConfig struct {
	Memoize bool          `toml:"memoize" yaml:"memoize" json:"memoize"`
	Timeout time.Duration `toml:"timeout" yaml:"timeout" json:"timeout"`
	Bound   int           `toml:"bound" yaml:"bound" json:"bound"`
}

// CacheConfig selects and configures the solution cache.
type CacheConfig struct {
	Backend       string        `toml:"backend" yaml:"backend" json:"backend"`
	Dir           string        `toml:"dir" yaml:"dir" json:"dir"`
	RedisAddr     string        `toml:"redis_addr" yaml:"redis_addr" json:"redis_addr"`
	RedisPassword string        `toml:"redis_password" yaml:"redis_password" json:"-"`
	RedisDB       int           `toml:"redis_db" yaml:"redis_db" json:"redis_db"`
	Prefix        string        `toml:"prefix" yaml:"prefix" json:"prefix"`
	TTL           time.Duration `toml:"ttl" yaml:"ttl" json:"ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `toml:"addr" yaml:"addr" json:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout" yaml:"read_timeout" json:"read_timeout"`
	SolveTimeout time.Duration `toml:"solve_timeout" yaml:"solve_timeout" json:"solve_timeout"`
}

// HistoryConfig selects the run history store. An empty MongoURI keeps runs
// in memory.
type HistoryConfig struct {
	MongoURI string `toml:"mongo_uri" yaml:"mongo_uri" json:"-"`
	Database string `toml:"database" yaml:"database" json:"database"`
	MaxRuns  int    `toml:"max_runs" yaml:"max_runs" json:"max_runs"`
}

// Default returns the built-in configuration.
func Default() Config {
	cat := burrow.DefaultCatalog()
	classes := make([]Class, len(cat))
	for i, info := range cat {
		classes[i] = Class{Symbol: string(info.Symbol), Weight: info.Weight}
	}
	return Config{
		Catalog: classes,
		Search: SearchConfig{
			Memoize: true,
			Timeout: 5 * time.Minute,
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			Prefix:  "burrow:",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			SolveTimeout: time.Minute,
		},
		History: HistoryConfig{
			Database: "burrow",
			MaxRuns:  1000,
		},
	}
}

// Load reads the file at path on top of the defaults, applies environment
// overrides and validates the result. The format is chosen by extension:
// .toml, .yaml or .yml.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := decode(path, data, &cfg); err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDefault loads the file at DefaultPath if it exists and falls back to
// the defaults (plus environment) otherwise.
func LoadDefault() (Config, string, error) {
	for _, path := range candidatePaths() {
		if _, err := os.Stat(path); err == nil {
			cfg, err := Load(path)
			return cfg, path, err
		}
	}
	cfg := Default()
	cfg.ApplyEnv(os.Getenv)
	return cfg, "", cfg.Validate()
}

func decode(path string, data []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return errs.New(errs.ErrCodeInvalidConfig, "unknown key %q in %s", undecoded[0].String(), path)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unsupported config format %q (want .toml, .yaml or .yml)", ext)
	}
	return nil
}

// Save writes cfg to path in the format implied by its extension.
func (c Config) Save(path string) error {
	var buf bytes.Buffer
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return err
		}
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unsupported config format %q", ext)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}

// ApplyEnv overrides fields from environment variables looked up by getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
		if c.Cache.Backend == BackendFile {
			c.Cache.Backend = BackendRedis
		}
	}
	if v := getenv(EnvCacheDir); v != "" {
		c.Cache.Dir = v
	}
	if v := getenv(EnvMongoURI); v != "" {
		c.History.MongoURI = v
	}
	if v := getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
}

// Validate reports the first invalid setting as an ErrCodeInvalidConfig error.
func (c Config) Validate() error {
	if _, err := c.BurrowCatalog(); err != nil {
		return err
	}
	if c.Search.Timeout < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "search.timeout must not be negative")
	}
	if c.Search.Bound < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "search.bound must not be negative")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if err := errs.ValidateRedisAddr(c.Cache.RedisAddr); err != nil {
			return err
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if c.History.MongoURI != "" {
		if err := errs.ValidateMongoURI(c.History.MongoURI); err != nil {
			return err
		}
	}
	return nil
}

// BurrowCatalog converts the configured classes into a validated catalog.
func (c Config) BurrowCatalog() (burrow.Catalog, error) {
	if len(c.Catalog) == 0 {
		return burrow.DefaultCatalog(), nil
	}
	cat := make(burrow.Catalog, len(c.Catalog))
	for i, cl := range c.Catalog {
		if utf8.RuneCountInString(cl.Symbol) != 1 {
			return nil, errs.New(errs.ErrCodeInvalidConfig, "catalog[%d].symbol must be a single character, got %q", i, cl.Symbol)
		}
		r, _ := utf8.DecodeRuneInString(cl.Symbol)
		cat[i] = burrow.ClassInfo{Symbol: r, Weight: cl.Weight}
	}
	if err := cat.Validate(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "invalid catalog")
	}
	return cat, nil
}

// CacheDir resolves the file cache directory: the configured one, else
// $XDG_CACHE_HOME/burrow, else ~/.cache/burrow.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// DefaultPath returns where LoadDefault looks first:
// $XDG_CONFIG_HOME/burrow/config.toml, else ~/.config/burrow/config.toml.
func DefaultPath() string {
	return candidatePaths()[0]
}

func candidatePaths() []string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dir = filepath.Join(home, ".config")
	}
	dir = filepath.Join(dir, AppName)
	return []string{
		filepath.Join(dir, "config.toml"),
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.yml"),
	}
}

// Package config loads gridpath settings from TOML files.
//
// A file only needs the keys it overrides; everything else keeps the value
// from [Default]:
//
//	[grid]
//	columns = 30
//	rows = 20
//	edge_probability = 0.6
//	seed = 42
//
//	[solver]
//	algorithm = "astar"
//	heuristic = "euclidean"
//	step_delay = "50ms"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
//	session_ttl = "30m"
package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/grid"
	"github.com/matzehuels/gridpath/pkg/heuristic"
	"github.com/matzehuels/gridpath/pkg/search"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Duration is a time.Duration written as a string ("50ms", "24h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the complete gridpath configuration.
type Config struct {
	Grid   grid.Config  `toml:"grid"`
	Solver SolverConfig `toml:"solver"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// SolverConfig selects the search algorithm.
type SolverConfig struct {
	Algorithm string   `toml:"algorithm"`
	Heuristic string   `toml:"heuristic"`
	StepDelay Duration `toml:"step_delay"`
}

// CacheConfig selects where solve results are cached.
type CacheConfig struct {
	Backend string `toml:"backend"`
	// Dir overrides the file cache directory.
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	TTL       Duration `toml:"ttl"`
}

// ServerConfig configures the HTTP stepping API.
type ServerConfig struct {
	Addr       string   `toml:"addr"`
	SessionTTL Duration `toml:"session_ttl"`
	MaxRuns    int      `toml:"max_runs"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Grid: grid.DefaultConfig(),
		Solver: SolverConfig{
			Algorithm: "astar",
			Heuristic: "euclidean",
			StepDelay: Duration{50 * time.Millisecond},
		},
		Cache: CacheConfig{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
			TTL:       Duration{24 * time.Hour},
		},
		Server: ServerConfig{
			Addr:       ":8080",
			SessionTTL: Duration{30 * time.Minute},
			MaxRuns:    1000,
		},
	}
}

// Load reads path on top of [Default] and validates the result. An empty
// path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML data onto cfg and validates it. Unknown keys are errors.
func Parse(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg.Validate()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	if _, err := c.Search(); err != nil {
		return err
	}
	if c.Solver.StepDelay.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "solver.step_delay must be non-negative")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must be non-negative")
	}
	if c.Server.SessionTTL.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.session_ttl must be positive")
	}
	if c.Server.MaxRuns < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_runs must be at least 1")
	}
	return nil
}

// Search converts the solver section into a search configuration.
func (c Config) Search() (search.Config, error) {
	alg, err := search.ParseAlgorithm(c.Solver.Algorithm)
	if err != nil {
		return search.Config{}, err
	}
	h, err := heuristic.ParseType(c.Solver.Heuristic)
	if err != nil {
		return search.Config{}, err
	}
	return search.Config{
		Algorithm: alg,
		Heuristic: h,
		StepDelay: c.Solver.StepDelay.Duration,
	}, nil
}

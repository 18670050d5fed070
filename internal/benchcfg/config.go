// Package benchcfg loads the configuration of the cohash command from a
// YAML file and COHASH_ environment variables, later sources winning.
package benchcfg

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the environment variable prefix.
const EnvPrefix = "COHASH_"

// Config is the command configuration.
type Config struct {
	Log      LogConfig      `koanf:"log"`
	Scenario ScenarioConfig `koanf:"scenario"`
	Bench    BenchConfig    `koanf:"bench"`
}

// LogConfig configures the hclog logger.
type LogConfig struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

// ScenarioConfig sizes the growable map scenario.
type ScenarioConfig struct {
	// Initial is the capacity of the first submap.
	Initial int `koanf:"initial"`
	// Keys is the number of unique keys inserted.
	Keys int `koanf:"keys"`
}

// BenchConfig configures the throughput benchmark.
type BenchConfig struct {
	Keys       int     `koanf:"keys"`
	Workers    int     `koanf:"workers"`
	Probing    string  `koanf:"probing"`
	Group      int     `koanf:"group"`
	Window     int     `koanf:"window"`
	Allocator  string  `koanf:"allocator"`
	LoadFactor float64 `koanf:"loadfactor"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Scenario: ScenarioConfig{
			Initial: 30_000_000,
			Keys:    50_000_000,
		},
		Bench: BenchConfig{
			Keys:       1 << 22,
			Probing:    "linear",
			Group:      1,
			Window:     2,
			Allocator:  "heap",
			LoadFactor: 0.5,
		},
	}
}

// Load returns Default overridden by the file at path (if not empty) and
// then by the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	// COHASH_BENCH_LOADFACTOR -> bench.loadfactor
	transform := func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "_", ".")
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", transform), nil); err != nil {
		return cfg, fmt.Errorf("load env: %w", err)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.Scenario.Initial <= 0 || c.Scenario.Keys <= 0:
		return fmt.Errorf("scenario: initial and keys must be positive")
	case c.Bench.Keys <= 0:
		return fmt.Errorf("bench: keys must be positive")
	case c.Bench.Probing != "linear" && c.Bench.Probing != "double":
		return fmt.Errorf("bench: unknown probing %q", c.Bench.Probing)
	case c.Bench.Allocator != "heap" && c.Bench.Allocator != "mmap":
		return fmt.Errorf("bench: unknown allocator %q", c.Bench.Allocator)
	case c.Bench.LoadFactor <= 0 || c.Bench.LoadFactor > 1:
		return fmt.Errorf("bench: load factor %v out of (0, 1]", c.Bench.LoadFactor)
	}
	return nil
}

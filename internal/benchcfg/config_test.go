package benchcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cohash.yaml")
	data := []byte("log:\n  level: debug\nbench:\n  keys: 1000\n  probing: double\n  group: 4\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	t.Setenv("COHASH_BENCH_KEYS", "2000")
	t.Setenv("COHASH_SCENARIO_INITIAL", "100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "double", cfg.Bench.Probing)
	assert.Equal(t, 4, cfg.Bench.Group)
	assert.Equal(t, 2000, cfg.Bench.Keys)
	assert.Equal(t, 100, cfg.Scenario.Initial)
	// untouched keys keep their defaults
	assert.Equal(t, 2, cfg.Bench.Window)
	assert.Equal(t, 50_000_000, cfg.Scenario.Keys)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"probing", func(c *Config) { c.Bench.Probing = "quadratic" }},
		{"allocator", func(c *Config) { c.Bench.Allocator = "arena" }},
		{"load factor", func(c *Config) { c.Bench.LoadFactor = 1.5 }},
		{"keys", func(c *Config) { c.Bench.Keys = 0 }},
		{"scenario", func(c *Config) { c.Scenario.Initial = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}

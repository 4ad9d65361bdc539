package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 1, 1}, {1, 0, 1}}, cfg.Code.Generator)
	assert.Equal(t, "viterbi", cfg.Code.Decoder)
	assert.Equal(t, []int{0, 0, 1, 1}, cfg.Turbo.Feedback)
	assert.Equal(t, 6, cfg.Turbo.Iterations)
	assert.InDelta(t, 0.6875, cfg.Turbo.ExtrinsicScale, 1e-12)
	assert.Equal(t, []float64{0, 1, 2, 3}, cfg.Sweep.EbN0)
	assert.Equal(t, 1024, cfg.Sweep.BlockSize)
	assert.Equal(t, "INFO", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	yaml := `
code:
  generator: [[1, 0, 1, 1], [1, 1, 0, 1]]
  reduction: 2
  decoder: siso
turbo:
  interleaver: random
  seed: 17
sweep:
  ebn0_db: [1.5, 2.5]
  blocks: 10
log:
  level: DEBUG
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 0, 1, 1}, {1, 1, 0, 1}}, cfg.Code.Generator)
	assert.Equal(t, 2, cfg.Code.Reduction)
	assert.Equal(t, "siso", cfg.Code.Decoder)
	assert.Equal(t, "random", cfg.Turbo.Interleaver)
	assert.Equal(t, int64(17), cfg.Turbo.Seed)
	assert.Equal(t, []float64{1.5, 2.5}, cfg.Sweep.EbN0)
	assert.Equal(t, 10, cfg.Sweep.Blocks)
	assert.Equal(t, 1024, cfg.Sweep.BlockSize)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CONVFEC_SWEEP_BLOCKS", "7")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Sweep.Blocks)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("turbo:\n  iterations: 0\n"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "turbo.iterations")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Code:   CodeConfig{Generator: [][]int{{1}}, Reduction: 1, Decoder: "viterbi"},
			Turbo:  TurboConfig{Generator: [][]int{{1, 1}}, Interleaver: "qpp", Iterations: 1, ExtrinsicScale: 0.5},
			Sweep:  SweepConfig{EbN0: []float64{1}, Blocks: 1, BlockSize: 8},
			Output: OutputConfig{Dir: "out"},
			Log:    LogConfig{Level: "info"},
		}
	}
	good := base()
	require.NoError(t, validate(&good))

	cases := map[string]func(*Config){
		"decoder":     func(c *Config) { c.Code.Decoder = "bcjr" },
		"interleaver": func(c *Config) { c.Turbo.Interleaver = "spiral" },
		"scale":       func(c *Config) { c.Turbo.ExtrinsicScale = 2 },
		"sweep":       func(c *Config) { c.Sweep.EbN0 = nil },
		"workers":     func(c *Config) { c.Sweep.Workers = -1 },
		"level":       func(c *Config) { c.Log.Level = "TRACE" },
	}
	for name, mutate := range cases {
		cfg := base()
		mutate(&cfg)
		assert.Error(t, validate(&cfg), name)
	}

	withFile := base()
	withFile.Turbo.Interleaver = ""
	withFile.Turbo.PermFile = "perm.bin"
	assert.NoError(t, validate(&withFile))
}

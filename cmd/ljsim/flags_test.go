package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/ljsim/internal/config"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("data", config.DefaultOutputDir, "")
	addConfigFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestResolveConfigDefaults(t *testing.T) {
	cfg, err := resolveConfig(newFlagSet(t), newViper())
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestResolveConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	yaml := "system:\n  density: 0.9\n  temperature: 1.1\n  particle_count: 32\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	t.Setenv("LJSIM_TEMPERATURE", "1.3")
	t.Setenv("LJSIM_EQ_TOLERANCE", "0.2")

	fs := newFlagSet(t, "--preset", "solid", "--config", path, "--temperature", "1.5", "--data", dir)
	cfg, err := resolveConfig(fs, newViper())
	require.NoError(t, err)

	// Flag beats environment beats file beats preset.
	assert.Equal(t, 1.5, cfg.System.Temperature)
	assert.Equal(t, 0.2, cfg.Equilibration.Tolerance)
	assert.Equal(t, 0.9, cfg.System.Density)
	assert.Equal(t, 32, cfg.System.ParticleCount)
	assert.Equal(t, 0.004, cfg.System.Timestep)
	assert.Equal(t, dir, cfg.Output.Directory)
}

func TestResolveConfigEnvOnly(t *testing.T) {
	t.Setenv("LJSIM_DENSITY", "0.5")
	t.Setenv("LJSIM_FORCE", "splined")

	cfg, err := resolveConfig(newFlagSet(t), newViper())
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.System.Density)
	assert.Equal(t, "splined", cfg.System.Force)
	assert.Equal(t, config.DefaultTemperature, cfg.System.Temperature)
}

func TestResolveConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown preset", []string{"--preset", "plasma"}},
		{"missing file", []string{"--config", filepath.Join(t.TempDir(), "none.yaml")}},
		{"invalid value", []string{"--density", "-1"}},
		{"unknown force", []string{"--force", "coulomb"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveConfig(newFlagSet(t, tt.args...), newViper())
			assert.Error(t, err)
		})
	}
}

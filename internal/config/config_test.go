package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/ljsim/internal/boundary"
	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/initial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.8, cfg.System.Temperature)
	assert.Equal(t, 2.5, cfg.System.Cutoff)
	assert.Equal(t, 200, cfg.Equilibration.AdjustmentInterval)
	assert.Equal(t, 20, cfg.Observation.Count)
	assert.Equal(t, 5000+20*200, cfg.TotalSteps())
}

// Every preset must build a box in which its cutoff is legal.
func TestPresetsBuildValidBoxes(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			require.NotNil(t, cfg)
			require.NoError(t, cfg.Validate())

			ic, err := initial.New(initial.Parameters{
				ParticleCount: cfg.System.ParticleCount,
				Density:       cfg.System.Density,
				Temperature:   cfg.System.Temperature,
				Seed:          cfg.System.Seed,
			})
			require.NoError(t, err)
			_, err = boundary.NewPeriodic(ic.Box, cfg.System.Cutoff)
			assert.NoError(t, err)
		})
	}
}

func TestDefaultBuildsValidBox(t *testing.T) {
	cfg := DefaultConfig()
	ic, err := initial.New(initial.Parameters{
		ParticleCount: cfg.System.ParticleCount,
		Density:       cfg.System.Density,
		Temperature:   cfg.System.Temperature,
	})
	require.NoError(t, err)
	_, err = boundary.NewPeriodic(ic.Box, cfg.System.Cutoff)
	assert.NoError(t, err)
}

func TestGetPreset_NotFound(t *testing.T) {
	assert.Nil(t, GetPreset("plasma"))
}

func TestGetPresetDoesNotShareState(t *testing.T) {
	a := GetPreset("liquid")
	a.System.Temperature = 99
	b := GetPreset("liquid")
	assert.Equal(t, 0.8, b.System.Temperature)
}

func TestListPresetsSorted(t *testing.T) {
	assert.Equal(t, []string{"dense-liquid", "gas", "liquid", "smoke", "solid"}, ListPresets())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := GetPreset("smoke")
	cfg.System.Seed = 1234
	cfg.Output.SnapshotInterval = 50

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("system:\n  temperature: 1.5\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1.5, cfg.System.Temperature)
	assert.Equal(t, DefaultDensity, cfg.System.Density)
	assert.Equal(t, 50, cfg.Observation.SampleSize)
}

func TestLoadWithKeepsBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("observation:\n  count: 7\n"), 0644))

	cfg, err := LoadWith(path, GetPreset("solid"))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Observation.Count)
	assert.Equal(t, 1.2, cfg.System.Density)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("system: [1, 2"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"no particles", func(c *Config) { c.System.ParticleCount = 0 }, dynamo.ErrInvalidParameters},
		{"zero density", func(c *Config) { c.System.Density = 0 }, dynamo.ErrInvalidParameters},
		{"negative temperature", func(c *Config) { c.System.Temperature = -1 }, dynamo.ErrInvalidParameters},
		{"zero cutoff", func(c *Config) { c.System.Cutoff = 0 }, dynamo.ErrInvalidCutoff},
		{"zero timestep", func(c *Config) { c.System.Timestep = 0 }, dynamo.ErrInvalidTimestep},
		{"unknown force", func(c *Config) { c.System.Force = "morse" }, dynamo.ErrUnknownForce},
		{"zero timeout", func(c *Config) { c.Equilibration.Timeout = 0 }, dynamo.ErrInvalidParameters},
		{"tiny sample", func(c *Config) { c.Observation.SampleSize = 1 }, dynamo.ErrInvalidParameters},
		{"single step interval", func(c *Config) { c.Observation.Interval = 1 }, dynamo.ErrInvalidParameters},
		{"negative snapshots", func(c *Config) { c.Output.SnapshotInterval = -1 }, dynamo.ErrInvalidParameters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, dynamo.ErrConfiguration)
		})
	}
}

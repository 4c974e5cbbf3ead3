package config

import (
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTemperature   = 0.8
	DefaultDensity       = 1.0
	DefaultParticleCount = 256
	DefaultCutoff        = 2.5
	DefaultTimestep      = 0.005
	DefaultOutputDir     = "./runs"
)

type Config struct {
	System        SystemConfig        `yaml:"system" mapstructure:"system" json:"system"`
	Equilibration EquilibrationConfig `yaml:"equilibration" mapstructure:"equilibration" json:"equilibration"`
	Observation   ObservationConfig   `yaml:"observation" mapstructure:"observation" json:"observation"`
	Output        OutputConfig        `yaml:"output" mapstructure:"output" json:"output"`
}

type SystemConfig struct {
	Temperature   float64 `yaml:"temperature" mapstructure:"temperature" json:"temperature"`
	Density       float64 `yaml:"density" mapstructure:"density" json:"density"`
	ParticleCount int     `yaml:"particle_count" mapstructure:"particle_count" json:"particle_count"`
	Seed          int64   `yaml:"seed" mapstructure:"seed" json:"seed"`
	Cutoff        float64 `yaml:"cutoff" mapstructure:"cutoff" json:"cutoff"`
	Timestep      float64 `yaml:"timestep" mapstructure:"timestep" json:"timestep"`
	Force         string  `yaml:"force" mapstructure:"force" json:"force"`
	Workers       int     `yaml:"workers" mapstructure:"workers" json:"workers"`
}

// EquilibrationConfig drives the thermostat phase. Intervals are in steps.
type EquilibrationConfig struct {
	Tolerance          float64 `yaml:"tolerance" mapstructure:"tolerance" json:"tolerance"`
	SampleSize         int     `yaml:"sample_size" mapstructure:"sample_size" json:"sample_size"`
	AdjustmentInterval int     `yaml:"adjustment_interval" mapstructure:"adjustment_interval" json:"adjustment_interval"`
	SteadyStateTime    int     `yaml:"steady_state_time" mapstructure:"steady_state_time" json:"steady_state_time"`
	Timeout            int     `yaml:"timeout" mapstructure:"timeout" json:"timeout"`
}

type ObservationConfig struct {
	Tolerance  float64 `yaml:"tolerance" mapstructure:"tolerance" json:"tolerance"`
	SampleSize int     `yaml:"sample_size" mapstructure:"sample_size" json:"sample_size"`
	Interval   int     `yaml:"interval" mapstructure:"interval" json:"interval"`
	Count      int     `yaml:"count" mapstructure:"count" json:"count"`
}

type OutputConfig struct {
	Directory string `yaml:"directory" mapstructure:"directory" json:"directory"`
	// SnapshotInterval writes particle positions every n steps; 0 disables.
	SnapshotInterval int `yaml:"snapshot_interval" mapstructure:"snapshot_interval" json:"snapshot_interval"`
}

func DefaultConfig() *Config {
	return &Config{
		System: SystemConfig{
			Temperature:   DefaultTemperature,
			Density:       DefaultDensity,
			ParticleCount: DefaultParticleCount,
			Seed:          1,
			Cutoff:        DefaultCutoff,
			Timestep:      DefaultTimestep,
			Force:         physics.ForceLennardJones,
			Workers:       1,
		},
		Equilibration: EquilibrationConfig{
			Tolerance:          0.05,
			SampleSize:         50,
			AdjustmentInterval: 200,
			SteadyStateTime:    1000,
			Timeout:            5000,
		},
		Observation: ObservationConfig{
			Tolerance:  0.10,
			SampleSize: 50,
			Interval:   200,
			Count:      20,
		},
		Output: OutputConfig{
			Directory: DefaultOutputDir,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadWith(path, DefaultConfig())
}

// LoadWith reads path over base. Keys missing from the file keep the values
// of base, which is modified and returned.
func LoadWith(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first problem found. Every error wraps
// dynamo.ErrConfiguration.
func (c *Config) Validate() error {
	s := c.System
	if s.ParticleCount < 1 {
		return fmt.Errorf("%w: particle_count %d", dynamo.ErrInvalidParameters, s.ParticleCount)
	}
	if !positive(s.Density) {
		return fmt.Errorf("%w: density %g", dynamo.ErrInvalidParameters, s.Density)
	}
	if !positive(s.Temperature) {
		return fmt.Errorf("%w: temperature %g", dynamo.ErrInvalidParameters, s.Temperature)
	}
	if !positive(s.Cutoff) {
		return fmt.Errorf("%w: got %g", dynamo.ErrInvalidCutoff, s.Cutoff)
	}
	if !positive(s.Timestep) {
		return fmt.Errorf("%w: got %g", dynamo.ErrInvalidTimestep, s.Timestep)
	}
	if s.Force != "" && !slices.Contains(physics.ForceNames(), s.Force) {
		return fmt.Errorf("%w: %q", dynamo.ErrUnknownForce, s.Force)
	}

	e := c.Equilibration
	if !positive(e.Tolerance) || e.SampleSize < 1 || e.AdjustmentInterval < 1 || e.SteadyStateTime < 1 || e.Timeout < 1 {
		return fmt.Errorf("%w: equilibration %+v", dynamo.ErrInvalidParameters, e)
	}
	o := c.Observation
	if !positive(o.Tolerance) || o.SampleSize < 2 || o.Interval < 2 || o.Count < 0 {
		return fmt.Errorf("%w: observation %+v", dynamo.ErrInvalidParameters, o)
	}
	if c.Output.SnapshotInterval < 0 {
		return fmt.Errorf("%w: snapshot_interval %d", dynamo.ErrInvalidParameters, c.Output.SnapshotInterval)
	}
	return nil
}

// TotalSteps is the longest run the config allows: a timed-out equilibration
// followed by a full observation phase.
func (c *Config) TotalSteps() int {
	return c.Equilibration.Timeout + c.Observation.Count*c.Observation.Interval
}

func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0)
}

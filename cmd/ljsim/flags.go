package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/san-kum/ljsim/internal/config"
	"github.com/san-kum/ljsim/internal/physics"
)

// An override maps a flag, and the LJSIM_* variable derived from it, onto one
// config field.
type override struct {
	key      string
	register func(fs *pflag.FlagSet, defaults *config.Config)
	apply    func(v *viper.Viper, c *config.Config)
}

func floatField(key, usage string, field func(*config.Config) *float64) override {
	return override{
		key:      key,
		register: func(fs *pflag.FlagSet, d *config.Config) { fs.Float64(key, *field(d), usage) },
		apply:    func(v *viper.Viper, c *config.Config) { *field(c) = v.GetFloat64(key) },
	}
}

func intField(key, usage string, field func(*config.Config) *int) override {
	return override{
		key:      key,
		register: func(fs *pflag.FlagSet, d *config.Config) { fs.Int(key, *field(d), usage) },
		apply:    func(v *viper.Viper, c *config.Config) { *field(c) = v.GetInt(key) },
	}
}

func stringField(key, usage string, field func(*config.Config) *string) override {
	return override{
		key:      key,
		register: func(fs *pflag.FlagSet, d *config.Config) { fs.String(key, *field(d), usage) },
		apply:    func(v *viper.Viper, c *config.Config) { *field(c) = v.GetString(key) },
	}
}

var overrides = []override{
	floatField("temperature", "target temperature", func(c *config.Config) *float64 { return &c.System.Temperature }),
	floatField("density", "number density", func(c *config.Config) *float64 { return &c.System.Density }),
	intField("particles", "particle count", func(c *config.Config) *int { return &c.System.ParticleCount }),
	floatField("cutoff", "interaction cutoff", func(c *config.Config) *float64 { return &c.System.Cutoff }),
	floatField("dt", "timestep", func(c *config.Config) *float64 { return &c.System.Timestep }),
	intField("workers", "force workers (0: one per CPU)", func(c *config.Config) *int { return &c.System.Workers }),
	stringField("force", "force law ("+strings.Join(physics.ForceNames(), ", ")+")", func(c *config.Config) *string { return &c.System.Force }),
	{
		key:      "seed",
		register: func(fs *pflag.FlagSet, d *config.Config) { fs.Int64("seed", d.System.Seed, "random seed") },
		apply:    func(v *viper.Viper, c *config.Config) { c.System.Seed = v.GetInt64("seed") },
	},
	floatField("eq-tolerance", "equilibration temperature tolerance", func(c *config.Config) *float64 { return &c.Equilibration.Tolerance }),
	intField("eq-timeout", "equilibration step limit", func(c *config.Config) *int { return &c.Equilibration.Timeout }),
	intField("steady-steps", "steps without adjustment that end equilibration", func(c *config.Config) *int { return &c.Equilibration.SteadyStateTime }),
	intField("observations", "number of observations", func(c *config.Config) *int { return &c.Observation.Count }),
	intField("interval", "steps per observation", func(c *config.Config) *int { return &c.Observation.Interval }),
	floatField("obs-tolerance", "observation temperature tolerance", func(c *config.Config) *float64 { return &c.Observation.Tolerance }),
	intField("snapshots", "snapshot interval in steps (0: off)", func(c *config.Config) *int { return &c.Output.SnapshotInterval }),
}

// addConfigFlags registers the flags resolveConfig reads. Their defaults are
// for display; a flag left unset never overrides the preset or file.
func addConfigFlags(fs *pflag.FlagSet) {
	fs.String("preset", "", "start from a preset ("+strings.Join(config.ListPresets(), ", ")+")")
	fs.String("config", "", "yaml config file, applied over the preset")

	d := config.DefaultConfig()
	for _, o := range overrides {
		o.register(fs, d)
	}
}

// resolveConfig layers, lowest first: defaults, --preset, --config, LJSIM_*
// environment, explicit flags.
func resolveConfig(fs *pflag.FlagSet, v *viper.Viper) (*config.Config, error) {
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if name := v.GetString("preset"); name != "" {
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
	}
	if path := v.GetString("config"); path != "" {
		var err error
		if cfg, err = config.LoadWith(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	for _, o := range overrides {
		if v.IsSet(o.key) {
			o.apply(v, cfg)
		}
	}
	if v.IsSet("data") {
		cfg.Output.Directory = v.GetString("data")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

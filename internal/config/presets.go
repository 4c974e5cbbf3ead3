package config

import "sort"

// Presets are named state points of the Lennard-Jones phase diagram. Fields
// not set here keep their DefaultConfig values.
var Presets = map[string]SystemConfig{
	"gas": {
		Temperature: 2.0, Density: 0.05, ParticleCount: 256,
		Cutoff: 2.5, Timestep: 0.005,
	},
	"liquid": {
		Temperature: 0.8, Density: 0.8, ParticleCount: 500,
		Cutoff: 2.5, Timestep: 0.005,
	},
	"dense-liquid": {
		Temperature: 1.2, Density: 0.95, ParticleCount: 864,
		Cutoff: 2.5, Timestep: 0.004,
	},
	"solid": {
		Temperature: 0.5, Density: 1.2, ParticleCount: 500,
		Cutoff: 2.5, Timestep: 0.004,
	},
	"smoke": {
		Temperature: 1.0, Density: 0.8, ParticleCount: 108,
		Cutoff: 2.5, Timestep: 0.005, Force: "splined",
	},
}

// GetPreset returns a full configuration for the named state point, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.System.Temperature = p.Temperature
	cfg.System.Density = p.Density
	cfg.System.ParticleCount = p.ParticleCount
	cfg.System.Cutoff = p.Cutoff
	cfg.System.Timestep = p.Timestep
	if p.Force != "" {
		cfg.System.Force = p.Force
	}
	if name == "smoke" {
		cfg.Equilibration.SteadyStateTime = 200
		cfg.Equilibration.Timeout = 2000
		cfg.Observation.Count = 3
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package sim

import (
	"fmt"

	"github.com/san-kum/ljsim/internal/config"
)

// Grid expands base into one configuration per (temperature, density) pair,
// temperature varying slowest. An empty axis keeps the base value.
func Grid(base *config.Config, temperatures, densities []float64) ([]*config.Config, error) {
	if len(temperatures) == 0 {
		temperatures = []float64{base.System.Temperature}
	}
	if len(densities) == 0 {
		densities = []float64{base.System.Density}
	}

	cfgs := make([]*config.Config, 0, len(temperatures)*len(densities))
	for _, t := range temperatures {
		for _, rho := range densities {
			c := *base
			c.System.Temperature = t
			c.System.Density = rho
			if err := c.Validate(); err != nil {
				return nil, fmt.Errorf("grid point %s: %w", Label(&c), err)
			}
			cfgs = append(cfgs, &c)
		}
	}
	return cfgs, nil
}

// Package metrics turns a stream of system states into thermodynamic
// measurements and the time-averaged observations computed from them.
package metrics

import (
	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/physics"
)

// ThermodynamicMeasurement is the instantaneous state of the system after one step.
type ThermodynamicMeasurement struct {
	Time                   float64 `json:"time"`
	KineticEnergy          float64 `json:"kinetic_energy"`
	PotentialEnergy        float64 `json:"potential_energy"`
	TotalEnergy            float64 `json:"total_energy"`
	Virial                 float64 `json:"virial"`
	Temperature            float64 `json:"temperature"`
	MeanSquareDisplacement float64 `json:"mean_square_displacement"`
}

func Measure(s *dynamo.SystemState, mass float64) ThermodynamicMeasurement {
	ke := physics.KineticEnergy(s, mass)
	t := 0.0
	if n := s.ParticleCount(); n > 0 {
		t = 2 * ke / (3 * float64(n))
	}
	return ThermodynamicMeasurement{
		Time:                   s.Time,
		KineticEnergy:          ke,
		PotentialEnergy:        s.PotentialEnergy,
		TotalEnergy:            ke + s.PotentialEnergy,
		Virial:                 s.Virial,
		Temperature:            t,
		MeanSquareDisplacement: physics.MeanSquareDisplacement(s),
	}
}

// Metric reduces a stream of measurements to one number.
type Metric interface {
	Name() string
	Observe(m ThermodynamicMeasurement)
	Value() float64
	Reset()
}

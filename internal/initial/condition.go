// Package initial builds the starting configuration of a run: particles on a
// face-centred cubic lattice with Maxwell-Boltzmann velocities.
package initial

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

type Parameters struct {
	ParticleCount int
	Density       float64
	Temperature   float64
	Seed          int64
}

func (p Parameters) Validate() error {
	if p.ParticleCount < 1 {
		return fmt.Errorf("%w: particle count %d", dynamo.ErrInvalidParameters, p.ParticleCount)
	}
	if !(p.Density > 0) || math.IsInf(p.Density, 0) {
		return fmt.Errorf("%w: density %g", dynamo.ErrInvalidParameters, p.Density)
	}
	if !(p.Temperature > 0) || math.IsInf(p.Temperature, 0) {
		return fmt.Errorf("%w: temperature %g", dynamo.ErrInvalidParameters, p.Temperature)
	}
	return nil
}

type Condition struct {
	Parameters Parameters
	Box        dynamo.BoundingBox
	State      *dynamo.SystemState
}

// New places the particles and draws their velocities. The lattice is only
// filled completely when ParticleCount is 4k^3; otherwise the last cells are
// left partly empty and the realised density is somewhat below the request.
func New(p Parameters) (*Condition, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	lattice := NewFCC(p.ParticleCount, p.Density)
	box, err := dynamo.NewCube(lattice.Side())
	if err != nil {
		return nil, err
	}

	s := dynamo.NewSystemState(p.ParticleCount)
	lattice.Fill(s.Positions)

	rng := rand.New(rand.NewSource(p.Seed))
	MaxwellBoltzmann(rng, s, p.Temperature)
	if p.ParticleCount > 1 {
		dynamo.Apply(s, physics.SetMomentum(r3.Vec{}), physics.SetTemperature(p.Temperature, 1))
	}

	return &Condition{Parameters: p, Box: box, State: s}, nil
}

// RealisedDensity is N / V for the box actually built.
func (c *Condition) RealisedDensity() float64 {
	return float64(c.State.ParticleCount()) / c.Box.Volume()
}

// MaxwellBoltzmann draws every velocity component from a normal distribution
// with variance temperature, for unit mass.
func MaxwellBoltzmann(rng *rand.Rand, s *dynamo.SystemState, temperature float64) {
	sigma := math.Sqrt(temperature)
	for i := range s.Velocities {
		s.Velocities[i] = r3.Vec{
			X: rng.NormFloat64() * sigma,
			Y: rng.NormFloat64() * sigma,
			Z: rng.NormFloat64() * sigma,
		}
	}
}

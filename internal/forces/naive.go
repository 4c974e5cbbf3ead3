package forces

import (
	"github.com/san-kum/ljsim/internal/boundary"
	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// Naive checks every pair of particles. It is the reference the cell list is
// compared against and is faster for a handful of particles.
type Naive struct {
	force physics.PairwiseForce
	bc    *boundary.Periodic
}

func NewNaive(force physics.PairwiseForce, bc *boundary.Periodic) *Naive {
	return &Naive{force: force, bc: bc}
}

func (c *Naive) Evaluate(s *dynamo.SystemState) {
	clear(s.Forces)
	s.PotentialEnergy, s.Virial = 0, 0

	pos := s.Positions
	for i := 0; i < len(pos); i++ {
		for j := i + 1; j < len(pos); j++ {
			fc := c.force.Compute(c.bc.Separation(pos[i], pos[j]))
			s.Forces[i] = r3.Add(s.Forces[i], fc.Force)
			s.Forces[j] = r3.Sub(s.Forces[j], fc.Force)
			s.PotentialEnergy += fc.Potential
			s.Virial += fc.Virial
		}
	}
}

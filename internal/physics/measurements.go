package physics

import (
	"github.com/san-kum/ljsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

func KineticEnergy(s *dynamo.SystemState, mass float64) float64 {
	var sum float64
	for _, v := range s.Velocities {
		sum += r3.Norm2(v)
	}
	return 0.5 * mass * sum
}

// Temperature is the equipartition estimate 2 KE / (3N) in reduced units.
func Temperature(s *dynamo.SystemState, mass float64) float64 {
	n := s.ParticleCount()
	if n == 0 {
		return 0
	}
	return 2 * KineticEnergy(s, mass) / (3 * float64(n))
}

func TotalEnergy(s *dynamo.SystemState, mass float64) float64 {
	return KineticEnergy(s, mass) + s.PotentialEnergy
}

func TotalMomentum(s *dynamo.SystemState, mass float64) r3.Vec {
	var p r3.Vec
	for _, v := range s.Velocities {
		p = r3.Add(p, v)
	}
	return r3.Scale(mass, p)
}

func TotalForce(s *dynamo.SystemState) r3.Vec {
	var f r3.Vec
	for _, v := range s.Forces {
		f = r3.Add(f, v)
	}
	return f
}

// CenterOfMass uses wrapped positions, so it is only meaningful for clusters
// that do not straddle a periodic face.
func CenterOfMass(s *dynamo.SystemState) r3.Vec {
	n := s.ParticleCount()
	if n == 0 {
		return r3.Vec{}
	}
	var c r3.Vec
	for _, p := range s.Positions {
		c = r3.Add(c, p)
	}
	return r3.Scale(1/float64(n), c)
}

// MeanSquareDisplacement averages |d|^2 over the unwrapped displacements.
func MeanSquareDisplacement(s *dynamo.SystemState) float64 {
	n := s.ParticleCount()
	if n == 0 {
		return 0
	}
	var sum float64
	for _, d := range s.Displacements {
		sum += r3.Norm2(d)
	}
	return sum / float64(n)
}

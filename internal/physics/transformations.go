package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/ljsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Boost adds v to every velocity.
func Boost(v r3.Vec) dynamo.Operator {
	return func(s *dynamo.SystemState) *dynamo.SystemState {
		for i := range s.Velocities {
			s.Velocities[i] = r3.Add(s.Velocities[i], v)
		}
		return s
	}
}

// Accelerate applies a uniform acceleration a for a time dt.
func Accelerate(a r3.Vec, dt float64) dynamo.Operator {
	return Boost(r3.Scale(dt, a))
}

// SetMomentum shifts every velocity so that the total momentum per unit mass
// equals p.
func SetMomentum(p r3.Vec) dynamo.Operator {
	return func(s *dynamo.SystemState) *dynamo.SystemState {
		n := s.ParticleCount()
		if n == 0 {
			return s
		}
		current := TotalMomentum(s, 1)
		shift := r3.Scale(1/float64(n), r3.Sub(p, current))
		return Boost(shift)(s)
	}
}

// SetTemperature rescales velocities so that Temperature(s, mass) == target.
// It panics on a state with no kinetic energy, which has no direction to
// scale along.
func SetTemperature(target, mass float64) dynamo.Operator {
	return func(s *dynamo.SystemState) *dynamo.SystemState {
		current := Temperature(s, mass)
		if !(current > 0) {
			panic(fmt.Sprintf("physics: cannot rescale state at temperature %g", current))
		}
		f := math.Sqrt(target / current)
		for i := range s.Velocities {
			s.Velocities[i] = r3.Scale(f, s.Velocities[i])
		}
		return s
	}
}

// ClearDynamics zeroes velocities and forces along with the dynamic totals.
func ClearDynamics(s *dynamo.SystemState) *dynamo.SystemState {
	clear(s.Velocities)
	clear(s.Forces)
	s.PotentialEnergy = 0
	s.Virial = 0
	return s
}

func ClearDisplacements(s *dynamo.SystemState) *dynamo.SystemState {
	clear(s.Displacements)
	return s
}

package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/ljsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// ForceContribution is the interaction of one unordered pair (i, j). Force acts
// on i for the separation r_i - r_j; j receives its negation.
type ForceContribution struct {
	Force     r3.Vec
	Potential float64
	Virial    float64
}

// PairwiseForce is a short-ranged central force law. Implementations are
// stateless and must return the zero contribution for |r|^2 >= rc^2.
type PairwiseForce interface {
	Compute(separation r3.Vec) ForceContribution
	CutoffLength() float64
	SquareCutoffLength() float64
}

// ZeroForce never interacts. It is used for ballistic motion.
type ZeroForce struct {
	Cutoff float64
}

func (z ZeroForce) Compute(r3.Vec) ForceContribution { return ForceContribution{} }
func (z ZeroForce) CutoffLength() float64           { return z.Cutoff }
func (z ZeroForce) SquareCutoffLength() float64     { return z.Cutoff * z.Cutoff }

// Force law names accepted by NewForce.
const (
	ForceLennardJones        = "lennard-jones"
	ForceSplinedLennardJones = "splined"
	ForceZero                = "zero"
)

// ForceNames lists the registered force laws in display order.
func ForceNames() []string {
	return []string{ForceLennardJones, ForceSplinedLennardJones, ForceZero}
}

func NewForce(name string, cutoff float64) (PairwiseForce, error) {
	if !(cutoff > 0) || math.IsInf(cutoff, 0) {
		return nil, fmt.Errorf("%w: got %g", dynamo.ErrInvalidCutoff, cutoff)
	}
	switch name {
	case ForceLennardJones, "":
		return NewLennardJones(cutoff)
	case ForceSplinedLennardJones:
		return NewSplinedLennardJones(cutoff)
	case ForceZero:
		return ZeroForce{Cutoff: cutoff}, nil
	default:
		return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownForce, name)
	}
}

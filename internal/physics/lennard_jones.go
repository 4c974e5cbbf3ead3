package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/ljsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// LennardJones is the 12-6 potential in reduced units, truncated without
// shifting at the cutoff:
//
//	V(r) = 4 r^-6 (r^-6 - 1)
//	W(r) = -r V'(r) = 24 r^-6 (2 r^-6 - 1)
type LennardJones struct {
	cutoff   float64
	cutoffSq float64
}

func NewLennardJones(cutoff float64) (*LennardJones, error) {
	if !(cutoff > 0) || math.IsInf(cutoff, 0) {
		return nil, fmt.Errorf("%w: got %g", dynamo.ErrInvalidCutoff, cutoff)
	}
	return &LennardJones{cutoff: cutoff, cutoffSq: cutoff * cutoff}, nil
}

func (lj *LennardJones) CutoffLength() float64       { return lj.cutoff }
func (lj *LennardJones) SquareCutoffLength() float64 { return lj.cutoffSq }

func (lj *LennardJones) Compute(r r3.Vec) ForceContribution {
	r2 := r3.Norm2(r)
	if r2 >= lj.cutoffSq {
		return ForceContribution{}
	}
	v, w := lennardJones(r2)
	return ForceContribution{
		Force:     r3.Scale(w/r2, r),
		Potential: v,
		Virial:    w,
	}
}

// SplinedLennardJones adds S(r) = alpha + beta((r/rc)^2 - 1) to the truncated
// potential so that both V and W are continuous at the cutoff. The cutoff
// must lie beyond the minimum at r^2 = 2^(1/3).
type SplinedLennardJones struct {
	cutoff   float64
	cutoffSq float64
	alpha    float64
	beta     float64
}

func NewSplinedLennardJones(cutoff float64) (*SplinedLennardJones, error) {
	if !(cutoff > 0) || math.IsInf(cutoff, 0) {
		return nil, fmt.Errorf("%w: got %g", dynamo.ErrInvalidCutoff, cutoff)
	}
	rc2 := cutoff * cutoff
	if rc2 <= math.Cbrt(2) {
		return nil, fmt.Errorf("%w: cutoff %g", dynamo.ErrCutoffTooShort, cutoff)
	}
	inv6 := 1 / (rc2 * rc2 * rc2)
	return &SplinedLennardJones{
		cutoff:   cutoff,
		cutoffSq: rc2,
		alpha:    -4 * inv6 * (inv6 - 1),
		beta:     12 * inv6 * (2*inv6 - 1),
	}, nil
}

func (s *SplinedLennardJones) CutoffLength() float64       { return s.cutoff }
func (s *SplinedLennardJones) SquareCutoffLength() float64 { return s.cutoffSq }

func (s *SplinedLennardJones) Compute(r r3.Vec) ForceContribution {
	r2 := r3.Norm2(r)
	if r2 >= s.cutoffSq {
		return ForceContribution{}
	}
	v, w := lennardJones(r2)
	u := r2 / s.cutoffSq
	v += s.alpha + s.beta*(u-1)
	w -= 2 * s.beta * u
	return ForceContribution{
		Force:     r3.Scale(w/r2, r),
		Potential: v,
		Virial:    w,
	}
}

func lennardJones(r2 float64) (v, w float64) {
	inv2 := 1 / r2
	inv6 := inv2 * inv2 * inv2
	return 4 * inv6 * (inv6 - 1), 24 * inv6 * (2*inv6 - 1)
}

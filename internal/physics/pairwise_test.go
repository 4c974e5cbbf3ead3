package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/ljsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestLennardJonesMinimum(t *testing.T) {
	lj, _ := NewLennardJones(2.5)
	rmin := math.Pow(2, 1.0/6)

	c := lj.Compute(r3.Vec{X: rmin})
	if math.Abs(c.Potential+1) > 1e-12 {
		t.Errorf("V(rmin) = %v, want -1", c.Potential)
	}
	if math.Abs(c.Virial) > 1e-12 || r3.Norm(c.Force) > 1e-12 {
		t.Errorf("force at minimum should vanish: %+v", c)
	}

	c = lj.Compute(r3.Vec{Y: 1})
	if c.Potential != 0 {
		t.Errorf("V(1) = %v, want 0", c.Potential)
	}
	if math.Abs(c.Force.Y-24) > 1e-12 {
		t.Errorf("F(1) = %v, want 24 along y", c.Force)
	}
}

func TestForceMatchesPotentialGradient(t *testing.T) {
	lj, _ := NewLennardJones(3)
	sp, _ := NewSplinedLennardJones(3)
	const h = 1e-6

	for _, f := range []PairwiseForce{lj, sp} {
		for _, r := range []float64{0.95, 1.1, 1.5, 2.2, 2.9} {
			dir := r3.Unit(r3.Vec{X: 1, Y: 2, Z: -0.5})
			c := f.Compute(r3.Scale(r, dir))
			vp := f.Compute(r3.Scale(r+h, dir)).Potential
			vm := f.Compute(r3.Scale(r-h, dir)).Potential
			dVdr := (vp - vm) / (2 * h)

			if math.Abs(c.Virial+r*dVdr) > 1e-5*math.Max(1, math.Abs(c.Virial)) {
				t.Errorf("%T r=%v: W=%v, -r dV/dr=%v", f, r, c.Virial, -r*dVdr)
			}
			if math.Abs(r3.Dot(c.Force, dir)+dVdr) > 1e-5*math.Max(1, math.Abs(dVdr)) {
				t.Errorf("%T r=%v: radial force %v, -dV/dr=%v", f, r, r3.Dot(c.Force, dir), -dVdr)
			}
		}
	}
}

func TestZeroBeyondCutoff(t *testing.T) {
	lj, _ := NewLennardJones(2.5)
	sp, _ := NewSplinedLennardJones(2.5)

	tests := []struct {
		name string
		sep  r3.Vec
	}{
		{"at cutoff", r3.Vec{X: 2.5}},
		{"beyond", r3.Vec{X: 2, Y: 2}},
		{"far", r3.Vec{Z: -40}},
	}

	for _, f := range []PairwiseForce{lj, sp, ZeroForce{Cutoff: 2.5}} {
		for _, tt := range tests {
			if c := f.Compute(tt.sep); c != (ForceContribution{}) {
				t.Errorf("%T %s: got %+v, want zero", f, tt.name, c)
			}
		}
	}
}

func TestSplinedContinuousAtCutoff(t *testing.T) {
	sp, _ := NewSplinedLennardJones(2.5)
	c := sp.Compute(r3.Vec{X: 2.5 - 1e-9})
	if math.Abs(c.Potential) > 1e-8 || math.Abs(c.Virial) > 1e-8 {
		t.Errorf("splined potential not continuous at cutoff: %+v", c)
	}

	lj, _ := NewLennardJones(2.5)
	if c := lj.Compute(r3.Vec{X: 2.5 - 1e-9}); c.Potential >= 0 {
		t.Errorf("truncated potential should jump at cutoff, got %v", c.Potential)
	}
}

func TestForceAntisymmetric(t *testing.T) {
	lj, _ := NewLennardJones(2.5)
	r := r3.Vec{X: 0.7, Y: -0.4, Z: 0.6}
	a := lj.Compute(r)
	b := lj.Compute(r3.Scale(-1, r))
	if a.Force != r3.Scale(-1, b.Force) || a.Potential != b.Potential {
		t.Errorf("pair force not antisymmetric: %+v vs %+v", a, b)
	}
}

func TestNewForce(t *testing.T) {
	tests := []struct {
		name   string
		cutoff float64
		want   error
	}{
		{ForceLennardJones, 2.5, nil},
		{"", 2.5, nil},
		{ForceSplinedLennardJones, 2.5, nil},
		{ForceZero, 1, nil},
		{ForceSplinedLennardJones, 1.0, dynamo.ErrCutoffTooShort},
		{"coulomb", 2.5, dynamo.ErrUnknownForce},
		{ForceLennardJones, 0, dynamo.ErrInvalidCutoff},
		{ForceZero, math.Inf(1), dynamo.ErrInvalidCutoff},
	}

	for _, tt := range tests {
		f, err := NewForce(tt.name, tt.cutoff)
		if tt.want == nil {
			if err != nil {
				t.Errorf("NewForce(%q, %g) failed: %v", tt.name, tt.cutoff, err)
				continue
			}
			if f.CutoffLength() != tt.cutoff || f.SquareCutoffLength() != tt.cutoff*tt.cutoff {
				t.Errorf("NewForce(%q) cutoff = %v", tt.name, f.CutoffLength())
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("NewForce(%q, %g): expected %v, got %v", tt.name, tt.cutoff, tt.want, err)
		}
		if !errors.Is(err, dynamo.ErrConfiguration) {
			t.Errorf("NewForce(%q, %g): error %v does not wrap ErrConfiguration", tt.name, tt.cutoff, err)
		}
	}
}

func BenchmarkLennardJones(b *testing.B) {
	lj, _ := NewLennardJones(2.5)
	r := r3.Vec{X: 0.9, Y: 0.5, Z: 0.3}
	var sink float64

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sink += lj.Compute(r).Potential
	}
	_ = sink
}

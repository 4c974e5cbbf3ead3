package integrators

import (
	"testing"

	"github.com/san-kum/ljsim/internal/physics"
)

func BenchmarkVelocityVerlet(b *testing.B) {
	sys := liquid(b, physics.ForceLennardJones, 1)
	vv, _ := NewVelocityVerlet(sys.calc, sys.bc, 0.005)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := vv.Step(sys.state); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVelocityVerletSplined(b *testing.B) {
	sys := liquid(b, physics.ForceSplinedLennardJones, 1)
	vv, _ := NewVelocityVerlet(sys.calc, sys.bc, 0.005)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := vv.Step(sys.state); err != nil {
			b.Fatal(err)
		}
	}
}

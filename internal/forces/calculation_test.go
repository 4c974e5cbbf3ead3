package forces

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ljsim/internal/boundary"
	"github.com/san-kum/ljsim/internal/celllist"
	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// jitteredLattice puts k^3 particles on a cubic grid of the given spacing and
// nudges each one, so no pair sits closer than spacing - 2*jitter.
func jitteredLattice(k int, spacing, jitter float64, seed int64) *dynamo.SystemState {
	rng := rand.New(rand.NewSource(seed))
	s := dynamo.NewSystemState(k * k * k)
	i := 0
	for x := 0; x < k; x++ {
		for y := 0; y < k; y++ {
			for z := 0; z < k; z++ {
				s.Positions[i] = r3.Vec{
					X: (float64(x)+0.5)*spacing + (rng.Float64()*2-1)*jitter,
					Y: (float64(y)+0.5)*spacing + (rng.Float64()*2-1)*jitter,
					Z: (float64(z)+0.5)*spacing + (rng.Float64()*2-1)*jitter,
				}
				i++
			}
		}
	}
	return s
}

type setup struct {
	bc    *boundary.Periodic
	cells *celllist.Array
	force physics.PairwiseForce
}

func newSetup(side, cutoff float64, name string) setup {
	bc, err := boundary.NewPeriodicCube(side, cutoff)
	Expect(err).NotTo(HaveOccurred())
	cells, err := celllist.New(bc.Box(), cutoff)
	Expect(err).NotTo(HaveOccurred())
	force, err := physics.NewForce(name, cutoff)
	Expect(err).NotTo(HaveOccurred())
	return setup{bc: bc, cells: cells, force: force}
}

func mustCellList(cells *celllist.Array, force physics.PairwiseForce, bc *boundary.Periodic, opts ...Option) *CellList {
	calc, err := NewCellList(cells, force, bc, opts...)
	Expect(err).NotTo(HaveOccurred())
	return calc
}

func expectStatesClose(got, want *dynamo.SystemState, tol float64) {
	Expect(got.PotentialEnergy).To(BeNumerically("~", want.PotentialEnergy, tol*math.Max(1, math.Abs(want.PotentialEnergy))))
	Expect(got.Virial).To(BeNumerically("~", want.Virial, tol*math.Max(1, math.Abs(want.Virial))))
	for i := range want.Forces {
		d := r3.Norm(r3.Sub(got.Forces[i], want.Forces[i]))
		Expect(d).To(BeNumerically("<", tol*math.Max(1, r3.Norm(want.Forces[i]))), "particle %d", i)
	}
}

var _ = Describe("CellList", func() {
	const (
		k       = 8
		spacing = 1.1
		cutoff  = 2.5
	)

	var (
		env   setup
		state *dynamo.SystemState
	)

	BeforeEach(func() {
		env = newSetup(k*spacing, cutoff, physics.ForceLennardJones)
		state = jitteredLattice(k, spacing, 0.1, 11)
	})

	It("produces zero total force", func() {
		mustCellList(env.cells, env.force, env.bc).Evaluate(state)
		Expect(r3.Norm(physics.TotalForce(state))).To(BeNumerically("<", 1e-9))
		Expect(state.PotentialEnergy).To(BeNumerically("<", 0))
	})

	It("matches the all-pairs reference", func() {
		ref := state.Clone()
		NewNaive(env.force, env.bc).Evaluate(ref)
		mustCellList(env.cells, env.force, env.bc).Evaluate(state)
		expectStatesClose(state, ref, 1e-9)
	})

	It("overwrites whatever the state held before", func() {
		calc := mustCellList(env.cells, env.force, env.bc)
		calc.Evaluate(state)
		first := state.Clone()

		state.Forces[3] = r3.Vec{X: 1e6}
		state.PotentialEnergy = 42
		calc.Evaluate(state)
		expectStatesClose(state, first, 1e-12)
	})

	It("is deterministic on the serial path", func() {
		other := state.Clone()
		mustCellList(env.cells, env.force, env.bc).Evaluate(state)
		cells, _ := celllist.New(env.bc.Box(), cutoff)
		mustCellList(cells, env.force, env.bc).Evaluate(other)
		Expect(other.Forces).To(Equal(state.Forces))
		Expect(other.PotentialEnergy).To(Equal(state.PotentialEnergy))
	})

	DescribeTable("agrees with the serial sweep when run in parallel",
		func(workers int) {
			serial := state.Clone()
			mustCellList(env.cells, env.force, env.bc).Evaluate(serial)

			cells, _ := celllist.New(env.bc.Box(), cutoff)
			parallel := mustCellList(cells, env.force, env.bc, WithWorkers(workers))
			parallel.Evaluate(state)
			expectStatesClose(state, serial, 1e-9)

			// a second evaluation must not see the first one's buffers
			parallel.Evaluate(state)
			expectStatesClose(state, serial, 1e-9)
		},
		Entry("two workers", 2),
		Entry("three workers", 3),
		Entry("more workers than chunks", 16),
		Entry("every CPU", 0),
	)

	Context("with too few cells for the full neighbour stencil", func() {
		It("matches the reference on a two-by-two-by-two grid", func() {
			small := newSetup(5.5, cutoff, physics.ForceSplinedLennardJones)
			Expect(small.cells.Shape()).To(Equal([3]int{2, 2, 2}))

			s := jitteredLattice(5, 1.1, 0.1, 12)
			ref := s.Clone()
			NewNaive(small.force, small.bc).Evaluate(ref)
			mustCellList(small.cells, small.force, small.bc).Evaluate(s)
			expectStatesClose(s, ref, 1e-9)
		})
	})

	Context("with two particles", func() {
		var pair setup

		BeforeEach(func() {
			pair = newSetup(10, cutoff, physics.ForceLennardJones)
		})

		It("ignores a pair beyond the cutoff", func() {
			s := dynamo.NewSystemState(2)
			s.Positions[0] = r3.Vec{X: 1, Y: 5, Z: 5}
			s.Positions[1] = r3.Vec{X: 4, Y: 5, Z: 5}
			mustCellList(pair.cells, pair.force, pair.bc).Evaluate(s)

			Expect(s.Forces[0]).To(Equal(r3.Vec{}))
			Expect(s.Forces[1]).To(Equal(r3.Vec{}))
			Expect(s.PotentialEnergy).To(BeZero())
			Expect(s.Virial).To(BeZero())
		})

		It("interacts through the periodic face", func() {
			s := dynamo.NewSystemState(2)
			s.Positions[0] = r3.Vec{X: 0.5, Y: 5, Z: 5}
			s.Positions[1] = r3.Vec{X: 9.5, Y: 5, Z: 5}
			mustCellList(pair.cells, pair.force, pair.bc).Evaluate(s)

			Expect(s.Forces[0].X).To(BeNumerically("~", 24, 1e-9))
			Expect(s.Forces[1].X).To(BeNumerically("~", -24, 1e-9))
			Expect(s.PotentialEnergy).To(BeNumerically("~", 0, 1e-12))
		})
	})

	Context("with mismatched inputs", func() {
		It("rejects cells narrower than the cutoff", func() {
			bc, err := boundary.NewPeriodicCube(10, cutoff)
			Expect(err).NotTo(HaveOccurred())
			narrow, err := celllist.New(bc.Box(), 1.0)
			Expect(err).NotTo(HaveOccurred())
			lj, err := physics.NewLennardJones(cutoff)
			Expect(err).NotTo(HaveOccurred())

			_, err = NewCellList(narrow, lj, bc)
			Expect(err).To(MatchError(dynamo.ErrInvalidCutoff))
			Expect(err).To(MatchError(dynamo.ErrConfiguration))
		})

		It("rejects cells built for another box", func() {
			bc, err := boundary.NewPeriodicCube(10, cutoff)
			Expect(err).NotTo(HaveOccurred())
			other, err := dynamo.NewCube(12)
			Expect(err).NotTo(HaveOccurred())
			cells, err := celllist.New(other, cutoff)
			Expect(err).NotTo(HaveOccurred())
			lj, err := physics.NewLennardJones(cutoff)
			Expect(err).NotTo(HaveOccurred())

			_, err = NewCellList(cells, lj, bc)
			Expect(err).To(MatchError(dynamo.ErrInvalidDimensions))
		})

		It("accepts cells exactly one cutoff wide", func() {
			exact := newSetup(10, 2.5, physics.ForceLennardJones)
			Expect(exact.cells.Shape()).To(Equal([3]int{4, 4, 4}))
			_, err := NewCellList(exact.cells, exact.force, exact.bc)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	It("leaves a zero-force state untouched", func() {
		zero := newSetup(k*spacing, cutoff, physics.ForceZero)
		mustCellList(zero.cells, zero.force, zero.bc, WithWorkers(4)).Evaluate(state)
		for _, f := range state.Forces {
			Expect(f).To(Equal(r3.Vec{}))
		}
		Expect(state.PotentialEnergy).To(BeZero())
	})
})

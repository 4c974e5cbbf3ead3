// Package forces accumulates pairwise interactions into a system state.
package forces

import (
	"fmt"
	"runtime"

	"github.com/san-kum/ljsim/internal/boundary"
	"github.com/san-kum/ljsim/internal/celllist"
	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// Calculation overwrites the forces, potential energy and virial of a state.
type Calculation interface {
	Evaluate(s *dynamo.SystemState)
}

// minCellsPerWorker keeps goroutine overhead below the work it splits.
const minCellsPerWorker = 8

type CellList struct {
	cells   *celllist.Array
	force   physics.PairwiseForce
	bc      *boundary.Periodic
	workers int

	local []partial
}

// partial is one worker's private accumulator.
type partial struct {
	forces    []r3.Vec
	potential float64
	virial    float64
}

type Option func(*CellList)

// WithWorkers splits the cell sweep across n goroutines. n <= 0 uses every
// CPU. The default is a single serial sweep, which is deterministic.
func WithWorkers(n int) Option {
	return func(c *CellList) {
		if n <= 0 {
			n = runtime.NumCPU()
		}
		c.workers = n
	}
}

// cellSlack absorbs rounding in edge / floor(edge / cutoff).
const cellSlack = 1e-12

// NewCellList checks that cells and bc describe the same box and that every
// cell is at least as wide as the force cutoff, so no interacting pair can
// fall outside neighbouring cells.
func NewCellList(cells *celllist.Array, force physics.PairwiseForce, bc *boundary.Periodic, opts ...Option) (*CellList, error) {
	if cells.Box() != bc.Box() {
		return nil, fmt.Errorf("cell box %s, boundary box %s: %w", cells.Box(), bc.Box(), dynamo.ErrInvalidDimensions)
	}
	rc := force.CutoffLength()
	size := cells.CellSize()
	for axis, w := range [3]float64{size.X, size.Y, size.Z} {
		if w < rc*(1-cellSlack) {
			return nil, fmt.Errorf("cell width %g on axis %d below cutoff %g: %w", w, axis, rc, dynamo.ErrInvalidCutoff)
		}
	}

	c := &CellList{cells: cells, force: force, bc: bc, workers: 1}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *CellList) Workers() int { return c.workers }

func (c *CellList) Evaluate(s *dynamo.SystemState) {
	c.cells.Rebuild(s.Positions)
	n := s.ParticleCount()

	if c.workers <= 1 || c.cells.CellCount() < 2*minCellsPerWorker {
		clear(s.Forces)
		s.PotentialEnergy, s.Virial = c.sweep(s.Positions, s.Forces, 0, c.cells.CellCount())
		return
	}

	c.ensureScratch(n)
	dynamo.ParallelFor(c.cells.CellCount(), c.workers, minCellsPerWorker, func(w, start, end int) {
		p := &c.local[w]
		p.potential, p.virial = c.sweep(s.Positions, p.forces, start, end)
	})

	clear(s.Forces)
	s.PotentialEnergy, s.Virial = 0, 0
	for w := range c.local {
		p := &c.local[w]
		for i, f := range p.forces {
			s.Forces[i] = r3.Add(s.Forces[i], f)
		}
		s.PotentialEnergy += p.potential
		s.Virial += p.virial
	}
}

func (c *CellList) ensureScratch(n int) {
	if len(c.local) != c.workers {
		c.local = make([]partial, c.workers)
	}
	// ParallelFor may hand out fewer chunks than there are buffers, so every
	// buffer is reset up front rather than by the worker that owns it.
	for w := range c.local {
		p := &c.local[w]
		if len(p.forces) != n {
			p.forces = make([]r3.Vec, n)
		} else {
			clear(p.forces)
		}
		p.potential, p.virial = 0, 0
	}
}

// sweep handles cells [start, end): the pairs inside each cell and the pairs
// between it and its forward neighbours.
func (c *CellList) sweep(pos []r3.Vec, out []r3.Vec, start, end int) (potential, virial float64) {
	rc2 := c.force.SquareCutoffLength()

	interact := func(i, j int) {
		r := c.bc.Separation(pos[i], pos[j])
		if r3.Norm2(r) >= rc2 {
			return
		}
		fc := c.force.Compute(r)
		out[i] = r3.Add(out[i], fc.Force)
		out[j] = r3.Sub(out[j], fc.Force)
		potential += fc.Potential
		virial += fc.Virial
	}

	for cell := start; cell < end; cell++ {
		members := c.cells.Cell(cell)
		for a, i := range members {
			for _, j := range members[a+1:] {
				interact(i, j)
			}
		}
		for _, nb := range c.cells.ForwardNeighbors(cell) {
			others := c.cells.Cell(nb)
			for _, i := range members {
				for _, j := range others {
					interact(i, j)
				}
			}
		}
	}
	return potential, virial
}

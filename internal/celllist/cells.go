// Package celllist partitions particles into a periodic grid of cells at
// least one cutoff wide, so that interacting pairs are only searched for in
// neighbouring cells.
//
// The grid is a flat arena: cell (x, y, z) has linear index x + nx*(y + ny*z)
// and its members occupy a contiguous range of a single index slice.
package celllist

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/ljsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// CellList holds the particle indices of one cell. It aliases the arena and
// is only valid until the next Rebuild.
type CellList []int

// Coord is a cell coordinate. Out-of-range components wrap periodically.
type Coord [3]int

type Array struct {
	box   dynamo.BoundingBox
	shape [3]int
	scale [3]float64 // cells per unit length along each axis

	start     []int // start[c]..start[c+1] is cell c's range in members
	members   []int
	cellOf    []int
	neighbors [][]int
	forward   [][]int
}

func New(box dynamo.BoundingBox, cutoff float64) (*Array, error) {
	if err := box.Dimensions().Validate(); err != nil {
		return nil, err
	}
	if !(cutoff > 0) || math.IsInf(cutoff, 0) {
		return nil, fmt.Errorf("%w: got %g", dynamo.ErrInvalidCutoff, cutoff)
	}

	a := &Array{box: box}
	for axis := 0; axis < 3; axis++ {
		n := int(math.Floor(box.Edge(axis) / cutoff))
		if n < 1 {
			n = 1
		}
		a.shape[axis] = n
		a.scale[axis] = float64(n) / box.Edge(axis)
	}

	cells := a.CellCount()
	a.start = make([]int, cells+1)
	a.neighbors = make([][]int, cells)
	a.forward = make([][]int, cells)
	for c := 0; c < cells; c++ {
		a.neighbors[c] = a.computeNeighbors(a.CoordOf(c))
		for _, nb := range a.neighbors[c] {
			if nb > c {
				a.forward[c] = append(a.forward[c], nb)
			}
		}
	}

	return a, nil
}

func (a *Array) Box() dynamo.BoundingBox { return a.box }

func (a *Array) Shape() [3]int { return a.shape }

func (a *Array) CellCount() int { return a.shape[0] * a.shape[1] * a.shape[2] }

func (a *Array) CellSize() r3.Vec {
	return r3.Vec{
		X: a.box.Edge(0) / float64(a.shape[0]),
		Y: a.box.Edge(1) / float64(a.shape[1]),
		Z: a.box.Edge(2) / float64(a.shape[2]),
	}
}

func (a *Array) Index(c Coord) int {
	x := pmod(c[0], a.shape[0])
	y := pmod(c[1], a.shape[1])
	z := pmod(c[2], a.shape[2])
	return x + a.shape[0]*(y+a.shape[1]*z)
}

func (a *Array) CoordOf(index int) Coord {
	nx, ny := a.shape[0], a.shape[1]
	return Coord{index % nx, (index / nx) % ny, index / (nx * ny)}
}

// CoordFor returns the cell containing p. Positions are expected to be
// wrapped, but anything outside the box is still folded onto the grid.
func (a *Array) CoordFor(p r3.Vec) Coord {
	return Coord{
		pmod(int(math.Floor(p.X*a.scale[0])), a.shape[0]),
		pmod(int(math.Floor(p.Y*a.scale[1])), a.shape[1]),
		pmod(int(math.Floor(p.Z*a.scale[2])), a.shape[2]),
	}
}

// Rebuild clears every cell and reassigns all particles. It does not allocate
// once the arena has grown to the particle count.
func (a *Array) Rebuild(positions []r3.Vec) {
	n := len(positions)
	if cap(a.members) < n {
		a.members = make([]int, n)
		a.cellOf = make([]int, n)
	}
	a.members = a.members[:n]
	a.cellOf = a.cellOf[:n]

	for c := range a.start {
		a.start[c] = 0
	}
	for i, p := range positions {
		c := a.Index(a.CoordFor(p))
		a.cellOf[i] = c
		a.start[c+1]++
	}
	for c := 1; c < len(a.start); c++ {
		a.start[c] += a.start[c-1]
	}

	// fill back to front so each cell lists its particles in ascending order
	for i := n - 1; i >= 0; i-- {
		c := a.cellOf[i]
		a.start[c+1]--
		a.members[a.start[c+1]] = i
	}
	// start[c+1] now points at the beginning of cell c; shift back into place
	copy(a.start, a.start[1:])
	a.start[len(a.start)-1] = n
}

// Cell returns the members of the cell with the given linear index.
func (a *Array) Cell(index int) CellList {
	return CellList(a.members[a.start[index]:a.start[index+1]])
}

// CellOf returns the linear cell index particle i was assigned to.
func (a *Array) CellOf(i int) int { return a.cellOf[i] }

// NeighborsOf returns the distinct cells of the 3x3x3 block centred on c,
// including c itself. On grids with fewer than three cells along an axis the
// wrapped offsets land on the same cell more than once; it is listed once.
func (a *Array) NeighborsOf(c Coord) []int {
	return a.neighbors[a.Index(c)]
}

// ForwardNeighbors returns the neighbours of cell index with a larger linear
// index. Walking every cell's own pairs plus its forward neighbours visits
// each unordered pair of neighbouring cells exactly once.
func (a *Array) ForwardNeighbors(index int) []int {
	return a.forward[index]
}

// CheckInvariants panics unless every particle in [0, n) sits in exactly one
// cell, and that cell matches its recorded assignment.
func (a *Array) CheckInvariants(n int) {
	if len(a.members) != n {
		panic(fmt.Sprintf("celllist: %d particles assigned, want %d", len(a.members), n))
	}
	seen := make([]bool, n)
	for c := 0; c < a.CellCount(); c++ {
		for _, i := range a.Cell(c) {
			if i < 0 || i >= n {
				panic(fmt.Sprintf("celllist: particle index %d out of range", i))
			}
			if seen[i] {
				panic(fmt.Sprintf("celllist: particle %d assigned twice", i))
			}
			if a.cellOf[i] != c {
				panic(fmt.Sprintf("celllist: particle %d found in cell %d, recorded in %d", i, c, a.cellOf[i]))
			}
			seen[i] = true
		}
	}
	for i, ok := range seen {
		if !ok {
			panic(fmt.Sprintf("celllist: particle %d missing from every cell", i))
		}
	}
}

func (a *Array) computeNeighbors(c Coord) []int {
	set := make(map[int]struct{}, 27)
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				set[a.Index(Coord{c[0] + dx, c[1] + dy, c[2] + dz})] = struct{}{}
			}
		}
	}
	out := make([]int, 0, len(set))
	for idx := range set {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

func pmod(x, y int) int {
	m := x % y
	if m < 0 {
		m += y
	}
	return m
}

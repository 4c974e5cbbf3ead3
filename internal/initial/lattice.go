package initial

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const sitesPerCell = 4

// fccSites are the basis of the conventional FCC cell in units of the lattice
// constant.
var fccSites = [sitesPerCell]r3.Vec{
	{X: 0, Y: 0, Z: 0},
	{X: 0.5, Y: 0.5, Z: 0},
	{X: 0.5, Y: 0, Z: 0.5},
	{X: 0, Y: 0.5, Z: 0.5},
}

// FCC is a cube of cellsPerSide^3 conventional cells.
type FCC struct {
	cellsPerSide int
	constant     float64
}

// NewFCC sizes the smallest lattice holding count sites whose fully occupied
// density would be the one requested.
func NewFCC(count int, density float64) FCC {
	return FCC{
		cellsPerSide: cellsFor(count),
		constant:     math.Cbrt(sitesPerCell / density),
	}
}

// cellsFor is ceil(cbrt(count/4)) computed without trusting the cube root to
// be exact on perfect cubes.
func cellsFor(count int) int {
	k := int(math.Round(math.Cbrt(float64(count) / sitesPerCell)))
	for sitesPerCell*k*k*k < count {
		k++
	}
	for k > 1 && sitesPerCell*(k-1)*(k-1)*(k-1) >= count {
		k--
	}
	return max(k, 1)
}

func (l FCC) CellsPerSide() int { return l.cellsPerSide }

// Constant is the edge length of one conventional cell.
func (l FCC) Constant() float64 { return l.constant }

func (l FCC) Side() float64 { return float64(l.cellsPerSide) * l.constant }

// Site returns lattice site index, counting site fastest, then z, y, x.
func (l FCC) Site(index int) r3.Vec {
	s := index % sitesPerCell
	cell := index / sitesPerCell
	z := cell % l.cellsPerSide
	y := (cell / l.cellsPerSide) % l.cellsPerSide
	x := cell / (l.cellsPerSide * l.cellsPerSide)
	base := r3.Vec{X: float64(x), Y: float64(y), Z: float64(z)}
	return r3.Scale(l.constant, r3.Add(base, fccSites[s]))
}

// Fill writes the first len(dst) sites into dst.
func (l FCC) Fill(dst []r3.Vec) {
	for i := range dst {
		dst[i] = l.Site(i)
	}
}

// Package boundary implements periodic boundary conditions on a rectangular box.
//
// Positions are kept in the half-open range [0, L) on every axis. Separations
// between particles are reduced to the nearest periodic image.
package boundary

import (
	"fmt"
	"math"

	"github.com/san-kum/ljsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

type Periodic struct {
	box  dynamo.BoundingBox
	edge r3.Vec
}

// NewPeriodic checks that the minimum-image convention is unambiguous for the
// given cutoff: no particle may see two images of the same neighbour.
func NewPeriodic(box dynamo.BoundingBox, cutoff float64) (*Periodic, error) {
	if err := box.Dimensions().Validate(); err != nil {
		return nil, err
	}
	if !(cutoff > 0) || math.IsInf(cutoff, 0) {
		return nil, fmt.Errorf("%w: got %g", dynamo.ErrInvalidCutoff, cutoff)
	}
	if cutoff > box.MinEdge()/2 {
		return nil, fmt.Errorf("%w: cutoff %g, box %s", dynamo.ErrCutoffTooLarge, cutoff, box)
	}
	return &Periodic{box: box, edge: box.Vec()}, nil
}

func NewPeriodicCube(side, cutoff float64) (*Periodic, error) {
	box, err := dynamo.NewCube(side)
	if err != nil {
		return nil, err
	}
	return NewPeriodic(box, cutoff)
}

func (p *Periodic) Box() dynamo.BoundingBox { return p.box }

// Wrap moves every position into the canonical box.
func (p *Periodic) Wrap(s *dynamo.SystemState) {
	for i := range s.Positions {
		s.Positions[i] = p.WrapPosition(s.Positions[i])
	}
}

// Apply is Wrap in operator form.
func (p *Periodic) Apply(s *dynamo.SystemState) *dynamo.SystemState {
	p.Wrap(s)
	return s
}

func (p *Periodic) WrapPosition(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: wrap(v.X, p.edge.X),
		Y: wrap(v.Y, p.edge.Y),
		Z: wrap(v.Z, p.edge.Z),
	}
}

// MinimumImage maps a raw separation to the nearest periodic image. For each
// component it picks whichever of d, d-L, d+L has the smallest magnitude.
func (p *Periodic) MinimumImage(d r3.Vec) r3.Vec {
	return r3.Vec{
		X: nearest(d.X, p.edge.X),
		Y: nearest(d.Y, p.edge.Y),
		Z: nearest(d.Z, p.edge.Z),
	}
}

// Separation returns the minimum-image vector pointing to a from b.
func (p *Periodic) Separation(a, b r3.Vec) r3.Vec {
	return p.MinimumImage(r3.Sub(a, b))
}

func wrap(x, l float64) float64 {
	if x >= 0 && x < l {
		return x
	}
	x -= l * math.Floor(x/l)
	if x < 0 {
		x += l
	}
	// a tiny negative x rounds up to exactly l
	if x >= l {
		x = 0
	}
	return x
}

// math.Round is odd-symmetric, which keeps MinimumImage antisymmetric even
// for separations of exactly half an edge.
func nearest(d, l float64) float64 {
	return d - l*math.Round(d/l)
}

package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Dimensions are the edge lengths of the simulation box.
type Dimensions struct {
	X, Y, Z float64
}

// Cube returns Dimensions with all three edges equal to side.
func Cube(side float64) Dimensions {
	return Dimensions{X: side, Y: side, Z: side}
}

func (d Dimensions) Validate() error {
	for axis, v := range [3]float64{d.X, d.Y, d.Z} {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: edge %d is %g", ErrInvalidDimensions, axis, v)
		}
	}
	return nil
}

// BoundingBox is the immutable periodic simulation cell.
type BoundingBox struct {
	dims [4]float64
}

func NewBoundingBox(d Dimensions) (BoundingBox, error) {
	if err := d.Validate(); err != nil {
		return BoundingBox{}, err
	}
	return BoundingBox{dims: [4]float64{d.X, d.Y, d.Z, 1.0}}, nil
}

func NewCube(side float64) (BoundingBox, error) {
	return NewBoundingBox(Cube(side))
}

func (b BoundingBox) Dimensions() Dimensions {
	return Dimensions{X: b.dims[0], Y: b.dims[1], Z: b.dims[2]}
}

// Array returns the edges in homogeneous form; the fourth component is always 1.
func (b BoundingBox) Array() [4]float64 { return b.dims }

func (b BoundingBox) Edge(axis int) float64 { return b.dims[axis] }

func (b BoundingBox) Vec() r3.Vec { return r3.Vec{X: b.dims[0], Y: b.dims[1], Z: b.dims[2]} }

func (b BoundingBox) Volume() float64 { return b.dims[0] * b.dims[1] * b.dims[2] }

func (b BoundingBox) MinEdge() float64 {
	return math.Min(b.dims[0], math.Min(b.dims[1], b.dims[2]))
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("%gx%gx%g", b.dims[0], b.dims[1], b.dims[2])
}

// SystemState holds the per-particle kinematics and the dynamic totals of the
// last force evaluation. Mass is normalised to one unless the integrator says
// otherwise, so Forces double as accelerations.
type SystemState struct {
	Positions     []r3.Vec
	Velocities    []r3.Vec
	Forces        []r3.Vec
	Displacements []r3.Vec // unwrapped travel since the last ClearDisplacements

	PotentialEnergy float64
	Virial          float64
	Time            float64
}

func NewSystemState(n int) *SystemState {
	if n < 0 {
		panic(fmt.Sprintf("dynamo: negative particle count %d", n))
	}
	return &SystemState{
		Positions:     make([]r3.Vec, n),
		Velocities:    make([]r3.Vec, n),
		Forces:        make([]r3.Vec, n),
		Displacements: make([]r3.Vec, n),
	}
}

func (s *SystemState) ParticleCount() int { return len(s.Positions) }

// CheckInvariants panics if the parallel sequences disagree in length.
func (s *SystemState) CheckInvariants() {
	n := len(s.Positions)
	if len(s.Velocities) != n || len(s.Forces) != n || len(s.Displacements) != n {
		panic(fmt.Sprintf("dynamo: inconsistent state lengths: positions=%d velocities=%d forces=%d displacements=%d",
			n, len(s.Velocities), len(s.Forces), len(s.Displacements)))
	}
}

func (s *SystemState) Clone() *SystemState {
	c := &SystemState{
		Positions:       make([]r3.Vec, len(s.Positions)),
		Velocities:      make([]r3.Vec, len(s.Velocities)),
		Forces:          make([]r3.Vec, len(s.Forces)),
		Displacements:   make([]r3.Vec, len(s.Displacements)),
		PotentialEnergy: s.PotentialEnergy,
		Virial:          s.Virial,
		Time:            s.Time,
	}
	copy(c.Positions, s.Positions)
	copy(c.Velocities, s.Velocities)
	copy(c.Forces, s.Forces)
	copy(c.Displacements, s.Displacements)
	return c
}

// IsValid reports whether every position, velocity and force component is finite.
func (s *SystemState) IsValid() bool {
	_, ok := s.FirstInvalid()
	return ok
}

// FirstInvalid returns the first particle carrying a NaN or Inf component.
func (s *SystemState) FirstInvalid() (int, bool) {
	for i := range s.Positions {
		if !finite(s.Positions[i]) || !finite(s.Velocities[i]) || !finite(s.Forces[i]) {
			return i, false
		}
	}
	return -1, true
}

func finite(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// Operator transforms a state in place and returns it so calls can be chained.
type Operator func(*SystemState) *SystemState

// Identity returns the state unchanged.
func Identity(s *SystemState) *SystemState { return s }

// Compose returns an operator applying ops left to right.
func Compose(ops ...Operator) Operator {
	return func(s *SystemState) *SystemState {
		for _, op := range ops {
			s = op(s)
		}
		return s
	}
}

// Apply runs ops over s left to right.
func Apply(s *SystemState, ops ...Operator) *SystemState {
	return Compose(ops...)(s)
}

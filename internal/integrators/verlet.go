package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/ljsim/internal/boundary"
	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/forces"
	"gonum.org/v1/gonum/spatial/r3"
)

// Integrator advances a state by one fixed timestep.
type Integrator interface {
	Step(s *dynamo.SystemState) error
}

type VelocityVerlet struct {
	calc forces.Calculation
	bc   *boundary.Periodic
	dt   float64
	mass float64

	steps int
	err   error
}

type Option func(*VelocityVerlet)

// WithMass sets the particle mass. NewVelocityVerlet rejects m <= 0.
func WithMass(m float64) Option {
	return func(v *VelocityVerlet) { v.mass = m }
}

func NewVelocityVerlet(calc forces.Calculation, bc *boundary.Periodic, dt float64, opts ...Option) (*VelocityVerlet, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: got %g", dynamo.ErrInvalidTimestep, dt)
	}
	v := &VelocityVerlet{calc: calc, bc: bc, dt: dt, mass: 1}
	for _, opt := range opts {
		opt(v)
	}
	if !(v.mass > 0) || math.IsInf(v.mass, 0) {
		return nil, fmt.Errorf("%w: got %g", dynamo.ErrInvalidMass, v.mass)
	}
	return v, nil
}

func (v *VelocityVerlet) Timestep() float64 { return v.dt }
func (v *VelocityVerlet) Mass() float64     { return v.mass }

// Steps counts the steps taken by this integrator, failed ones included.
func (v *VelocityVerlet) Steps() int { return v.steps }

// Step expects s.Forces to hold the forces at the current positions, either
// from Prime or from the previous step.
func (v *VelocityVerlet) Step(s *dynamo.SystemState) error {
	v.steps++
	halfDt := 0.5 * v.dt / v.mass

	for i := range s.Velocities {
		s.Velocities[i] = r3.Add(s.Velocities[i], r3.Scale(halfDt, s.Forces[i]))
		drift := r3.Scale(v.dt, s.Velocities[i])
		s.Positions[i] = r3.Add(s.Positions[i], drift)
		s.Displacements[i] = r3.Add(s.Displacements[i], drift)
	}

	v.bc.Wrap(s)
	v.calc.Evaluate(s)

	for i := range s.Velocities {
		s.Velocities[i] = r3.Add(s.Velocities[i], r3.Scale(halfDt, s.Forces[i]))
	}
	s.Time += v.dt

	if i, ok := s.FirstInvalid(); !ok {
		return &dynamo.StepError{Step: v.steps, Time: s.Time, Particle: i, Wrapped: dynamo.ErrUnstable}
	}
	return nil
}

// Run takes steps until one fails.
func (v *VelocityVerlet) Run(s *dynamo.SystemState, steps int) error {
	for k := 0; k < steps; k++ {
		if err := v.Step(s); err != nil {
			return err
		}
	}
	return nil
}

// Apply is Step in operator form. After the first failure it stops stepping,
// and the error is returned by Err.
func (v *VelocityVerlet) Apply(s *dynamo.SystemState) *dynamo.SystemState {
	if v.err == nil {
		v.err = v.Step(s)
	}
	return s
}

func (v *VelocityVerlet) Err() error { return v.err }

// Prime evaluates the initial forces. Call it once before the first step and
// again after anything other than the integrator moves the particles.
func Prime(calc forces.Calculation, s *dynamo.SystemState) {
	s.CheckInvariants()
	calc.Evaluate(s)
}

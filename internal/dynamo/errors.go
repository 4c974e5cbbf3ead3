package dynamo

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the root of every error detected before a run starts.
var ErrConfiguration = errors.New("dynamo: invalid configuration")

// Configuration errors. Each wraps ErrConfiguration.
var (
	// ErrInvalidDimensions indicates a box edge that is zero, negative or not finite.
	ErrInvalidDimensions = fmt.Errorf("%w: box edge lengths must be positive", ErrConfiguration)

	// ErrInvalidCutoff indicates a cutoff length that is zero, negative or not finite.
	ErrInvalidCutoff = fmt.Errorf("%w: cutoff length must be positive", ErrConfiguration)

	// ErrCutoffTooLarge indicates a cutoff exceeding half the smallest box edge,
	// where the minimum-image convention becomes ambiguous.
	ErrCutoffTooLarge = fmt.Errorf("%w: cutoff exceeds half the smallest box edge", ErrConfiguration)

	// ErrCutoffTooShort indicates a splined potential whose cutoff lies inside the well.
	ErrCutoffTooShort = fmt.Errorf("%w: cutoff is inside the potential minimum", ErrConfiguration)

	// ErrInvalidTimestep indicates a zero, negative or non-finite timestep.
	ErrInvalidTimestep = fmt.Errorf("%w: timestep must be positive", ErrConfiguration)

	// ErrInvalidMass indicates a non-positive particle mass.
	ErrInvalidMass = fmt.Errorf("%w: mass must be positive", ErrConfiguration)

	// ErrInvalidParameters indicates bad particle count, density or temperature.
	ErrInvalidParameters = fmt.Errorf("%w: invalid system parameters", ErrConfiguration)

	// ErrUnknownForce indicates a force law name that is not registered.
	ErrUnknownForce = fmt.Errorf("%w: unknown force law", ErrConfiguration)
)

// Runtime errors.
var (
	// ErrUnstable indicates a non-finite position, velocity or force after a step.
	ErrUnstable = errors.New("dynamo: simulation unstable (non-finite state)")

	// ErrEquilibrationTimeout indicates the thermostat never reached a steady state.
	ErrEquilibrationTimeout = errors.New("dynamo: equilibration did not reach steady state")

	// ErrTemperatureDrift indicates an observation whose mean temperature left
	// the tolerance band around the target.
	ErrTemperatureDrift = errors.New("dynamo: temperature drifted outside observation tolerance")
)

// StepError wraps an error with the step that produced it.
type StepError struct {
	Step     int
	Time     float64
	Particle int
	Wrapped  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f, particle %d): %v", e.Step, e.Time, e.Particle, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}

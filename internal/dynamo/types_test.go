package dynamo

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestDimensions_Validate(t *testing.T) {
	tests := []struct {
		name  string
		dims  Dimensions
		valid bool
	}{
		{"cube", Cube(1.5), true},
		{"box", Dimensions{1, 2, 3}, true},
		{"zero x", Dimensions{0, 1, 1}, false},
		{"negative y", Dimensions{1, -1, 1}, false},
		{"NaN z", Dimensions{1, 1, math.NaN()}, false},
		{"Inf x", Dimensions{math.Inf(1), 1, 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dims.Validate()
			if tt.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.valid {
				if !errors.Is(err, ErrInvalidDimensions) {
					t.Errorf("expected ErrInvalidDimensions, got %v", err)
				}
				if !errors.Is(err, ErrConfiguration) {
					t.Errorf("expected error to wrap ErrConfiguration, got %v", err)
				}
			}
		})
	}
}

func TestBoundingBox(t *testing.T) {
	box, err := NewBoundingBox(Dimensions{2, 3, 4})
	if err != nil {
		t.Fatalf("NewBoundingBox failed: %v", err)
	}

	if box.Volume() != 24 {
		t.Errorf("Volume() = %v, want 24", box.Volume())
	}
	if got := box.Array(); got != [4]float64{2, 3, 4, 1} {
		t.Errorf("Array() = %v", got)
	}
	if box.MinEdge() != 2 {
		t.Errorf("MinEdge() = %v, want 2", box.MinEdge())
	}
	if box.Dimensions() != (Dimensions{2, 3, 4}) {
		t.Errorf("Dimensions() = %v", box.Dimensions())
	}

	if _, err := NewCube(-1); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("expected ErrInvalidDimensions for negative cube, got %v", err)
	}
}

func TestSystemState_IsValid(t *testing.T) {
	s := NewSystemState(3)
	if !s.IsValid() {
		t.Error("fresh state should be valid")
	}

	s.Velocities[1] = r3.Vec{X: math.NaN()}
	idx, ok := s.FirstInvalid()
	if ok || idx != 1 {
		t.Errorf("FirstInvalid() = (%d, %v), want (1, false)", idx, ok)
	}

	s.Velocities[1] = r3.Vec{}
	s.Forces[2] = r3.Vec{Z: math.Inf(-1)}
	if s.IsValid() {
		t.Error("state with Inf force should be invalid")
	}
}

func TestSystemState_CheckInvariantsPanics(t *testing.T) {
	s := NewSystemState(4)
	s.Forces = s.Forces[:3]

	defer func() {
		if recover() == nil {
			t.Error("expected panic on mismatched lengths")
		}
	}()
	s.CheckInvariants()
}

func TestSystemState_Clone(t *testing.T) {
	s := NewSystemState(2)
	s.Positions[0] = r3.Vec{X: 1, Y: 2, Z: 3}
	s.Time = 1.5

	c := s.Clone()
	c.Positions[0].X = 99

	if s.Positions[0].X != 1 {
		t.Error("Clone did not create independent copy")
	}
	if c.Time != 1.5 {
		t.Errorf("Clone lost time: %v", c.Time)
	}
}

func TestCompose(t *testing.T) {
	var calls []string
	op := func(name string) Operator {
		return func(s *SystemState) *SystemState {
			calls = append(calls, name)
			return s
		}
	}

	s := NewSystemState(1)
	got := Apply(s, op("f"), Identity, op("g"), op("h"))

	if got != s {
		t.Error("Apply should return the same state")
	}
	if len(calls) != 3 || calls[0] != "f" || calls[1] != "g" || calls[2] != "h" {
		t.Errorf("operators ran in wrong order: %v", calls)
	}

	if Compose()(s) != s {
		t.Error("empty composition should behave as identity")
	}
}

func TestStepError(t *testing.T) {
	err := &StepError{Step: 150, Time: 1.5, Particle: 7, Wrapped: ErrUnstable}
	expected := "step 150 (t=1.5000, particle 7): dynamo: simulation unstable (non-finite state)"
	if err.Error() != expected {
		t.Errorf("StepError.Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrUnstable) {
		t.Error("StepError should unwrap to ErrUnstable")
	}
}

func TestParallelFor(t *testing.T) {
	for _, workers := range []int{1, 2, 3, 8} {
		var sum atomic.Int64
		seen := make([]int32, 100)
		ParallelFor(len(seen), workers, 4, func(w, start, end int) {
			if w < 0 || w >= workers {
				t.Errorf("worker index %d out of range", w)
			}
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
				sum.Add(int64(i))
			}
		})

		for i, c := range seen {
			if c != 1 {
				t.Fatalf("workers=%d: index %d visited %d times", workers, i, c)
			}
		}
		if sum.Load() != 4950 {
			t.Errorf("workers=%d: sum = %d, want 4950", workers, sum.Load())
		}
	}
}

package sim

import (
	"time"

	"github.com/san-kum/ljsim/internal/config"
	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/metrics"
)

// Phase names a stage of a run.
type Phase string

const (
	PhaseEquilibration Phase = "equilibration"
	PhaseObservation   Phase = "observation"
)

// Observer is notified after every step with the measurement taken on the
// new state.
type Observer interface {
	OnMeasurement(step int, m metrics.ThermodynamicMeasurement)
}

// EventObserver is the optional interface for observers that want control
// decisions as well.
type EventObserver interface {
	OnEvent(e metrics.Event)
}

// SnapshotObserver is the optional interface for observers that want the
// raw particle state every output.snapshot_interval steps. The state must not
// be retained.
type SnapshotObserver interface {
	OnSnapshot(step int, s *dynamo.SystemState)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(step int, m metrics.ThermodynamicMeasurement)

func (f ObserverFunc) OnMeasurement(step int, m metrics.ThermodynamicMeasurement) { f(step, m) }

// Result summarises a run. On failure it describes the run up to the error.
type Result struct {
	Config             config.Config         `json:"config"`
	ParticleCount      int                   `json:"particle_count"`
	Box                dynamo.Dimensions     `json:"box"`
	Density            float64               `json:"density"`
	Observations       []metrics.Observation `json:"observations"`
	Adjustments        int                   `json:"adjustments"`
	EquilibrationSteps int                   `json:"equilibration_steps"`
	Steps              int                   `json:"steps"`
	Metrics            map[string]float64    `json:"metrics,omitempty"`
	Started            time.Time             `json:"started"`
	Elapsed            time.Duration         `json:"elapsed"`
	Error              string                `json:"error,omitempty"`
}

// Mean averages the observations field by field.
func (r *Result) Mean() metrics.Observation {
	var m metrics.Observation
	n := float64(len(r.Observations))
	if n == 0 {
		return m
	}
	for _, o := range r.Observations {
		m.Temperature += o.Temperature / n
		m.Pressure += o.Pressure / n
		m.SpecificHeat += o.SpecificHeat / n
		m.DiffusionCoefficient += o.DiffusionCoefficient / n
	}
	return m
}

package metrics

import "fmt"

type EventKind int

const (
	PhaseStart EventKind = iota
	AdjustTemperature
	RecordObservation
	PhaseComplete
	AbortSimulation
)

var eventKinds = map[string]EventKind{
	"phase_start":        PhaseStart,
	"adjust_temperature": AdjustTemperature,
	"record_observation": RecordObservation,
	"phase_complete":     PhaseComplete,
	"abort_simulation":   AbortSimulation,
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *EventKind) UnmarshalText(text []byte) error {
	v, ok := eventKinds[string(text)]
	if !ok {
		return fmt.Errorf("metrics: unknown event kind %q", text)
	}
	*k = v
	return nil
}

func (k EventKind) String() string {
	switch k {
	case PhaseStart:
		return "phase_start"
	case AdjustTemperature:
		return "adjust_temperature"
	case RecordObservation:
		return "record_observation"
	case PhaseComplete:
		return "phase_complete"
	case AbortSimulation:
		return "abort_simulation"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event marks a control decision taken during a run. Only the fields that
// apply to Kind are set.
type Event struct {
	Kind        EventKind    `json:"kind"`
	Step        int          `json:"step"`
	Time        float64      `json:"time"`
	Phase       string       `json:"phase,omitempty"`
	Temperature float64      `json:"temperature,omitempty"`
	Observation *Observation `json:"observation,omitempty"`
	Reason      string       `json:"reason,omitempty"`
}

func (e Event) String() string {
	switch e.Kind {
	case PhaseStart, PhaseComplete:
		return fmt.Sprintf("%s %s at step %d", e.Kind, e.Phase, e.Step)
	case AdjustTemperature:
		return fmt.Sprintf("%s: mean T=%.4f at step %d", e.Kind, e.Temperature, e.Step)
	case RecordObservation:
		if e.Observation != nil {
			o := e.Observation
			return fmt.Sprintf("%s at step %d: T=%.4f P=%.4f Cv=%.4f D=%.4g",
				e.Kind, e.Step, o.Temperature, o.Pressure, o.SpecificHeat, o.DiffusionCoefficient)
		}
	case AbortSimulation:
		return fmt.Sprintf("%s at step %d: %s", e.Kind, e.Step, e.Reason)
	}
	return fmt.Sprintf("%s at step %d", e.Kind, e.Step)
}

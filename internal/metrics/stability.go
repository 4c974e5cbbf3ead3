package metrics

// Stability is the fraction of measurements whose temperature lies within a
// relative tolerance of the target.
type Stability struct {
	name       string
	target     float64
	tolerance  float64
	violations int
	samples    int
}

func NewStability(target, tolerance float64) *Stability {
	return &Stability{
		name:      "temperature_stability",
		target:    target,
		tolerance: tolerance,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(m ThermodynamicMeasurement) {
	s.samples++
	if !WithinTolerance(m.Temperature, s.target, s.tolerance) {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

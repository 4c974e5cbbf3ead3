package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Observation is the result of one observation window.
type Observation struct {
	Temperature          float64 `json:"temperature"`
	Pressure             float64 `json:"pressure"`
	SpecificHeat         float64 `json:"specific_heat"`
	DiffusionCoefficient float64 `json:"diffusion_coefficient"`
}

// TemperatureAnalyzer is the moving average of the most recent temperatures.
type TemperatureAnalyzer struct {
	sample *MovingSample
}

func NewTemperatureAnalyzer(sampleSize int) *TemperatureAnalyzer {
	return &TemperatureAnalyzer{sample: NewMovingSample(sampleSize)}
}

func (a *TemperatureAnalyzer) Collect(m ThermodynamicMeasurement) {
	a.sample.Push(m.Temperature)
}

func (a *TemperatureAnalyzer) Result() float64 {
	if a.sample.Len() == 0 {
		return math.NaN()
	}
	return stat.Mean(a.sample.Values(), nil)
}

func (a *TemperatureAnalyzer) Reset() { a.sample.Reset() }

// ObservationComputer turns the most recent measurements into an
// Observation. In the microcanonical ensemble:
//
//	P   = rho (<T> + <W> / 3N)
//	C_V = (3/2) / (1 - (3/2) N Var(T) / <T>^2)
//	D   = (1/6) Cov(t, MSD) / Var(t)
//
// The specific heat follows Lebowitz, Percus and Verlet (1967); D is the slope
// of the least-squares line through MSD against time.
type ObservationComputer struct {
	density       float64
	particleCount int

	temperature *MovingSample
	virial      *MovingSample
	time        *MovingSample
	msd         *MovingSample
}

func NewObservationComputer(density float64, particleCount, sampleSize int) *ObservationComputer {
	return &ObservationComputer{
		density:       density,
		particleCount: particleCount,
		temperature:   NewMovingSample(sampleSize),
		virial:        NewMovingSample(sampleSize),
		time:          NewMovingSample(sampleSize),
		msd:           NewMovingSample(sampleSize),
	}
}

func (c *ObservationComputer) Collect(m ThermodynamicMeasurement) {
	c.temperature.Push(m.Temperature)
	c.virial.Push(m.Virial)
	c.time.Push(m.Time)
	c.msd.Push(m.MeanSquareDisplacement)
}

func (c *ObservationComputer) SampleSize() int { return c.temperature.Len() }

// Result needs at least two samples; with fewer every field is NaN.
func (c *ObservationComputer) Result() Observation {
	if c.temperature.Len() < 2 {
		nan := math.NaN()
		return Observation{nan, nan, nan, nan}
	}

	n := float64(c.particleCount)
	t, varT := stat.MeanVariance(c.temperature.Values(), nil)
	w := stat.Mean(c.virial.Values(), nil)

	times := c.time.Values()
	msd := c.msd.Values()

	return Observation{
		Temperature:          t,
		Pressure:             c.density * (t + w/(3*n)),
		SpecificHeat:         1.5 / (1 - 1.5*n*varT/(t*t)),
		DiffusionCoefficient: stat.Covariance(times, msd, nil) / stat.Variance(times, nil) / 6,
	}
}

func (c *ObservationComputer) Reset() {
	c.temperature.Reset()
	c.virial.Reset()
	c.time.Reset()
	c.msd.Reset()
}

// WithinTolerance reports RelativeError(got, want) < tol. A NaN anywhere
// is never within tolerance.
func WithinTolerance(got, want, tol float64) bool {
	return RelativeError(got, want) < tol
}

// RelativeError is |got - want| / |want|.
func RelativeError(got, want float64) float64 {
	return math.Abs(got-want) / math.Abs(want)
}

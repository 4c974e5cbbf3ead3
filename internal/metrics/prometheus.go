package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ljsim"

// Telemetry exports run progress as Prometheus metrics on its own registry.
// It is safe to feed from one run while another goroutine scrapes it.
type Telemetry struct {
	registry *prometheus.Registry

	steps        prometheus.Counter
	stepDuration prometheus.Histogram
	adjustments  prometheus.Counter
	observations prometheus.Counter
	aborts       prometheus.Counter

	time        prometheus.Gauge
	temperature prometheus.Gauge
	kinetic     prometheus.Gauge
	potential   prometheus.Gauge
	total       prometheus.Gauge
	pressure    prometheus.Gauge

	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func NewTelemetry() *Telemetry {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
	}

	t := &Telemetry{
		registry:     prometheus.NewRegistry(),
		steps:        counter("steps_total", "Integration steps taken."),
		adjustments:  counter("temperature_adjustments_total", "Velocity rescalings during equilibration."),
		observations: counter("observations_total", "Observations recorded."),
		aborts:       counter("aborts_total", "Runs aborted."),
		stepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Wall time between consecutive measurements.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		time:        gauge("simulation_time", "Simulated time in reduced units."),
		temperature: gauge("temperature", "Instantaneous temperature."),
		kinetic:     gauge("kinetic_energy", "Kinetic energy."),
		potential:   gauge("potential_energy", "Potential energy."),
		total:       gauge("total_energy", "Total energy."),
		pressure:    gauge("pressure", "Pressure of the latest observation."),
		now:         time.Now,
	}

	t.registry.MustRegister(
		t.steps, t.stepDuration, t.adjustments, t.observations, t.aborts,
		t.time, t.temperature, t.kinetic, t.potential, t.total, t.pressure,
	)
	return t
}

func (t *Telemetry) Registry() *prometheus.Registry { return t.registry }

func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{Registry: t.registry})
}

func (t *Telemetry) OnMeasurement(_ int, m ThermodynamicMeasurement) {
	t.mu.Lock()
	now := t.now()
	if !t.last.IsZero() {
		t.stepDuration.Observe(now.Sub(t.last).Seconds())
	}
	t.last = now
	t.mu.Unlock()

	t.steps.Inc()
	t.time.Set(m.Time)
	t.temperature.Set(m.Temperature)
	t.kinetic.Set(m.KineticEnergy)
	t.potential.Set(m.PotentialEnergy)
	t.total.Set(m.TotalEnergy)
}

func (t *Telemetry) OnEvent(e Event) {
	switch e.Kind {
	case AdjustTemperature:
		t.adjustments.Inc()
	case RecordObservation:
		t.observations.Inc()
		if e.Observation != nil {
			t.pressure.Set(e.Observation.Pressure)
		}
	case AbortSimulation:
		t.aborts.Inc()
	}
}

package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/san-kum/ljsim/internal/boundary"
	"github.com/san-kum/ljsim/internal/celllist"
	"github.com/san-kum/ljsim/internal/config"
	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/forces"
	"github.com/san-kum/ljsim/internal/initial"
	"github.com/san-kum/ljsim/internal/integrators"
	"github.com/san-kum/ljsim/internal/logging"
	"github.com/san-kum/ljsim/internal/metrics"
	"github.com/san-kum/ljsim/internal/physics"
	"github.com/san-kum/ljsim/internal/worker"
)

// progressEvery is the step interval of progress messages sent to the reporter.
const progressEvery = 100

// Simulation owns one system and runs it through equilibration and
// observation. It is not safe for concurrent use.
type Simulation struct {
	cfg       config.Config
	condition *initial.Condition
	state     *dynamo.SystemState
	bc        *boundary.Periodic
	calc      *forces.CellList
	verlet    *integrators.VelocityVerlet
	mass      float64

	logger    logr.Logger
	observers []Observer
	metrics   []metrics.Metric

	last metrics.ThermodynamicMeasurement
}

type Option func(*Simulation)

func WithLogger(l logr.Logger) Option {
	return func(s *Simulation) { s.logger = l }
}

func WithObserver(o Observer) Option {
	return func(s *Simulation) { s.observers = append(s.observers, o) }
}

// WithMetric adds a metric fed with every measurement. Its value lands in
// Result.Metrics under its name.
func WithMetric(m metrics.Metric) Option {
	return func(s *Simulation) { s.metrics = append(s.metrics, m) }
}

// New validates cfg and builds the initial condition and every engine
// component. Errors wrap dynamo.ErrConfiguration.
func New(cfg *config.Config, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sys := cfg.System

	cond, err := initial.New(initial.Parameters{
		ParticleCount: sys.ParticleCount,
		Density:       sys.Density,
		Temperature:   sys.Temperature,
		Seed:          sys.Seed,
	})
	if err != nil {
		return nil, err
	}

	bc, err := boundary.NewPeriodic(cond.Box, sys.Cutoff)
	if err != nil {
		return nil, fmt.Errorf("box %s: %w", cond.Box, err)
	}
	cells, err := celllist.New(cond.Box, sys.Cutoff)
	if err != nil {
		return nil, err
	}
	force, err := physics.NewForce(sys.Force, sys.Cutoff)
	if err != nil {
		return nil, err
	}
	calc, err := forces.NewCellList(cells, force, bc, forces.WithWorkers(sys.Workers))
	if err != nil {
		return nil, err
	}
	verlet, err := integrators.NewVelocityVerlet(calc, bc, sys.Timestep)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:       *cfg,
		condition: cond,
		state:     cond.State,
		bc:        bc,
		calc:      calc,
		verlet:    verlet,
		mass:      verlet.Mass(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AddObserver attaches o to the next Run.
func (s *Simulation) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulation) Config() config.Config { return s.cfg }

func (s *Simulation) Condition() *initial.Condition { return s.condition }

func (s *Simulation) State() *dynamo.SystemState { return s.state }

func (s *Simulation) Boundary() *boundary.Periodic { return s.bc }

func (s *Simulation) Integrator() integrators.Integrator { return s.verlet }

// Run equilibrates the system at the configured temperature, then records
// observation.count observations. It returns ctx.Err() if cancelled, checked
// between steps. The result is never nil.
func (s *Simulation) Run(ctx context.Context, r worker.Reporter) (*Result, error) {
	if r == nil {
		r = worker.Discard
	}
	res := &Result{
		Config:        s.cfg,
		ParticleCount: s.state.ParticleCount(),
		Box:           s.condition.Box.Dimensions(),
		Density:       s.condition.RealisedDensity(),
		Started:       time.Now(),
		Metrics:       make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	s.logger.Info("Starting simulation",
		"particles", res.ParticleCount, "box", s.condition.Box.String(),
		"density", res.Density, "temperature", s.cfg.System.Temperature,
		"force", s.cfg.System.Force, "workers", s.calc.Workers())
	worker.Reportf(r, "%d particles in %s (density %.4f)", res.ParticleCount, s.condition.Box, res.Density)

	integrators.Prime(s.calc, s.state)

	err := s.equilibrate(ctx, r, res)
	if err == nil {
		s.state = physics.ClearDisplacements(s.state)
		err = s.observe(ctx, r, res)
	}

	res.Steps = s.verlet.Steps()
	res.Elapsed = time.Since(res.Started)
	for _, m := range s.metrics {
		res.Metrics[m.Name()] = m.Value()
	}

	if err != nil {
		res.Error = err.Error()
		s.emit(metrics.Event{Kind: metrics.AbortSimulation, Reason: err.Error()})
		s.logger.Error(err, "Simulation aborted", "step", res.Steps)
		worker.Reportf(r, "aborted: %v", err)
		return res, err
	}

	s.logger.Info("Simulation complete", "steps", res.Steps, "elapsed", res.Elapsed.String())
	worker.Reportf(r, "complete: %d steps in %s", res.Steps, res.Elapsed.Round(time.Millisecond))
	return res, nil
}

func (s *Simulation) equilibrate(ctx context.Context, r worker.Reporter, res *Result) error {
	eq := s.cfg.Equilibration
	target := s.cfg.System.Temperature
	analyzer := metrics.NewTemperatureAnalyzer(eq.SampleSize)

	start := s.verlet.Steps()
	lastCheck, lastAdjust := start, start
	s.startPhase(r, PhaseEquilibration)

	for {
		m, err := s.advance(ctx, r)
		if err != nil {
			return err
		}
		analyzer.Collect(m)
		step := s.verlet.Steps()

		if step-lastCheck >= eq.AdjustmentInterval {
			lastCheck = step
			mean := analyzer.Result()
			if !metrics.WithinTolerance(mean, target, eq.Tolerance) {
				s.adjust(r, step, mean)
				lastAdjust = step
				res.Adjustments++
			}
		}

		if step-lastAdjust >= eq.SteadyStateTime {
			res.EquilibrationSteps = step - start
			s.completePhase(r, PhaseEquilibration)
			return nil
		}
		if step-start >= eq.Timeout {
			res.EquilibrationSteps = step - start
			return &dynamo.StepError{Step: step, Time: s.state.Time, Particle: -1, Wrapped: dynamo.ErrEquilibrationTimeout}
		}
	}
}

func (s *Simulation) adjust(r worker.Reporter, step int, mean float64) {
	target := s.cfg.System.Temperature
	if physics.Temperature(s.state, s.mass) > 0 {
		s.state = physics.SetTemperature(target, s.mass)(s.state)
	}
	s.logger.V(logging.DEBUG).Info("Rescaled velocities", "step", step, "mean", mean, "target", target)
	worker.Reportf(r, "step %d: mean temperature %.4f, rescaling to %.4f", step, mean, target)
	s.emit(metrics.Event{Kind: metrics.AdjustTemperature, Step: step, Time: s.state.Time, Temperature: mean})
}

func (s *Simulation) observe(ctx context.Context, r worker.Reporter, res *Result) error {
	obs := s.cfg.Observation
	target := s.cfg.System.Temperature
	computer := metrics.NewObservationComputer(res.Density, res.ParticleCount, obs.SampleSize)

	s.startPhase(r, PhaseObservation)

	for len(res.Observations) < obs.Count {
		for k := 0; k < obs.Interval; k++ {
			m, err := s.advance(ctx, r)
			if err != nil {
				return err
			}
			computer.Collect(m)
		}

		o := computer.Result()
		step := s.verlet.Steps()
		if !metrics.WithinTolerance(o.Temperature, target, obs.Tolerance) {
			return &dynamo.StepError{
				Step:     step,
				Time:     s.state.Time,
				Particle: -1,
				Wrapped:  fmt.Errorf("%w: mean %.4f, target %.4f", dynamo.ErrTemperatureDrift, o.Temperature, target),
			}
		}

		res.Observations = append(res.Observations, o)
		s.logger.V(logging.DEBUG).Info("Recorded observation", "step", step,
			"temperature", o.Temperature, "pressure", o.Pressure,
			"specificHeat", o.SpecificHeat, "diffusion", o.DiffusionCoefficient)
		worker.Reportf(r, "observation %d/%d: T=%.4f P=%.4f Cv=%.4f D=%.4g",
			len(res.Observations), obs.Count, o.Temperature, o.Pressure, o.SpecificHeat, o.DiffusionCoefficient)
		s.emit(metrics.Event{Kind: metrics.RecordObservation, Step: step, Time: s.state.Time, Observation: &o})
	}

	s.completePhase(r, PhaseObservation)
	return nil
}

// advance takes one step and fans the new measurement out.
func (s *Simulation) advance(ctx context.Context, r worker.Reporter) (metrics.ThermodynamicMeasurement, error) {
	if err := ctx.Err(); err != nil {
		return s.last, err
	}
	if err := s.verlet.Step(s.state); err != nil {
		return s.last, err
	}

	step := s.verlet.Steps()
	m := metrics.Measure(s.state, s.mass)
	s.last = m

	for _, mt := range s.metrics {
		mt.Observe(m)
	}
	for _, o := range s.observers {
		o.OnMeasurement(step, m)
	}
	if n := s.cfg.Output.SnapshotInterval; n > 0 && step%n == 0 {
		for _, o := range s.observers {
			if so, ok := o.(SnapshotObserver); ok {
				so.OnSnapshot(step, s.state)
			}
		}
	}
	if step%progressEvery == 0 {
		s.logger.V(logging.TRACE).Info("Step", "step", step, "time", m.Time,
			"temperature", m.Temperature, "energy", m.TotalEnergy)
		worker.Reportf(r, "step %d: t=%.3f T=%.4f E=%.4f", step, m.Time, m.Temperature, m.TotalEnergy)
	}
	return m, nil
}

func (s *Simulation) startPhase(r worker.Reporter, p Phase) {
	s.logger.Info("Phase started", "phase", p, "step", s.verlet.Steps())
	worker.Reportf(r, "%s started", p)
	s.emit(metrics.Event{Kind: metrics.PhaseStart, Step: s.verlet.Steps(), Time: s.state.Time, Phase: string(p)})
}

func (s *Simulation) completePhase(r worker.Reporter, p Phase) {
	s.logger.Info("Phase complete", "phase", p, "step", s.verlet.Steps())
	worker.Reportf(r, "%s complete at step %d", p, s.verlet.Steps())
	s.emit(metrics.Event{Kind: metrics.PhaseComplete, Step: s.verlet.Steps(), Time: s.state.Time, Phase: string(p)})
}

func (s *Simulation) emit(e metrics.Event) {
	if e.Step == 0 {
		e.Step = s.verlet.Steps()
		e.Time = s.state.Time
	}
	for _, o := range s.observers {
		if eo, ok := o.(EventObserver); ok {
			eo.OnEvent(e)
		}
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/ljsim/internal/config"
	"github.com/san-kum/ljsim/internal/metrics"
	"github.com/san-kum/ljsim/internal/sim"
	"github.com/san-kum/ljsim/internal/storage"
	"github.com/san-kum/ljsim/internal/tui"
	"github.com/san-kum/ljsim/internal/worker"
)

func newRunCommand(v *viper.Viper) *cobra.Command {
	var (
		name        string
		liveView    bool
		metricsAddr string
		noSave      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "equilibrate and observe one state point",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), v)
			if err != nil {
				return err
			}
			logger, err := newLogger()
			if err != nil {
				return err
			}
			if name == "" {
				name = sim.Label(cfg)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			var opts []sim.Option
			if metricsAddr != "" {
				tel := metrics.NewTelemetry()
				shutdown := serveMetrics(metricsAddr, tel, logger)
				defer shutdown()
				opts = append(opts, sim.WithObserver(tel))
			}

			s, err := newSimulation(cfg, logger, opts)
			if err != nil {
				return err
			}

			// The run directory only exists once the simulation could be built.
			var rec *storage.Recorder
			if !noSave {
				st := storage.New(cfg.Output.Directory)
				if err := st.Init(); err != nil {
					return err
				}
				if rec, err = st.NewRecorder(name); err != nil {
					return err
				}
				s.AddObserver(rec)
			}

			res, runErr := runOne(ctx, cmd.OutOrStdout(), s, name, liveView)

			if rec != nil && res != nil {
				meta, err := rec.Finish(res)
				if err != nil {
					return errors.Join(runErr, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved run %s\n", meta.ID)
			}
			if res != nil {
				printObservations(cmd.OutOrStdout(), res)
			}
			return runErr
		},
	}

	addConfigFlags(cmd.Flags())
	cmd.Flags().StringVar(&name, "name", "", "run name (default: the state point)")
	cmd.Flags().BoolVar(&liveView, "tui", false, "show live progress")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not write the run to the data directory")
	return cmd
}

// newSimulation builds a simulation carrying the metrics every run reports.
func newSimulation(cfg *config.Config, logger logr.Logger, opts []sim.Option) (*sim.Simulation, error) {
	base := []sim.Option{
		sim.WithLogger(logger),
		sim.WithMetric(metrics.NewEnergyDrift()),
		sim.WithMetric(metrics.NewMeanEnergy()),
		sim.WithMetric(metrics.NewStability(cfg.System.Temperature, cfg.Observation.Tolerance)),
	}
	return sim.New(cfg, append(base, opts...)...)
}

// runOne runs s on a worker goroutine and relays its messages either to out
// or to the live view.
func runOne(ctx context.Context, out io.Writer, s *sim.Simulation, name string, liveView bool) (*sim.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := s.Config()
	var program *tea.Program
	if liveView {
		model := tui.NewModel(name, cfg.TotalSteps(), s.Boundary().Box().Vec(), cancel)
		program = tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(out))
		observer := tui.NewObserver(program, 50*time.Millisecond)
		observer.Track(s.State())
		s.AddObserver(observer)
	}

	var res *sim.Result
	w := worker.Async(func(r worker.Reporter) error {
		var err error
		res, err = s.Run(ctx, r)
		return err
	})

	if program == nil {
		for {
			ok, msg := w.Read()
			if !ok {
				break
			}
			fmt.Fprintf(out, "%s %s\n", time.Now().Format("15:04:05"), msg)
		}
		return res, w.Wait()
	}

	go tui.Forward(program, w)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		cancel()
		_ = w.Wait()
		return res, err
	}
	return res, w.Wait()
}

func serveMetrics(addr string, tel *metrics.Telemetry, logger logr.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", tel.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(err, "Metrics server failed")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func printObservations(out io.Writer, res *sim.Result) {
	if len(res.Observations) == 0 {
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tT\tP\tCv\tD")
	for i, o := range res.Observations {
		fmt.Fprintf(w, "%d\t%.4f\t%.4f\t%.4f\t%.5g\n", i+1, o.Temperature, o.Pressure, o.SpecificHeat, o.DiffusionCoefficient)
	}
	m := res.Mean()
	fmt.Fprintf(w, "mean\t%.4f\t%.4f\t%.4f\t%.5g\n", m.Temperature, m.Pressure, m.SpecificHeat, m.DiffusionCoefficient)
	w.Flush()

	for name, value := range res.Metrics {
		fmt.Fprintf(out, "%s: %.6g\n", name, value)
	}
}

func newSweepCommand(v *viper.Viper) *cobra.Command {
	var (
		temperatures []float64
		densities    []float64
		parallel     int
		noSave       bool
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a grid of state points concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := resolveConfig(cmd.Flags(), v)
			if err != nil {
				return err
			}
			if len(temperatures) == 0 && len(densities) == 0 {
				return fmt.Errorf("no temperatures or densities given")
			}
			cfgs, err := sim.Grid(base, temperatures, densities)
			if err != nil {
				return err
			}
			logger, err := newLogger()
			if err != nil {
				return err
			}

			st := storage.New(base.Output.Directory)
			if !noSave {
				if err := st.Init(); err != nil {
					return err
				}
			}

			var (
				mu        sync.Mutex
				recorders = make(map[int]*storage.Recorder)
				buildErr  error
			)
			pool := sim.NewPool(parallel, func(i int, c *config.Config) []sim.Option {
				opts := []sim.Option{
					sim.WithLogger(logger.WithValues("run", sim.Label(c))),
					sim.WithMetric(metrics.NewEnergyDrift()),
				}
				if noSave {
					return opts
				}
				rec, err := st.NewRecorder("sweep " + sim.Label(c))
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					buildErr = errors.Join(buildErr, err)
					return opts
				}
				recorders[i] = rec
				return append(opts, sim.WithObserver(rec))
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			w := worker.Async(func(r worker.Reporter) error {
				results, err := pool.Run(ctx, cfgs, r)
				for i, rec := range recorders {
					var ferr error
					if res := results[i]; res != nil {
						_, ferr = rec.Finish(res)
					} else {
						ferr = rec.Discard()
					}
					err = errors.Join(err, ferr)
				}
				printSweep(cmd.OutOrStdout(), results)
				return errors.Join(err, buildErr)
			})
			for {
				ok, msg := w.Read()
				if !ok {
					break
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", time.Now().Format("15:04:05"), msg)
			}
			return w.Wait()
		},
	}

	addConfigFlags(cmd.Flags())
	cmd.Flags().Float64SliceVar(&temperatures, "temperatures", nil, "comma-separated target temperatures")
	cmd.Flags().Float64SliceVar(&densities, "densities", nil, "comma-separated number densities")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (0: one per CPU)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not write the runs to the data directory")
	return cmd
}

func printSweep(out io.Writer, results []*sim.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "T_TARGET\tRHO\tT\tP\tCv\tD\tSTEPS\tSTATUS")
	for _, res := range results {
		if res == nil {
			continue
		}
		m := res.Mean()
		status := "ok"
		if res.Error != "" {
			status = res.Error
		}
		fmt.Fprintf(w, "%.3f\t%.4f\t%.4f\t%.4f\t%.4f\t%.5g\t%d\t%s\n",
			res.Config.System.Temperature, res.Density, m.Temperature, m.Pressure, m.SpecificHeat, m.DiffusionCoefficient, res.Steps, status)
	}
	w.Flush()
}

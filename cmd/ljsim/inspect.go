package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/ljsim/internal/config"
	"github.com/san-kum/ljsim/internal/export"
	"github.com/san-kum/ljsim/internal/metrics"
	"github.com/san-kum/ljsim/internal/storage"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			return printRuns(cmd.OutOrStdout(), runs)
		},
	}
}

func printRuns(out io.Writer, runs []storage.RunMetadata) error {
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tN\tDENSITY\tT\tSTEPS\tOBS\tSTATUS")
	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = run.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4f\t%.3f\t%d\t%d\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.ParticleCount,
			run.Density,
			run.Config.System.Temperature,
			run.Steps,
			len(run.Observations),
			status,
		)
	}
	return w.Flush()
}

var plotFields = map[string]func(m metrics.ThermodynamicMeasurement) float64{
	"temperature": func(m metrics.ThermodynamicMeasurement) float64 { return m.Temperature },
	"total":       func(m metrics.ThermodynamicMeasurement) float64 { return m.TotalEnergy },
	"kinetic":     func(m metrics.ThermodynamicMeasurement) float64 { return m.KineticEnergy },
	"potential":   func(m metrics.ThermodynamicMeasurement) float64 { return m.PotentialEnergy },
	"msd":         func(m metrics.ThermodynamicMeasurement) float64 { return m.MeanSquareDisplacement },
}

func plotFieldNames() []string {
	names := make([]string, 0, len(plotFields))
	for name := range plotFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newPlotCommand() *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run's thermodynamic trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			trace, err := st.LoadThermodynamics(args[0])
			if err != nil {
				return err
			}
			if len(trace) == 0 {
				return fmt.Errorf("no data to plot")
			}
			return plotTrace(cmd.OutOrStdout(), meta, trace, fields)
		},
	}

	cmd.Flags().StringSliceVar(&fields, "field", []string{"temperature", "total"},
		fmt.Sprintf("fields to plot %v", plotFieldNames()))
	return cmd
}

func plotTrace(out io.Writer, meta *storage.RunMetadata, trace []metrics.ThermodynamicMeasurement, fields []string) error {
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "state: T=%.3f rho=%.4f N=%d\n", meta.Config.System.Temperature, meta.Density, meta.ParticleCount)
	fmt.Fprintf(out, "samples: %d\n\n", len(trace))

	for _, field := range fields {
		get, ok := plotFields[field]
		if !ok {
			return fmt.Errorf("unknown field: %s (available: %v)", field, plotFieldNames())
		}
		data := make([]float64, len(trace))
		for i, m := range trace {
			data[i] = get(m)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(field+" vs step"),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}
	return nil
}

func newExportCommand() *cobra.Command {
	var (
		withTrace bool
		output    string
	)

	cmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := storage.New(dataDir).Export(args[0], withTrace)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return storage.ExportJSON(cmd.OutOrStdout(), data)
			}
			if err := storage.ExportJSONFile(output, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withTrace, "trace", false, "include the per-step thermodynamic trace")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func newRenderCommand() *cobra.Command {
	var (
		index  int
		field  string
		size   int
		output string
	)

	cmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render a snapshot or a trace field as svg",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			var (
				svg string
				err error
			)
			if field != "" {
				svg, err = renderField(st, args[0], field, size)
			} else {
				svg, err = renderSnapshot(st, args[0], index, size)
			}
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), svg)
				return err
			}
			return os.WriteFile(output, []byte(svg), 0644)
		},
	}

	cmd.Flags().IntVar(&index, "snapshot", -1, "snapshot index (negative counts from the last)")
	cmd.Flags().StringVar(&field, "field", "", fmt.Sprintf("render a trace field instead %v", plotFieldNames()))
	cmd.Flags().IntVar(&size, "size", 600, "image width in pixels")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func renderSnapshot(st *storage.Store, runID string, index, size int) (string, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return "", err
	}
	files, err := st.Snapshots(runID)
	if err != nil {
		return "", err
	}
	if index < 0 {
		index += len(files)
	}
	if index < 0 || index >= len(files) {
		return "", fmt.Errorf("run %s has %d snapshots", runID, len(files))
	}

	snap, err := storage.LoadSnapshot(files[index])
	if err != nil {
		return "", err
	}
	box := meta.Box
	return export.SnapshotSVG(snap.Positions, r3.Vec{X: box.X, Y: box.Y, Z: box.Z}, size), nil
}

func renderField(st *storage.Store, runID, field string, size int) (string, error) {
	get, ok := plotFields[field]
	if !ok {
		return "", fmt.Errorf("unknown field: %s (available: %v)", field, plotFieldNames())
	}
	trace, err := st.LoadThermodynamics(runID)
	if err != nil {
		return "", err
	}
	data := make([]float64, len(trace))
	for i, m := range trace {
		data[i] = get(m)
	}
	svg := export.SeriesSVG(data, size, size/2, "#00ff00")
	if svg == "" {
		return "", fmt.Errorf("not enough data to render")
	}
	return svg, nil
}

func newPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list state point presets",
		Run: func(cmd *cobra.Command, args []string) {
			printPresets(cmd.OutOrStdout())
		},
	}
}

func printPresets(out io.Writer) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tT\tDENSITY\tN\tCUTOFF\tDT\tFORCE")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%d\t%.2f\t%.4f\t%s\n",
			name,
			cfg.System.Temperature,
			cfg.System.Density,
			cfg.System.ParticleCount,
			cfg.System.Cutoff,
			cfg.System.Timestep,
			cfg.System.Force,
		)
	}
	w.Flush()
}

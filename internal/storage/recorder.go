package storage

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/metrics"
	"github.com/san-kum/ljsim/internal/sim"
)

// Recorder streams a run into its directory as it happens. It implements
// sim.Observer, sim.EventObserver and sim.SnapshotObserver. The first write
// error stops recording and is returned by Finish.
type Recorder struct {
	id      string
	name    string
	dir     string
	started time.Time

	mu     sync.Mutex
	file   *os.File
	csv    *csv.Writer
	events []metrics.Event
	err    error
	row    []string
}

var (
	_ sim.Observer         = (*Recorder)(nil)
	_ sim.EventObserver    = (*Recorder)(nil)
	_ sim.SnapshotObserver = (*Recorder)(nil)
)

func (s *Store) NewRecorder(name string) (*Recorder, error) {
	now := time.Now()
	id := runID(name, now)
	dir := filepath.Join(s.baseDir, id)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	file, err := os.Create(filepath.Join(dir, thermodynamicsFile))
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(file)
	if err := w.Write(thermodynamicsHeader); err != nil {
		file.Close()
		return nil, err
	}

	return &Recorder{
		id:      id,
		name:    name,
		dir:     dir,
		started: now,
		file:    file,
		csv:     w,
		row:     make([]string, len(thermodynamicsHeader)),
	}, nil
}

func (r *Recorder) ID() string  { return r.id }
func (r *Recorder) Dir() string { return r.dir }

func (r *Recorder) OnMeasurement(step int, m metrics.ThermodynamicMeasurement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil || r.csv == nil {
		return
	}

	r.row[0] = strconv.Itoa(step)
	r.row[1] = formatFloat(m.Time)
	r.row[2] = formatFloat(m.KineticEnergy)
	r.row[3] = formatFloat(m.PotentialEnergy)
	r.row[4] = formatFloat(m.TotalEnergy)
	r.row[5] = formatFloat(m.Virial)
	r.row[6] = formatFloat(m.Temperature)
	r.row[7] = formatFloat(m.MeanSquareDisplacement)
	r.err = r.csv.Write(r.row)
}

func (r *Recorder) OnEvent(e metrics.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// OnSnapshot writes the positions in XYZ format to snapshots/<step>.xyz.
func (r *Recorder) OnSnapshot(step int, s *dynamo.SystemState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	r.err = writeSnapshot(filepath.Join(r.dir, snapshotDir), step, s)
}

func writeSnapshot(dir string, step int, s *dynamo.SystemState) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	file, err := os.Create(filepath.Join(dir, fmt.Sprintf("%09d.xyz", step)))
	if err != nil {
		return err
	}

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "%d\nstep=%d time=%.6f\n", s.ParticleCount(), step, s.Time)
	for _, p := range s.Positions {
		fmt.Fprintf(w, "Ar %.6f %.6f %.6f\n", p.X, p.Y, p.Z)
	}
	return errors.Join(w.Flush(), file.Close())
}

// Discard closes the trace and removes the run directory. It is for runs
// that never started, whose result Finish would have nothing to record.
func (r *Recorder) Discard() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.csv != nil {
		err = r.file.Close()
		r.csv = nil
	}
	return errors.Join(err, os.RemoveAll(r.dir))
}

// Finish closes the trace and writes observations.csv and metadata.json.
func (r *Recorder) Finish(result *sim.Result) (*RunMetadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.csv != nil {
		r.csv.Flush()
		r.err = errors.Join(r.err, r.csv.Error(), r.file.Close())
		r.csv = nil
	}
	if r.err != nil {
		return nil, r.err
	}

	meta := &RunMetadata{
		ID:        r.id,
		Name:      r.name,
		Timestamp: r.started,
		Events:    r.events,
	}
	if result != nil {
		meta.Seed = result.Config.System.Seed
		meta.Config = result.Config
		meta.ParticleCount = result.ParticleCount
		meta.Box = result.Box
		meta.Density = result.Density
		meta.Steps = result.Steps
		meta.EquilibrationSteps = result.EquilibrationSteps
		meta.Adjustments = result.Adjustments
		meta.Elapsed = result.Elapsed
		meta.Observations = result.Observations
		meta.Mean = result.Mean()
		meta.Metrics = result.Metrics
		meta.Error = result.Error
	}

	if err := writeObservations(filepath.Join(r.dir, observationsFile), meta.Observations); err != nil {
		return nil, err
	}
	if err := writeJSON(filepath.Join(r.dir, metadataFile), meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func writeObservations(path string, obs []metrics.Observation) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(observationsHeader); err != nil {
		return err
	}
	for i, o := range obs {
		row := []string{
			strconv.Itoa(i),
			formatFloat(o.Temperature),
			formatFloat(o.Pressure),
			formatFloat(o.SpecificHeat),
			formatFloat(o.DiffusionCoefficient),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/ljsim/internal/config"
	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/metrics"
	"github.com/san-kum/ljsim/internal/sim"
)

const (
	metadataFile       = "metadata.json"
	thermodynamicsFile = "thermodynamics.csv"
	observationsFile   = "observations.csv"
	snapshotDir        = "snapshots"
)

var thermodynamicsHeader = []string{
	"step", "time", "kinetic_energy", "potential_energy", "total_energy",
	"virial", "temperature", "mean_square_displacement",
}

var observationsHeader = []string{
	"index", "temperature", "pressure", "specific_heat", "diffusion_coefficient",
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID                 string                `json:"id"`
	Name               string                `json:"name"`
	Timestamp          time.Time             `json:"timestamp"`
	Seed               int64                 `json:"seed"`
	Config             config.Config         `json:"config"`
	ParticleCount      int                   `json:"particle_count"`
	Box                dynamo.Dimensions     `json:"box"`
	Density            float64               `json:"density"`
	Steps              int                   `json:"steps"`
	EquilibrationSteps int                   `json:"equilibration_steps"`
	Adjustments        int                   `json:"adjustments"`
	Elapsed            time.Duration         `json:"elapsed_ns"`
	Observations       []metrics.Observation `json:"observations"`
	Mean               metrics.Observation   `json:"mean"`
	Metrics            map[string]float64    `json:"metrics,omitempty"`
	Events             []metrics.Event       `json:"events,omitempty"`
	Error              string                `json:"error,omitempty"`
}

// Save stores a finished run along with its measurement trace and returns
// the run ID.
func (s *Store) Save(name string, result *sim.Result, trace []metrics.ThermodynamicMeasurement) (string, error) {
	rec, err := s.NewRecorder(name)
	if err != nil {
		return "", err
	}
	for i, m := range trace {
		rec.OnMeasurement(i+1, m)
	}
	meta, err := rec.Finish(result)
	if err != nil {
		return "", err
	}
	return meta.ID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadThermodynamics reads back the per-step trace of a run. Rows that do
// not parse are skipped.
func (s *Store) LoadThermodynamics(runID string) ([]metrics.ThermodynamicMeasurement, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, thermodynamicsFile))
	if err != nil {
		return nil, err
	}

	out := make([]metrics.ThermodynamicMeasurement, 0, len(records))
	for _, record := range records {
		v, ok := parseRow(record, len(thermodynamicsHeader))
		if !ok {
			continue
		}
		out = append(out, metrics.ThermodynamicMeasurement{
			Time:                   v[1],
			KineticEnergy:          v[2],
			PotentialEnergy:        v[3],
			TotalEnergy:            v[4],
			Virial:                 v[5],
			Temperature:            v[6],
			MeanSquareDisplacement: v[7],
		})
	}
	return out, nil
}

func (s *Store) LoadObservations(runID string) ([]metrics.Observation, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, observationsFile))
	if err != nil {
		return nil, err
	}

	out := make([]metrics.Observation, 0, len(records))
	for _, record := range records {
		v, ok := parseRow(record, len(observationsHeader))
		if !ok {
			continue
		}
		out = append(out, metrics.Observation{
			Temperature:          v[1],
			Pressure:             v[2],
			SpecificHeat:         v[3],
			DiffusionCoefficient: v[4],
		})
	}
	return out, nil
}

// Snapshots lists the snapshot files of a run in step order.
func (s *Store) Snapshots(runID string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.baseDir, runID, snapshotDir, "*.xyz"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// readCSV returns every record after the header.
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func parseRow(record []string, width int) ([]float64, bool) {
	if len(record) < width {
		return nil, false
	}
	v := make([]float64, width)
	for i := 0; i < width; i++ {
		f, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			return nil, false
		}
		v[i] = f
	}
	return v, true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}

// runID makes a directory name from a free-form run name.
func runID(name string, now time.Time) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
	if clean == "" {
		clean = "run"
	}
	return fmt.Sprintf("%s_%d", clean, now.UnixNano())
}

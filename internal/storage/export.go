package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/ljsim/internal/metrics"
)

// ExportData is a self-contained dump of one run.
type ExportData struct {
	RunMetadata
	Thermodynamics []metrics.ThermodynamicMeasurement `json:"thermodynamics,omitempty"`
}

// Export gathers a run's metadata and, if withTrace is set, its full
// measurement trace.
func (s *Store) Export(runID string, withTrace bool) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	data := &ExportData{RunMetadata: *meta}
	if withTrace {
		data.Thermodynamics, err = s.LoadThermodynamics(runID)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

func ExportJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONFile(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, data)
}

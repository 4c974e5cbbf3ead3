package storage

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Snapshot is one frame read back from an XYZ file.
type Snapshot struct {
	Step      int
	Time      float64
	Positions []r3.Vec
}

// LoadSnapshot parses a file written by the recorder.
func LoadSnapshot(path string) (*Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return nil, fmt.Errorf("%s: empty snapshot", path)
	}
	n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%s: bad particle count %q", path, scanner.Text())
	}

	snap := &Snapshot{Positions: make([]r3.Vec, 0, n)}
	if scanner.Scan() {
		for _, field := range strings.Fields(scanner.Text()) {
			key, value, ok := strings.Cut(field, "=")
			if !ok {
				continue
			}
			switch key {
			case "step":
				snap.Step, _ = strconv.Atoi(value)
			case "time":
				snap.Time, _ = strconv.ParseFloat(value, 64)
			}
		}
	}

	for scanner.Scan() && len(snap.Positions) < n {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 4 {
			return nil, fmt.Errorf("%s: line %d: want 4 fields, got %d", path, len(snap.Positions)+3, len(fields))
		}
		var v [3]float64
		for i := range v {
			if v[i], err = strconv.ParseFloat(fields[i+1], 64); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
		snap.Positions = append(snap.Positions, r3.Vec{X: v[0], Y: v[1], Z: v[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(snap.Positions) != n {
		return nil, fmt.Errorf("%s: want %d particles, got %d", path, n, len(snap.Positions))
	}
	return snap, nil
}

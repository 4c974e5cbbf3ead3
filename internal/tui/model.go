// Package tui is the live progress view of a run, a bubbletea program fed by
// the simulation's observers and the worker's message buffer.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/ljsim/internal/metrics"
)

const (
	historyCapacity = 600
	logLines        = 8
	canvasWidth     = 30
	canvasHeight    = 15
	barWidth        = 40
	tickInterval    = time.Second / 10
)

// LogMsg is one line of worker output.
type LogMsg string

type MeasurementMsg struct {
	Step        int
	Measurement metrics.ThermodynamicMeasurement
}

type EventMsg metrics.Event

// SnapshotMsg carries a private copy of the particle positions.
type SnapshotMsg struct {
	Step      int
	Positions []r3.Vec
}

// DoneMsg ends the program once the job has returned.
type DoneMsg struct {
	Err error
}

type tickMsg time.Time

// Model renders the run. It follows the usual bubbletea value semantics.
type Model struct {
	title      string
	totalSteps int
	box        r3.Vec
	cancel     context.CancelFunc

	step         int
	phase        string
	latest       metrics.ThermodynamicMeasurement
	temperature  []float64
	energy       []float64
	observations []metrics.Observation
	adjustments  int
	logs         []string
	canvas       *canvas
	positions    []r3.Vec

	frame    int
	started  time.Time
	done     bool
	err      error
	quitting bool
}

// NewModel returns the view of a run of at most totalSteps steps in a box of
// edges box. cancel is called when the user quits early and may be nil.
func NewModel(title string, totalSteps int, box r3.Vec, cancel context.CancelFunc) Model {
	return Model{
		title:       title,
		totalSteps:  totalSteps,
		box:         box,
		cancel:      cancel,
		temperature: make([]float64, 0, historyCapacity),
		energy:      make([]float64, 0, historyCapacity),
		canvas:      newCanvas(canvasWidth, canvasHeight),
		started:     time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}

	case tickMsg:
		m.frame++
		if m.done {
			return m, nil
		}
		return m, tick()

	case LogMsg:
		m.logs = appendBounded(m.logs, string(msg), logLines)

	case MeasurementMsg:
		m.step = msg.Step
		m.latest = msg.Measurement
		m.temperature = appendBounded(m.temperature, msg.Measurement.Temperature, historyCapacity)
		m.energy = appendBounded(m.energy, msg.Measurement.TotalEnergy, historyCapacity)

	case EventMsg:
		switch msg.Kind {
		case metrics.PhaseStart:
			m.phase = msg.Phase
		case metrics.AdjustTemperature:
			m.adjustments++
		case metrics.RecordObservation:
			if msg.Observation != nil {
				m.observations = append(m.observations, *msg.Observation)
			}
		}

	case SnapshotMsg:
		m.positions = msg.Positions
		m.canvas.project(m.positions, m.box.X, m.box.Y)

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func appendBounded[T any](s []T, v T, capacity int) []T {
	if len(s) >= capacity {
		copy(s, s[1:])
		s = s[:len(s)-1]
	}
	return append(s, v)
}

// Err is the job error delivered with DoneMsg.
func (m Model) Err() error { return m.err }

func (m Model) Done() bool { return m.done }

func (m Model) View() string {
	var s strings.Builder

	status := runningStyle.Render(spinner(m.frame) + " RUNNING")
	switch {
	case m.err != nil:
		status = errorStyle.Render("✗ ABORTED")
	case m.done:
		status = runningStyle.Render("✓ COMPLETE")
	case m.quitting:
		status = warnStyle.Render("■ STOPPING")
	}
	s.WriteString(titleStyle.Render(m.title) + "  " + status + "\n\n")

	var progress float64
	if m.totalSteps > 0 {
		progress = float64(m.step) / float64(m.totalSteps)
	}
	s.WriteString(progressBar(progress, barWidth))
	s.WriteString(subtleStyle.Render(fmt.Sprintf("  step %d/%d  %s", m.step, m.totalSteps,
		time.Since(m.started).Round(time.Second))) + "\n\n")

	stats := strings.Join([]string{
		row("phase", m.phase),
		row("time", fmt.Sprintf("%.3f", m.latest.Time)),
		row("temperature", fmt.Sprintf("%.4f", m.latest.Temperature)),
		row("kinetic", fmt.Sprintf("%.4f", m.latest.KineticEnergy)),
		row("potential", fmt.Sprintf("%.4f", m.latest.PotentialEnergy)),
		row("total", fmt.Sprintf("%.4f", m.latest.TotalEnergy)),
		row("msd", fmt.Sprintf("%.4f", m.latest.MeanSquareDisplacement)),
		row("adjustments", fmt.Sprint(m.adjustments)),
		row("observations", fmt.Sprint(len(m.observations))),
		"",
		labelStyle.Render("T") + sparkline(m.temperature, barWidth/2),
		labelStyle.Render("E") + sparkline(m.energy, barWidth/2),
	}, "\n")

	view := panelStyle.Render(m.canvas.String())
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, view, "  ", panelStyle.Render(stats)))
	s.WriteString("\n")

	if n := len(m.observations); n > 0 {
		o := m.observations[n-1]
		s.WriteString(fmt.Sprintf("\nlast observation: T=%.4f P=%.4f Cv=%.4f D=%.4g\n",
			o.Temperature, o.Pressure, o.SpecificHeat, o.DiffusionCoefficient))
	}

	s.WriteString("\n")
	for _, line := range m.logs {
		s.WriteString(subtleStyle.Render(line) + "\n")
	}
	if m.err != nil {
		s.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}

	s.WriteString(keyHintStyle.Render("\nq: quit"))
	return s.String()
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

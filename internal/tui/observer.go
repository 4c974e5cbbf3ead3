package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/metrics"
	"github.com/san-kum/ljsim/internal/worker"
)

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// Observer forwards a run to a program. Measurements and snapshots are
// throttled to one per interval; events always go through.
type Observer struct {
	p        Sender
	interval time.Duration

	mu           sync.Mutex
	lastMeasure  time.Time
	lastSnapshot time.Time
	now          func() time.Time
	tracked      *dynamo.SystemState
}

func NewObserver(p Sender, interval time.Duration) *Observer {
	return &Observer{p: p, interval: interval, now: time.Now}
}

func (o *Observer) due(last *time.Time) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now()
	if o.interval > 0 && now.Sub(*last) < o.interval {
		return false
	}
	*last = now
	return true
}

// Track makes every forwarded measurement carry the positions of s as well.
// s must be the state the observed simulation advances.
func (o *Observer) Track(s *dynamo.SystemState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tracked = s
}

func (o *Observer) OnMeasurement(step int, m metrics.ThermodynamicMeasurement) {
	if !o.due(&o.lastMeasure) {
		return
	}
	o.p.Send(MeasurementMsg{Step: step, Measurement: m})

	o.mu.Lock()
	s := o.tracked
	o.mu.Unlock()
	if s != nil {
		o.p.Send(SnapshotMsg{Step: step, Positions: copyPositions(s)})
	}
}

func (o *Observer) OnEvent(e metrics.Event) {
	o.p.Send(EventMsg(e))
}

func (o *Observer) OnSnapshot(step int, s *dynamo.SystemState) {
	if o.due(&o.lastSnapshot) {
		o.p.Send(SnapshotMsg{Step: step, Positions: copyPositions(s)})
	}
}

func copyPositions(s *dynamo.SystemState) []r3.Vec {
	positions := make([]r3.Vec, len(s.Positions))
	copy(positions, s.Positions)
	return positions
}

// Forward relays the worker's messages to p, then sends DoneMsg with the job
// error. It returns when the job has finished.
func Forward(p Sender, w *worker.Worker) {
	for {
		ok, msg := w.Read()
		if !ok {
			break
		}
		p.Send(LogMsg(msg))
	}
	p.Send(DoneMsg{Err: w.Wait()})
}

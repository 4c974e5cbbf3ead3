package metrics

// MovingSample keeps the most recent values up to a fixed capacity.
type MovingSample struct {
	buf  []float64
	next int
	full bool
	out  []float64
}

func NewMovingSample(capacity int) *MovingSample {
	if capacity < 1 {
		capacity = 1
	}
	return &MovingSample{buf: make([]float64, capacity), out: make([]float64, 0, capacity)}
}

func (m *MovingSample) Push(v float64) {
	m.buf[m.next] = v
	m.next++
	if m.next == len(m.buf) {
		m.next = 0
		m.full = true
	}
}

func (m *MovingSample) Len() int {
	if m.full {
		return len(m.buf)
	}
	return m.next
}

func (m *MovingSample) Cap() int { return len(m.buf) }

// Values returns the sample oldest first. The slice is reused by the next
// call.
func (m *MovingSample) Values() []float64 {
	m.out = m.out[:0]
	if m.full {
		m.out = append(m.out, m.buf[m.next:]...)
	}
	m.out = append(m.out, m.buf[:m.next]...)
	return m.out
}

func (m *MovingSample) Reset() {
	m.next = 0
	m.full = false
}

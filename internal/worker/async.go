package worker

import (
	"fmt"
	"sync"
)

// Reporter receives human-readable progress messages from a running job.
type Reporter interface {
	Report(msg string)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(msg string)

func (f ReporterFunc) Report(msg string) { f(msg) }

// Discard is a Reporter that drops every message.
var Discard Reporter = ReporterFunc(func(string) {})

// Reportf formats and reports a message. A nil reporter is ignored.
func Reportf(r Reporter, format string, args ...any) {
	if r == nil {
		return
	}
	r.Report(fmt.Sprintf(format, args...))
}

// Job is the unit of work run by Async.
type Job func(r Reporter) error

// Worker runs one Job in the background.
type Worker struct {
	buf  *Buffer
	done chan struct{}

	mu  sync.Mutex
	err error
}

// Async starts job on a new goroutine. The message buffer closes when the
// job returns.
func Async(job Job) *Worker {
	return AsyncWithCapacity(job, DefaultCapacity)
}

func AsyncWithCapacity(job Job, capacity int) *Worker {
	w := &Worker{
		buf:  NewBuffer(capacity),
		done: make(chan struct{}),
	}

	go func() {
		defer close(w.done)
		defer w.buf.Close()

		err := job(ReporterFunc(func(msg string) { w.buf.Put(msg) }))

		w.mu.Lock()
		w.err = err
		w.mu.Unlock()
	}()

	return w
}

// Read blocks for the next message. ok is false once the job has finished
// and every message has been read.
func (w *Worker) Read() (ok bool, msg string) {
	msg, ok = w.buf.Get()
	return ok, msg
}

// Messages drains the worker on a channel, closed when the job finishes.
func (w *Worker) Messages() <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		for {
			msg, ok := w.buf.Get()
			if !ok {
				return
			}
			ch <- msg
		}
	}()
	return ch
}

// Done is closed once the job has returned.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Wait blocks until the job returns and yields its error. Unread messages
// must be drained by the caller or the job may block on a full buffer.
func (w *Worker) Wait() error {
	<-w.done
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

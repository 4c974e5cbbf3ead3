// Package worker runs a job on its own goroutine and relays its progress
// messages to the caller through a bounded buffer.
package worker

import "sync"

// DefaultCapacity is the buffer size used by Async.
const DefaultCapacity = 256

// Buffer is a bounded FIFO of messages shared by one producer and any number
// of consumers.
type Buffer struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	items    []string
	head     int
	size     int
	closed   bool
}

func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	b := &Buffer{items: make([]string, capacity)}
	b.notEmpty = sync.NewCond(&b.mu)
	b.notFull = sync.NewCond(&b.mu)
	return b
}

// Put appends msg, blocking while the buffer is full. After Close it drops
// the message and returns false.
func (b *Buffer) Put(msg string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.size == len(b.items) && !b.closed {
		b.notFull.Wait()
	}
	if b.closed {
		return false
	}

	b.items[(b.head+b.size)%len(b.items)] = msg
	b.size++
	b.notEmpty.Signal()
	return true
}

// Get removes the oldest message, blocking until one arrives. ok is false
// once the buffer is closed and drained.
func (b *Buffer) Get() (msg string, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.size == 0 && !b.closed {
		b.notEmpty.Wait()
	}
	if b.size == 0 {
		return "", false
	}
	return b.pop(), true
}

// TryGet is Get without blocking.
func (b *Buffer) TryGet() (msg string, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.size == 0 {
		return "", false
	}
	return b.pop(), true
}

func (b *Buffer) pop() string {
	msg := b.items[b.head]
	b.items[b.head] = ""
	b.head = (b.head + 1) % len(b.items)
	b.size--
	b.notFull.Signal()
	return msg
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Close wakes every waiter. Messages already queued stay readable.
func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	b.notEmpty.Broadcast()
	b.notFull.Broadcast()
}

func (b *Buffer) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

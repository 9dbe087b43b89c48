package trace

import (
	"fmt"
	"io"
	"sync"
)

// RingTracer is a flight recorder: it keeps the most recent events in memory
// and writes them out once, when it is closed. Older events are overwritten
// when the buffer is full.
type RingTracer struct {
	mu     sync.Mutex
	buf    []Event
	next   int    // slot for the next event
	total  uint64 // events accepted so far
	level  Level
	out    io.Writer // nil: Close discards the buffer
	format Format
	closed bool
}

// NewRingTracer creates a RingTracer holding up to capacity events.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = defaultRingSize
	}
	return &RingTracer{buf: make([]Event, capacity), level: level, format: FormatText}
}

// WithOutput sets the writer Close dumps the buffer to.
func (t *RingTracer) WithOutput(w io.Writer, format Format) *RingTracer {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.out = w
	t.format = format
	return t
}

// Emit stores a copy of ev.
func (t *RingTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Kind, ev.Scope) {
		return
	}
	if ev.Seq == 0 {
		ev.Seq = NextSeq()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf[t.next] = *ev
	t.next = (t.next + 1) % len(t.buf)
	t.total++
}

// Snapshot returns the retained events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *RingTracer) snapshotLocked() []Event {
	size := len(t.buf)
	n := size
	if t.total < uint64(size) {
		n = int(t.total)
	}
	out := make([]Event, n)
	start := (t.next - n + size) % size
	for i := range n {
		out[i] = t.buf[(start+i)%size]
	}
	return out
}

// Dropped returns how many events were overwritten.
func (t *RingTracer) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total - uint64(len(t.snapshotLocked()))
}

// Dump writes the retained events to w. In text format a leading line tells
// how many older events were lost.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	t.mu.Lock()
	events := t.snapshotLocked()
	dropped := t.total - uint64(len(events))
	t.mu.Unlock()

	if dropped > 0 && format != FormatNDJSON {
		if _, err := fmt.Fprintf(w, "... %d earlier events dropped\n", dropped); err != nil {
			return err
		}
	}
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

// Flush does nothing: the buffer is written only by Close.
func (t *RingTracer) Flush() error {
	return nil
}

// Close dumps the buffer to the configured output, then closes it unless it
// is stdout or stderr. Later calls do nothing.
func (t *RingTracer) Close() error {
	t.mu.Lock()
	if t.closed || t.out == nil {
		t.closed = true
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	out, format := t.out, t.format
	t.mu.Unlock()

	err := t.Dump(out, format)
	if closer, ok := out.(io.Closer); ok && !isStdStream(out) {
		if cerr := closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Level returns the current tracing level.
func (t *RingTracer) Level() Level {
	return t.level
}

// Enabled returns true if tracing is active.
func (t *RingTracer) Enabled() bool {
	return t.level > LevelOff
}

package monitor

import "github.com/NeuralTrust/TrustGuard/pkg/domain/security"

// eventLog is a fixed-capacity ring. Once full, each append overwrites the
// oldest entry. It is not safe for concurrent use.
type eventLog struct {
	buf   []security.Event
	start int
	size  int
}

func newEventLog(capacity int) *eventLog {
	if capacity <= 0 {
		capacity = DefaultEventLogCapacity
	}
	return &eventLog{buf: make([]security.Event, capacity)}
}

func (l *eventLog) append(evt security.Event) {
	if l.size < len(l.buf) {
		l.buf[(l.start+l.size)%len(l.buf)] = evt
		l.size++
		return
	}
	l.buf[l.start] = evt
	l.start = (l.start + 1) % len(l.buf)
}

// snapshot returns the events oldest first in a fresh slice.
func (l *eventLog) snapshot() []security.Event {
	out := make([]security.Event, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.buf[(l.start+i)%len(l.buf)]
	}
	return out
}

func (l *eventLog) reset() {
	clear(l.buf)
	l.start = 0
	l.size = 0
}

func (l *eventLog) len() int {
	return l.size
}

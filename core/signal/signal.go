package signal

import "sync"

// Host is the execution affinity of a connected listener. Both *worker.Worker
// and *worker.Inline satisfy it.
type Host interface {
	// Send enqueues a fire-and-forget action on the host.
	Send(fn func()) error
	// OnWorker reports whether the calling goroutine is the host's own.
	OnWorker() bool
}

// Connection identifies a single listener registration, returned by Connect
// and consumed by Disconnect.
type Connection uint64

type slot[T any] struct {
	conn Connection
	host Host
	fn   func(T)
}

// Signal is a thread-safe signal: listeners connect with a host worker, and
// every Emit delivers the payload to each listener on its host's goroutine.
// The zero value is ready to use.
type Signal[T any] struct {
	mu    sync.Mutex
	next  Connection
	slots []slot[T]
}

// Connect registers fn to run on host whenever the signal is emitted.
func (s *Signal[T]) Connect(host Host, fn func(T)) Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.slots = append(s.slots, slot[T]{conn: s.next, host: host, fn: fn})
	return s.next
}

// Disconnect removes a previously connected listener. It reports whether the
// connection was still registered.
func (s *Signal[T]) Disconnect(conn Connection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sl := range s.slots {
		if sl.conn == conn {
			s.slots = append(s.slots[:i], s.slots[i+1:]...)
			return true
		}
	}
	return false
}

// Emit delivers v to every connected listener. A listener hosted on the
// emitting goroutine is invoked inline; all others are dispatched through
// their host's queue. Emit is fire-and-forget: a delivery to a host that no
// longer accepts messages is dropped.
func (s *Signal[T]) Emit(v T) {
	s.mu.Lock()
	slots := make([]slot[T], len(s.slots))
	copy(slots, s.slots)
	s.mu.Unlock()

	for _, sl := range slots {
		if sl.host.OnWorker() {
			sl.fn(v)
			continue
		}
		fn := sl.fn
		_ = sl.host.Send(func() { fn(v) })
	}
}

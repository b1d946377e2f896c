package worker

import "time"

// host abstracts over *Worker and *Inline for the generic send functions.
type host interface {
	base() *Worker
}

// Send enqueues fn at the back of the immediate queue. Fire-and-forget: the
// call returns as soon as the message is admitted.
func (w *Worker) Send(fn func()) error {
	return w.enqueue(callableMessage{fn: fn})
}

// SendDelayed schedules fn to run no earlier than delay from now. Delivery
// is "no earlier than deadline", not exact-time: the action runs at the
// first loop wake-up past the deadline. Delayed messages with equal
// deadlines run in submission order.
func (w *Worker) SendDelayed(fn func(), delay time.Duration) error {
	return w.enqueueDelayed(callableMessage{fn: fn}, delay)
}

// SendAsync submits fn and returns a one-shot Result immediately; the worker
// fulfills it when the message executes.
//
// Called from the worker's own goroutine, fn is executed in place instead of
// being queued and the returned Result is already fulfilled. A worker
// blocking on its own queue could never reach the message that would unblock
// it, so the short-circuit is what makes reentrant sends safe.
func SendAsync[T any](h host, fn func() T) (*Result[T], error) {
	w := h.base()

	res := newResult[T]()
	m := &resultMessage[T]{fn: fn, res: res}

	if w.OnWorker() {
		if !w.accepting.Load() {
			return nil, ErrNotAccepting
		}
		w.execute(m)
		return res, nil
	}

	if err := w.enqueue(m); err != nil {
		return nil, err
	}
	return res, nil
}

// SendSync submits fn and blocks the caller until the worker has executed it,
// returning the action's value. It fails with ErrNotStarted when the run
// loop has not been started: blocking on a loop that will never run is a
// guaranteed deadlock.
func SendSync[T any](h host, fn func() T) (T, error) {
	w := h.base()

	if w.state.Load() == stateCreated {
		var zero T
		return zero, ErrNotStarted
	}

	res, err := SendAsync(h, fn)
	if err != nil {
		var zero T
		return zero, err
	}
	return res.Get()
}

// SendWait submits fn and blocks until it has run. SendSync specialized to
// actions without a result.
func (w *Worker) SendWait(fn func()) error {
	_, err := SendSync(w, func() struct{} {
		fn()
		return struct{}{}
	})
	return err
}

package worker

import "runtime/debug"

// message is one unit of queued work. The set of variants is closed: a plain
// action, or an action paired with a one-shot result.
type message interface {
	// invoke runs the wrapped action with panic containment. A non-nil
	// error is always a *PanicError.
	invoke() error
}

// callableMessage wraps a fire-and-forget action.
type callableMessage struct {
	fn func()
}

func (m callableMessage) invoke() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Recovered: r, Stack: debug.Stack()}
		}
	}()
	m.fn()
	return nil
}

// resultMessage wraps an action whose return value is handed back to the
// sender through res. The result is fulfilled exactly once, even when the
// action panics.
type resultMessage[T any] struct {
	fn  func() T
	res *Result[T]
}

func (m *resultMessage[T]) invoke() (err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			pe := &PanicError{Recovered: r, Stack: debug.Stack()}
			m.res.fulfill(zero, pe)
			err = pe
		}
	}()
	m.res.fulfill(m.fn(), nil)
	return nil
}

// Result is a one-shot handoff: fulfilled exactly once by the worker that
// executes the message, readable forever after by the original caller.
type Result[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newResult[T any]() *Result[T] {
	return &Result[T]{done: make(chan struct{})}
}

func (r *Result[T]) fulfill(val T, err error) {
	r.val = val
	r.err = err
	close(r.done)
}

// Done is closed once the result has been fulfilled.
func (r *Result[T]) Done() <-chan struct{} { return r.done }

// Get blocks until the result is fulfilled and returns the action's value.
// The error is non-nil only when the action panicked; see [PanicError].
func (r *Result[T]) Get() (T, error) {
	<-r.done
	return r.val, r.err
}

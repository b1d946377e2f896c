package worker

import (
	"errors"
	"fmt"
)

var (
	// Lifecycle errors
	ErrAlreadyStarted = errors.New("worker already started")
	ErrNotStarted     = errors.New("worker has not been started")

	// Admission errors
	ErrNotAccepting = errors.New("worker is not accepting messages, stop has been signaled")
)

// PanicError reports a panic recovered from a queued action. The run loop
// survives the panic; result-bearing sends observe the error through
// [Result.Get], fire-and-forget sends through the OnPanic hook.
type PanicError struct {
	Recovered any
	Stack     []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("action panicked: %v", e.Recovered)
}

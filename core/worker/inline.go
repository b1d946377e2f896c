package worker

// Inline is a worker that runs its loop on the calling goroutine instead of
// spawning one. It shares all queueing and dispatch semantics with Worker and
// is the way to give an existing goroutine, typically main, a message loop.
//
// An Inline is created already running: sends are admitted right away and
// SendSync does not report ErrNotStarted.
type Inline struct {
	*Worker
}

// NewInline creates a caller-hosted worker. Its identity is the constructing
// goroutine until Start is called.
func NewInline(opts Options) *Inline {
	w := newWorker(opts)
	w.state.Store(stateRunning)
	return &Inline{Worker: w}
}

// Start runs the message loop in place, blocking the calling goroutine until
// Stop is called and the queue has been drained. A second Start fails with
// ErrAlreadyStarted.
func (i *Inline) Start() error {
	if !i.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	i.loop()
	return nil
}

// Stop signals the loop to exit and closes admission. Unlike Worker.Stop it
// has no started precondition and nothing to join: the loop, if running,
// observes the flags on its next iteration and returns from Start.
func (i *Inline) Stop() error {
	i.signalStop()
	return nil
}

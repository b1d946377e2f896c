package worker

import (
	"container/heap"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/petermattis/goid"
)

// Lifecycle states. A worker is single-use: created -> running -> stopped,
// never back.
const (
	stateCreated int32 = iota
	stateRunning
	stateStopped
)

// OnPanic is called when a queued action panics. The run loop keeps going.
type OnPanic func(recovered any, stack []byte)

type Options struct {
	// ID identifies the worker in logs and metrics. Defaults to
	// "worker-<nanoid>".
	ID      string
	Logger  *slog.Logger
	Metrics WorkerMetrics
	OnPanic OnPanic
}

// Worker is an active-object execution unit: it owns one goroutine and
// executes submitted actions on it one at a time, in order. Producers on any
// goroutine hand work over via the Send family; no caller-side locking is
// needed for state owned by the worker.
type Worker struct {
	id      string
	log     *slog.Logger
	metrics WorkerMetrics
	onPanic OnPanic

	state     atomic.Int32
	accepting atomic.Bool
	started   atomic.Bool

	ownerGID atomic.Int64 // goroutine that constructed the worker
	loopGID  atomic.Int64 // goroutine running the loop, 0 until entered

	mu        sync.Mutex // guards immediate, delayed, seq
	immediate []message
	delayed   delayedQueue
	seq       uint64

	wake chan struct{}
	done chan struct{}

	closeOnce sync.Once
}

// New creates an idle worker. Call Start to spawn its goroutine.
func New(opts Options) *Worker {
	return newWorker(opts)
}

func newWorker(opts Options) *Worker {
	if opts.ID == "" {
		opts.ID = fmt.Sprintf("worker-%s", gonanoid.Must(6))
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = NopWorkerMetrics()
	}

	log := opts.Logger.With(slog.String("worker", opts.ID))

	if opts.OnPanic == nil {
		opts.OnPanic = func(recovered any, stack []byte) {
			log.Error("action panicked", slog.Any("recovered", recovered), slog.String("stack", string(stack)))
		}
	}

	w := &Worker{
		id:      opts.ID,
		log:     log,
		metrics: opts.Metrics,
		onPanic: opts.OnPanic,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	w.accepting.Store(true)
	w.ownerGID.Store(goid.Get())
	return w
}

// ID returns the worker's identifier.
func (w *Worker) ID() string { return w.id }

// Start spawns the worker goroutine and its run loop. It fails with
// ErrAlreadyStarted on any but the first call, including after Stop.
//
// Start returns only after the worker's identity has moved to the loop
// goroutine, so a send issued by the constructing goroutine right after
// Start can never be misclassified as on-worker.
func (w *Worker) Start() error {
	if !w.state.CompareAndSwap(stateCreated, stateRunning) {
		return ErrAlreadyStarted
	}
	w.started.Store(true)

	ready := make(chan struct{})
	go func() {
		w.loopGID.Store(goid.Get())
		close(ready)
		w.loop()
	}()
	<-ready
	return nil
}

// Stop signals the run loop to exit and closes admission: every send issued
// after Stop returns ErrNotAccepting. Messages accepted before Stop are still
// executed (see drain). Stop does not wait; use Join or Close for that.
// It fails with ErrNotStarted when the worker was never started.
func (w *Worker) Stop() error {
	if !w.started.Load() {
		return ErrNotStarted
	}
	w.signalStop()
	return nil
}

func (w *Worker) signalStop() {
	// accepting is flipped under the queue mutex so that no admission can
	// slip between the flag check and the enqueue of a racing send.
	w.mu.Lock()
	w.accepting.Store(false)
	w.mu.Unlock()
	w.state.Store(stateStopped)
	w.notify()
}

// Join blocks until the run loop has exited. It is a no-op when the worker
// was never started.
func (w *Worker) Join() {
	if !w.started.Load() {
		return
	}
	<-w.done
}

// Close force-stops the worker, drains accepted messages and waits for the
// goroutine to exit. Safe to call multiple times and on a never-started
// worker. The drain guarantee holds for started workers only: on a
// never-started worker there is no loop to drain, so messages enqueued
// before Start are discarded.
func (w *Worker) Close() {
	w.closeOnce.Do(w.signalStop)
	w.Join()
}

// Done is closed when the run loop exits. On a never-started worker the
// channel never closes.
func (w *Worker) Done() <-chan struct{} { return w.done }

// IsAccepting reports whether new sends are admitted.
func (w *Worker) IsAccepting() bool { return w.accepting.Load() }

// GoroutineID returns the worker's identity: the goroutine running its loop
// once entered, otherwise the goroutine that constructed it. The fallback
// keeps same-goroutine detection correct for sends issued before Start.
func (w *Worker) GoroutineID() int64 {
	if gid := w.loopGID.Load(); gid != 0 {
		return gid
	}
	return w.ownerGID.Load()
}

// OnWorker reports whether the calling goroutine is the worker's own.
func (w *Worker) OnWorker() bool {
	return w.GoroutineID() == goid.Get()
}

// Is reports whether other denotes the same execution unit, comparing
// goroutine identities.
func (w *Worker) Is(other *Worker) bool {
	return other != nil && w.GoroutineID() == other.GoroutineID()
}

func (w *Worker) base() *Worker { return w }

func (w *Worker) notify() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Worker) enqueue(m message) error {
	w.mu.Lock()
	if !w.accepting.Load() {
		w.mu.Unlock()
		return ErrNotAccepting
	}
	w.immediate = append(w.immediate, m)
	depth := len(w.immediate)
	w.mu.Unlock()

	w.metrics.QueueDepth(w.id).Set(float64(depth))
	w.notify()
	return nil
}

func (w *Worker) enqueueDelayed(m message, delay time.Duration) error {
	at := time.Now().Add(delay)

	w.mu.Lock()
	if !w.accepting.Load() {
		w.mu.Unlock()
		return ErrNotAccepting
	}
	w.seq++
	heap.Push(&w.delayed, &delayedItem{at: at, seq: w.seq, msg: m})
	depth := w.delayed.Len()
	w.mu.Unlock()

	w.metrics.DelayedDepth(w.id).Set(float64(depth))
	w.notify()
	return nil
}

// promoteDue moves every delayed message whose deadline has passed to the
// back of the immediate queue, in deadline order. It returns the deadline of
// the nearest remaining delayed message, or the zero time when none is left.
// Caller holds w.mu.
func (w *Worker) promoteDue(now time.Time) time.Time {
	for w.delayed.Len() > 0 {
		next := w.delayed[0]
		if next.at.After(now) {
			return next.at
		}
		heap.Pop(&w.delayed)
		w.immediate = append(w.immediate, next.msg)
	}
	return time.Time{}
}

// popLocked removes and returns the front of the immediate queue.
// Caller holds w.mu.
func (w *Worker) popLocked() message {
	m := w.immediate[0]
	w.immediate[0] = nil
	w.immediate = w.immediate[1:]
	return m
}

func (w *Worker) loop() {
	w.loopGID.Store(goid.Get())
	defer close(w.done)

	w.log.Debug("run loop started")

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for w.state.Load() == stateRunning {
		w.mu.Lock()
		next := w.promoteDue(time.Now())
		delayedDepth := w.delayed.Len()
		if len(w.immediate) > 0 {
			m := w.popLocked()
			depth := len(w.immediate)
			w.mu.Unlock()

			// execute outside the lock so a slow action never
			// blocks producers
			w.metrics.QueueDepth(w.id).Set(float64(depth))
			w.metrics.DelayedDepth(w.id).Set(float64(delayedDepth))
			w.execute(m)
			continue
		}
		w.mu.Unlock()
		w.metrics.DelayedDepth(w.id).Set(float64(delayedDepth))

		var due <-chan time.Time
		if !next.IsZero() {
			timer.Reset(time.Until(next))
			due = timer.C
		}
		// a nil due channel blocks forever: idle until a send wakes us
		select {
		case <-w.wake:
		case <-due:
		}
		if due != nil && !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
	}

	w.drain()
	w.log.Debug("run loop exited")
}

// drain executes every remaining immediate message synchronously before the
// goroutine terminates, so no accepted message is silently dropped when Stop
// races a pending send. Delayed messages already due are promoted and run
// too; ones still pending are discarded.
func (w *Worker) drain() {
	var drained int
	for {
		w.mu.Lock()
		w.promoteDue(time.Now())
		if len(w.immediate) == 0 {
			w.mu.Unlock()
			break
		}
		m := w.popLocked()
		w.mu.Unlock()

		w.execute(m)
		drained++
	}

	w.metrics.QueueDepth(w.id).Set(0)
	w.metrics.DelayedDepth(w.id).Set(0)
	if drained > 0 {
		w.metrics.MessagesDrained(w.id).Add(float64(drained))
		w.log.Debug("drained messages on stop", slog.Int("count", drained))
	}
}

// execute runs one message with timing and panic accounting.
func (w *Worker) execute(m message) {
	t := w.metrics.MessageDuration(w.id)
	err := m.invoke()
	t.ObserveDuration()

	if err != nil {
		w.metrics.MessagePanic(w.id).Inc()
		w.metrics.MessageProcessed(w.id, false).Inc()
		var pe *PanicError
		if errors.As(err, &pe) {
			w.onPanic(pe.Recovered, pe.Stack)
		}
		return
	}
	w.metrics.MessageProcessed(w.id, true).Inc()
}

// Package worker implements active-object execution units: each Worker owns
// a single goroutine and executes submitted actions on it one at a time, in
// submission order. It is the classic pattern for giving a logical subsystem
// (a UI loop, a device driver, an I/O pump) exclusive, serialized access to
// its own state without caller-side locking.
//
// # Dispatch modes
//
//   - [Worker.Send] — fire-and-forget
//   - [Worker.SendDelayed] — fire-and-forget, no earlier than a deadline
//   - [SendAsync] — returns a one-shot [Result] fulfilled on execution
//   - [SendSync] / [Worker.SendWait] — blocks the caller until executed
//
// Sends issued from the worker's own goroutine via [SendAsync] or [SendSync]
// execute in place; queueing them would deadlock the loop against itself.
//
// # Lifecycle
//
// A Worker is single-use: created idle, started once, stopped once.
//
//	w := worker.New(worker.Options{})
//	if err := w.Start(); err != nil { ... }
//	defer w.Close()
//
//	w.Send(func() { ... })
//	n, err := worker.SendSync(w, func() int { return compute() })
//
// Stop closes admission but never cancels accepted work: everything in the
// immediate queue is drained before the goroutine exits. Delayed messages
// whose deadline has not been reached at stop time are discarded.
//
// [Inline] is the same unit hosted on the calling goroutine: Start blocks and
// runs the loop in place, which turns the current goroutine into a worker.
//
// # Failure policy
//
// A panicking action does not kill the worker. The panic is recovered,
// reported via Options.OnPanic (by default a log entry) and, for
// result-bearing sends, surfaced to the caller as a [PanicError] from
// [Result.Get].
package worker

package worker

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/petermattis/goid"
	"github.com/stretchr/testify/require"
)

func newTestWorker(t *testing.T) *Worker {
	t.Helper()
	w := New(Options{})
	require.NoError(t, w.Start())
	t.Cleanup(w.Close)
	return w
}

func TestWorker_FIFO(t *testing.T) {
	w := newTestWorker(t)

	const n = 100
	var got []int // mutated only on the worker goroutine
	for i := 0; i < n; i++ {
		i := i
		require.NoError(t, w.Send(func() { got = append(got, i) }))
	}

	// barrier: everything sent before this has executed
	require.NoError(t, w.SendWait(func() {}))

	require.Len(t, got, n)
	for i, v := range got {
		require.Equal(t, i, v)
	}
}

func TestWorker_SyncRoundTrip(t *testing.T) {
	w := newTestWorker(t)

	v, err := SendSync(w, func() int { return 42 })
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestWorker_RunsOnWorkerGoroutine(t *testing.T) {
	w := newTestWorker(t)

	var ranOn int64
	require.NoError(t, w.SendWait(func() { ranOn = goid.Get() }))

	require.Equal(t, w.GoroutineID(), ranOn)
	require.NotEqual(t, goid.Get(), ranOn)
}

func TestWorker_SameGoroutineShortCircuit(t *testing.T) {
	w := newTestWorker(t)

	// SendAsync reentrant to the worker's own execution must run in place
	// and return an already-fulfilled result, or the loop would deadlock
	// against itself.
	var (
		asyncErr        error
		ranBeforeReturn bool
		fulfilled       bool
		v               int
		getErr          error
	)
	require.NoError(t, w.SendWait(func() {
		var ran atomic.Bool
		res, err := SendAsync(w, func() int {
			ran.Store(true)
			return 7
		})
		if asyncErr = err; err != nil {
			return
		}
		ranBeforeReturn = ran.Load()

		select {
		case <-res.Done():
			fulfilled = true
		default:
		}

		v, getErr = res.Get()
	}))

	require.NoError(t, asyncErr)
	require.True(t, ranBeforeReturn, "action must have run before SendAsync returned")
	require.True(t, fulfilled, "result must be fulfilled on return")
	require.NoError(t, getErr)
	require.Equal(t, 7, v)
}

func TestWorker_OnWorker(t *testing.T) {
	w := newTestWorker(t)

	require.False(t, w.OnWorker())

	var inside bool
	require.NoError(t, w.SendWait(func() { inside = w.OnWorker() }))
	require.True(t, inside)
}

func TestWorker_IdentityBeforeStart(t *testing.T) {
	w := New(Options{})
	defer w.Close()

	// before Start the worker's identity is its constructing goroutine, so
	// same-goroutine detection resolves sends from here as "same"
	require.Equal(t, goid.Get(), w.GoroutineID())
	require.True(t, w.OnWorker())
}

func TestWorker_IdentityHandoverOnStart(t *testing.T) {
	w := New(Options{})
	defer w.Close()

	require.True(t, w.OnWorker())
	require.NoError(t, w.Start())

	// by the time Start returns, identity belongs to the loop goroutine
	require.False(t, w.OnWorker())
	require.NotEqual(t, goid.Get(), w.GoroutineID())

	// so a send from the constructing goroutine is queued, never run in place
	var ranOn int64
	res, err := SendAsync(w, func() int {
		ranOn = goid.Get()
		return 1
	})
	require.NoError(t, err)
	_, err = res.Get()
	require.NoError(t, err)
	require.Equal(t, w.GoroutineID(), ranOn)
	require.NotEqual(t, goid.Get(), ranOn)
}

func TestWorker_DoubleStart(t *testing.T) {
	w := newTestWorker(t)

	require.ErrorIs(t, w.Start(), ErrAlreadyStarted)
}

func TestWorker_StartAfterStop(t *testing.T) {
	w := New(Options{})
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
	w.Join()

	require.ErrorIs(t, w.Start(), ErrAlreadyStarted)
}

func TestWorker_StopBeforeStart(t *testing.T) {
	w := New(Options{})
	defer w.Close()

	require.ErrorIs(t, w.Stop(), ErrNotStarted)
}

func TestWorker_SendSyncBeforeStart(t *testing.T) {
	w := New(Options{})
	defer w.Close()

	_, err := SendSync(w, func() int { return 1 })
	require.ErrorIs(t, err, ErrNotStarted)

	require.ErrorIs(t, w.SendWait(func() {}), ErrNotStarted)
}

func TestWorker_AdmissionClosedAfterStop(t *testing.T) {
	w := New(Options{})
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
	w.Join()

	require.ErrorIs(t, w.Send(func() {}), ErrNotAccepting)
	require.ErrorIs(t, w.SendDelayed(func() {}, time.Millisecond), ErrNotAccepting)

	_, err := SendAsync(w, func() int { return 1 })
	require.ErrorIs(t, err, ErrNotAccepting)

	_, err = SendSync(w, func() int { return 1 })
	require.ErrorIs(t, err, ErrNotAccepting)

	require.ErrorIs(t, w.SendWait(func() {}), ErrNotAccepting)
}

func TestWorker_DrainOnStop(t *testing.T) {
	w := New(Options{})
	require.NoError(t, w.Start())

	var executed atomic.Int32
	for i := 0; i < 3; i++ {
		require.NoError(t, w.Send(func() { executed.Add(1) }))
	}
	require.NoError(t, w.Stop())
	w.Join()

	require.Equal(t, int32(3), executed.Load(), "accepted messages must run before the worker exits")
}

func TestWorker_PanicContainment(t *testing.T) {
	var recovered atomic.Value
	w := New(Options{
		OnPanic: func(r any, stack []byte) {
			recovered.Store(r)
		},
	})
	require.NoError(t, w.Start())
	defer w.Close()

	require.NoError(t, w.Send(func() { panic("boom") }))

	// the loop survives: a later sync round-trip still completes
	v, err := SendSync(w, func() int { return 1 })
	require.NoError(t, err)
	require.Equal(t, 1, v)

	require.Equal(t, "boom", recovered.Load())
}

func TestWorker_SendSyncPanic(t *testing.T) {
	w := New(Options{OnPanic: func(any, []byte) {}})
	require.NoError(t, w.Start())
	defer w.Close()

	_, err := SendSync(w, func() int { panic("kaput") })
	require.Error(t, err)

	var pe *PanicError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, "kaput", pe.Recovered)
}

func TestWorker_JoinWithoutStart(t *testing.T) {
	w := New(Options{})
	w.Join() // must not block
	w.Close()
}

func TestWorker_CloseWithoutStartDiscardsQueued(t *testing.T) {
	w := New(Options{})

	var ran atomic.Bool
	require.NoError(t, w.Send(func() { ran.Store(true) }))

	// no loop ever ran, so Close has nothing to drain; it must not block
	w.Close()

	require.False(t, ran.Load())
	require.ErrorIs(t, w.Send(func() {}), ErrNotAccepting)
}

func TestWorker_CloseIdempotent(t *testing.T) {
	w := New(Options{})
	require.NoError(t, w.Start())
	w.Close()
	w.Close()

	require.ErrorIs(t, w.Send(func() {}), ErrNotAccepting)
}

func TestWorker_Done(t *testing.T) {
	w := New(Options{})
	require.NoError(t, w.Start())

	select {
	case <-w.Done():
		t.Fatal("done closed while running")
	default:
	}

	w.Close()

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("done not closed after Close")
	}
}

func TestResult_ReadableForever(t *testing.T) {
	w := newTestWorker(t)

	res, err := SendAsync(w, func() string { return "ok" })
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		v, err := res.Get()
		require.NoError(t, err)
		require.Equal(t, "ok", v)
	}
}

func TestWorker_Is(t *testing.T) {
	w1 := newTestWorker(t)
	w2 := newTestWorker(t)

	require.True(t, w1.Is(w1))
	require.False(t, w1.Is(w2))
	require.False(t, w1.Is(nil))
}

func TestWorker_DefaultID(t *testing.T) {
	w := New(Options{})
	defer w.Close()
	require.NotEmpty(t, w.ID())

	w2 := New(Options{ID: "io-pump"})
	defer w2.Close()
	require.Equal(t, "io-pump", w2.ID())
}

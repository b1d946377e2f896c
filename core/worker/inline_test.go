package worker

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/petermattis/goid"
	"github.com/stretchr/testify/require"
)

func TestInline_RunsOnCallerGoroutine(t *testing.T) {
	inl := NewInline(Options{})

	var ranOn int64
	require.NoError(t, inl.Send(func() { ranOn = goid.Get() }))
	require.NoError(t, inl.Send(func() { inl.Stop() }))

	require.NoError(t, inl.Start()) // blocks until the Stop above

	require.Equal(t, goid.Get(), ranOn)
}

func TestInline_StopBeforeStartDrainsLeftovers(t *testing.T) {
	inl := NewInline(Options{})

	var executed atomic.Int32
	for i := 0; i < 3; i++ {
		require.NoError(t, inl.Send(func() { executed.Add(1) }))
	}

	// stop first: Start observes the flag immediately and only drains
	require.NoError(t, inl.Stop())
	require.NoError(t, inl.Start())

	require.Equal(t, int32(3), executed.Load())
}

func TestInline_DoubleStart(t *testing.T) {
	inl := NewInline(Options{})
	require.NoError(t, inl.Stop())
	require.NoError(t, inl.Start())

	require.ErrorIs(t, inl.Start(), ErrAlreadyStarted)
}

func TestInline_SendSyncFromForeignGoroutine(t *testing.T) {
	inl := NewInline(Options{})

	type outcome struct {
		v   int
		err error
	}
	got := make(chan outcome, 1)
	go func() {
		v, err := SendSync(inl, func() int { return 42 })
		got <- outcome{v: v, err: err}
		inl.Stop()
	}()

	require.NoError(t, inl.Start())

	select {
	case o := <-got:
		require.NoError(t, o.err)
		require.Equal(t, 42, o.v)
	case <-time.After(time.Second):
		t.Fatal("sync send never returned")
	}
}

func TestInline_AdmissionClosedAfterStop(t *testing.T) {
	inl := NewInline(Options{})
	require.NoError(t, inl.Stop())
	require.NoError(t, inl.Start())

	require.ErrorIs(t, inl.Send(func() {}), ErrNotAccepting)
	_, err := SendSync(inl, func() int { return 1 })
	require.ErrorIs(t, err, ErrNotAccepting)
}

func TestInline_SameGoroutineShortCircuitBeforeStart(t *testing.T) {
	inl := NewInline(Options{})
	defer inl.Close()

	// the constructing goroutine is the inline worker's identity, so a
	// result-bearing send from here runs in place even before Start
	var ran bool
	res, err := SendAsync(inl, func() int { ran = true; return 9 })
	require.NoError(t, err)
	require.True(t, ran)

	v, err := res.Get()
	require.NoError(t, err)
	require.Equal(t, 9, v)
}

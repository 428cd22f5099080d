package eventloop

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestLoop(t *testing.T) *Loop {
	t.Helper()
	l, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestTimeEventFiresWhenDue(t *testing.T) {
	l := newTestLoop(t)
	fired := false
	l.AddTimeEvent(0, 10, func(id int64, now int64) TimerResult {
		fired = true
		return Oneshot()
	}, nil)
	require.NoError(t, l.ProcessCycle(5, true))
	require.False(t, fired, "timer due at 10 must not fire at now=5")
	require.NoError(t, l.ProcessCycle(10, true))
	require.True(t, fired)
}

func TestOneshotTimerIsSweptAfterFiring(t *testing.T) {
	l := newTestLoop(t)
	l.AddTimeEvent(0, 0, func(id int64, now int64) TimerResult { return Oneshot() }, nil)
	require.NoError(t, l.ProcessCycle(0, true))
	require.Empty(t, l.timeEvents)
}

func TestRescheduledTimerFiresAgain(t *testing.T) {
	l := newTestLoop(t)
	count := 0
	l.AddTimeEvent(0, 0, func(id int64, now int64) TimerResult {
		count++
		return After(5)
	}, nil)
	require.NoError(t, l.ProcessCycle(0, true))
	require.NoError(t, l.ProcessCycle(5, true))
	require.Equal(t, 2, count)
}

func TestRemoveTimeEventPreventsFiring(t *testing.T) {
	l := newTestLoop(t)
	fired := false
	id := l.AddTimeEvent(0, 0, func(int64, int64) TimerResult {
		fired = true
		return Oneshot()
	}, nil)
	l.RemoveTimeEvent(id)
	require.NoError(t, l.ProcessCycle(0, true))
	require.False(t, fired)
}

func TestFinalizerRunsOnSweep(t *testing.T) {
	l := newTestLoop(t)
	finalized := false
	l.AddTimeEvent(0, 0, func(int64, int64) TimerResult { return Oneshot() },
		func(id int64) { finalized = true })
	require.NoError(t, l.ProcessCycle(0, true))
	require.True(t, finalized)
}

func TestClockSkewZeroesEveryTimer(t *testing.T) {
	l := newTestLoop(t)
	l.AddTimeEvent(1000, 5000, func(int64, int64) TimerResult { return Oneshot() }, nil)
	require.NoError(t, l.ProcessCycle(1000, true))
	// Wall clock jumps backward relative to lastTimeMs.
	l.recoverClockSkew(500)
	whenMs, ok := l.nearestTimer()
	require.True(t, ok)
	require.Equal(t, int64(0), whenMs)
}

func TestSleepDurationNoTimersBlocksIndefinitely(t *testing.T) {
	l := newTestLoop(t)
	require.Equal(t, -1, int(l.sleepDuration(0, false)))
}

func TestSleepDurationDontWaitIsZero(t *testing.T) {
	l := newTestLoop(t)
	l.AddTimeEvent(0, 1000, func(int64, int64) TimerResult { return Oneshot() }, nil)
	require.Equal(t, int64(0), int64(l.sleepDuration(0, true)))
}

func TestFileEventFiresOnReadablePipe(t *testing.T) {
	l := newTestLoop(t)
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	fired := make(chan struct{}, 1)
	err = l.AddFileEvent(int(r.Fd()), Readable, func(fd int, mask FileMask) {
		fired <- struct{}{}
	}, nil)
	require.NoError(t, err)

	_, err = w.Write([]byte("x"))
	require.NoError(t, err)

	require.NoError(t, l.ProcessCycle(0, false))
	select {
	case <-fired:
	default:
		t.Fatal("expected readable handler to fire")
	}
}

func TestBarrierRunsWritableBeforeReadable(t *testing.T) {
	l := newTestLoop(t)
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()
	_, err = w.Write([]byte("x"))
	require.NoError(t, err)

	var order []string
	err = l.AddFileEvent(int(r.Fd()), Readable|Writable|Barrier,
		func(fd int, mask FileMask) { order = append(order, "read") },
		func(fd int, mask FileMask) { order = append(order, "write") })
	require.NoError(t, err)

	fe := l.fileEvents[int(r.Fd())]
	l.dispatchFileEvents([]Ready{{Fd: int(r.Fd()), Mask: fe.mask}})
	require.Equal(t, []string{"write", "read"}, order)
}

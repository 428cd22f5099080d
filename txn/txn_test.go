package txn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMultiTransitionsToQueuing(t *testing.T) {
	c := NewConn()
	require.NoError(t, c.Multi())
	require.Equal(t, Queuing, c.State())
}

func TestWatchRejectedInsideMulti(t *testing.T) {
	c := NewConn()
	require.NoError(t, c.Multi())
	require.Error(t, c.Watch(0, []byte("k")))
}

func TestExecWithoutMultiIsRejected(t *testing.T) {
	c := NewConn()
	outcome, queue := c.Exec()
	require.Equal(t, ExecNotQueuing, outcome)
	require.Nil(t, queue)
}

func TestExecRunsQueuedCommandsAndResetsState(t *testing.T) {
	c := NewConn()
	require.NoError(t, c.Multi())
	c.Enqueue(QueuedCommand{Name: "SET", Argv: [][]byte{[]byte("k"), []byte("v")}})
	outcome, queue := c.Exec()
	require.Equal(t, ExecRun, outcome)
	require.Len(t, queue, 1)
	require.Equal(t, Normal, c.State())
}

func TestDirtyQueueAbortsExec(t *testing.T) {
	c := NewConn()
	require.NoError(t, c.Multi())
	c.Enqueue(QueuedCommand{Name: "BADCMD"})
	c.MarkDirtyQueue()
	outcome, queue := c.Exec()
	require.Equal(t, ExecAborted, outcome)
	require.Nil(t, queue)
	require.Equal(t, Normal, c.State())
}

func TestDirtyCasReturnsNullArray(t *testing.T) {
	c := NewConn()
	require.NoError(t, c.Watch(0, []byte("k")))
	require.NoError(t, c.Multi())
	c.Enqueue(QueuedCommand{Name: "SET"})
	c.MarkDirtyCas() // simulates another connection's write touching the watched key
	outcome, queue := c.Exec()
	require.Equal(t, ExecNullArray, outcome)
	require.Nil(t, queue)
}

func TestDiscardClearsQueueAndWatches(t *testing.T) {
	c := NewConn()
	require.NoError(t, c.Watch(0, []byte("k")))
	require.NoError(t, c.Multi())
	c.Enqueue(QueuedCommand{Name: "SET"})
	require.NoError(t, c.Discard())
	require.Equal(t, Normal, c.State())
	require.Empty(t, c.WatchedKeys())
}

func TestDiscardOutsideMultiIsRejected(t *testing.T) {
	c := NewConn()
	require.Error(t, c.Discard())
}

func TestWatchIsIdempotent(t *testing.T) {
	c := NewConn()
	require.NoError(t, c.Watch(0, []byte("k")))
	require.NoError(t, c.Watch(0, []byte("k")))
	require.Len(t, c.WatchedKeys()[0], 1)
}

func TestRewriteLastArgv(t *testing.T) {
	c := NewConn()
	require.NoError(t, c.Multi())
	c.Enqueue(QueuedCommand{Name: "EXPIRE", Argv: [][]byte{[]byte("k"), []byte("100")}})
	c.RewriteLastArgv([][]byte{[]byte("k"), []byte("100"), []byte("PXAT")})
	_, queue := c.Exec()
	require.Equal(t, "PXAT", string(queue[0].Argv[2]))
}

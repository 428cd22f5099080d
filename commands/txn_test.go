package commands

import (
	"testing"

	"github.com/kvcore/kvcore/object"
	"github.com/stretchr/testify/require"
)

func TestMultiQueuesCommandsUntilExec(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, ReplyOK, h.run("MULTI").Kind)
	r := h.run("SET", "k", "v")
	require.Equal(t, ReplySimpleString, r.Kind)
	require.Equal(t, "QUEUED", r.Str)

	exec := h.run("EXEC")
	require.Equal(t, ReplyArray, exec.Kind)
	require.Len(t, exec.Array, 1)
	require.Equal(t, "v", string(h.run("GET", "k").Bytes))
}

func TestDiscardAbandonsQueue(t *testing.T) {
	h := newHarness(t)
	h.run("MULTI")
	h.run("SET", "k", "v")
	require.Equal(t, ReplyOK, h.run("DISCARD").Kind)
	require.Equal(t, ReplyNullBulk, h.run("GET", "k").Kind)
}

func TestExecAbortsAfterDirtyQueue(t *testing.T) {
	h := newHarness(t)
	h.run("MULTI")
	h.run("NOTACOMMAND")
	r := h.run("EXEC")
	require.Equal(t, ReplyError, r.Kind)
	te, ok := AsTypedError(r.Err)
	require.True(t, ok)
	require.Equal(t, ExecAbort, te.Kind)
}

func TestWatchedKeyChangedByOtherConnAbortsExec(t *testing.T) {
	h := newHarness(t)
	h.run("SET", "k", "1")
	h.run("WATCH", "k")
	h.run("MULTI")
	h.run("SET", "k", "queued-write")

	// Simulate a second connection writing the watched key before EXEC.
	h.ctx.DB.SetKey([]byte("k"), object.NewString([]byte("2")))

	r := h.run("EXEC")
	require.Equal(t, ReplyNullArray, r.Kind)
	require.Equal(t, "2", string(h.run("GET", "k").Bytes))
}

func TestExecWithoutMultiIsExecAbort(t *testing.T) {
	h := newHarness(t)
	r := h.run("EXEC")
	te, ok := AsTypedError(r.Err)
	require.True(t, ok)
	require.Equal(t, ExecAbort, te.Kind)
}

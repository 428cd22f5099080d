package commands

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPushAndRangeOrdering(t *testing.T) {
	h := newHarness(t)
	h.run("RPUSH", "l", "a", "b", "c")
	h.run("LPUSH", "l", "z")
	r := h.run("LRANGE", "l", "0", "-1")
	require.Len(t, r.Array, 4)
	require.Equal(t, "z", string(r.Array[0].Bytes))
	require.Equal(t, "c", string(r.Array[3].Bytes))
}

func TestPushxOnMissingKeyIsNoop(t *testing.T) {
	h := newHarness(t)
	r := h.run("LPUSHX", "missing", "v")
	require.EqualValues(t, 0, r.Int)
	require.Equal(t, ReplyNullBulk, h.run("LPOP", "missing").Kind)
}

func TestPopEmptiesKey(t *testing.T) {
	h := newHarness(t)
	h.run("RPUSH", "l", "only")
	require.Equal(t, "only", string(h.run("RPOP", "l").Bytes))
	require.EqualValues(t, 0, h.run("EXISTS", "l").Int)
}

func TestLsetReplacesByIndex(t *testing.T) {
	h := newHarness(t)
	h.run("RPUSH", "l", "a", "b", "c")
	h.run("LSET", "l", "1", "B")
	require.Equal(t, "B", string(h.run("LINDEX", "l", "1").Bytes))
}

func TestLtrimKeepsOnlyRange(t *testing.T) {
	h := newHarness(t)
	h.run("RPUSH", "l", "a", "b", "c", "d")
	h.run("LTRIM", "l", "1", "2")
	r := h.run("LRANGE", "l", "0", "-1")
	require.Len(t, r.Array, 2)
	require.Equal(t, "b", string(r.Array[0].Bytes))
	require.Equal(t, "c", string(r.Array[1].Bytes))
}

func TestLremRemovesFromHead(t *testing.T) {
	h := newHarness(t)
	h.run("RPUSH", "l", "a", "b", "a", "c", "a")
	r := h.run("LREM", "l", "2", "a")
	require.EqualValues(t, 2, r.Int)
	out := h.run("LRANGE", "l", "0", "-1")
	require.Len(t, out.Array, 3)
	require.Equal(t, "b", string(out.Array[0].Bytes))
	require.Equal(t, "c", string(out.Array[1].Bytes))
	require.Equal(t, "a", string(out.Array[2].Bytes))
}

func TestLremRemovesFromTailWhenCountNegative(t *testing.T) {
	h := newHarness(t)
	h.run("RPUSH", "l", "a", "b", "a", "c", "a")
	r := h.run("LREM", "l", "-1", "a")
	require.EqualValues(t, 1, r.Int)
	out := h.run("LRANGE", "l", "0", "-1")
	require.Len(t, out.Array, 4)
	require.Equal(t, "c", string(out.Array[3].Bytes))
}

func TestLinsertBeforePivot(t *testing.T) {
	h := newHarness(t)
	h.run("RPUSH", "l", "a", "c")
	r := h.run("LINSERT", "l", "BEFORE", "c", "b")
	require.EqualValues(t, 3, r.Int)
	out := h.run("LRANGE", "l", "0", "-1")
	require.Equal(t, "b", string(out.Array[1].Bytes))
}

func TestRpoplpushMovesBetweenKeys(t *testing.T) {
	h := newHarness(t)
	h.run("RPUSH", "src", "a", "b")
	r := h.run("RPOPLPUSH", "src", "dst")
	require.Equal(t, "b", string(r.Bytes))
	out := h.run("LRANGE", "dst", "0", "-1")
	require.Equal(t, "b", string(out.Array[0].Bytes))
}

func TestBlpopPopsFirstReadyKey(t *testing.T) {
	h := newHarness(t)
	h.run("RPUSH", "l2", "only")
	r := h.run("BLPOP", "l1", "l2", "0")
	require.Len(t, r.Array, 2)
	require.Equal(t, "l2", string(r.Array[0].Bytes))
	require.Equal(t, "only", string(r.Array[1].Bytes))
}

func TestBlpopOnAllMissingKeysReturnsNullArrayImmediately(t *testing.T) {
	h := newHarness(t)
	r := h.run("BLPOP", "missing1", "missing2", "0")
	require.Equal(t, ReplyNullArray, r.Kind)
}

func TestBrpoplpushMovesBetweenKeys(t *testing.T) {
	h := newHarness(t)
	h.run("RPUSH", "src", "a", "b")
	r := h.run("BRPOPLPUSH", "src", "dst", "0")
	require.Equal(t, "b", string(r.Bytes))
	require.Equal(t, "b", string(h.run("LRANGE", "dst", "0", "-1").Array[0].Bytes))
}

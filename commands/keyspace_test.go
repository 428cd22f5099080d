package commands

import (
	"testing"

	"github.com/kvcore/kvcore/object"
	"github.com/stretchr/testify/require"
)

func TestExpireAndTtl(t *testing.T) {
	h := newHarness(t)
	h.run("SET", "k", "v")
	h.run("EXPIRE", "k", "10")
	r := h.run("TTL", "k")
	require.EqualValues(t, 10, r.Int)
}

func TestTtlOnMissingKeyIsMinusTwo(t *testing.T) {
	h := newHarness(t)
	require.EqualValues(t, -2, h.run("TTL", "missing").Int)
}

func TestPersistClearsExpiry(t *testing.T) {
	h := newHarness(t)
	h.run("SET", "k", "v", "EX", "10")
	r := h.run("PERSIST", "k")
	require.EqualValues(t, 1, r.Int)
	require.EqualValues(t, -1, h.run("TTL", "k").Int)
}

func TestTypeReportsObjectType(t *testing.T) {
	h := newHarness(t)
	h.run("SET", "s", "v")
	h.run("LPUSH", "l", "v")
	require.Equal(t, "string", h.run("TYPE", "s").Str)
	require.Equal(t, "list", h.run("TYPE", "l").Str)
	require.Equal(t, "none", h.run("TYPE", "missing").Str)
}

func TestKeysMatchesGlob(t *testing.T) {
	h := newHarness(t)
	h.run("SET", "foo", "1")
	h.run("SET", "bar", "1")
	h.run("SET", "foobar", "1")
	r := h.run("KEYS", "foo*")
	require.Len(t, r.Array, 2)
}

func TestRenameMovesValueAndExpiry(t *testing.T) {
	h := newHarness(t)
	h.run("SET", "a", "v", "EX", "10")
	h.run("RENAME", "a", "b")
	require.EqualValues(t, 0, h.run("EXISTS", "a").Int)
	require.Equal(t, "v", string(h.run("GET", "b").Bytes))
	require.EqualValues(t, 10, h.run("TTL", "b").Int)
}

func TestRenameNxFailsIfDstExists(t *testing.T) {
	h := newHarness(t)
	h.run("SET", "a", "1")
	h.run("SET", "b", "2")
	r := h.run("RENAMENX", "a", "b")
	require.EqualValues(t, 0, r.Int)
	require.Equal(t, "2", string(h.run("GET", "b").Bytes))
}

func TestMoveTransfersKeyAcrossDatabases(t *testing.T) {
	h := newHarness(t)
	h.run("SET", "k", "v")
	r := h.run("MOVE", "k", "1")
	require.EqualValues(t, 1, r.Int)
	require.EqualValues(t, 0, h.run("EXISTS", "k").Int)

	db1, err := h.srv.Select(1)
	require.NoError(t, err)
	o, ok := db1.LookupWrite(h.now, []byte("k"))
	require.True(t, ok)
	require.Equal(t, "v", string(object.StringBytes(o)))
}

func TestSwapdbExchangesKeyspaces(t *testing.T) {
	h := newHarness(t)
	h.run("SET", "k", "in-db0")
	r := h.run("SWAPDB", "0", "1")
	require.Equal(t, ReplyOK, r.Kind)
	require.EqualValues(t, 0, h.run("EXISTS", "k").Int)
}

func TestFlushdbRemovesAllKeys(t *testing.T) {
	h := newHarness(t)
	h.run("SET", "a", "1")
	h.run("SET", "b", "2")
	h.run("FLUSHDB")
	require.Equal(t, 0, h.ctx.DB.Size())
}

func TestDbsizeCountsEntries(t *testing.T) {
	h := newHarness(t)
	h.run("SET", "a", "1")
	h.run("SET", "b", "2")
	require.EqualValues(t, 2, h.run("DBSIZE").Int)
}

func TestShutdownFlagsServer(t *testing.T) {
	h := newHarness(t)
	require.False(t, h.srv.ShutdownRequested())
	r := h.run("SHUTDOWN", "NOSAVE")
	require.Equal(t, ReplyOK, r.Kind)
	require.True(t, h.srv.ShutdownRequested())
}

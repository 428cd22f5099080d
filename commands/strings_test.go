package commands

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetAndGetRoundTrip(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, ReplyOK, h.run("SET", "k", "v").Kind)
	r := h.run("GET", "k")
	require.Equal(t, ReplyBulk, r.Kind)
	require.Equal(t, "v", string(r.Bytes))
}

func TestSetNxRejectsExistingKey(t *testing.T) {
	h := newHarness(t)
	h.run("SET", "k", "v1")
	r := h.run("SET", "k", "v2", "NX")
	require.Equal(t, ReplyNullBulk, r.Kind)
	require.Equal(t, "v1", string(h.run("GET", "k").Bytes))
}

func TestSetWithExSetsExpire(t *testing.T) {
	h := newHarness(t)
	h.run("SET", "k", "v", "EX", "10")
	at, ok := h.ctx.DB.GetExpire([]byte("k"))
	require.True(t, ok)
	require.Equal(t, h.now+10000, at)
}

func TestIncrOnMissingKeyStartsAtZero(t *testing.T) {
	h := newHarness(t)
	r := h.run("INCR", "counter")
	require.Equal(t, ReplyInteger, r.Kind)
	require.EqualValues(t, 1, r.Int)
}

func TestIncrOnNonIntegerIsSyntaxError(t *testing.T) {
	h := newHarness(t)
	h.run("SET", "k", "notanumber")
	r := h.run("INCR", "k")
	require.Equal(t, ReplyError, r.Kind)
	te, ok := AsTypedError(r.Err)
	require.True(t, ok)
	require.Equal(t, Syntax, te.Kind)
}

func TestAppendGrowsValue(t *testing.T) {
	h := newHarness(t)
	h.run("SET", "k", "Hello")
	r := h.run("APPEND", "k", " World")
	require.EqualValues(t, 11, r.Int)
	require.Equal(t, "Hello World", string(h.run("GET", "k").Bytes))
}

func TestMsetNxFailsIfAnyKeyExists(t *testing.T) {
	h := newHarness(t)
	h.run("SET", "a", "1")
	r := h.run("MSETNX", "a", "2", "b", "3")
	require.EqualValues(t, 0, r.Int)
	require.Equal(t, ReplyNullBulk, h.run("GET", "b").Kind)
}

func TestGetRangeNegativeIndices(t *testing.T) {
	h := newHarness(t)
	h.run("SET", "k", "This is a string")
	r := h.run("GETRANGE", "k", "-3", "-1")
	require.Equal(t, "ing", string(r.Bytes))
}

func TestGetOnWrongTypeErrors(t *testing.T) {
	h := newHarness(t)
	h.run("LPUSH", "k", "v")
	r := h.run("GET", "k")
	require.Equal(t, ReplyError, r.Kind)
	te, ok := AsTypedError(r.Err)
	require.True(t, ok)
	require.Equal(t, WrongType, te.Kind)
}

package packedlist

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripStringsAndInts(t *testing.T) {
	l := New()
	cases := []Value{
		{Bytes: []byte("")},
		{Bytes: []byte("short")},
		{Bytes: make([]byte, 100)},
		{Bytes: make([]byte, 20000)},
		{Int: 0, IsInt: true},
		{Int: 12, IsInt: true},
		{Int: 13, IsInt: true},
		{Int: -1, IsInt: true},
		{Int: 127, IsInt: true},
		{Int: 1 << 20, IsInt: true},
		{Int: -1 << 40, IsInt: true},
		{Int: 1<<62 + 1, IsInt: true},
	}
	for _, v := range cases {
		l.Push(v, AtTail)
	}
	i := 0
	for p := l.Head(); p != End; p = l.Next(p) {
		got := l.Get(p)
		want := cases[i]
		if want.IsInt {
			require.True(t, got.IsInt)
			assert.Equal(t, want.Int, got.Int)
		} else {
			require.False(t, got.IsInt)
			assert.Equal(t, want.Bytes, got.Bytes)
		}
		i++
	}
	assert.Equal(t, len(cases), i)
}

func TestInsertBeforeUpdatesPredecessorLink(t *testing.T) {
	l := New()
	l.Push(Value{Bytes: []byte("a")}, AtTail)
	x := l.Push(Value{Bytes: []byte("x")}, AtTail)
	newPtr := l.InsertBefore(x, Value{Bytes: []byte("b")})
	prevOfX := l.Prev(l.Next(newPtr))
	assert.Equal(t, newPtr, prevOfX)
	assert.Equal(t, []byte("b"), l.Get(newPtr).Bytes)
}

func TestBlobLenMatchesBufferLength(t *testing.T) {
	l := New()
	for i := 0; i < 50; i++ {
		l.Push(Value{Bytes: []byte(fmt.Sprintf("entry-%d", i))}, AtTail)
	}
	assert.Equal(t, len(l.buf), l.BlobLen())
}

func TestDeleteReturnsSuccessorPtr(t *testing.T) {
	l := New()
	l.Push(Value{Bytes: []byte("a")}, AtTail)
	mid := l.Push(Value{Bytes: []byte("b")}, AtTail)
	l.Push(Value{Bytes: []byte("c")}, AtTail)
	next := l.Delete(mid)
	assert.Equal(t, []byte("c"), l.Get(next).Bytes)
	assert.Equal(t, 2, l.Len())
}

func TestDeleteTailReturnsEnd(t *testing.T) {
	l := New()
	l.Push(Value{Bytes: []byte("a")}, AtTail)
	tail := l.Push(Value{Bytes: []byte("b")}, AtTail)
	assert.Equal(t, End, l.Delete(tail))
}

func TestIndexNegative(t *testing.T) {
	l := New()
	for i := 0; i < 5; i++ {
		l.Push(Value{Int: int64(i), IsInt: true}, AtTail)
	}
	assert.Equal(t, int64(4), l.Get(l.Index(-1)).Int)
	assert.Equal(t, int64(0), l.Get(l.Index(-5)).Int)
	assert.Equal(t, End, l.Index(-6))
	assert.Equal(t, End, l.Index(5))
}

func TestFindWithSkip(t *testing.T) {
	l := New()
	// field/value pairs: compare fields only, skip values (skipEvery=1).
	l.Push(Value{Bytes: []byte("f1")}, AtTail)
	l.Push(Value{Bytes: []byte("v1")}, AtTail)
	l.Push(Value{Bytes: []byte("f2")}, AtTail)
	l.Push(Value{Bytes: []byte("v2")}, AtTail)
	p := l.Find(l.Head(), []byte("f2"), 1)
	require.NotEqual(t, End, p)
	assert.Equal(t, []byte("v2"), l.Get(l.Next(p)).Bytes)
}

func TestCascadingPrevLenGrowth(t *testing.T) {
	l := New()
	big := make([]byte, 300) // forces a 5-byte prevLen on its successor
	l.Push(Value{Bytes: []byte("a")}, AtTail)
	l.Push(Value{Bytes: []byte("b")}, AtTail)
	mid := l.InsertAfter(l.Head(), Value{Bytes: big})
	after := l.Next(mid)
	prevLen, size := l.readPrevLen(after)
	assert.Equal(t, 5, size, "prevLen must widen to 5 bytes once predecessor exceeds 253 bytes")
	assert.Equal(t, uint32(l.BlobLen()), uint32(l.BlobLen()))
	_ = prevLen
}

func TestDeleteRange(t *testing.T) {
	l := New()
	for i := 0; i < 10; i++ {
		l.Push(Value{Int: int64(i), IsInt: true}, AtTail)
	}
	l.DeleteRange(2, 3)
	require.Equal(t, 7, l.Len())
	assert.Equal(t, int64(1), l.Get(l.Index(1)).Int)
	assert.Equal(t, int64(5), l.Get(l.Index(2)).Int)
}

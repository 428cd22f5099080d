package quicklist

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvcore/kvcore/packedlist"
)

func TestCountEqualsSumOfNodeEntryCounts(t *testing.T) {
	l := New(WithFill(4))
	for i := 0; i < 50; i++ {
		l.PushTail(packedlist.Value{Int: int64(i), IsInt: true})
	}
	sum := 0
	for n := l.head; n != nil; n = n.next {
		sum += n.entryCount
	}
	assert.Equal(t, l.Count(), sum)
}

func TestLargeEntriesProduceMultipleNodesAndCompressInterior(t *testing.T) {
	l := New(WithFill(128), WithCompressDepth(1))
	big := make([]byte, 1024)
	l.PushTail(packedlist.Value{Bytes: []byte("a")})
	l.PushTail(packedlist.Value{Bytes: []byte("b")})
	l.PushTail(packedlist.Value{Bytes: []byte("c")})
	for i := 0; i < 10000; i++ {
		l.PushTail(packedlist.Value{Bytes: big})
	}
	require.Greater(t, l.NodeCount(), 1)
	assert.Equal(t, 10003, l.Count())

	// interior nodes (more than compressDepth from both ends) should be
	// compressed.
	foundCompressed := false
	idx := 0
	for n := l.head; n != nil; n = n.next {
		interior := idx >= l.compressDepth && l.nodeCount-idx > l.compressDepth
		if interior && n.encoding == EncodingCompressed {
			foundCompressed = true
		}
		idx++
	}
	assert.True(t, foundCompressed, "expected at least one compressed interior node")
}

func TestLRangeOrderPreserved(t *testing.T) {
	l := New(WithFill(4))
	for i := 0; i < 20; i++ {
		l.PushTail(packedlist.Value{Int: int64(i), IsInt: true})
	}
	for i := 0; i < 20; i++ {
		h, ok := l.Index(i)
		require.True(t, ok)
		assert.Equal(t, int64(i), l.Get(h).Int)
	}
}

func TestInsertSplitsOverflowingNode(t *testing.T) {
	l := New(WithFill(2))
	l.PushTail(packedlist.Value{Int: 1, IsInt: true})
	l.PushTail(packedlist.Value{Int: 2, IsInt: true})
	h, _ := l.Index(0)
	l.InsertAfter(h, packedlist.Value{Int: 99, IsInt: true})
	require.Equal(t, 3, l.Count())
	vals := []int64{}
	for i := 0; i < l.Count(); i++ {
		hh, _ := l.Index(i)
		vals = append(vals, l.Get(hh).Int)
	}
	assert.Equal(t, []int64{1, 99, 2}, vals)
}

func TestDeleteUnlinksEmptyNode(t *testing.T) {
	l := New(WithFill(2))
	l.PushTail(packedlist.Value{Int: 1, IsInt: true})
	h, _ := l.Index(0)
	l.Delete(h)
	assert.Equal(t, 0, l.Count())
	assert.Equal(t, 0, l.NodeCount())
}

func TestCompressionRoundTrip(t *testing.T) {
	n := newNode(S2Codec{})
	for i := 0; i < 100; i++ {
		n.packed.Push(packedlist.Value{Bytes: []byte(fmt.Sprintf("field-%d-filler-filler", i))}, packedlist.AtTail)
	}
	n.refreshCounts()
	before := n.packed.Bytes()
	beforeCopy := append([]byte(nil), before...)
	n.tryCompress()
	require.Equal(t, EncodingCompressed, n.encoding)
	pl := n.ensureDecompressed()
	assert.Equal(t, beforeCopy, pl.Bytes())
}

// poorRatioCodec pads instead of compressing, so its ratio never clears
// minCompressionRatio — used to force tryCompress's fallback path.
type poorRatioCodec struct{}

func (poorRatioCodec) Compress(raw []byte) []byte { return append(raw, raw...) }
func (poorRatioCodec) Decompress(compressed []byte) []byte {
	return compressed[:len(compressed)/2]
}

func TestTryCompressFallsBackToSnappyOnPoorRatio(t *testing.T) {
	n := newNode(poorRatioCodec{})
	for i := 0; i < 100; i++ {
		n.packed.Push(packedlist.Value{Bytes: []byte(fmt.Sprintf("field-%d-filler-filler", i))}, packedlist.AtTail)
	}
	n.refreshCounts()
	before := n.packed.Bytes()
	beforeCopy := append([]byte(nil), before...)
	n.tryCompress()
	require.Equal(t, EncodingCompressed, n.encoding)
	require.IsType(t, SnappyCodec{}, n.codec)
	pl := n.ensureDecompressed()
	assert.Equal(t, beforeCopy, pl.Bytes())
}

func TestReplaceAtPreservesOrder(t *testing.T) {
	l := New(WithFill(4))
	for i := 0; i < 10; i++ {
		l.PushTail(packedlist.Value{Int: int64(i), IsInt: true})
	}
	require.True(t, l.ReplaceAt(5, packedlist.Value{Int: 500, IsInt: true}))
	h, _ := l.Index(5)
	assert.Equal(t, int64(500), l.Get(h).Int)
	h4, _ := l.Index(4)
	assert.Equal(t, int64(4), l.Get(h4).Int)
	h6, _ := l.Index(6)
	assert.Equal(t, int64(6), l.Get(h6).Int)
}

func TestRotateMovesTailToHead(t *testing.T) {
	l := New(WithFill(4))
	for i := 0; i < 5; i++ {
		l.PushTail(packedlist.Value{Int: int64(i), IsInt: true})
	}
	l.Rotate()
	h, _ := l.Index(0)
	assert.Equal(t, int64(4), l.Get(h).Int)
	hLast, _ := l.Index(-1)
	assert.Equal(t, int64(3), l.Get(hLast).Int)
}

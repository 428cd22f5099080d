package object

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZAddAndZScore(t *testing.T) {
	o := NewSortedSet()
	require.True(t, ZAdd(o, DefaultSortedSetConfig, []byte("alice"), 1.5))
	require.False(t, ZAdd(o, DefaultSortedSetConfig, []byte("alice"), 2.5))
	score, ok := ZScore(o, []byte("alice"))
	require.True(t, ok)
	require.Equal(t, 2.5, score)
	require.Equal(t, EncSortedSetPacked, o.Encoding())
}

func TestZRangeOrdersByScoreThenMember(t *testing.T) {
	o := NewSortedSet()
	ZAdd(o, DefaultSortedSetConfig, []byte("c"), 1)
	ZAdd(o, DefaultSortedSetConfig, []byte("a"), 1)
	ZAdd(o, DefaultSortedSetConfig, []byte("b"), 0)
	got := ZRange(o, 0, -1)
	require.Equal(t, []ZMember{
		{Member: []byte("b"), Score: 0},
		{Member: []byte("a"), Score: 1},
		{Member: []byte("c"), Score: 1},
	}, got)
}

func TestZAddUpgradesToGeneralPastMaxEntries(t *testing.T) {
	o := NewSortedSet()
	cfg := SortedSetConfig{MaxEntries: 4, MaxMemberLen: 64}
	for i := 0; i < 6; i++ {
		ZAdd(o, cfg, []byte{byte('a' + i)}, float64(i))
	}
	require.Equal(t, EncSortedSetSkiplist, o.Encoding())
	require.Equal(t, 6, ZLen(o))
	score, ok := ZScore(o, []byte{'a'})
	require.True(t, ok)
	require.Equal(t, float64(0), score)
}

func TestZRemAfterUpgrade(t *testing.T) {
	o := NewSortedSet()
	cfg := SortedSetConfig{MaxEntries: 1, MaxMemberLen: 64}
	ZAdd(o, cfg, []byte("a"), 1)
	ZAdd(o, cfg, []byte("b"), 2)
	require.Equal(t, EncSortedSetSkiplist, o.Encoding())
	require.True(t, ZRem(o, []byte("a")))
	require.False(t, ZRem(o, []byte("a")))
	require.Equal(t, 1, ZLen(o))
}

func TestZRangeNegativeIndices(t *testing.T) {
	o := NewSortedSet()
	ZAdd(o, DefaultSortedSetConfig, []byte("a"), 1)
	ZAdd(o, DefaultSortedSetConfig, []byte("b"), 2)
	ZAdd(o, DefaultSortedSetConfig, []byte("c"), 3)
	got := ZRange(o, -2, -1)
	require.Equal(t, []ZMember{{Member: []byte("b"), Score: 2}, {Member: []byte("c"), Score: 3}}, got)
}

package keyspace

import (
	"testing"

	"github.com/kvcore/kvcore/object"
	"github.com/stretchr/testify/require"
)

func TestSelectOutOfRange(t *testing.T) {
	s := NewServer(Config{Databases: 2})
	_, err := s.Select(5)
	require.Error(t, err)
	db, err := s.Select(1)
	require.NoError(t, err)
	require.Equal(t, 1, db.ID())
}

func TestSwapDB(t *testing.T) {
	s := NewServer(Config{Databases: 2})
	db0, _ := s.Select(0)
	db1, _ := s.Select(1)
	db0.SetKey([]byte("k"), object.NewString([]byte("zero")))
	require.NoError(t, s.SwapDB(0, 1))
	_, ok := db0.LookupRead(0, []byte("k"), false)
	require.False(t, ok)
	o, ok := db1.LookupRead(0, []byte("k"), false)
	require.True(t, ok)
	require.Equal(t, []byte("zero"), object.StringBytes(o))
}

func TestPropagateNoOpWithoutSink(t *testing.T) {
	s := NewServer(Config{Databases: 1})
	require.NotPanics(t, func() { s.Propagate("SET", 0, nil, TargetPersistLog) })
}

func TestPropagateForwardsToWiredSink(t *testing.T) {
	s := NewServer(Config{Databases: 1})
	var got string
	s.SetPropagate(func(cmd string, dbID int, argv [][]byte, targets Target) { got = cmd })
	s.Propagate("SET", 0, nil, TargetPersistLog)
	require.Equal(t, "SET", got)
}

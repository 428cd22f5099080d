package object

import (
	"sort"
	"strconv"

	"github.com/kvcore/kvcore/hashmap"
)

// SetConfig carries set encoding thresholds mirroring HashConfig: element
// count above which an intset upgrades to a general hashTable set, plus
// the trigger of any non-integer element (spec.md §4.D encoding table).
type SetConfig struct {
	MaxEntries int
}

// DefaultSetConfig matches the hash default (spec.md leaves set N
// unspecified beyond "as above").
var DefaultSetConfig = SetConfig{MaxEntries: 128}

type intset struct {
	values []int64 // kept sorted for O(log n) membership and intset iteration order
}

// setHashTable is the general set encoding, backed by this package's own
// hashmap.Map for consistency with sortedset.go's general-encoding side
// table rather than a bare Go map.
type setHashTable struct {
	m *hashmap.Map
}

// NewSet returns an empty set Object in the compact intset encoding.
func NewSet() *Object { return Create(TypeSet, EncIntset, &intset{}) }

// SetAdd adds member, returning true if newly added. A non-integer member
// forces an immediate, permanent upgrade to the hashTable encoding.
func SetAdd(o *Object, cfg SetConfig, member []byte) bool {
	switch p := o.payload.(type) {
	case *intset:
		n, ok := parseInt64(member)
		if !ok {
			return setAddGeneral(o, upgradeSetToHashTable(o, p), member)
		}
		if intsetContains(p, n) {
			return false
		}
		intsetInsert(p, n)
		if len(p.values) > cfg.MaxEntries {
			upgradeSetToHashTable(o, p)
		}
		return true
	case *setHashTable:
		return setAddGeneral(o, p, member)
	}
	return false
}

func setAddGeneral(o *Object, p *setHashTable, member []byte) bool {
	if _, ok := p.m.Find(member); ok {
		return false
	}
	p.m.Upsert(member, struct{}{})
	return true
}

func intsetContains(p *intset, n int64) bool {
	i := sort.Search(len(p.values), func(i int) bool { return p.values[i] >= n })
	return i < len(p.values) && p.values[i] == n
}

func intsetInsert(p *intset, n int64) {
	i := sort.Search(len(p.values), func(i int) bool { return p.values[i] >= n })
	p.values = append(p.values, 0)
	copy(p.values[i+1:], p.values[i:])
	p.values[i] = n
}

func upgradeSetToHashTable(o *Object, p *intset) *setHashTable {
	t := &setHashTable{m: hashmap.New(4)}
	for _, n := range p.values {
		t.m.Upsert([]byte(formatInt64(n)), struct{}{})
	}
	o.setEncoding(EncSetHashTable)
	o.setPayload(t)
	return t
}

// SetRemove removes member, returning true if it was present.
func SetRemove(o *Object, member []byte) bool {
	switch p := o.payload.(type) {
	case *intset:
		n, ok := parseInt64(member)
		if !ok {
			return false
		}
		if !intsetContains(p, n) {
			return false
		}
		i := sort.Search(len(p.values), func(i int) bool { return p.values[i] >= n })
		p.values = append(p.values[:i], p.values[i+1:]...)
		return true
	case *setHashTable:
		return p.m.Remove(member)
	}
	return false
}

// SetContains reports membership.
func SetContains(o *Object, member []byte) bool {
	switch p := o.payload.(type) {
	case *intset:
		n, ok := parseInt64(member)
		return ok && intsetContains(p, n)
	case *setHashTable:
		_, ok := p.m.Find(member)
		return ok
	}
	return false
}

// SetLen returns the member count.
func SetLen(o *Object) int {
	switch p := o.payload.(type) {
	case *intset:
		return len(p.values)
	case *setHashTable:
		return int(p.m.Used())
	}
	return 0
}

// SetMembers returns every member. intset order is numeric ascending;
// hashTable order is unspecified.
func SetMembers(o *Object) [][]byte {
	switch p := o.payload.(type) {
	case *intset:
		out := make([][]byte, len(p.values))
		for i, n := range p.values {
			out[i] = []byte(formatInt64(n))
		}
		return out
	case *setHashTable:
		out := make([][]byte, 0, p.m.Used())
		it := p.m.NewSafeIterator()
		for it.Next() {
			out = append(out, it.Key())
		}
		it.Close()
		return out
	}
	return nil
}

func formatInt64(n int64) string {
	return strconv.FormatInt(n, 10)
}

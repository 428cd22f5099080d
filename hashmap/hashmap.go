// Package hashmap implements the open-addressed-by-chaining hash table
// described in spec.md §3/§4.A: two backing arrays for incremental
// rehashing, safe/unsafe iteration, random sampling and a resize-tolerant
// scan cursor. It is the leaf structure the keyspace, pubsub and object
// packages build on.
package hashmap

import (
	"unsafe"

	"github.com/cespare/xxhash/v2"

	"github.com/kvcore/kvcore/mathutil"
)

// Hasher computes a 64-bit digest of a key. The default is xxhash, which
// the corpus already favors over a hand-rolled FNV (HydraKV's xxhash64,
// erigon's transitive cespare/xxhash/v2).
type Hasher interface {
	Sum64(b []byte) uint64
}

type xxhasher struct{}

func (xxhasher) Sum64(b []byte) uint64 { return xxhash.Sum64(b) }

// entry is one chain link. Entries are never reallocated during rehashing,
// only relinked — spec.md §3's "HashMap rehashing does not reallocate
// entry records, only relinks them."
type entry struct {
	key   []byte
	value any
	next  *entry
}

type table struct {
	buckets []*entry
	size    uint64
	mask    uint64
	used    uint64
}

func newTable(size uint64) table {
	size = mathutil.NextPowerOfTwo(size)
	return table{buckets: make([]*entry, size), size: size, mask: size - 1}
}

// ForceRehashRatio is the load factor at which rehashing is forced even
// when resizing has been globally disabled (e.g. during a copy-on-write
// snapshot fork) — spec.md §4.A "forced threshold". A log-structured or
// fork-free deployment may lower it to 1, per spec.md §9.
const ForceRehashRatio = 5

// RehashStepBuckets is N, the number of non-empty buckets migrated per
// incremental rehash step triggered from Insert/Find/Remove.
const RehashStepBuckets = 1

// emptyVisitMultiplier bounds how many empty buckets a single step call may
// skip over before giving up, so a long run of empty buckets cannot make a
// step unbounded.
const emptyVisitMultiplier = 10

// Map is the two-table incrementally-rehashing hash map of spec.md §3.
type Map struct {
	h               [2]table
	rehashIdx       int64 // -1 == not rehashing
	iteratorsActive int32
	hasher          Hasher
	resizingEnabled bool
	metrics         *Metrics
	rng             randSource
}

// Option configures a new Map.
type Option func(*Map)

// WithHasher overrides the default xxhash-based hasher.
func WithHasher(h Hasher) Option { return func(m *Map) { m.hasher = h } }

// WithMetrics attaches a Metrics recorder; nil (the default) disables
// metrics entirely.
func WithMetrics(met *Metrics) Option { return func(m *Map) { m.metrics = met } }

// New returns an empty Map with table 0 sized to hold at least initialSize
// entries without a resize.
func New(initialSize uint64, opts ...Option) *Map {
	m := &Map{
		h:               [2]table{newTable(initialSize), {}},
		rehashIdx:       -1,
		hasher:          xxhasher{},
		resizingEnabled: true,
		rng:             defaultRandSource{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Rehashing reports whether incremental rehashing is in progress.
func (m *Map) Rehashing() bool { return m.rehashIdx >= 0 }

// Used returns the total live entry count across both tables.
func (m *Map) Used() uint64 { return m.h[0].used + m.h[1].used }

func (m *Map) hash(key []byte) uint64 { return m.hasher.Sum64(key) }

// SetResizingEnabled toggles the global resize-allowed policy bit
// (spec.md §4.A resize policy condition (i)); disabled during a
// copy-on-write snapshot fork to minimize page dirtying, in which case
// only the ForceRehashRatio condition can still trigger a grow.
func (m *Map) SetResizingEnabled(enabled bool) { m.resizingEnabled = enabled }

// Insert adds key/value, failing if key is already present.
func (m *Map) Insert(key []byte, value any) bool {
	if _, found := m.find(key); found {
		return false
	}
	m.insertNew(key, value)
	m.stepIfIdle()
	return true
}

// Upsert replaces an existing value or inserts a new entry.
func (m *Map) Upsert(key []byte, value any) {
	if e, found := m.find(key); found {
		e.value = value
		m.stepIfIdle()
		return
	}
	m.insertNew(key, value)
	m.stepIfIdle()
}

func (m *Map) insertNew(key []byte, value any) {
	m.maybeGrow()
	idx := m.targetTableForWrite()
	t := &m.h[idx]
	h := m.hash(key)
	b := h & t.mask
	t.buckets[b] = &entry{key: key, value: value, next: t.buckets[b]}
	t.used++
	if m.metrics != nil {
		m.metrics.observe(m)
	}
}

// targetTableForWrite returns 1 while rehashing (spec.md: "all inserts go
// to h[1]"), else 0.
func (m *Map) targetTableForWrite() int {
	if m.Rehashing() {
		return 1
	}
	return 0
}

// Find returns the value stored for key, if any.
func (m *Map) Find(key []byte) (any, bool) {
	e, ok := m.find(key)
	m.stepIfIdle()
	if !ok {
		return nil, false
	}
	return e.value, true
}

func (m *Map) find(key []byte) (*entry, bool) {
	h := m.hash(key)
	if e := lookupInTable(&m.h[0], h, key); e != nil {
		return e, true
	}
	if m.Rehashing() {
		if e := lookupInTable(&m.h[1], h, key); e != nil {
			return e, true
		}
	}
	return nil, false
}

func lookupInTable(t *table, h uint64, key []byte) *entry {
	if t.size == 0 {
		return nil
	}
	for e := t.buckets[h&t.mask]; e != nil; e = e.next {
		if string(e.key) == string(key) {
			return e
		}
	}
	return nil
}

// Remove deletes key, discarding its value. Returns false if absent.
func (m *Map) Remove(key []byte) bool {
	_, ok := m.Unlink(key)
	return ok
}

// Unlink removes key from its bucket and transfers ownership of the value
// to the caller, without freeing it — spec.md's "peek then free later".
func (m *Map) Unlink(key []byte) (any, bool) {
	h := m.hash(key)
	if v, ok := unlinkFromTable(&m.h[0], h, key); ok {
		m.stepIfIdle()
		m.maybeShrink()
		return v, true
	}
	if m.Rehashing() {
		if v, ok := unlinkFromTable(&m.h[1], h, key); ok {
			m.stepIfIdle()
			m.maybeShrink()
			return v, true
		}
	}
	m.stepIfIdle()
	return nil, false
}

func unlinkFromTable(t *table, h uint64, key []byte) (any, bool) {
	if t.size == 0 {
		return nil, false
	}
	b := h & t.mask
	var prev *entry
	for e := t.buckets[b]; e != nil; e = e.next {
		if string(e.key) == string(key) {
			if prev == nil {
				t.buckets[b] = e.next
			} else {
				prev.next = e.next
			}
			t.used--
			return e.value, true
		}
		prev = e
	}
	return nil, false
}

// Fingerprint returns a 64-bit digest of observable table state (pointers,
// sizes, counts), used to detect unsafe-iterator misuse across a mutation.
func (m *Map) Fingerprint() uint64 {
	var h uint64 = 14695981039346656037 // FNV offset basis, mixed manually
	mix := func(v uint64) {
		h ^= v
		h *= 1099511628211
	}
	for i := range m.h {
		mix(m.h[i].size)
		mix(m.h[i].used)
		if len(m.h[i].buckets) > 0 {
			mix(uint64(uintptr(unsafe.Pointer(&m.h[i].buckets[0]))))
		}
	}
	mix(uint64(m.rehashIdx + 1))
	return h
}

package hashmap

import "github.com/kvcore/kvcore/diagnostics"

// Iterator walks every live entry. Call Next until it returns false, then
// Close. A *safe* iterator tolerates mutation during traversal at the cost
// of suppressing rehashing for its lifetime; an *unsafe* iterator is
// cheaper but must not outlive any mutation, verified by a fingerprint
// taken at creation and checked at Close.
type Iterator struct {
	m        *Map
	safe     bool
	tableIdx int
	bucket   uint64
	cur      *entry
	started  bool
	fp       uint64
	closed   bool
}

// NewSafeIterator returns an iterator that may coexist with mutation.
// iteratorsActive is incremented and rehashing is suppressed until Close.
func (m *Map) NewSafeIterator() *Iterator {
	m.iteratorsActive++
	return &Iterator{m: m, safe: true, tableIdx: 0}
}

// NewUnsafeIterator returns a cheap iterator that must not observe any
// mutation between creation and Close. Misuse is a fatal contract
// violation, detected (not prevented) by the fingerprint check in Close.
func (m *Map) NewUnsafeIterator() *Iterator {
	return &Iterator{m: m, safe: false, tableIdx: 0, fp: m.Fingerprint()}
}

// Next advances the iterator, returning false when exhausted.
func (it *Iterator) Next() bool {
	for {
		if !it.started {
			it.started = true
			it.cur = it.firstBucketHead()
		} else if it.cur != nil {
			it.cur = it.cur.next
		}
		for it.cur == nil {
			it.bucket++
			t := &it.m.h[it.tableIdx]
			if it.bucket >= t.size {
				if it.tableIdx == 0 && it.m.Rehashing() {
					it.tableIdx = 1
					it.bucket = 0
					t = &it.m.h[1]
					if t.size == 0 {
						return false
					}
					it.cur = t.buckets[0]
					break
				}
				return false
			}
			it.cur = t.buckets[it.bucket]
		}
		if it.cur != nil {
			return true
		}
	}
}

func (it *Iterator) firstBucketHead() *entry {
	t := &it.m.h[0]
	if t.size == 0 {
		return nil
	}
	return t.buckets[0]
}

// Key returns the current entry's key.
func (it *Iterator) Key() []byte { return it.cur.key }

// Value returns the current entry's value.
func (it *Iterator) Value() any { return it.cur.value }

// Close releases the iterator. For a safe iterator this re-enables
// rehashing once no other safe iterator is live. For an unsafe iterator
// this verifies the fingerprint is unchanged; a mismatch is a fatal
// contract violation reported through diagnostics.Fatal (FingerprintOK
// exposes the same comparison without aborting).
func (it *Iterator) Close() {
	if it.closed {
		return
	}
	it.closed = true
	if it.safe {
		it.m.iteratorsActive--
	} else if !it.FingerprintOK() {
		diagnostics.Fatal(nil, "hashmap: map mutated during unsafe iteration", it.fp)
	}
}

// FingerprintOK reports whether an unsafe iterator's fingerprint still
// matches the map's current state. Call at Close time.
func (it *Iterator) FingerprintOK() bool {
	if it.safe {
		return true
	}
	return it.fp == it.m.Fingerprint()
}

package hashmap

// maybeGrow starts an incremental rehash into a larger h[1] if the resize
// policy of spec.md §4.A fires: used >= size and (resizing globally
// enabled OR used/size exceeds ForceRehashRatio).
func (m *Map) maybeGrow() {
	if m.Rehashing() {
		return
	}
	t := &m.h[0]
	if t.used < t.size {
		return
	}
	forced := t.size > 0 && t.used/t.size > ForceRehashRatio
	if !m.resizingEnabled && !forced {
		return
	}
	m.startRehash(t.used + 1)
}

// maybeShrink mirrors the grow policy: when used falls significantly below
// size, start an incremental rehash into a smaller table.
func (m *Map) maybeShrink() {
	if m.Rehashing() || !m.resizingEnabled {
		return
	}
	t := &m.h[0]
	if t.size <= 4 {
		return
	}
	// "significantly below": used/size under 1/8.
	if t.used*8 >= t.size {
		return
	}
	m.startRehash(t.used)
}

func (m *Map) startRehash(targetUsed uint64) {
	m.h[1] = newTable(targetUsed)
	m.rehashIdx = 0
}

// stepIfIdle performs one bounded rehash step when no safe iterator is
// live. Every Insert/Find/Remove calls this, amortizing migration cost
// across normal traffic instead of stopping the world.
func (m *Map) stepIfIdle() {
	if m.iteratorsActive > 0 {
		return
	}
	m.rehashStep(RehashStepBuckets)
	if m.metrics != nil {
		m.metrics.observe(m)
	}
}

// rehashStep advances up to n non-empty buckets of h[0] into h[1], capping
// empty-bucket visits at emptyVisitMultiplier*n to bound latency.
func (m *Map) rehashStep(n int) {
	if !m.Rehashing() {
		return
	}
	emptyBudget := n * emptyVisitMultiplier
	moved := 0
	for moved < n {
		if m.rehashIdx >= int64(m.h[0].size) {
			m.finishRehash()
			return
		}
		bucket := m.h[0].buckets[m.rehashIdx]
		if bucket == nil {
			m.rehashIdx++
			emptyBudget--
			if emptyBudget <= 0 {
				return
			}
			continue
		}
		for bucket != nil {
			next := bucket.next
			h := m.hash(bucket.key)
			t := &m.h[1]
			b := h & t.mask
			bucket.next = t.buckets[b]
			t.buckets[b] = bucket
			t.used++
			m.h[0].used--
			bucket = next
		}
		m.h[0].buckets[m.rehashIdx] = nil
		m.rehashIdx++
		moved++
	}
	if m.h[0].used == 0 {
		m.finishRehash()
	}
}

func (m *Map) finishRehash() {
	m.h[0] = m.h[1]
	m.h[1] = table{}
	m.rehashIdx = -1
}

// RehashMillis performs time-budgeted rehash steps of 100 buckets at a time
// for up to budgetMillis milliseconds, the variant spec.md §4.A describes
// for a dedicated timer-driven rehash (as opposed to piggybacking on
// Insert/Find/Remove). nowMillisFn lets callers inject a monotonic clock.
func (m *Map) RehashMillis(budgetMillis int64, nowMillisFn func() int64) {
	if !m.Rehashing() {
		return
	}
	deadline := nowMillisFn() + budgetMillis
	for m.Rehashing() && nowMillisFn() < deadline {
		m.rehashStep(100)
	}
}

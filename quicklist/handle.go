package quicklist

import "github.com/kvcore/kvcore/packedlist"

// EntryHandle locates one entry within a quicklist: the owning node plus a
// PackedList Ptr into that node. Like a PackedList Ptr, a handle is
// invalidated by any insert/delete that touches its node; re-acquire via
// Index or an iterator.
type EntryHandle struct {
	node *Node
	ptr  packedlist.Ptr
}

func (h EntryHandle) valid() bool { return h.node != nil && h.ptr != packedlist.End }

// Get decodes the entry a handle points to.
func (l *List) Get(h EntryHandle) packedlist.Value {
	if !h.valid() {
		fatalf("quicklist: Get on invalid handle", h)
	}
	return h.node.ensureDecompressed().Get(h.ptr)
}

// Index locates the i-th entry (0-based, negative from the tail), walking
// from whichever end requires fewer node hops — spec.md §4.C invariant (3).
func (l *List) Index(i int) (EntryHandle, bool) {
	if i < 0 {
		i = l.count + i
	}
	if i < 0 || i >= l.count {
		return EntryHandle{}, false
	}
	if i <= l.count/2 {
		n := l.head
		remaining := i
		for n != nil {
			if remaining < n.entryCount {
				pl := n.ensureDecompressed()
				return EntryHandle{node: n, ptr: pl.Index(remaining)}, true
			}
			remaining -= n.entryCount
			n = n.next
		}
	} else {
		n := l.tail
		remaining := l.count - 1 - i
		for n != nil {
			if remaining < n.entryCount {
				pl := n.ensureDecompressed()
				return EntryHandle{node: n, ptr: pl.Index(n.entryCount - 1 - remaining)}, true
			}
			remaining -= n.entryCount
			n = n.prev
		}
	}
	fatalf("quicklist: count/node accounting out of sync", i)
	return EntryHandle{}, false
}

// Compare reports whether the entry at h equals raw (bytestring compare;
// an integer entry never equals a bytestring).
func (l *List) Compare(h EntryHandle, raw []byte) bool {
	v := l.Get(h)
	if v.IsInt {
		return false
	}
	if len(v.Bytes) != len(raw) {
		return false
	}
	for i := range v.Bytes {
		if v.Bytes[i] != raw[i] {
			return false
		}
	}
	return true
}

// Next returns a handle to the entry following h, crossing a node boundary
// if needed.
func (l *List) Next(h EntryHandle) (EntryHandle, bool) {
	pl := h.node.ensureDecompressed()
	if np := pl.Next(h.ptr); np != packedlist.End {
		return EntryHandle{node: h.node, ptr: np}, true
	}
	if h.node.next == nil {
		return EntryHandle{}, false
	}
	npl := h.node.next.ensureDecompressed()
	return EntryHandle{node: h.node.next, ptr: npl.Head()}, true
}

// Prev returns a handle to the entry preceding h.
func (l *List) Prev(h EntryHandle) (EntryHandle, bool) {
	pl := h.node.ensureDecompressed()
	if pp := pl.Prev(h.ptr); pp != packedlist.End {
		return EntryHandle{node: h.node, ptr: pp}, true
	}
	if h.node.prev == nil {
		return EntryHandle{}, false
	}
	ppl := h.node.prev.ensureDecompressed()
	return EntryHandle{node: h.node.prev, ptr: ppl.Tail()}, true
}

// First returns a handle to the first entry.
func (l *List) First() (EntryHandle, bool) { return l.Index(0) }

// Last returns a handle to the last entry.
func (l *List) Last() (EntryHandle, bool) { return l.Index(-1) }

// Rotate moves the tail element to the head, in one step, without
// decoding/recoding the whole list.
func (l *List) Rotate() {
	if l.count < 2 {
		return
	}
	v, ok := l.Pop(AtTail)
	if !ok {
		return
	}
	l.PushHead(v)
}

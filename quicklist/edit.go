package quicklist

import "github.com/kvcore/kvcore/packedlist"

// InsertBefore inserts v immediately before the entry at h, splitting h's
// node if the insertion would overflow the fill factor (spec.md §4.C "node
// splitting").
func (l *List) InsertBefore(h EntryHandle, v packedlist.Value) EntryHandle {
	return l.insert(h, v, true)
}

// InsertAfter inserts v immediately after the entry at h.
func (l *List) InsertAfter(h EntryHandle, v packedlist.Value) EntryHandle {
	return l.insert(h, v, false)
}

func (l *List) insert(h EntryHandle, v packedlist.Value, before bool) EntryHandle {
	n := h.node
	pl := n.ensureDecompressed()
	if l.nodeHasRoom(n, estimateSize(v)) {
		var newPtr packedlist.Ptr
		if before {
			newPtr = pl.InsertBefore(h.ptr, v)
		} else {
			newPtr = pl.InsertAfter(h.ptr, v)
		}
		n.refreshCounts()
		l.count++
		l.applyCompressionWindow()
		return EntryHandle{node: n, ptr: newPtr}
	}
	// Overflow: split the node at the insertion point and place the new
	// entry at the boundary: the left half's tail for an insert before h,
	// the right half's head for an insert after h.
	return l.splitAndInsert(n, h.ptr, v, before)
}

func (l *List) splitAndInsert(n *Node, at packedlist.Ptr, v packedlist.Value, before bool) EntryHandle {
	pl := n.ensureDecompressed()
	splitIdx := indexOfPtr(pl, at)
	if !before {
		// the entry at `at` stays in the left half.
		splitIdx++
	}

	left := packedlist.New()
	right := packedlist.New()
	i := 0
	for p := pl.Head(); p != packedlist.End; p = pl.Next(p) {
		val := pl.Get(p)
		if i < splitIdx {
			left.Push(val, packedlist.AtTail)
		} else {
			right.Push(val, packedlist.AtTail)
		}
		i++
	}

	leftNode := &Node{packed: left, codec: l.codec, container: ContainerPacked, encoding: EncodingRaw}
	rightNode := &Node{packed: right, codec: l.codec, container: ContainerPacked, encoding: EncodingRaw}
	leftNode.refreshCounts()
	rightNode.refreshCounts()

	prev, next := n.prev, n.next
	if prev != nil {
		prev.next = leftNode
	} else {
		l.head = leftNode
	}
	leftNode.prev = prev
	leftNode.next = rightNode
	rightNode.prev = leftNode
	rightNode.next = next
	if next != nil {
		next.prev = rightNode
	} else {
		l.tail = rightNode
	}
	l.nodeCount++ // net: one node became two

	var target *Node
	var handle EntryHandle
	if before {
		// new entry goes at the tail of the left half, directly before
		// what is now the right half's head.
		target = leftNode
		p := target.packed.Push(v, packedlist.AtTail)
		handle = EntryHandle{node: target, ptr: p}
	} else {
		target = rightNode
		p := target.packed.Push(v, packedlist.AtHead)
		handle = EntryHandle{node: target, ptr: p}
	}
	target.refreshCounts()
	l.count++
	l.applyCompressionWindow()
	return handle
}

func indexOfPtr(pl *packedlist.List, at packedlist.Ptr) int {
	i := 0
	for p := pl.Head(); p != packedlist.End; p = pl.Next(p) {
		if p == at {
			return i
		}
		i++
	}
	return pl.Len()
}

// Delete removes the entry at h.
func (l *List) Delete(h EntryHandle) {
	n := h.node
	pl := n.ensureDecompressed()
	pl.Delete(h.ptr)
	n.refreshCounts()
	l.count--
	if n.entryCount == 0 {
		l.unlinkNode(n)
	}
	l.applyCompressionWindow()
}

// ReplaceAt replaces the i-th entry with v, implemented as delete+insert
// per spec.md §4.C. A handle into the same node does not survive a
// PackedList mutation (spec.md §4.B), so the replacement re-acquires its
// insertion point by index after the delete rather than reusing the
// original handle.
func (l *List) ReplaceAt(i int, v packedlist.Value) bool {
	if i < 0 {
		i = l.count + i
	}
	h, ok := l.Index(i)
	if !ok {
		return false
	}
	l.Delete(h)
	if next, ok := l.Index(i); ok {
		l.InsertBefore(next, v)
	} else {
		l.PushTail(v)
	}
	return true
}

// DeleteRange removes n entries starting at index (negative indexes from
// the tail).
func (l *List) DeleteRange(index, n int) {
	if index < 0 {
		index = l.count + index
	}
	if index < 0 {
		index = 0
	}
	for i := 0; i < n; i++ {
		h, ok := l.Index(index)
		if !ok {
			return
		}
		l.Delete(h)
	}
}

package quicklist

// applyCompressionWindow enforces invariant (2) of spec.md §4.C: interior
// nodes (more than compressDepth away from both ends) are compressed;
// nodes within the window are decompressed (e.g. after they were pushed
// into the window by growth at an end).
func (l *List) applyCompressionWindow() {
	if l.compressDepth <= 0 {
		return
	}
	depth := l.compressDepth
	i := 0
	for n := l.head; n != nil; n = n.next {
		if i < depth {
			l.keepRaw(n)
		} else {
			break
		}
		i++
	}
	i = 0
	for n := l.tail; n != nil; n = n.prev {
		if i < depth {
			l.keepRaw(n)
		} else {
			break
		}
		i++
	}
	l.compressInterior()
}

func (l *List) keepRaw(n *Node) {
	if n.encoding == EncodingCompressed {
		n.ensureDecompressed()
	}
}

// compressInterior compresses every node outside the head/tail window that
// is still raw, or whose recompressPending bit is set after a transient
// decompression during an edit.
func (l *List) compressInterior() {
	if l.nodeCount <= 2*l.compressDepth {
		return
	}
	idx := 0
	for n := l.head; n != nil; n = n.next {
		interior := idx >= l.compressDepth && l.nodeCount-idx > l.compressDepth
		if interior && (n.encoding == EncodingRaw) && (n.recompressPending || !n.attemptedCompress) {
			n.tryCompress()
			n.recompressPending = false
		}
		idx++
	}
}

// GetCompressed returns node's compressed image, if it currently has one.
func GetCompressed(n *Node) ([]byte, bool) {
	if n.encoding != EncodingCompressed {
		return nil, false
	}
	return n.compressed, true
}

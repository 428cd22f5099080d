// Package quicklist implements the doubly-linked, optionally-compressed
// list of packedlist nodes described in spec.md §3/§4.C: the backing
// structure for the list Object type once it exceeds the compact encoding.
package quicklist

import "github.com/kvcore/kvcore/packedlist"

// byte-ladder fill factors: negative fill selects a max-bytes-per-node cap
// instead of a max-entries cap. Index 0 is unused (there is no -0).
var byteLadder = [6]int{0, 4 * 1024, 8 * 1024, 16 * 1024, 32 * 1024, 64 * 1024}

// DefaultFill matches common production defaults: 128 entries per node.
const DefaultFill = 128

// DefaultCompressDepth leaves head and tail raw, compressing everything
// else.
const DefaultCompressDepth = 1

// List is the quicklist of spec.md §4.C.
type List struct {
	head, tail    *Node
	count         int
	nodeCount     int
	fill          int
	compressDepth int
	codec         Codec
}

// Option configures a new List.
type Option func(*List)

// WithFill sets the fill factor: positive values cap entries per node;
// -1..-5 select the byte-ladder caps of 4k/8k/16k/32k/64k.
func WithFill(fill int) Option { return func(l *List) { l.fill = fill } }

// WithCompressDepth sets how many nodes from each end stay raw.
func WithCompressDepth(depth int) Option { return func(l *List) { l.compressDepth = depth } }

// WithCodec overrides the default S2Codec.
func WithCodec(c Codec) Option { return func(l *List) { l.codec = c } }

// New returns an empty quicklist.
func New(opts ...Option) *List {
	l := &List{fill: DefaultFill, compressDepth: DefaultCompressDepth, codec: S2Codec{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Count returns the total entry count across all nodes.
func (l *List) Count() int { return l.count }

// NodeCount returns the number of nodes.
func (l *List) NodeCount() int { return l.nodeCount }

func fatalf(msg string, culprit any) {
	// quicklist has no logger of its own and does not call
	// diagnostics.Fatal; it panics with the message and culprit instead,
	// and no caller in this repository recovers that panic.
	panic(struct {
		Msg     string
		Culprit any
	}{msg, culprit})
}

// nodeHasRoom reports whether node can accept one more entry of the given
// encoded size under the configured fill factor.
func (l *List) nodeHasRoom(n *Node, entrySize int) bool {
	if l.fill >= 0 {
		limit := l.fill
		if limit == 0 {
			limit = DefaultFill
		}
		return n.entryCount < limit
	}
	idx := -l.fill
	if idx < 1 || idx > 5 {
		idx = 2
	}
	return n.byteCount+entrySize <= byteLadder[idx]
}

func (l *List) linkNode(n, before *Node) {
	if before == nil {
		n.prev = l.tail
		if l.tail != nil {
			l.tail.next = n
		}
		l.tail = n
		if l.head == nil {
			l.head = n
		}
	} else {
		n.next = before
		n.prev = before.prev
		if before.prev != nil {
			before.prev.next = n
		} else {
			l.head = n
		}
		before.prev = n
	}
	l.nodeCount++
}

func (l *List) unlinkNode(n *Node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
	l.nodeCount--
}

// PushHead prepends v.
func (l *List) PushHead(v packedlist.Value) { l.push(v, true) }

// PushTail appends v.
func (l *List) PushTail(v packedlist.Value) { l.push(v, false) }

func (l *List) push(v packedlist.Value, atHead bool) {
	var n *Node
	if atHead {
		n = l.head
	} else {
		n = l.tail
	}
	if n == nil || n.encoding != EncodingRaw || !l.nodeHasRoom(n, estimateSize(v)) {
		n = newNode(l.codec)
		if atHead {
			l.linkNode(n, l.head)
		} else {
			l.linkNode(n, nil)
		}
	} else if n.encoding != EncodingRaw {
		n.ensureDecompressed()
	}
	if atHead {
		n.packed.Push(v, packedlist.AtHead)
	} else {
		n.packed.Push(v, packedlist.AtTail)
	}
	n.refreshCounts()
	l.count++
	l.applyCompressionWindow()
}

func estimateSize(v packedlist.Value) int {
	if v.IsInt {
		return 10
	}
	return len(v.Bytes) + 5
}

// Pop removes and returns the entry from the given end.
func (l *List) Pop(at At) (packedlist.Value, bool) {
	var n *Node
	if at == AtHead {
		n = l.head
	} else {
		n = l.tail
	}
	if n == nil {
		return packedlist.Value{}, false
	}
	pl := n.ensureDecompressed()
	var p packedlist.Ptr
	if at == AtHead {
		p = pl.Head()
	} else {
		p = pl.Tail()
	}
	v := pl.Get(p)
	pl.Delete(p)
	n.refreshCounts()
	l.count--
	if n.entryCount == 0 {
		l.unlinkNode(n)
	}
	l.applyCompressionWindow()
	return v, true
}

// At selects an end for Pop/rotate-style operations.
type At int

const (
	AtHead At = iota
	AtTail
)

// Package packedlist implements the compact byte-packed entry sequence of
// spec.md §3/§4.B: a contiguous buffer of length-prefixed integer or
// bytestring entries with cascading prevLen maintenance, used as quicklist's
// per-node storage and as the compact encoding for hash/set/sortedSet
// objects before they grow past threshold.
package packedlist

import (
	"encoding/binary"

	"github.com/kvcore/kvcore/diagnostics"
)

// Layout:
//
//	totalBytes(4) | tailOffset(4) | entryCount(2) | entry* | terminator(1)
//
// Each entry: prevLen(1 or 5) | encoding-tag(1) | length-bytes | payload.
const (
	headerSize     = 4 + 4 + 2
	terminatorByte = 0xFF
	terminatorSize = 1

	// prevLen is 1 byte when the previous entry's total length is below
	// this threshold, else a 0xFE tag followed by a 4-byte length.
	prevLenBigTag   = 0xFE
	prevLenBigLimit = 254
)

// entry tag kinds, packed into the top 2 bits of the tag byte.
const (
	kindStr6  = 0 << 6
	kindStr14 = 1 << 6
	kindStr32 = 2 << 6
	kindInt   = 3 << 6
	kindMask  = 3 << 6
)

// integer subtypes, packed into the low 6 bits of an int-kind tag byte.
const (
	intSub8 = iota
	intSub16
	intSub24
	intSub32
	intSub64
	intSubImmediateBase // values intSubImmediateBase..intSubImmediateBase+12 encode 0..12 inline
)

const maxImmediate = 12

// End, used as a Ptr sentinel meaning "no such entry" (off-the-end or an
// empty list).
const End = -1

// Ptr identifies an entry by its byte offset into the buffer, pointing at
// the entry's prevLen field. Any insert or delete invalidates every Ptr
// into the list; callers must re-acquire via Head/Tail/Next/Prev/Index.
type Ptr = int

// List is a single packed entry buffer.
type List struct {
	buf []byte
}

// New returns an empty packed list.
func New() *List {
	l := &List{buf: make([]byte, headerSize, headerSize+terminatorSize)}
	l.buf = append(l.buf, terminatorByte)
	l.setTotalBytes(uint32(len(l.buf)))
	l.setTailOffset(0)
	l.setEntryCount(0)
	return l
}

func (l *List) totalBytes() uint32      { return binary.LittleEndian.Uint32(l.buf[0:4]) }
func (l *List) setTotalBytes(v uint32)  { binary.LittleEndian.PutUint32(l.buf[0:4], v) }
func (l *List) tailOffset() uint32      { return binary.LittleEndian.Uint32(l.buf[4:8]) }
func (l *List) setTailOffset(v uint32)  { binary.LittleEndian.PutUint32(l.buf[4:8], v) }
func (l *List) entryCount() uint16      { return binary.LittleEndian.Uint16(l.buf[8:10]) }
func (l *List) setEntryCount(v uint16)  { binary.LittleEndian.PutUint16(l.buf[8:10], v) }
func (l *List) incEntryCount(delta int) { l.setEntryCount(uint16(int(l.entryCount()) + delta)) }

// Len returns the number of entries.
func (l *List) Len() int { return int(l.entryCount()) }

// BlobLen returns the byte length of the underlying buffer: header, every
// entry's total size, plus the terminator.
func (l *List) BlobLen() int { return len(l.buf) }

// FromBytes wraps an existing encoded buffer (e.g. one produced by Bytes
// and round-tripped through compression) as a List without copying.
func FromBytes(buf []byte) *List { return &List{buf: buf} }

// Bytes returns the raw encoded buffer, for callers that need to persist
// or compress a node's image. Callers must not retain the slice across a
// subsequent mutation of l.
func (l *List) Bytes() []byte { return l.buf }

// Head returns a Ptr to the first entry, or End if the list is empty.
func (l *List) Head() Ptr {
	if l.Len() == 0 {
		return End
	}
	return headerSize
}

// Tail returns a Ptr to the last entry, or End if the list is empty.
func (l *List) Tail() Ptr {
	if l.Len() == 0 {
		return End
	}
	return int(l.tailOffset())
}

func (l *List) isTerminator(p Ptr) bool { return p >= len(l.buf)-terminatorSize }

// Next returns the Ptr following p, or End at the end of the list.
func (l *List) Next(p Ptr) Ptr {
	if p == End {
		return End
	}
	_, e := l.parseEntry(p)
	next := p + e.totalLen
	if l.isTerminator(next) {
		return End
	}
	return next
}

// Prev returns the Ptr preceding p, or End at the head of the list.
func (l *List) Prev(p Ptr) Ptr {
	if p == End || p == headerSize {
		return End
	}
	prevLen, _ := l.readPrevLen(p)
	return p - int(prevLen)
}

// Index returns a Ptr to the i-th entry (0-based); negative i indexes from
// the tail (-1 is the last entry). Returns End if out of range.
func (l *List) Index(i int) Ptr {
	n := l.Len()
	if i < 0 {
		i = n + i
	}
	if i < 0 || i >= n {
		return End
	}
	var p Ptr
	if i <= n/2 {
		p = l.Head()
		for ; i > 0; i-- {
			p = l.Next(p)
		}
	} else {
		p = l.Tail()
		for j := n - 1; j > i; j-- {
			p = l.Prev(p)
		}
	}
	return p
}

// Value is the decoded payload of an entry: exactly one of Bytes or IsInt
// is meaningful.
type Value struct {
	Bytes []byte
	Int   int64
	IsInt bool
}

// Get decodes the entry at p.
func (l *List) Get(p Ptr) Value {
	if p == End {
		diagnostics.Fatal(nil, "packedlist: Get on End ptr", p)
	}
	_, e := l.parseEntry(p)
	return e.decode(l.buf)
}

// fatalf reports a corrupted-structure contract violation: callers are
// expected to treat this as unrecoverable per spec.md §7.
func fatalf(msg string, culprit any) { diagnostics.Fatal(nil, msg, culprit) }

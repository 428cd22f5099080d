package packedlist

import "encoding/binary"

// Mutation is implemented by decoding the buffer into a Value slice,
// applying the edit, and rebuilding the buffer in one pass. This keeps the
// cascading-prevLen-update rule of spec.md §4.B correct by construction —
// every prevLen is recomputed from its actual predecessor's encoded size —
// at the cost of an O(n) rebuild per mutation. Quicklist nodes are kept
// small by the fill-factor cap, so this stays cheap in practice; a
// production port chasing byte-for-byte parity with an in-place splice
// would instead patch only the bytes between the edit point and the first
// stable successor.
// At selects which end Push inserts at.
type At int

const (
	AtHead At = iota
	AtTail
)

func (l *List) entries() []Value {
	out := make([]Value, 0, l.Len())
	for p := l.Head(); p != End; p = l.Next(p) {
		out = append(out, l.Get(p))
	}
	return out
}

func (l *List) rebuildFrom(values []Value) {
	size := headerSize + terminatorSize
	var prevSize uint32
	for _, v := range values {
		entrySize := prevLenSizeFor(prevSize) + encodedEntrySize(v)
		size += entrySize
		prevSize = uint32(entrySize)
	}
	buf := make([]byte, size)
	off := headerSize
	prevSize = 0
	var tailOff uint32
	for _, v := range values {
		tailOff = uint32(off)
		off += buildEntry(buf, off, prevSize, v)
		prevSize = uint32(off - int(tailOff))
	}
	buf[off] = terminatorByte
	off++
	l.buf = buf[:off]
	binary.LittleEndian.PutUint32(l.buf[0:4], uint32(len(l.buf)))
	binary.LittleEndian.PutUint32(l.buf[4:8], tailOff)
	binary.LittleEndian.PutUint16(l.buf[8:10], uint16(len(values)))
}

// Push appends bytes or an integer at the given end.
func (l *List) Push(v Value, at At) Ptr {
	values := l.entries()
	if at == AtHead {
		values = append([]Value{v}, values...)
	} else {
		values = append(values, v)
	}
	l.rebuildFrom(values)
	if at == AtHead {
		return l.Head()
	}
	return l.Tail()
}

// InsertBefore inserts v immediately before the entry at p, returning a
// Ptr to the newly inserted entry. p must be a valid Ptr (not End); use
// Push to insert into an empty list.
func (l *List) InsertBefore(p Ptr, v Value) Ptr {
	idx := l.indexOf(p)
	values := l.entries()
	values = append(values[:idx], append([]Value{v}, values[idx:]...)...)
	l.rebuildFrom(values)
	return l.Index(idx)
}

// InsertAfter inserts v immediately after the entry at p.
func (l *List) InsertAfter(p Ptr, v Value) Ptr {
	idx := l.indexOf(p)
	values := l.entries()
	values = append(values[:idx+1], append([]Value{v}, values[idx+1:]...)...)
	l.rebuildFrom(values)
	return l.Index(idx + 1)
}

// Delete removes the entry at p, returning a Ptr to the entry that took
// its place (the former successor), or End if p was the tail.
func (l *List) Delete(p Ptr) Ptr {
	idx := l.indexOf(p)
	values := l.entries()
	values = append(values[:idx], values[idx+1:]...)
	l.rebuildFrom(values)
	if idx >= len(values) {
		return End
	}
	return l.Index(idx)
}

// DeleteRange removes n entries starting at index (0-based, negative
// indexes from the tail as in Index).
func (l *List) DeleteRange(index, n int) {
	values := l.entries()
	if index < 0 {
		index = len(values) + index
	}
	if index < 0 {
		index = 0
	}
	end := index + n
	if end > len(values) {
		end = len(values)
	}
	if index >= end {
		return
	}
	values = append(values[:index], values[end:]...)
	l.rebuildFrom(values)
}

func (l *List) indexOf(p Ptr) int {
	i := 0
	for cur := l.Head(); cur != End; cur = l.Next(cur) {
		if cur == p {
			return i
		}
		i++
	}
	fatalf("packedlist: ptr not found in list", p)
	return -1
}

// Find scans forward from p looking for an entry equal to needle,
// comparing only every (skipEvery+1)-th entry — the pattern hash/zset
// packed encodings use to compare only field names, skipping values.
// skipEvery=0 compares every entry.
func (l *List) Find(p Ptr, needle []byte, skipEvery int) Ptr {
	step := skipEvery + 1
	i := 0
	for cur := p; cur != End; cur = l.Next(cur) {
		if i%step == 0 {
			v := l.Get(cur)
			if !v.IsInt && bytesEqual(v.Bytes, needle) {
				return cur
			}
		}
		i++
	}
	return End
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package object

import (
	"encoding/binary"
	"fmt"

	"github.com/kvcore/kvcore/packedlist"
)

// StreamID is a (millis, seq) pair, ordered lexicographically on (millis,
// seq) exactly like the wire IDs it formats as.
type StreamID struct {
	Millis uint64
	Seq    uint64
}

// Less reports id < other under (millis, seq) ordering.
func (id StreamID) Less(other StreamID) bool {
	if id.Millis != other.Millis {
		return id.Millis < other.Millis
	}
	return id.Seq < other.Seq
}

// String renders the canonical "millis-seq" form.
func (id StreamID) String() string { return fmt.Sprintf("%d-%d", id.Millis, id.Seq) }

func encodeStreamID(id StreamID) []byte {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[0:8], id.Millis)
	binary.BigEndian.PutUint64(b[8:16], id.Seq)
	return b
}

func decodeStreamID(b []byte) StreamID {
	return StreamID{Millis: binary.BigEndian.Uint64(b[0:8]), Seq: binary.BigEndian.Uint64(b[8:16])}
}

type streamPacked struct {
	pl     *packedlist.List // id(16 bytes), fieldCount(as int), field, value, ..., id, fieldCount, ...
	lastID StreamID
}

// NewStream returns an empty stream Object. Every entry is appended once
// and never mutated in place, matching spec.md's Object-type enum naming a
// stream type without prescribing its command surface — this expansion
// gives it the append-only (id, fields) sequence a stream implies.
func NewStream() *Object {
	return Create(TypeStream, EncStreamPacked, &streamPacked{pl: packedlist.New()})
}

// StreamField is one field/value pair attached to an entry.
type StreamField struct {
	Field, Value []byte
}

// StreamAppend assigns the next ID after lastID — auto-generating a seq
// bump within the same millisecond, as the wire format does — and appends
// fields, returning the assigned ID.
func StreamAppend(o *Object, nowMillis uint64, fields []StreamField) StreamID {
	p := o.payload.(*streamPacked)
	id := StreamID{Millis: nowMillis, Seq: 0}
	if id.Millis == p.lastID.Millis {
		id.Seq = p.lastID.Seq + 1
	} else if id.Millis < p.lastID.Millis {
		id = StreamID{Millis: p.lastID.Millis, Seq: p.lastID.Seq + 1}
	}
	p.pl.Push(packedlist.Value{Bytes: encodeStreamID(id)}, packedlist.AtTail)
	p.pl.Push(packedlist.Value{Int: int64(len(fields)), IsInt: true}, packedlist.AtTail)
	for _, f := range fields {
		p.pl.Push(packedlist.Value{Bytes: f.Field}, packedlist.AtTail)
		p.pl.Push(packedlist.Value{Bytes: f.Value}, packedlist.AtTail)
	}
	p.lastID = id
	return id
}

// StreamEntry is one decoded (id, fields) record returned by StreamRange.
type StreamEntry struct {
	ID     StreamID
	Fields []StreamField
}

// StreamLen returns the entry count.
func StreamLen(o *Object) int {
	p := o.payload.(*streamPacked)
	n := 0
	for ptr := p.pl.Head(); ptr != packedlist.End; {
		ptr = skipStreamEntry(p.pl, ptr)
		n++
	}
	return n
}

func skipStreamEntry(pl *packedlist.List, idPtr packedlist.Ptr) packedlist.Ptr {
	countPtr := pl.Next(idPtr)
	n := int(pl.Get(countPtr).Int)
	ptr := countPtr
	for i := 0; i < 2*n; i++ {
		ptr = pl.Next(ptr)
	}
	return pl.Next(ptr)
}

// StreamRange returns entries with id in [start, end] inclusive, in
// insertion (and therefore ID) order.
func StreamRange(o *Object, start, end StreamID) []StreamEntry {
	p := o.payload.(*streamPacked)
	var out []StreamEntry
	for ptr := p.pl.Head(); ptr != packedlist.End; {
		id := decodeStreamID(p.pl.Get(ptr).Bytes)
		countPtr := p.pl.Next(ptr)
		n := int(p.pl.Get(countPtr).Int)
		fieldsStart := countPtr
		var fields []StreamField
		if !id.Less(start) && !end.Less(id) {
			cur := fieldsStart
			for i := 0; i < n; i++ {
				fp := p.pl.Next(cur)
				vp := p.pl.Next(fp)
				fields = append(fields, StreamField{Field: p.pl.Get(fp).Bytes, Value: p.pl.Get(vp).Bytes})
				cur = vp
			}
			out = append(out, StreamEntry{ID: id, Fields: fields})
		}
		ptr = skipStreamEntry(p.pl, ptr)
	}
	return out
}

// StreamLastID returns the most recently appended ID, or the zero ID for
// an empty stream.
func StreamLastID(o *Object) StreamID { return o.payload.(*streamPacked).lastID }

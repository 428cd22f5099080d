// Package object implements the tagged polymorphic value of spec.md
// §3/§4.D: a type tag, a per-type encoding tag, a refcount with shared and
// mortal sentinels, an access-recency counter, and an encoding-specific
// payload. Encoding transitions are one-way and grow-only (compact to
// general) within an Object's lifetime.
package object

import "github.com/kvcore/kvcore/diagnostics"

// Type is the logical value type.
type Type int

const (
	TypeString Type = iota
	TypeList
	TypeHash
	TypeSet
	TypeSortedSet
	TypeStream
	TypeModule
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeList:
		return "list"
	case TypeHash:
		return "hash"
	case TypeSet:
		return "set"
	case TypeSortedSet:
		return "zset"
	case TypeStream:
		return "stream"
	case TypeModule:
		return "module"
	default:
		return "unknown"
	}
}

// Encoding is a per-type physical representation. Only the combinations
// listed in validEncodings are ever observed for a given Type — spec.md
// §3's "a type may only be observed with an encoding declared valid for
// that type".
type Encoding int

const (
	EncEmbeddedString Encoding = iota
	EncRawString
	EncIntString
	EncQuicklist
	EncHashPacked
	EncHashTable
	EncIntset
	EncSetHashTable
	EncSortedSetPacked
	EncSortedSetSkiplist
	EncStreamPacked
	EncModuleValue
)

var validEncodings = map[Type]map[Encoding]bool{
	TypeString:    {EncEmbeddedString: true, EncRawString: true, EncIntString: true},
	TypeList:      {EncQuicklist: true},
	TypeHash:      {EncHashPacked: true, EncHashTable: true},
	TypeSet:       {EncIntset: true, EncSetHashTable: true},
	TypeSortedSet: {EncSortedSetPacked: true, EncSortedSetSkiplist: true},
	TypeStream:    {EncStreamPacked: true},
	TypeModule:    {EncModuleValue: true},
}

// encodingRank orders each type's encodings from compact to general, used
// to enforce the one-way grow-only transition rule.
var encodingRank = map[Encoding]int{
	EncEmbeddedString: 0, EncIntString: 0, EncRawString: 1,
	EncHashPacked: 0, EncHashTable: 1,
	EncIntset: 0, EncSetHashTable: 1,
	EncSortedSetPacked: 0, EncSortedSetSkiplist: 1,
	EncQuicklist:    0,
	EncStreamPacked: 0,
	EncModuleValue:  0,
}

// refcount sentinels. Shared objects (interned small integers, canonical
// replies) are never freed by Release; Mortal is the normal single-owner
// starting count.
const (
	RefcountShared int32 = -1
	RefcountMortal int32 = 1
)

// Object is the polymorphic value stored in the keyspace.
type Object struct {
	typ      Type
	enc      Encoding
	refcount int32
	lru      uint32
	payload  any
}

// Create returns a new Object of type typ with the given initial encoding
// and payload. The caller is responsible for using an encoding valid for
// typ; a mismatch is a fatal contract violation.
func Create(typ Type, enc Encoding, payload any) *Object {
	if !validEncodings[typ][enc] {
		diagnostics.Fatal(nil, "object: encoding not valid for type", struct {
			Type     Type
			Encoding Encoding
		}{typ, enc})
	}
	return &Object{typ: typ, enc: enc, refcount: RefcountMortal, payload: payload}
}

// CreateShared returns a shared (interned, never-freed) Object.
func CreateShared(typ Type, enc Encoding, payload any) *Object {
	o := Create(typ, enc, payload)
	o.refcount = RefcountShared
	return o
}

// Type returns the object's logical type.
func (o *Object) Type() Type { return o.typ }

// Encoding returns the object's current physical encoding.
func (o *Object) Encoding() Encoding { return o.enc }

// Shared reports whether the object is the never-freed sentinel variant.
func (o *Object) Shared() bool { return o.refcount == RefcountShared }

// Retain increments the refcount. A no-op on a shared object.
func (o *Object) Retain() {
	if o.Shared() {
		return
	}
	o.refcount++
}

// Release decrements the refcount, returning true if it reached zero (the
// caller should now discard the object). A no-op (always false) on a
// shared object — spec.md §4.D "a shared refcount sentinel disables
// release".
func (o *Object) Release() bool {
	if o.Shared() {
		return false
	}
	o.refcount--
	return o.refcount <= 0
}

// Touch bumps the access-recency counter to now; the keyspace calls this
// on every read that isn't flagged no-touch.
func (o *Object) Touch(now uint32) { o.lru = now }

// LastAccess returns the recency counter (a timestamp under LRU policy, or
// a decayed access counter under LFU — spec.md §6 "toward eviction").
func (o *Object) LastAccess() uint32 { return o.lru }

// setEncoding enforces the one-way, grow-only transition rule: the new
// encoding's rank must not be lower than the current one.
func (o *Object) setEncoding(enc Encoding) {
	if !validEncodings[o.typ][enc] {
		diagnostics.Fatal(nil, "object: encoding not valid for type", enc)
	}
	if encodingRank[enc] < encodingRank[o.enc] {
		diagnostics.Fatal(nil, "object: encoding transition would downgrade", struct {
			From, To Encoding
		}{o.enc, enc})
	}
	o.enc = enc
}

// CheckType returns ok=false if o is not of the expected type — the
// WRONGTYPE contract every typed operation gates on (spec.md §4.D, §7).
func CheckType(o *Object, want Type) bool {
	return o == nil || o.typ == want
}

// Unshare returns an object the caller may mutate: o itself if it is
// already a private (mortal, refcount==1) owner, or a deep copy otherwise.
// Every write path must call this before mutating a payload that might be
// aliased — spec.md §5 "Mutation of shared objects is forbidden... the
// write path calls an unshare function".
func Unshare(o *Object, clone func(any) any) *Object {
	if !o.Shared() && o.refcount <= RefcountMortal {
		return o
	}
	return &Object{typ: o.typ, enc: o.enc, refcount: RefcountMortal, lru: o.lru, payload: clone(o.payload)}
}

// Payload returns the raw encoding-specific payload. The typed helpers in
// the sibling files (StringBytes, List, HGet, SetMembers, ZRange,
// StreamRange and their neighbours) should be preferred; this exists for
// generic plumbing (propagation, debug dump).
func (o *Object) Payload() any { return o.payload }

func (o *Object) setPayload(p any) { o.payload = p }

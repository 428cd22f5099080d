package object

import (
	"github.com/kvcore/kvcore/hashmap"
	"github.com/kvcore/kvcore/packedlist"
)

// HashConfig carries the numeric thresholds spec.md §4.D leaves as
// "configuration": entry count and max field/value length above which a
// packed hash upgrades to a hashTable. Defaults match spec.md's stated
// defaults (N=128, M=64).
type HashConfig struct {
	MaxEntries  int
	MaxFieldLen int
}

// DefaultHashConfig is spec.md §4.D's stated default.
var DefaultHashConfig = HashConfig{MaxEntries: 128, MaxFieldLen: 64}

type hashPacked struct {
	pl *packedlist.List // field, value, field, value, ...
}

// hashTable is the general hash encoding, backed by this package's own
// hashmap.Map rather than a plain Go map — the same choice sortedset.go
// makes for its general encoding's member-score side table, kept
// consistent here instead of reaching for a second, unrelated structure.
type hashTable struct {
	m *hashmap.Map
}

// NewHash returns an empty hash Object in the compact packed encoding.
func NewHash() *Object {
	return Create(TypeHash, EncHashPacked, &hashPacked{pl: packedlist.New()})
}

// HSet sets field=value, returning true if the field was newly created.
// Encoding is upgraded to hashTable — permanently, spec.md's open question
// says hash never downgrades back to packed on deletion — once cfg's
// thresholds are exceeded.
func HSet(o *Object, cfg HashConfig, field, value []byte) bool {
	switch p := o.payload.(type) {
	case *hashPacked:
		created := hashPackedSet(p, field, value)
		if p.pl.Len()/2 > cfg.MaxEntries || len(field) > cfg.MaxFieldLen || len(value) > cfg.MaxFieldLen {
			upgradeHashToTable(o, p)
		}
		return created
	case *hashTable:
		_, existed := p.m.Find(field)
		p.m.Upsert(field, append([]byte(nil), value...))
		return !existed
	}
	return false
}

func hashPackedSet(p *hashPacked, field, value []byte) bool {
	fp := p.pl.Find(p.pl.Head(), field, 1)
	if fp == packedlist.End {
		p.pl.Push(packedlist.Value{Bytes: field}, packedlist.AtTail)
		p.pl.Push(packedlist.Value{Bytes: value}, packedlist.AtTail)
		return true
	}
	// fp precedes vp, so deleting vp first leaves fp's offset stable
	// (rebuildFrom recomputes offsets in order; removing a later entry
	// never shifts an earlier one) — inserting after fp is then safe.
	vp := p.pl.Next(fp)
	p.pl.Delete(vp)
	p.pl.InsertAfter(fp, packedlist.Value{Bytes: value})
	return false
}

func upgradeHashToTable(o *Object, p *hashPacked) {
	t := &hashTable{m: hashmap.New(4)}
	for fp := p.pl.Head(); fp != packedlist.End; fp = p.pl.Next(p.pl.Next(fp)) {
		vp := p.pl.Next(fp)
		t.m.Upsert(p.pl.Get(fp).Bytes, append([]byte(nil), p.pl.Get(vp).Bytes...))
	}
	o.setEncoding(EncHashTable)
	o.setPayload(t)
}

// HGet returns the value for field, if present.
func HGet(o *Object, field []byte) ([]byte, bool) {
	switch p := o.payload.(type) {
	case *hashPacked:
		fp := p.pl.Find(p.pl.Head(), field, 1)
		if fp == packedlist.End {
			return nil, false
		}
		return p.pl.Get(p.pl.Next(fp)).Bytes, true
	case *hashTable:
		v, ok := p.m.Find(field)
		if !ok {
			return nil, false
		}
		return v.([]byte), true
	}
	return nil, false
}

// HDel removes field, returning true if it was present.
func HDel(o *Object, field []byte) bool {
	switch p := o.payload.(type) {
	case *hashPacked:
		fp := p.pl.Find(p.pl.Head(), field, 1)
		if fp == packedlist.End {
			return false
		}
		vp := p.pl.Next(fp)
		p.pl.Delete(vp)
		p.pl.Delete(fp)
		return true
	case *hashTable:
		return p.m.Remove(field)
	}
	return false
}

// HLen returns the field count.
func HLen(o *Object) int {
	switch p := o.payload.(type) {
	case *hashPacked:
		return p.pl.Len() / 2
	case *hashTable:
		return int(p.m.Used())
	}
	return 0
}

// HExists reports whether field is present.
func HExists(o *Object, field []byte) bool {
	_, ok := HGet(o, field)
	return ok
}

// HGetAll returns every field/value pair. Order is insertion order for the
// packed encoding, unspecified for hashTable.
func HGetAll(o *Object) (fields, values [][]byte) {
	switch p := o.payload.(type) {
	case *hashPacked:
		for fp := p.pl.Head(); fp != packedlist.End; fp = p.pl.Next(p.pl.Next(fp)) {
			vp := p.pl.Next(fp)
			fields = append(fields, p.pl.Get(fp).Bytes)
			values = append(values, p.pl.Get(vp).Bytes)
		}
	case *hashTable:
		it := p.m.NewSafeIterator()
		for it.Next() {
			fields = append(fields, it.Key())
			values = append(values, it.Value().([]byte))
		}
		it.Close()
	}
	return fields, values
}

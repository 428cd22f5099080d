package object

import (
	"strconv"

	"github.com/kvcore/kvcore/hashmap"
	"github.com/kvcore/kvcore/packedlist"
	"github.com/tidwall/btree"
)

// SortedSetConfig mirrors HashConfig/SetConfig: the packed encoding upgrades
// to the general (btree index + hashmap) encoding once either bound is
// crossed (spec.md §4.D sortedSet row).
type SortedSetConfig struct {
	MaxEntries   int
	MaxMemberLen int
}

// DefaultSortedSetConfig matches the hash/set defaults.
var DefaultSortedSetConfig = SortedSetConfig{MaxEntries: 128, MaxMemberLen: 64}

type zsetPacked struct {
	pl *packedlist.List // member, score (as decimal string), member, score, ...
}

// zsetEntry is the btree item: ordered by (score, member) so ZRANGE-style
// walks come out in the spec's required score-then-lexical tiebreak order.
type zsetEntry struct {
	score  float64
	member string
}

func zsetLess(a, b zsetEntry) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	return a.member < b.member
}

type zsetGeneral struct {
	index  *btree.BTreeG[zsetEntry]
	scores *hashmap.Map // member bytes -> float64
}

// NewSortedSet returns an empty sorted-set Object in the compact packed
// encoding.
func NewSortedSet() *Object {
	return Create(TypeSortedSet, EncSortedSetPacked, &zsetPacked{pl: packedlist.New()})
}

// ZAdd sets member's score, returning true if member was newly added.
func ZAdd(o *Object, cfg SortedSetConfig, member []byte, score float64) bool {
	switch p := o.payload.(type) {
	case *zsetPacked:
		created := zsetPackedSet(p, member, score)
		if p.pl.Len()/2 > cfg.MaxEntries || len(member) > cfg.MaxMemberLen {
			upgradeSortedSetToGeneral(o, p)
		}
		return created
	case *zsetGeneral:
		return zsetGeneralSet(p, member, score)
	}
	return false
}

func zsetPackedSet(p *zsetPacked, member []byte, score float64) bool {
	mp := p.pl.Find(p.pl.Head(), member, 1)
	scoreStr := []byte(strconv.FormatFloat(score, 'g', -1, 64))
	if mp == packedlist.End {
		p.pl.Push(packedlist.Value{Bytes: member}, packedlist.AtTail)
		p.pl.Push(packedlist.Value{Bytes: scoreStr}, packedlist.AtTail)
		return true
	}
	// mp precedes sp; delete sp first so mp's offset stays stable, matching
	// the ordering constraint documented in hashPackedSet.
	sp := p.pl.Next(mp)
	p.pl.Delete(sp)
	p.pl.InsertAfter(mp, packedlist.Value{Bytes: scoreStr})
	return false
}

func zsetGeneralSet(p *zsetGeneral, member []byte, score float64) bool {
	created := true
	if old, ok := p.scores.Find(member); ok {
		created = false
		p.index.Delete(zsetEntry{score: old.(float64), member: string(member)})
	}
	p.scores.Upsert(member, score)
	p.index.Set(zsetEntry{score: score, member: string(member)})
	return created
}

func upgradeSortedSetToGeneral(o *Object, p *zsetPacked) {
	g := &zsetGeneral{
		index:  btree.NewBTreeG(zsetLess),
		scores: hashmap.New(4),
	}
	for mp := p.pl.Head(); mp != packedlist.End; mp = p.pl.Next(p.pl.Next(mp)) {
		sp := p.pl.Next(mp)
		member := p.pl.Get(mp).Bytes
		score, _ := strconv.ParseFloat(string(p.pl.Get(sp).Bytes), 64)
		g.scores.Upsert(member, score)
		g.index.Set(zsetEntry{score: score, member: string(member)})
	}
	o.setEncoding(EncSortedSetSkiplist)
	o.setPayload(g)
}

// ZScore returns member's score, if present.
func ZScore(o *Object, member []byte) (float64, bool) {
	switch p := o.payload.(type) {
	case *zsetPacked:
		mp := p.pl.Find(p.pl.Head(), member, 1)
		if mp == packedlist.End {
			return 0, false
		}
		score, err := strconv.ParseFloat(string(p.pl.Get(p.pl.Next(mp)).Bytes), 64)
		return score, err == nil
	case *zsetGeneral:
		v, ok := p.scores.Find(member)
		if !ok {
			return 0, false
		}
		return v.(float64), true
	}
	return 0, false
}

// ZRem removes member, returning true if it was present.
func ZRem(o *Object, member []byte) bool {
	switch p := o.payload.(type) {
	case *zsetPacked:
		mp := p.pl.Find(p.pl.Head(), member, 1)
		if mp == packedlist.End {
			return false
		}
		sp := p.pl.Next(mp)
		p.pl.Delete(sp)
		p.pl.Delete(mp)
		return true
	case *zsetGeneral:
		v, ok := p.scores.Find(member)
		if !ok {
			return false
		}
		p.scores.Remove(member)
		p.index.Delete(zsetEntry{score: v.(float64), member: string(member)})
		return true
	}
	return false
}

// ZLen returns the member count.
func ZLen(o *Object) int {
	switch p := o.payload.(type) {
	case *zsetPacked:
		return p.pl.Len() / 2
	case *zsetGeneral:
		return p.index.Len()
	}
	return 0
}

// ZRange returns members in ascending (score, member) order across
// [start,stop] half-open-free inclusive positional indices. Negative
// indices count from the end, as in spec.md's list-range conventions.
func ZRange(o *Object, start, stop int) []ZMember {
	all := zsetAllSorted(o)
	n := len(all)
	start, stop = clampRange(start, stop, n)
	if start > stop {
		return nil
	}
	return all[start : stop+1]
}

// ZMember pairs a member with its score for range results.
type ZMember struct {
	Member []byte
	Score  float64
}

func zsetAllSorted(o *Object) []ZMember {
	switch p := o.payload.(type) {
	case *zsetPacked:
		out := make([]ZMember, 0, p.pl.Len()/2)
		for mp := p.pl.Head(); mp != packedlist.End; mp = p.pl.Next(p.pl.Next(mp)) {
			sp := p.pl.Next(mp)
			score, _ := strconv.ParseFloat(string(p.pl.Get(sp).Bytes), 64)
			out = append(out, ZMember{Member: p.pl.Get(mp).Bytes, Score: score})
		}
		sortMembers(out)
		return out
	case *zsetGeneral:
		out := make([]ZMember, 0, p.index.Len())
		p.index.Scan(func(item zsetEntry) bool {
			out = append(out, ZMember{Member: []byte(item.member), Score: item.score})
			return true
		})
		return out
	}
	return nil
}

func sortMembers(m []ZMember) {
	for i := 1; i < len(m); i++ {
		for j := i; j > 0 && zsetLess(
			zsetEntry{score: m[j].Score, member: string(m[j].Member)},
			zsetEntry{score: m[j-1].Score, member: string(m[j-1].Member)}); j-- {
			m[j], m[j-1] = m[j-1], m[j]
		}
	}
}

func clampRange(start, stop, n int) (int, int) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	return start, stop
}

package commands

import (
	"strconv"

	"github.com/kvcore/kvcore/object"
	"github.com/kvcore/kvcore/packedlist"
	"github.com/kvcore/kvcore/quicklist"
)

func listCommands() []*Command {
	return []*Command{
		{Name: "LPUSH", Arity: -3, Handler: cmdLpush, IsWrite: true},
		{Name: "RPUSH", Arity: -3, Handler: cmdRpush, IsWrite: true},
		{Name: "LPUSHX", Arity: -3, Handler: cmdLpushx, IsWrite: true},
		{Name: "RPUSHX", Arity: -3, Handler: cmdRpushx, IsWrite: true},
		{Name: "LPOP", Arity: 2, Handler: cmdLpop, IsWrite: true},
		{Name: "RPOP", Arity: 2, Handler: cmdRpop, IsWrite: true},
		{Name: "LINSERT", Arity: 5, Handler: cmdLinsert, IsWrite: true},
		{Name: "LSET", Arity: 4, Handler: cmdLset, IsWrite: true},
		{Name: "LINDEX", Arity: 3, Handler: cmdLindex},
		{Name: "LRANGE", Arity: 4, Handler: cmdLrange},
		{Name: "LTRIM", Arity: 4, Handler: cmdLtrim, IsWrite: true},
		{Name: "LLEN", Arity: 2, Handler: cmdLlen},
		{Name: "LREM", Arity: 4, Handler: cmdLrem, IsWrite: true},
		{Name: "RPOPLPUSH", Arity: 3, Handler: cmdRpoplpush, IsWrite: true},
		{Name: "BLPOP", Arity: -3, Handler: cmdBlpop, IsWrite: true},
		{Name: "BRPOP", Arity: -3, Handler: cmdBrpop, IsWrite: true},
		{Name: "BRPOPLPUSH", Arity: 4, Handler: cmdBrpoplpush, IsWrite: true},
	}
}

func lookupList(ctx *Context, key []byte) (*object.Object, error) {
	o, ok := ctx.DB.LookupWrite(ctx.NowMillis(), key)
	if !ok {
		return nil, nil
	}
	if !object.CheckType(o, object.TypeList) {
		return nil, errWrongType()
	}
	return o, nil
}

func push(ctx *Context, key []byte, values [][]byte, atHead, onlyIfExists bool) Reply {
	o, err := lookupList(ctx, key)
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		if onlyIfExists {
			return integer(0)
		}
		o = object.NewList()
		ctx.DB.SetKey(key, o)
	}
	ql := object.List(o)
	for _, v := range values {
		if atHead {
			ql.PushHead(packedlist.Value{Bytes: v})
		} else {
			ql.PushTail(packedlist.Value{Bytes: v})
		}
	}
	ctx.DB.SetKey(key, o)
	return integer(int64(ql.Count()))
}

func cmdLpush(ctx *Context, argv [][]byte) Reply  { return push(ctx, argv[1], argv[2:], true, false) }
func cmdRpush(ctx *Context, argv [][]byte) Reply  { return push(ctx, argv[1], argv[2:], false, false) }
func cmdLpushx(ctx *Context, argv [][]byte) Reply { return push(ctx, argv[1], argv[2:], true, true) }
func cmdRpushx(ctx *Context, argv [][]byte) Reply { return push(ctx, argv[1], argv[2:], false, true) }

func pop(ctx *Context, key []byte, atHead bool) Reply {
	o, err := lookupList(ctx, key)
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		return nullBulk()
	}
	ql := object.List(o)
	at := quicklist.AtTail
	if atHead {
		at = quicklist.AtHead
	}
	v, ok := ql.Pop(at)
	if !ok {
		return nullBulk()
	}
	if ql.Count() == 0 {
		ctx.DB.DeleteSync(key)
	}
	return bulk(v.Bytes)
}

func cmdLpop(ctx *Context, argv [][]byte) Reply { return pop(ctx, argv[1], true) }
func cmdRpop(ctx *Context, argv [][]byte) Reply { return pop(ctx, argv[1], false) }

func cmdLlen(ctx *Context, argv [][]byte) Reply {
	o, err := lookupList(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		return integer(0)
	}
	return integer(int64(object.List(o).Count()))
}

func cmdLindex(ctx *Context, argv [][]byte) Reply {
	o, err := lookupList(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		return nullBulk()
	}
	i, perr := strconv.Atoi(string(argv[2]))
	if perr != nil {
		return errReply(errSyntax())
	}
	ql := object.List(o)
	h, ok := ql.Index(i)
	if !ok {
		return nullBulk()
	}
	return bulk(ql.Get(h).Bytes)
}

func cmdLrange(ctx *Context, argv [][]byte) Reply {
	o, err := lookupList(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		return array(nil)
	}
	start, e1 := strconv.Atoi(string(argv[2]))
	stop, e2 := strconv.Atoi(string(argv[3]))
	if e1 != nil || e2 != nil {
		return errReply(errSyntax())
	}
	ql := object.List(o)
	n := ql.Count()
	start, stop = clampStringRange(start, stop, n)
	if start > stop || n == 0 {
		return array(nil)
	}
	items := make([]Reply, 0, stop-start+1)
	for i := start; i <= stop; i++ {
		h, ok := ql.Index(i)
		if !ok {
			break
		}
		items = append(items, bulk(ql.Get(h).Bytes))
	}
	return array(items)
}

// listValues decodes every entry of o's quicklist into a plain slice, for
// handlers whose mutation pattern (trim, remove-by-value, rebuild) is
// simplest expressed over a decoded view — mirroring packedlist's own
// decode-mutate-rebuild strategy for its general-encoding operations.
func listValues(ql *quicklist.List) [][]byte {
	out := make([][]byte, 0, ql.Count())
	for i := 0; i < ql.Count(); i++ {
		h, ok := ql.Index(i)
		if !ok {
			break
		}
		out = append(out, append([]byte(nil), ql.Get(h).Bytes...))
	}
	return out
}

func rebuildList(vals [][]byte) *quicklist.List {
	nl := quicklist.New()
	for _, v := range vals {
		nl.PushTail(packedlist.Value{Bytes: v})
	}
	return nl
}

func cmdLtrim(ctx *Context, argv [][]byte) Reply {
	o, err := lookupList(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		return ok()
	}
	start, e1 := strconv.Atoi(string(argv[2]))
	stop, e2 := strconv.Atoi(string(argv[3]))
	if e1 != nil || e2 != nil {
		return errReply(errSyntax())
	}
	ql := object.List(o)
	vals := listValues(ql)
	start, stop = clampStringRange(start, stop, len(vals))
	var kept [][]byte
	if start <= stop && len(vals) > 0 {
		kept = vals[start : stop+1]
	}
	if len(kept) == 0 {
		ctx.DB.DeleteSync(argv[1])
		return ok()
	}
	ctx.DB.SetKey(argv[1], object.Create(object.TypeList, object.EncQuicklist, rebuildList(kept)))
	return ok()
}

func cmdLrem(ctx *Context, argv [][]byte) Reply {
	o, err := lookupList(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		return integer(0)
	}
	count, perr := strconv.Atoi(string(argv[2]))
	if perr != nil {
		return errReply(errSyntax())
	}
	target := argv[3]
	vals := listValues(object.List(o))
	kept, removed := removeMatches(vals, target, count)
	if len(kept) == 0 {
		ctx.DB.DeleteSync(argv[1])
	} else {
		ctx.DB.SetKey(argv[1], object.Create(object.TypeList, object.EncQuicklist, rebuildList(kept)))
	}
	return integer(int64(removed))
}

// removeMatches drops up to |count| occurrences of target from vals: from
// the head if count>=0, from the tail if count<0; count==0 removes every
// occurrence, matching LREM's convention.
func removeMatches(vals [][]byte, target []byte, count int) (kept [][]byte, removed int) {
	limit := count
	if limit < 0 {
		limit = -limit
	}
	unlimited := count == 0
	fromTail := count < 0
	if fromTail {
		reversed := make([][]byte, len(vals))
		for i, v := range vals {
			reversed[len(vals)-1-i] = v
		}
		k, n := removeFromHead(reversed, target, limit, unlimited)
		out := make([][]byte, len(k))
		for i, v := range k {
			out[len(k)-1-i] = v
		}
		return out, n
	}
	return removeFromHead(vals, target, limit, unlimited)
}

func removeFromHead(vals [][]byte, target []byte, limit int, unlimited bool) (kept [][]byte, removed int) {
	for _, v := range vals {
		if (unlimited || removed < limit) && bytesEqual(v, target) {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	return kept, removed
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

func cmdLset(ctx *Context, argv [][]byte) Reply {
	o, err := lookupList(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		return errReply(errNoKey("no such key"))
	}
	i, perr := strconv.Atoi(string(argv[2]))
	if perr != nil {
		return errReply(errSyntax())
	}
	ql := object.List(o)
	if i < 0 {
		i += ql.Count()
	}
	if i < 0 || i >= ql.Count() {
		return errReply(errRange("index out of range"))
	}
	if !ql.ReplaceAt(i, packedlist.Value{Bytes: argv[3]}) {
		return errReply(errRange("index out of range"))
	}
	ctx.DB.SetKey(argv[1], o)
	return ok()
}

func cmdLinsert(ctx *Context, argv [][]byte) Reply {
	o, err := lookupList(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		return integer(0)
	}
	before, ok2 := parseBeforeAfter(argv[2])
	if !ok2 {
		return errReply(errSyntax())
	}
	pivot, newVal := argv[3], argv[4]
	ql := object.List(o)
	vals := listValues(ql)
	idx := -1
	for i, v := range vals {
		if bytesEqual(v, pivot) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return integer(-1)
	}
	insertAt := idx
	if !before {
		insertAt = idx + 1
	}
	out := make([][]byte, 0, len(vals)+1)
	out = append(out, vals[:insertAt]...)
	out = append(out, newVal)
	out = append(out, vals[insertAt:]...)
	ctx.DB.SetKey(argv[1], object.Create(object.TypeList, object.EncQuicklist, rebuildList(out)))
	return integer(int64(len(out)))
}

// blockingPop tries each key in order and pops the first non-empty list it
// finds. There is no connection layer in this package to suspend and
// resume (spec.md's transport/protocol layer is out of scope), so unlike
// real BLPOP this never actually blocks: a miss returns immediately as if
// the timeout had already elapsed. A caller sitting on a real connection
// would instead register via keyspace.Database.BlockOnKey on every key and
// re-dispatch on wakeup or timeout.
func blockingPop(ctx *Context, keys [][]byte, atHead bool) (key []byte, value []byte, found bool) {
	for _, k := range keys {
		o, err := lookupList(ctx, k)
		if err != nil || o == nil {
			continue
		}
		ql := object.List(o)
		at := quicklist.AtTail
		if atHead {
			at = quicklist.AtHead
		}
		v, popped := ql.Pop(at)
		if !popped {
			continue
		}
		if ql.Count() == 0 {
			ctx.DB.DeleteSync(k)
		}
		return k, v.Bytes, true
	}
	return nil, nil, false
}

func cmdBlpop(ctx *Context, argv [][]byte) Reply { return blockingPopReply(ctx, argv, true) }
func cmdBrpop(ctx *Context, argv [][]byte) Reply { return blockingPopReply(ctx, argv, false) }

func blockingPopReply(ctx *Context, argv [][]byte, atHead bool) Reply {
	keys := argv[1 : len(argv)-1]
	key, value, found := blockingPop(ctx, keys, atHead)
	if !found {
		return nullArray()
	}
	return array([]Reply{bulk(key), bulk(value)})
}

func cmdBrpoplpush(ctx *Context, argv [][]byte) Reply {
	src, dst := argv[1], argv[2]
	_, value, found := blockingPop(ctx, [][]byte{src}, false)
	if !found {
		return nullBulk()
	}
	dstObj, err := lookupList(ctx, dst)
	if err != nil {
		return errReply(err)
	}
	if dstObj == nil {
		dstObj = object.NewList()
	}
	object.List(dstObj).PushHead(packedlist.Value{Bytes: value})
	ctx.DB.SetKey(dst, dstObj)
	return bulk(value)
}

func parseBeforeAfter(b []byte) (before bool, ok bool) {
	switch string(b) {
	case "BEFORE", "before":
		return true, true
	case "AFTER", "after":
		return false, true
	default:
		return false, false
	}
}

func cmdRpoplpush(ctx *Context, argv [][]byte) Reply {
	src, dst := argv[1], argv[2]
	o, err := lookupList(ctx, src)
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		return nullBulk()
	}
	ql := object.List(o)
	v, okPop := ql.Pop(quicklist.AtTail)
	if !okPop {
		return nullBulk()
	}
	if ql.Count() == 0 {
		ctx.DB.DeleteSync(src)
	}
	dstObj, err := lookupList(ctx, dst)
	if err != nil {
		return errReply(err)
	}
	if dstObj == nil {
		dstObj = object.NewList()
	}
	object.List(dstObj).PushHead(v)
	ctx.DB.SetKey(dst, dstObj)
	return bulk(v.Bytes)
}

package commands

import (
	"strconv"
	"strings"

	"github.com/kvcore/kvcore/object"
	"github.com/kvcore/kvcore/pubsub"
)

func hashCommands() []*Command {
	return []*Command{
		{Name: "HSET", Arity: -4, Handler: cmdHset, IsWrite: true},
		{Name: "HSETNX", Arity: 4, Handler: cmdHsetNx, IsWrite: true},
		{Name: "HGET", Arity: 3, Handler: cmdHget},
		{Name: "HMGET", Arity: -3, Handler: cmdHmget},
		{Name: "HMSET", Arity: -4, Handler: cmdHmset, IsWrite: true},
		{Name: "HGETALL", Arity: 2, Handler: cmdHgetall},
		{Name: "HKEYS", Arity: 2, Handler: cmdHkeys},
		{Name: "HVALS", Arity: 2, Handler: cmdHvals},
		{Name: "HDEL", Arity: -3, Handler: cmdHdel, IsWrite: true},
		{Name: "HLEN", Arity: 2, Handler: cmdHlen},
		{Name: "HSTRLEN", Arity: 3, Handler: cmdHstrlen},
		{Name: "HEXISTS", Arity: 3, Handler: cmdHexists},
		{Name: "HINCRBY", Arity: 4, Handler: cmdHincrBy, IsWrite: true},
		{Name: "HINCRBYFLOAT", Arity: 4, Handler: cmdHincrByFloat, IsWrite: true},
		{Name: "HSCAN", Arity: -3, Handler: cmdHscan},
	}
}

func lookupHash(ctx *Context, key []byte) (*object.Object, error) {
	o, ok := ctx.DB.LookupWrite(ctx.NowMillis(), key)
	if !ok {
		return nil, nil
	}
	if !object.CheckType(o, object.TypeHash) {
		return nil, errWrongType()
	}
	return o, nil
}

func cmdHset(ctx *Context, argv [][]byte) Reply {
	if (len(argv)-2)%2 != 0 {
		return errReply(errSyntax())
	}
	o, err := lookupHash(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		o = object.NewHash()
	}
	created := 0
	for i := 2; i < len(argv); i += 2 {
		if object.HSet(o, object.DefaultHashConfig, argv[i], argv[i+1]) {
			created++
		}
	}
	ctx.DB.SetKey(argv[1], o)
	return integer(int64(created))
}

func cmdHsetNx(ctx *Context, argv [][]byte) Reply {
	o, err := lookupHash(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		o = object.NewHash()
	}
	if _, exists := object.HGet(o, argv[2]); exists {
		ctx.DB.SetKey(argv[1], o)
		return integer(0)
	}
	object.HSet(o, object.DefaultHashConfig, argv[2], argv[3])
	ctx.DB.SetKey(argv[1], o)
	return integer(1)
}

func cmdHget(ctx *Context, argv [][]byte) Reply {
	o, err := lookupHash(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		return nullBulk()
	}
	v, ok := object.HGet(o, argv[2])
	if !ok {
		return nullBulk()
	}
	return bulk(v)
}

func cmdHmget(ctx *Context, argv [][]byte) Reply {
	o, err := lookupHash(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	items := make([]Reply, len(argv)-2)
	for i, field := range argv[2:] {
		if o == nil {
			items[i] = nullBulk()
			continue
		}
		v, ok := object.HGet(o, field)
		if !ok {
			items[i] = nullBulk()
			continue
		}
		items[i] = bulk(v)
	}
	return array(items)
}

func cmdHmset(ctx *Context, argv [][]byte) Reply {
	if (len(argv)-2)%2 != 0 {
		return errReply(errSyntax())
	}
	o, err := lookupHash(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		o = object.NewHash()
	}
	for i := 2; i < len(argv); i += 2 {
		object.HSet(o, object.DefaultHashConfig, argv[i], argv[i+1])
	}
	ctx.DB.SetKey(argv[1], o)
	return ok()
}

func cmdHgetall(ctx *Context, argv [][]byte) Reply {
	o, err := lookupHash(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		return array(nil)
	}
	fields, values := object.HGetAll(o)
	items := make([]Reply, 0, len(fields)*2)
	for i := range fields {
		items = append(items, bulk(fields[i]), bulk(values[i]))
	}
	return array(items)
}

func cmdHkeys(ctx *Context, argv [][]byte) Reply {
	o, err := lookupHash(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		return array(nil)
	}
	fields, _ := object.HGetAll(o)
	items := make([]Reply, len(fields))
	for i, f := range fields {
		items[i] = bulk(f)
	}
	return array(items)
}

func cmdHvals(ctx *Context, argv [][]byte) Reply {
	o, err := lookupHash(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		return array(nil)
	}
	_, values := object.HGetAll(o)
	items := make([]Reply, len(values))
	for i, v := range values {
		items[i] = bulk(v)
	}
	return array(items)
}

func cmdHdel(ctx *Context, argv [][]byte) Reply {
	o, err := lookupHash(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		return integer(0)
	}
	removed := 0
	for _, field := range argv[2:] {
		if object.HDel(o, field) {
			removed++
		}
	}
	if object.HLen(o) == 0 {
		ctx.DB.DeleteSync(argv[1])
	} else {
		ctx.DB.SetKey(argv[1], o)
	}
	return integer(int64(removed))
}

func cmdHlen(ctx *Context, argv [][]byte) Reply {
	o, err := lookupHash(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		return integer(0)
	}
	return integer(int64(object.HLen(o)))
}

func cmdHstrlen(ctx *Context, argv [][]byte) Reply {
	o, err := lookupHash(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		return integer(0)
	}
	v, ok := object.HGet(o, argv[2])
	if !ok {
		return integer(0)
	}
	return integer(int64(len(v)))
}

func cmdHexists(ctx *Context, argv [][]byte) Reply {
	o, err := lookupHash(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		return integer(0)
	}
	if object.HExists(o, argv[2]) {
		return integer(1)
	}
	return integer(0)
}

func cmdHincrBy(ctx *Context, argv [][]byte) Reply {
	delta, perr := strconv.ParseInt(string(argv[3]), 10, 64)
	if perr != nil {
		return errReply(errSyntax())
	}
	o, err := lookupHash(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		o = object.NewHash()
	}
	var cur int64
	if v, ok := object.HGet(o, argv[2]); ok {
		cur, perr = strconv.ParseInt(string(v), 10, 64)
		if perr != nil {
			return errReply(newErr(Syntax, "hash value is not an integer"))
		}
	}
	sum := cur + delta
	object.HSet(o, object.DefaultHashConfig, argv[2], []byte(strconv.FormatInt(sum, 10)))
	ctx.DB.SetKey(argv[1], o)
	return integer(sum)
}

// cmdHscan walks a hash's fields in one pass: object.HGetAll already
// materializes the full field/value set (packed pairs and the hash-table
// encoding are both small enough that a cursor split isn't worth the
// bookkeeping here, unlike the keyspace-wide SCAN's incrementally
// rehashing table), so the cursor this always returns is 0.
func cmdHscan(ctx *Context, argv [][]byte) Reply {
	o, err := lookupHash(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	pattern := "*"
	for i := 3; i < len(argv); i++ {
		if strings.EqualFold(string(argv[i]), "MATCH") && i+1 < len(argv) {
			pattern = string(argv[i+1])
			i++
		}
	}
	var items []Reply
	if o != nil {
		fields, values := object.HGetAll(o)
		for i, f := range fields {
			if pubsub.MatchGlob(pattern, string(f)) {
				items = append(items, bulk(f), bulk(values[i]))
			}
		}
	}
	return array([]Reply{bulk([]byte("0")), array(items)})
}

func cmdHincrByFloat(ctx *Context, argv [][]byte) Reply {
	delta, perr := strconv.ParseFloat(string(argv[3]), 64)
	if perr != nil {
		return errReply(errSyntax())
	}
	o, err := lookupHash(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		o = object.NewHash()
	}
	var cur float64
	if v, ok := object.HGet(o, argv[2]); ok {
		cur, perr = strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		if perr != nil {
			return errReply(newErr(Syntax, "hash value is not a float"))
		}
	}
	sum := cur + delta
	out := strconv.FormatFloat(sum, 'f', -1, 64)
	object.HSet(o, object.DefaultHashConfig, argv[2], []byte(out))
	ctx.DB.SetKey(argv[1], o)
	return bulk([]byte(out))
}

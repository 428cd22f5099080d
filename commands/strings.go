package commands

import (
	"strconv"
	"strings"

	"github.com/kvcore/kvcore/object"
)

func stringCommands() []*Command {
	return []*Command{
		{Name: "GET", Arity: 2, Handler: cmdGet},
		{Name: "SET", Arity: -3, Handler: cmdSet, IsWrite: true},
		{Name: "GETSET", Arity: 3, Handler: cmdGetSet, IsWrite: true},
		{Name: "SETRANGE", Arity: 4, Handler: cmdSetRange, IsWrite: true},
		{Name: "GETRANGE", Arity: 4, Handler: cmdGetRange},
		{Name: "INCR", Arity: 2, Handler: cmdIncr, IsWrite: true},
		{Name: "DECR", Arity: 2, Handler: cmdDecr, IsWrite: true},
		{Name: "INCRBY", Arity: 3, Handler: cmdIncrBy, IsWrite: true},
		{Name: "DECRBY", Arity: 3, Handler: cmdDecrBy, IsWrite: true},
		{Name: "INCRBYFLOAT", Arity: 3, Handler: cmdIncrByFloat, IsWrite: true},
		{Name: "APPEND", Arity: 3, Handler: cmdAppend, IsWrite: true},
		{Name: "STRLEN", Arity: 2, Handler: cmdStrlen},
		{Name: "MGET", Arity: -2, Handler: cmdMget},
		{Name: "MSET", Arity: -3, Handler: cmdMset, IsWrite: true},
		{Name: "MSETNX", Arity: -3, Handler: cmdMsetNx, IsWrite: true},
	}
}

func lookupString(ctx *Context, key []byte) (*object.Object, error) {
	o, ok := ctx.DB.LookupRead(ctx.NowMillis(), key, false)
	if !ok {
		return nil, nil
	}
	if !object.CheckType(o, object.TypeString) {
		return nil, errWrongType()
	}
	return o, nil
}

func cmdGet(ctx *Context, argv [][]byte) Reply {
	o, err := lookupString(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		return nullBulk()
	}
	return bulk(object.StringBytes(o))
}

func cmdSet(ctx *Context, argv [][]byte) Reply {
	key, value := argv[1], argv[2]
	var nx, xx bool
	var expireAtMs int64
	hasExpire := false
	for i := 3; i < len(argv); i++ {
		switch strings.ToUpper(string(argv[i])) {
		case "NX":
			nx = true
		case "XX":
			xx = true
		case "EX", "PX":
			if i+1 >= len(argv) {
				return errReply(errSyntax())
			}
			n, perr := strconv.ParseInt(string(argv[i+1]), 10, 64)
			if perr != nil {
				return errReply(errSyntax())
			}
			if strings.EqualFold(string(argv[i]), "EX") {
				n *= 1000
			}
			expireAtMs = ctx.NowMillis() + n
			hasExpire = true
			i++
		default:
			return errReply(errSyntax())
		}
	}
	if nx && xx {
		return errReply(errSyntax())
	}
	_, exists := ctx.DB.LookupWrite(ctx.NowMillis(), key)
	if nx && exists {
		return nullBulk()
	}
	if xx && !exists {
		return nullBulk()
	}
	ctx.DB.SetKey(key, object.NewString(value))
	if hasExpire {
		ctx.DB.SetExpire(key, expireAtMs)
	}
	return ok()
}

func cmdGetSet(ctx *Context, argv [][]byte) Reply {
	o, err := lookupString(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	ctx.DB.SetKey(argv[1], object.NewString(argv[2]))
	if o == nil {
		return nullBulk()
	}
	return bulk(object.StringBytes(o))
}

func cmdSetRange(ctx *Context, argv [][]byte) Reply {
	offset, perr := strconv.Atoi(string(argv[2]))
	if perr != nil || offset < 0 {
		return errReply(errRange("offset is out of range"))
	}
	o, err := lookupString(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	var cur []byte
	if o != nil {
		cur = object.StringBytes(o)
	}
	patch := argv[3]
	need := offset + len(patch)
	if need > len(cur) {
		grown := make([]byte, need)
		copy(grown, cur)
		cur = grown
	}
	copy(cur[offset:], patch)
	ctx.DB.SetKey(argv[1], object.NewString(cur))
	return integer(int64(len(cur)))
}

func cmdGetRange(ctx *Context, argv [][]byte) Reply {
	o, err := lookupString(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		return bulk(nil)
	}
	v := object.StringBytes(o)
	start, serr1 := strconv.Atoi(string(argv[2]))
	end, serr2 := strconv.Atoi(string(argv[3]))
	if serr1 != nil || serr2 != nil {
		return errReply(errSyntax())
	}
	n := len(v)
	start, end = clampStringRange(start, end, n)
	if start > end || n == 0 {
		return bulk(nil)
	}
	return bulk(v[start : end+1])
}

func clampStringRange(start, end, n int) (int, int) {
	if start < 0 {
		start += n
	}
	if end < 0 {
		end += n
	}
	if start < 0 {
		start = 0
	}
	if end >= n {
		end = n - 1
	}
	return start, end
}

func cmdIncr(ctx *Context, argv [][]byte) Reply { return doIncrBy(ctx, argv[1], 1) }
func cmdDecr(ctx *Context, argv [][]byte) Reply { return doIncrBy(ctx, argv[1], -1) }

func cmdIncrBy(ctx *Context, argv [][]byte) Reply {
	n, perr := strconv.ParseInt(string(argv[2]), 10, 64)
	if perr != nil {
		return errReply(errSyntax())
	}
	return doIncrBy(ctx, argv[1], n)
}

func cmdDecrBy(ctx *Context, argv [][]byte) Reply {
	n, perr := strconv.ParseInt(string(argv[2]), 10, 64)
	if perr != nil {
		return errReply(errSyntax())
	}
	return doIncrBy(ctx, argv[1], -n)
}

func doIncrBy(ctx *Context, key []byte, delta int64) Reply {
	o, err := lookupString(ctx, key)
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		o = object.NewString([]byte("0"))
	}
	sum, ok := object.IncrBy(o, delta)
	if !ok {
		if !isIntegerString(object.StringBytes(o)) {
			return errReply(newErr(Syntax, "value is not an integer or out of range"))
		}
		return errReply(errOverflow("increment or decrement would overflow"))
	}
	ctx.DB.SetKey(key, o)
	return integer(sum)
}

func isIntegerString(b []byte) bool {
	_, err := strconv.ParseInt(string(b), 10, 64)
	return err == nil
}

func cmdIncrByFloat(ctx *Context, argv [][]byte) Reply {
	delta, perr := strconv.ParseFloat(string(argv[2]), 64)
	if perr != nil {
		return errReply(errSyntax())
	}
	o, err := lookupString(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	var cur float64
	if o != nil {
		cur, perr = strconv.ParseFloat(string(object.StringBytes(o)), 64)
		if perr != nil {
			return errReply(newErr(Syntax, "value is not a valid float"))
		}
	}
	sum := cur + delta
	out := strconv.FormatFloat(sum, 'f', -1, 64)
	ctx.DB.SetKey(argv[1], object.NewString([]byte(out)))
	return bulk([]byte(out))
}

func cmdAppend(ctx *Context, argv [][]byte) Reply {
	o, err := lookupString(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	var cur []byte
	if o != nil {
		cur = object.StringBytes(o)
	}
	out := append(append([]byte(nil), cur...), argv[2]...)
	ctx.DB.SetKey(argv[1], object.NewString(out))
	return integer(int64(len(out)))
}

func cmdStrlen(ctx *Context, argv [][]byte) Reply {
	o, err := lookupString(ctx, argv[1])
	if err != nil {
		return errReply(err)
	}
	if o == nil {
		return integer(0)
	}
	return integer(int64(object.StringLen(o)))
}

func cmdMget(ctx *Context, argv [][]byte) Reply {
	items := make([]Reply, len(argv)-1)
	for i, key := range argv[1:] {
		o, err := lookupString(ctx, key)
		if err != nil || o == nil {
			items[i] = nullBulk()
			continue
		}
		items[i] = bulk(object.StringBytes(o))
	}
	return array(items)
}

func cmdMset(ctx *Context, argv [][]byte) Reply {
	if (len(argv)-1)%2 != 0 {
		return errReply(errSyntax())
	}
	for i := 1; i < len(argv); i += 2 {
		ctx.DB.SetKey(argv[i], object.NewString(argv[i+1]))
	}
	return ok()
}

func cmdMsetNx(ctx *Context, argv [][]byte) Reply {
	if (len(argv)-1)%2 != 0 {
		return errReply(errSyntax())
	}
	for i := 1; i < len(argv); i += 2 {
		if _, exists := ctx.DB.LookupWrite(ctx.NowMillis(), argv[i]); exists {
			return integer(0)
		}
	}
	for i := 1; i < len(argv); i += 2 {
		ctx.DB.SetKey(argv[i], object.NewString(argv[i+1]))
	}
	return integer(1)
}

package commands

import (
	"strconv"
	"strings"

	"github.com/kvcore/kvcore/keyspace"
	"github.com/kvcore/kvcore/pubsub"
)

func keyspaceCommands() []*Command {
	return []*Command{
		{Name: "EXISTS", Arity: -2, Handler: cmdExists},
		{Name: "DEL", Arity: -2, Handler: cmdDel, IsWrite: true},
		{Name: "UNLINK", Arity: -2, Handler: cmdUnlink, IsWrite: true},
		{Name: "EXPIRE", Arity: 3, Handler: cmdExpire, IsWrite: true},
		{Name: "PEXPIRE", Arity: 3, Handler: cmdPexpire, IsWrite: true},
		{Name: "TTL", Arity: 2, Handler: cmdTtl},
		{Name: "PERSIST", Arity: 2, Handler: cmdPersist, IsWrite: true},
		{Name: "TYPE", Arity: 2, Handler: cmdType},
		{Name: "KEYS", Arity: 2, Handler: cmdKeys},
		{Name: "SCAN", Arity: -2, Handler: cmdScan},
		{Name: "RANDOMKEY", Arity: 1, Handler: cmdRandomKey},
		{Name: "RENAME", Arity: 3, Handler: cmdRename, IsWrite: true},
		{Name: "RENAMENX", Arity: 3, Handler: cmdRenameNx, IsWrite: true},
		{Name: "MOVE", Arity: 3, Handler: cmdMove, IsWrite: true},
		{Name: "DBSIZE", Arity: 1, Handler: cmdDbsize},
		{Name: "FLUSHDB", Arity: -1, Handler: cmdFlushdb, IsWrite: true},
		{Name: "FLUSHALL", Arity: -1, Handler: cmdFlushall, IsWrite: true},
		{Name: "SELECT", Arity: 2, Handler: cmdSelect, NoTxnBypass: true},
		{Name: "SWAPDB", Arity: 3, Handler: cmdSwapdb, IsWrite: true},
		{Name: "SHUTDOWN", Arity: -1, Handler: cmdShutdown, NoTxnBypass: true},
	}
}

func cmdExists(ctx *Context, argv [][]byte) Reply {
	var n int64
	for _, key := range argv[1:] {
		if _, ok := ctx.DB.LookupWrite(ctx.NowMillis(), key); ok {
			n++
		}
	}
	return integer(n)
}

func cmdDel(ctx *Context, argv [][]byte) Reply {
	var n int64
	for _, key := range argv[1:] {
		if ctx.DB.DeleteSync(key) {
			n++
		}
	}
	return integer(n)
}

func cmdUnlink(ctx *Context, argv [][]byte) Reply {
	var n int64
	for _, key := range argv[1:] {
		if ctx.DB.DeleteAsync(key, nil) {
			n++
		}
	}
	return integer(n)
}

func expire(ctx *Context, key []byte, deltaMillis int64) Reply {
	if _, ok := ctx.DB.LookupWrite(ctx.NowMillis(), key); !ok {
		return integer(0)
	}
	ctx.DB.SetExpire(key, ctx.NowMillis()+deltaMillis)
	return integer(1)
}

func cmdExpire(ctx *Context, argv [][]byte) Reply {
	secs, perr := strconv.ParseInt(string(argv[2]), 10, 64)
	if perr != nil {
		return errReply(errSyntax())
	}
	return expire(ctx, argv[1], secs*1000)
}

func cmdPexpire(ctx *Context, argv [][]byte) Reply {
	ms, perr := strconv.ParseInt(string(argv[2]), 10, 64)
	if perr != nil {
		return errReply(errSyntax())
	}
	return expire(ctx, argv[1], ms)
}

func cmdTtl(ctx *Context, argv [][]byte) Reply {
	if _, ok := ctx.DB.LookupWrite(ctx.NowMillis(), argv[1]); !ok {
		return integer(-2)
	}
	at, hasExpiry := ctx.DB.GetExpire(argv[1])
	if !hasExpiry {
		return integer(-1)
	}
	remaining := at - ctx.NowMillis()
	if remaining < 0 {
		remaining = 0
	}
	return integer(remaining / 1000)
}

func cmdPersist(ctx *Context, argv [][]byte) Reply {
	if _, ok := ctx.DB.LookupWrite(ctx.NowMillis(), argv[1]); !ok {
		return integer(0)
	}
	if ctx.DB.RemoveExpire(argv[1]) {
		return integer(1)
	}
	return integer(0)
}

func cmdType(ctx *Context, argv [][]byte) Reply {
	o, ok := ctx.DB.LookupWrite(ctx.NowMillis(), argv[1])
	if !ok {
		return simple("none")
	}
	return simple(o.Type().String())
}

func cmdKeys(ctx *Context, argv [][]byte) Reply {
	pattern := string(argv[1])
	now := ctx.NowMillis()
	var items []Reply
	var cursor uint64
	for {
		cursor = ctx.DB.ScanKeys(now, cursor, func(key []byte) {
			if pubsub.MatchGlob(pattern, string(key)) {
				items = append(items, bulk(append([]byte(nil), key...)))
			}
		})
		if cursor == 0 {
			break
		}
	}
	return array(items)
}

func cmdScan(ctx *Context, argv [][]byte) Reply {
	cursor, perr := strconv.ParseUint(string(argv[1]), 10, 64)
	if perr != nil {
		return errReply(errSyntax())
	}
	pattern := "*"
	for i := 2; i < len(argv); i++ {
		if strings.EqualFold(string(argv[i]), "MATCH") && i+1 < len(argv) {
			pattern = string(argv[i+1])
			i++
		}
	}
	now := ctx.NowMillis()
	var items []Reply
	next := ctx.DB.ScanKeys(now, cursor, func(key []byte) {
		if pubsub.MatchGlob(pattern, string(key)) {
			items = append(items, bulk(append([]byte(nil), key...)))
		}
	})
	return array([]Reply{bulk([]byte(strconv.FormatUint(next, 10))), array(items)})
}

func cmdRandomKey(ctx *Context, argv [][]byte) Reply {
	key, ok := ctx.DB.RandomKey(ctx.NowMillis())
	if !ok {
		return nullBulk()
	}
	return bulk(key)
}

func rename(ctx *Context, src, dst []byte, onlyIfDstMissing bool) Reply {
	o, found := ctx.DB.LookupWrite(ctx.NowMillis(), src)
	if !found {
		return errReply(errNoKey("no such key"))
	}
	if onlyIfDstMissing {
		if _, exists := ctx.DB.LookupWrite(ctx.NowMillis(), dst); exists {
			return integer(0)
		}
	}
	at, hasExpiry := ctx.DB.GetExpire(src)
	ctx.DB.DeleteSync(src)
	ctx.DB.SetKey(dst, o)
	if hasExpiry {
		ctx.DB.SetExpire(dst, at)
	}
	if onlyIfDstMissing {
		return integer(1)
	}
	return ok()
}

func cmdRename(ctx *Context, argv [][]byte) Reply   { return rename(ctx, argv[1], argv[2], false) }
func cmdRenameNx(ctx *Context, argv [][]byte) Reply { return rename(ctx, argv[1], argv[2], true) }

func cmdMove(ctx *Context, argv [][]byte) Reply {
	dstID, perr := strconv.Atoi(string(argv[2]))
	if perr != nil {
		return errReply(errSyntax())
	}
	dst, err := ctx.Server.Select(dstID)
	if err != nil {
		return errReply(errRange("DB index is out of range"))
	}
	if dst == ctx.DB {
		return errReply(errSyntax())
	}
	o, ok := ctx.DB.LookupWrite(ctx.NowMillis(), argv[1])
	if !ok {
		return integer(0)
	}
	if _, exists := dst.LookupWrite(ctx.NowMillis(), argv[1]); exists {
		return integer(0)
	}
	at, hasExpiry := ctx.DB.GetExpire(argv[1])
	ctx.DB.DeleteSync(argv[1])
	dst.SetKey(argv[1], o)
	if hasExpiry {
		dst.SetExpire(argv[1], at)
	}
	return integer(1)
}

func cmdDbsize(ctx *Context, argv [][]byte) Reply { return integer(int64(ctx.DB.Size())) }

func flushFlags(argv [][]byte) keyspace.EmptyFlags {
	if len(argv) > 1 && strings.EqualFold(string(argv[1]), "ASYNC") {
		return keyspace.EmptyAsync
	}
	return keyspace.EmptySync
}

func cmdFlushdb(ctx *Context, argv [][]byte) Reply {
	ctx.DB.EmptyDatabase(flushFlags(argv), nil)
	return ok()
}

func cmdFlushall(ctx *Context, argv [][]byte) Reply {
	flags := flushFlags(argv)
	for i := 0; i < ctx.Server.DBCount(); i++ {
		if db, err := ctx.Server.Select(i); err == nil {
			db.EmptyDatabase(flags, nil)
		}
	}
	return ok()
}

func cmdSelect(ctx *Context, argv [][]byte) Reply {
	id, perr := strconv.Atoi(string(argv[1]))
	if perr != nil {
		return errReply(errSyntax())
	}
	db, err := ctx.Server.Select(id)
	if err != nil {
		return errReply(errRange("DB index is out of range"))
	}
	ctx.DBID = id
	ctx.DB = db
	return ok()
}

// cmdShutdown flags the server for termination. SAVE/NOSAVE is accepted and
// ignored since persistence is out of scope here; a real connection layer
// would never see a reply (the process exits first), but this dispatcher
// has no connection to close out from under, so it returns ok() for
// callers (e.g. the test harness) that invoke it directly.
func cmdShutdown(ctx *Context, argv [][]byte) Reply {
	if len(argv) > 2 {
		return errReply(errSyntax())
	}
	ctx.Server.RequestShutdown()
	return ok()
}

func cmdSwapdb(ctx *Context, argv [][]byte) Reply {
	a, e1 := strconv.Atoi(string(argv[1]))
	b, e2 := strconv.Atoi(string(argv[2]))
	if e1 != nil || e2 != nil {
		return errReply(errSyntax())
	}
	if err := ctx.Server.SwapDB(a, b); err != nil {
		return errReply(errRange("DB index is out of range"))
	}
	return ok()
}

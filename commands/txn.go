package commands

import (
	"github.com/kvcore/kvcore/keyspace"
	"github.com/kvcore/kvcore/txn"
)

func txnCommands() []*Command {
	return []*Command{
		{Name: "MULTI", Arity: 1, Handler: cmdMulti, NoTxnBypass: true},
		{Name: "EXEC", Arity: 1, Handler: cmdExec, NoTxnBypass: true},
		{Name: "DISCARD", Arity: 1, Handler: cmdDiscard, NoTxnBypass: true},
		{Name: "WATCH", Arity: -2, Handler: cmdWatch, NoTxnBypass: true},
		{Name: "UNWATCH", Arity: 1, Handler: cmdUnwatch, NoTxnBypass: true},
	}
}

func cmdMulti(ctx *Context, argv [][]byte) Reply {
	if err := ctx.Txn.Multi(); err != nil {
		return errReply(errExecAbort(err.Error()))
	}
	return ok()
}

func cmdWatch(ctx *Context, argv [][]byte) Reply {
	for _, key := range argv[1:] {
		if err := ctx.Txn.Watch(ctx.DBID, key); err != nil {
			return errReply(errExecAbort(err.Error()))
		}
		ctx.DB.WatchKey(key, ctx.Txn)
	}
	return ok()
}

func cmdUnwatch(ctx *Context, argv [][]byte) Reply {
	unwatchAll(ctx)
	return ok()
}

func unwatchAll(ctx *Context) {
	unwatchKeys(ctx, ctx.Txn.WatchedKeys())
	ctx.Txn.Unwatch()
}

func cmdDiscard(ctx *Context, argv [][]byte) Reply {
	watched := ctx.Txn.WatchedKeys()
	if err := ctx.Txn.Discard(); err != nil {
		return errReply(errExecAbort(err.Error()))
	}
	unwatchKeys(ctx, watched)
	return ok()
}

func unwatchKeys(ctx *Context, byDB map[int][][]byte) {
	for dbID, keys := range byDB {
		if db, err := ctx.Server.Select(dbID); err == nil {
			db.UnwatchAll(ctx.Txn, keys)
		}
	}
}

// execWith returns the EXEC handler, which runs the queued commands, if
// any, propagating a MULTI/EXEC bracket around them per spec.md §4.H.
// The dispatcher is threaded in by the
// caller since *Dispatcher lives above this package's handler signature.
func execWith(d *Dispatcher) Handler {
	return func(ctx *Context, argv [][]byte) Reply {
		watched := ctx.Txn.WatchedKeys()
		outcome, queue := ctx.Txn.Exec()
		unwatchKeys(ctx, watched)
		switch outcome {
		case txn.ExecNotQueuing:
			return errReply(errExecAbort("EXEC without MULTI"))
		case txn.ExecAborted:
			return errReply(errExecAbort("Transaction discarded because of previous errors."))
		case txn.ExecNullArray:
			return nullArray()
		}
		if len(queue) == 0 {
			return array(nil)
		}
		ctx.Server.Propagate("MULTI", ctx.DBID, nil, keyspace.TargetPersistLog|keyspace.TargetReplicas)
		items := make([]Reply, len(queue))
		for i, cmd := range queue {
			items[i] = d.RunQueued(ctx, cmd)
		}
		ctx.Server.Propagate("EXEC", ctx.DBID, nil, keyspace.TargetPersistLog|keyspace.TargetReplicas)
		return array(items)
	}
}

// cmdExec is registered as a placeholder; NewDispatcher rebinds EXEC's
// handler to execWith(d) once the Dispatcher itself exists, since EXEC is
// the one command that needs to re-enter dispatch.
func cmdExec(ctx *Context, argv [][]byte) Reply {
	return errReply(errExecAbort("EXEC not wired to a dispatcher"))
}

package commands

import (
	"strings"

	"github.com/kvcore/kvcore/keyspace"
	"github.com/kvcore/kvcore/pubsub"
	"github.com/kvcore/kvcore/txn"
)

// Context carries everything a handler needs: the selected database, the
// server (for SELECT/SWAPDB and propagation), the pub/sub hub, and the
// issuing connection's transaction state.
type Context struct {
	Server *keyspace.Server
	Hub    *pubsub.Hub
	Txn    *txn.Conn

	// Sub is the issuing connection's pubsub.Subscriber identity, used by
	// SUBSCRIBE/PSUBSCRIBE/UNSUBSCRIBE/PUNSUBSCRIBE; nil for a connection
	// that has never subscribed.
	Sub pubsub.Subscriber

	DBID int
	DB   *keyspace.Database

	// NowMillis returns the wall clock in milliseconds, threaded in so
	// tests control time rather than the handler reading it directly.
	NowMillis func() int64
}

// Handler runs one command's logic.
type Handler func(ctx *Context, argv [][]byte) Reply

// Command is one dispatch-table entry. Arity mirrors the common
// convention: a positive value is an exact argv length (including the
// command name); a negative value is a minimum.
type Command struct {
	Name        string
	Arity       int
	Handler     Handler
	NoTxnBypass bool // true for MULTI/EXEC/DISCARD/WATCH/UNWATCH/SELECT/SHUTDOWN and the subscribe commands: never queued
	IsWrite     bool
}

// Dispatcher is the case-insensitive command table.
type Dispatcher struct {
	table map[string]*Command
}

// NewDispatcher returns a Dispatcher preloaded with every handler this
// package implements.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{table: make(map[string]*Command)}
	d.register(stringCommands()...)
	d.register(listCommands()...)
	d.register(hashCommands()...)
	d.register(keyspaceCommands()...)
	d.register(pubsubCommands()...)
	d.register(txnCommands()...)
	d.table["EXEC"].Handler = execWith(d)
	return d
}

func (d *Dispatcher) register(cmds ...*Command) {
	for _, c := range cmds {
		d.table[strings.ToUpper(c.Name)] = c
	}
}

// Lookup finds a command by name, case-insensitively.
func (d *Dispatcher) Lookup(name string) (*Command, bool) {
	c, ok := d.table[strings.ToUpper(name)]
	return c, ok
}

func checkArity(c *Command, argv [][]byte) bool {
	if c.Arity >= 0 {
		return len(argv) == c.Arity
	}
	return len(argv) >= -c.Arity
}

// Dispatch looks up argv[0], validates arity, and either runs the handler
// or (while ctx.Txn is Queuing) enqueues it — spec.md §4.H/§6.
func (d *Dispatcher) Dispatch(ctx *Context, argv [][]byte) Reply {
	if len(argv) == 0 {
		return errReply(errSyntax())
	}
	name := strings.ToUpper(string(argv[0]))
	queuing := ctx.Txn != nil && ctx.Txn.State() == txn.Queuing
	c, ok := d.table[name]
	if !ok {
		err := newErr(Syntax, "unknown command '"+name+"'")
		if queuing {
			ctx.Txn.MarkDirtyQueue()
		}
		return errReply(err)
	}
	if !checkArity(c, argv) {
		err := newErr(Syntax, "wrong number of arguments for '"+name+"' command")
		if queuing && !c.NoTxnBypass {
			ctx.Txn.MarkDirtyQueue()
		}
		return errReply(err)
	}
	if queuing && !c.NoTxnBypass {
		ctx.Txn.Enqueue(txn.QueuedCommand{Name: name, Argv: argv})
		return simple("QUEUED")
	}
	if c.IsWrite && ctx.DB.Role() == keyspace.RoleReplica {
		return errReply(errReadOnly())
	}
	reply := c.Handler(ctx, argv)
	if c.IsWrite && reply.Kind != ReplyError {
		ctx.Server.Propagate(name, ctx.DBID, argv, keyspace.TargetPersistLog|keyspace.TargetReplicas)
	}
	return reply
}

// RunQueued executes a previously queued command directly, bypassing the
// queuing re-entry check — used by the EXEC handler. It applies the same
// replica write gate and write propagation Dispatch applies to a directly
// issued command, spec.md §4.H/§6.
func (d *Dispatcher) RunQueued(ctx *Context, cmd txn.QueuedCommand) Reply {
	name := strings.ToUpper(cmd.Name)
	c, ok := d.table[name]
	if !ok {
		return errReply(newErr(Syntax, "unknown command '"+cmd.Name+"'"))
	}
	if c.IsWrite && ctx.DB.Role() == keyspace.RoleReplica {
		return errReply(errReadOnly())
	}
	reply := c.Handler(ctx, cmd.Argv)
	if c.IsWrite && reply.Kind != ReplyError {
		ctx.Server.Propagate(name, ctx.DBID, cmd.Argv, keyspace.TargetPersistLog|keyspace.TargetReplicas)
	}
	return reply
}

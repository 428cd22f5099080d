// Package txn implements the per-connection MULTI/EXEC/WATCH state machine
// of spec.md §4.H: normal/queuing states, dirtyQueue/dirtyCas flags, and
// the WATCH/EXEC/DISCARD preconditions.
package txn

import "github.com/pkg/errors"

// State is a connection's transaction state.
type State int

const (
	Normal State = iota
	Queuing
)

// QueuedCommand is one command deferred by MULTI. Argv is mutable in
// place — spec.md §4.H "some commands rewrite themselves... the queue's
// stored argv is updated in place".
type QueuedCommand struct {
	Name string
	Argv [][]byte
}

// Conn is the per-connection transaction state spec.md §4.H describes.
// It implements keyspace.Watcher so a Database can mark it dirty directly.
type Conn struct {
	state State

	queue      []QueuedCommand
	dirtyQueue bool
	dirtyCas   bool

	watchedKeys []watchedKey
}

type watchedKey struct {
	db  int
	key []byte
}

// NewConn returns a connection in the Normal state.
func NewConn() *Conn { return &Conn{} }

// State returns the connection's current transaction state.
func (c *Conn) State() State { return c.state }

// MarkDirtyCas implements keyspace.Watcher: a write path touching a
// watched key sets dirtyCas, which a later EXEC checks.
func (c *Conn) MarkDirtyCas() { c.dirtyCas = true }

// Multi transitions Normal -> Queuing. Calling it while already queuing is
// a caller error the command layer surfaces as a typed error, not this
// package's concern.
func (c *Conn) Multi() error {
	if c.state == Queuing {
		return errors.New("txn: MULTI calls can not be nested")
	}
	c.state = Queuing
	c.dirtyQueue = false
	c.dirtyCas = false
	c.queue = nil
	return nil
}

// Watch registers (db, key) on the connection, returning an error if
// called while queuing — spec.md §4.H "WATCH (rejected inside MULTI)".
// The caller is responsible for also registering c on the Database's
// watch map via keyspace.Database.WatchKey.
func (c *Conn) Watch(db int, key []byte) error {
	if c.state == Queuing {
		return errors.New("txn: WATCH inside MULTI is not allowed")
	}
	for _, w := range c.watchedKeys {
		if w.db == db && string(w.key) == string(key) {
			return nil
		}
	}
	c.watchedKeys = append(c.watchedKeys, watchedKey{db: db, key: key})
	return nil
}

// WatchedKeys returns every (db, key) pair this connection is watching,
// grouped so the caller can call keyspace.Database.UnwatchAll per db.
func (c *Conn) WatchedKeys() map[int][][]byte {
	out := make(map[int][][]byte)
	for _, w := range c.watchedKeys {
		out[w.db] = append(out[w.db], w.key)
	}
	return out
}

// Unwatch clears the connection's watch set. The caller must still unwatch
// c from each Database's watch map before or after calling this.
func (c *Conn) Unwatch() {
	c.watchedKeys = nil
	c.dirtyCas = false
}

// Enqueue appends cmd to the queue. Per spec.md §4.H, even a
// command that fails early validation is appended (so EXEC can still
// report EXECABORT) after the caller sets dirty via MarkDirtyQueue.
func (c *Conn) Enqueue(cmd QueuedCommand) {
	c.queue = append(c.queue, cmd)
}

// MarkDirtyQueue flags the queue as containing a command that failed early
// validation — EXEC will abort without running anything.
func (c *Conn) MarkDirtyQueue() { c.dirtyQueue = true }

// RewriteLastArgv replaces the argv of the most recently enqueued command,
// for handlers that rewrite their own arguments before persistence.
func (c *Conn) RewriteLastArgv(argv [][]byte) {
	if len(c.queue) == 0 {
		return
	}
	c.queue[len(c.queue)-1].Argv = argv
}

// ExecOutcome tells the caller what EXEC should reply and whether the
// queue should actually run.
type ExecOutcome int

const (
	ExecRun ExecOutcome = iota
	ExecAborted
	ExecNullArray
	ExecNotQueuing
)

// Exec validates preconditions and returns the queued commands to run (nil
// unless outcome is ExecRun), always leaving the connection in Normal
// afterward — spec.md §4.H.
func (c *Conn) Exec() (outcome ExecOutcome, queue []QueuedCommand) {
	if c.state != Queuing {
		return ExecNotQueuing, nil
	}
	defer c.reset()

	if c.dirtyQueue {
		return ExecAborted, nil
	}
	if c.dirtyCas {
		return ExecNullArray, nil
	}
	return ExecRun, c.queue
}

// Discard clears the queue and watch set, returning to Normal. Valid only
// in Queuing — spec.md §4.H.
func (c *Conn) Discard() error {
	if c.state != Queuing {
		return errors.New("txn: DISCARD without MULTI")
	}
	c.reset()
	return nil
}

func (c *Conn) reset() {
	c.state = Normal
	c.queue = nil
	c.dirtyQueue = false
	c.dirtyCas = false
	c.watchedKeys = nil
}

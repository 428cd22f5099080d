package keyspace

import (
	"time"

	"github.com/pkg/errors"
)

// Target is one propagation sink.
type Target int

const (
	TargetPersistLog Target = 1 << iota
	TargetReplicas
)

// PropagateFunc mirrors spec.md §6's outbound contract exactly:
// propagate(cmd, dbid, argv[], targets). It is a no-op when the
// corresponding sink is disabled; Server.Propagate simply calls whatever
// the caller wired, or drops the call if nothing was wired.
type PropagateFunc func(cmd string, dbID int, argv [][]byte, targets Target)

// Server wraps N Databases, the unit SELECT and SWAPDB operate on.
type Server struct {
	cfg Config
	dbs []*Database

	propagate PropagateFunc
	metrics   *Metrics

	shutdownRequested bool
}

// NewServer builds a Server with cfg.Databases empty Databases, each
// wired back to the Server so a database can propagate a synthetic DEL
// for keys it expires on its own (lazy or active expiration).
func NewServer(cfg Config) *Server {
	s := &Server{cfg: cfg}
	dbs := make([]*Database, cfg.Databases)
	for i := range dbs {
		dbs[i] = NewDatabase(i)
		dbs[i].server = s
	}
	s.dbs = dbs
	return s
}

// Config returns the server's effective configuration.
func (s *Server) Config() Config { return s.cfg }

// SetPropagate wires the persistence/replication sink. Passing nil
// restores the default no-op.
func (s *Server) SetPropagate(fn PropagateFunc) { s.propagate = fn }

// SetMetrics attaches a Metrics recorder; nil (the default) disables
// metrics entirely.
func (s *Server) SetMetrics(m *Metrics) { s.metrics = m }

// Propagate forwards to the wired PropagateFunc, or does nothing if none is
// set — spec.md §6 "Both are no-ops when the corresponding sink is
// disabled."
func (s *Server) Propagate(cmd string, dbID int, argv [][]byte, targets Target) {
	if s.propagate == nil {
		return
	}
	s.propagate(cmd, dbID, argv, targets)
}

// Select returns the Database for dbID, failing RANGE if it is out of
// bounds — spec.md §7 RANGE "dbid out of bounds".
func (s *Server) Select(dbID int) (*Database, error) {
	if dbID < 0 || dbID >= len(s.dbs) {
		return nil, errors.Errorf("keyspace: dbid %d out of range [0,%d)", dbID, len(s.dbs))
	}
	return s.dbs[dbID], nil
}

// SwapDB exchanges the contents of two databases in place, so callers that
// hold a *Database pointer across the swap keep observing the id they
// expect logically but the data that was at the other index.
func (s *Server) SwapDB(a, b int) error {
	if a < 0 || a >= len(s.dbs) || b < 0 || b >= len(s.dbs) {
		return errors.Errorf("keyspace: SWAPDB index out of range")
	}
	if a == b {
		return nil
	}
	da, db := s.dbs[a], s.dbs[b]
	da.entries, db.entries = db.entries, da.entries
	da.expiries, db.expiries = db.expiries, da.expiries
	da.watchedKeys, db.watchedKeys = db.watchedKeys, da.watchedKeys
	da.blockedKeys, db.blockedKeys = db.blockedKeys, da.blockedKeys
	for key := range da.watchedKeys {
		da.touchWatchedKey([]byte(key))
	}
	for key := range db.watchedKeys {
		db.touchWatchedKey([]byte(key))
	}
	return nil
}

// DBCount returns the number of selectable databases.
func (s *Server) DBCount() int { return len(s.dbs) }

// RequestShutdown flags the server for termination; the process's main loop
// (cmd/kvcored) polls ShutdownRequested between event-loop cycles and exits
// once it's set, since there is no connection layer here to close sockets
// through.
func (s *Server) RequestShutdown() { s.shutdownRequested = true }

// ShutdownRequested reports whether SHUTDOWN has been issued.
func (s *Server) ShutdownRequested() bool { return s.shutdownRequested }

// ActiveExpireAll runs one ActiveExpireCycle pass over every database,
// using the server's configured budget split evenly across them, and
// records the result if metrics are attached.
func (s *Server) ActiveExpireAll(now int64) {
	if len(s.dbs) == 0 {
		return
	}
	perDB := s.cfg.ActiveExpireBudget / time.Duration(len(s.dbs))
	for _, db := range s.dbs {
		stats := db.ActiveExpireCycle(now, perDB, s.cfg.ActiveExpireSampleSize, s.cfg.ActiveExpireRepeatPercent)
		if s.metrics != nil {
			s.metrics.observeExpireCycle(db.id, stats)
		}
	}
}

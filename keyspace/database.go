package keyspace

import (
	"github.com/kvcore/kvcore/hashmap"
	"github.com/kvcore/kvcore/object"
)

// Role distinguishes the lazy-expiration behavior of §4.E: a replica never
// deletes on a stale read, it waits for the primary's authoritative DEL.
type Role int

const (
	RolePrimary Role = iota
	RoleReplica
)

// Watcher is the txn package's connection handle, opaque to keyspace.
// touchWatchedKey only needs to mark it dirty; the transaction state
// machine interprets that flag.
type Watcher interface {
	MarkDirtyCas()
}

// Database is one selectable keyspace: spec.md §3/§4.E's entries/expiries
// hash maps plus the watch and block registries the transaction and
// blocking-command paths read and write.
type Database struct {
	id   int
	role Role

	entries  *hashmap.Map // key []byte -> *object.Object
	expiries *hashmap.Map // key []byte -> int64 absolute millis

	watchedKeys map[string][]Watcher
	blockedKeys map[string][]chan struct{}

	// server is the owning Server, used only to propagate a synthetic DEL
	// for keys this database expires on its own (lazy or active expiry) —
	// spec.md §4.E. nil in a Database built without NewServer (e.g. tests
	// exercising the database in isolation), in which case propagateDel is
	// a no-op.
	server *Server

	hits, misses uint64

	sampleBuf []struct {
		Key   []byte
		Value any
	}
}

// NewDatabase returns an empty database with id as its SELECT index.
func NewDatabase(id int) *Database {
	return &Database{
		id:          id,
		entries:     hashmap.New(4),
		expiries:    hashmap.New(4),
		watchedKeys: make(map[string][]Watcher),
		blockedKeys: make(map[string][]chan struct{}),
	}
}

// ID returns the database's SELECT index.
func (db *Database) ID() int { return db.id }

// SetRole switches the lazy-expiration policy; a replica answers "not
// found" on an expired read without deleting the entry itself.
func (db *Database) SetRole(r Role) { db.role = r }

// Role reports whether this database is acting as a primary or replica —
// commands.Dispatch consults it to reject a write with READONLY before it
// ever reaches a handler, spec.md §7.
func (db *Database) Role() Role { return db.role }

// propagateDel forwards a synthetic DEL for a key this database deleted on
// its own initiative (lazy or active expiration, spec.md §4.E: "propagate
// a synthetic DEL-like event to collaborators"). Watchers are already
// notified by deleteSync's touchWatchedKey call; this covers the
// persistence-log/replica side of that same event.
func (db *Database) propagateDel(key []byte) {
	if db.server == nil {
		return
	}
	db.server.Propagate("DEL", db.id, [][]byte{key}, TargetPersistLog|TargetReplicas)
}

// Size returns the stored entry count, including keys whose expiry has
// passed but which lazy or active expiration has not yet removed.
func (db *Database) Size() int { return int(db.entries.Used()) }

// LookupRead applies lazy expiration and, unless noTouch, refreshes the
// object's access recency — spec.md §4.E.
func (db *Database) LookupRead(now int64, key []byte, noTouch bool) (*object.Object, bool) {
	return db.lookup(now, key, !noTouch, true)
}

// LookupWrite is LookupRead without the recency update, for the read side
// of a read-modify-write command (spec.md §4.E: "as above without
// updating recency statistics").
func (db *Database) LookupWrite(now int64, key []byte) (*object.Object, bool) {
	return db.lookup(now, key, false, true)
}

func (db *Database) lookup(now int64, key []byte, touch, deleteOnExpire bool) (*object.Object, bool) {
	if ms, hasExpiry := db.getExpireRaw(key); hasExpiry && now >= ms {
		db.misses++
		if deleteOnExpire && db.role == RolePrimary {
			db.deleteSync(key)
			db.propagateDel(key)
		}
		return nil, false
	}
	v, ok := db.entries.Find(key)
	if !ok {
		db.misses++
		return nil, false
	}
	db.hits++
	o := v.(*object.Object)
	if touch {
		o.Touch(uint32(now))
	}
	return o, true
}

// SetKey inserts or overwrites key, clearing any prior expiry and signaling
// watchers — spec.md §4.E.
func (db *Database) SetKey(key []byte, value *object.Object) {
	db.entries.Upsert(key, value)
	db.expiries.Remove(key)
	db.touchWatchedKey(key)
	db.signalKeyReady(key)
}

// DeleteSync removes key and its expiry inline, returning true if it was
// present.
func (db *Database) DeleteSync(key []byte) bool { return db.deleteSync(key) }

func (db *Database) deleteSync(key []byte) bool {
	_, existed := db.entries.Unlink(key)
	db.expiries.Remove(key)
	if existed {
		db.touchWatchedKey(key)
	}
	return existed
}

// DeleteAsync removes the keyspace binding inline but hands the payload to
// reclaim for disposal off the event loop, matching spec.md's "async hands
// the payload to a background reclaimer" — reclaim is expected to run the
// returned object's release on a dedicated goroutine that touches no live
// structure.
func (db *Database) DeleteAsync(key []byte, reclaim func(*object.Object)) bool {
	v, existed := db.entries.Unlink(key)
	db.expiries.Remove(key)
	if !existed {
		return false
	}
	db.touchWatchedKey(key)
	if reclaim != nil {
		go reclaim(v.(*object.Object))
	}
	return true
}

// SetExpire installs an absolute-millisecond expiry on key.
func (db *Database) SetExpire(key []byte, absoluteMillis int64) {
	db.expiries.Upsert(key, absoluteMillis)
}

// RemoveExpire clears key's expiry, returning true if one was present.
func (db *Database) RemoveExpire(key []byte) bool { return db.expiries.Remove(key) }

// GetExpire returns key's absolute expiry, if any.
func (db *Database) GetExpire(key []byte) (int64, bool) { return db.getExpireRaw(key) }

func (db *Database) getExpireRaw(key []byte) (int64, bool) {
	v, ok := db.expiries.Find(key)
	if !ok {
		return 0, false
	}
	return v.(int64), true
}

// RandomKey returns a uniformly random live key, skipping up to 100
// already-expired samples before giving up — spec.md §4.E.
func (db *Database) RandomKey(now int64) ([]byte, bool) {
	for i := 0; i < 100; i++ {
		key, _, ok := db.entries.RandomEntry()
		if !ok {
			return nil, false
		}
		if ms, hasExpiry := db.getExpireRaw(key); hasExpiry && now >= ms {
			continue
		}
		return key, true
	}
	return nil, false
}

// ScanKeys walks live keys via the underlying hash map's cursor protocol,
// skipping keys with a due expiry, and returns the next cursor to resume
// from (0 once a full pass has completed) — used by the KEYS and SCAN
// commands, which never delete on the expired keys they skip over.
func (db *Database) ScanKeys(now int64, cursor uint64, fn func(key []byte)) uint64 {
	return db.entries.Scan(cursor, func(key []byte, _ any) {
		if ms, hasExpiry := db.getExpireRaw(key); hasExpiry && now >= ms {
			return
		}
		fn(key)
	})
}

// EmptyFlags controls EmptyDatabase's reclamation strategy.
type EmptyFlags int

const (
	EmptySync EmptyFlags = iota
	EmptyAsync
)

// EmptyDatabase removes every key, touching every watcher once per spec.md
// §4.H ("a database flush touches every watched key in that db").
func (db *Database) EmptyDatabase(flags EmptyFlags, reclaim func(*object.Object)) {
	if flags == EmptyAsync && reclaim != nil {
		old := db.entries
		db.entries = hashmap.New(4)
		it := old.NewSafeIterator()
		for it.Next() {
			go reclaim(it.Value().(*object.Object))
		}
		it.Close()
	} else {
		db.entries = hashmap.New(4)
	}
	db.expiries = hashmap.New(4)
	for key := range db.watchedKeys {
		db.touchWatchedKey([]byte(key))
	}
}

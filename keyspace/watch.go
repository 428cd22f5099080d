package keyspace

// WatchKey registers w on key, outside MULTI's queuing state — spec.md
// §4.H "Outside queuing, register (db, key) on the connection and the
// connection on the db's watch map."
func (db *Database) WatchKey(key []byte, w Watcher) {
	k := string(key)
	for _, existing := range db.watchedKeys[k] {
		if existing == w {
			return
		}
	}
	db.watchedKeys[k] = append(db.watchedKeys[k], w)
}

// UnwatchAll removes w from every key it watched. ks is the set of keys the
// caller (the txn connection state) recorded itself watching.
func (db *Database) UnwatchAll(w Watcher, ks [][]byte) {
	for _, key := range ks {
		k := string(key)
		list := db.watchedKeys[k]
		for i, existing := range list {
			if existing == w {
				list = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(list) == 0 {
			delete(db.watchedKeys, k)
		} else {
			db.watchedKeys[k] = list
		}
	}
}

// touchWatchedKey marks every connection watching key dirty — every write
// path that mutates a key must call this, spec.md §4.H.
func (db *Database) touchWatchedKey(key []byte) {
	for _, w := range db.watchedKeys[string(key)] {
		w.MarkDirtyCas()
	}
}

// BlockOnKey registers a wakeup channel for key, used by a blocking pop
// command while it waits for either the key to become ready or its timeout
// to fire — spec.md §5 "Cancellation & timeouts".
func (db *Database) BlockOnKey(key []byte, wake chan struct{}) {
	k := string(key)
	db.blockedKeys[k] = append(db.blockedKeys[k], wake)
}

// UnblockKey removes wake from key's waiter list — called on connection
// close or once the waiter has been woken, so a stale channel is never
// signaled twice.
func (db *Database) UnblockKey(key []byte, wake chan struct{}) {
	k := string(key)
	list := db.blockedKeys[k]
	for i, w := range list {
		if w == wake {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(db.blockedKeys, k)
	} else {
		db.blockedKeys[k] = list
	}
}

// signalKeyReady wakes every connection blocked on key after an insert
// (e.g. LPUSH into a list some other connection is BLPOP-ing). Waking is a
// non-blocking send: a full or closed channel is simply skipped, the
// EventLoop's timeout path remains the fallback.
func (db *Database) signalKeyReady(key []byte) {
	for _, wake := range db.blockedKeys[string(key)] {
		select {
		case wake <- struct{}{}:
		default:
		}
	}
}

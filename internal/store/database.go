package store

import (
	"time"

	"github.com/edirooss/bradis/internal/value"
)

// watcher identifies a client's WATCH on a key together with the key
// version it observed, so EXEC can detect whether the key changed since.
type watcher struct {
	clientID int64
	version  uint64
}

// database is one of the 16 logical keyspaces. Every field is touched
// only from the single store executor goroutine — no field here is ever
// locked, per spec.md section 5's single-threaded execution model.
type database struct {
	keys    map[string]value.Value
	expires map[string]time.Time // absolute deadline; absent key = no TTL
	version map[string]uint64    // bumped on every mutation, read by WATCH/EXEC
	watchers map[string][]watcher
}

func newDatabase() *database {
	return &database{
		keys:     make(map[string]value.Value),
		expires:  make(map[string]time.Time),
		version:  make(map[string]uint64),
		watchers: make(map[string][]watcher),
	}
}

// touch bumps a key's version, used by every mutating command so WATCH
// can later detect the change.
func (db *database) touch(key string) {
	db.version[key]++
}

// setExpireAt schedules key to die at when, or clears its TTL if when is the
// zero Time.
func (db *database) setExpireAt(key string, when time.Time) {
	if when.IsZero() {
		delete(db.expires, key)
		return
	}
	db.expires[key] = when
}

// expiredAt reports whether key has a TTL that has already elapsed as of
// now, WITHOUT deleting it — callers decide whether lazy-expiry applies.
func (db *database) expiredAt(key string, now time.Time) bool {
	when, ok := db.expires[key]
	return ok && !now.Before(when)
}

// get performs lazy expiry then returns the live value, if any.
func (db *database) get(key string, now time.Time, st *Stats) (value.Value, bool) {
	if db.expiredAt(key, now) {
		db.deleteKey(key, now)
		st.expiredKeys++
		st.keyspaceMisses++
		return nil, false
	}
	v, ok := db.keys[key]
	if !ok {
		st.keyspaceMisses++
		return nil, false
	}
	st.keyspaceHits++
	return v, true
}

// peek is like get but does not affect hit/miss stats — used by
// introspection commands (OBJECT, TYPE, DEBUG) that must not count as a
// real keyspace access.
func (db *database) peek(key string, now time.Time) (value.Value, bool) {
	if db.expiredAt(key, now) {
		return nil, false
	}
	v, ok := db.keys[key]
	return v, ok
}

// set installs v as key's value, clearing any previous TTL (callers that
// want to preserve TTL, such as SETRANGE, must re-apply it explicitly).
func (db *database) set(key string, v value.Value) {
	db.keys[key] = v
	delete(db.expires, key)
	db.touch(key)
}

// replace installs v without touching the existing TTL — used by
// in-place mutations like APPEND/HSET/LPUSH that must preserve expiry.
func (db *database) replace(key string, v value.Value) {
	db.keys[key] = v
	db.touch(key)
}

// deleteKey removes key and its TTL/watchers bookkeeping, returning
// whether it existed. now is used only to decide whether an
// already-expired key still "counts" as deleted (it does not, the TTL
// reaper already accounts for it).
func (db *database) deleteKey(key string, now time.Time) bool {
	if db.expiredAt(key, now) {
		delete(db.keys, key)
		delete(db.expires, key)
		db.touch(key)
		return false
	}
	_, existed := db.keys[key]
	delete(db.keys, key)
	delete(db.expires, key)
	if existed {
		db.touch(key)
	}
	return existed
}

func (db *database) size() int { return len(db.keys) }

// addWatcher records that clientID is watching key at its current
// version.
func (db *database) addWatcher(key string, clientID int64) {
	db.watchers[key] = append(db.watchers[key], watcher{clientID: clientID, version: db.version[key]})
}

// clearWatcher removes every watch clientID holds on key.
func (db *database) clearWatcher(key string, clientID int64) {
	ws := db.watchers[key]
	out := ws[:0]
	for _, w := range ws {
		if w.clientID != clientID {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		delete(db.watchers, key)
	} else {
		db.watchers[key] = out
	}
}

// watchStillValid reports whether clientID's watch on key (taken at the
// recorded version) is still valid, i.e. the key hasn't mutated since.
func (db *database) watchStillValid(key string, clientID int64) bool {
	for _, w := range db.watchers[key] {
		if w.clientID == clientID {
			return w.version == db.version[key]
		}
	}
	return true // not watching this key at all: vacuously valid
}

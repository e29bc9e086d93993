package store

import (
	"time"

	"github.com/edirooss/bradis/internal/value"
)

// Get returns the live value at key in dbIndex, applying lazy expiry and
// counting the keyspace hit/miss stat. Must run inside a Job.
func (s *Store) Get(dbIndex int, key string) (value.Value, bool) {
	return s.dbs[dbIndex].get(key, time.Now(), &s.stats)
}

// Peek is like Get but does not affect keyspace hit/miss counters — for
// introspection commands (TYPE, OBJECT, DEBUG).
func (s *Store) Peek(dbIndex int, key string) (value.Value, bool) {
	return s.dbs[dbIndex].peek(key, time.Now())
}

// Put installs v as key's value, clearing any TTL (the semantics of a
// fresh SET/HSET-on-new-key/... creation), bumps WATCH version, and
// counts one mutation.
func (s *Store) Put(dbIndex int, key string, v value.Value) {
	s.dbs[dbIndex].set(key, v)
	s.stats.markDirty(1)
}

// PutKeepTTL is Put but preserves any existing TTL, used by SET ...
// KEEPTTL and by in-place container mutations.
func (s *Store) PutKeepTTL(dbIndex int, key string, v value.Value) {
	s.dbs[dbIndex].replace(key, v)
	s.stats.markDirty(1)
}

// DeleteIfEmpty removes key if v reports itself empty, per spec.md
// section 3's "emptied container is deleted" invariant. Returns whether
// it deleted.
func (s *Store) DeleteIfEmpty(dbIndex int, key string, v value.Value) bool {
	if !v.Empty() {
		return false
	}
	db := s.dbs[dbIndex]
	db.deleteKey(key, time.Now())
	s.ttl.push(dbIndex, key, time.Time{})
	return true
}

// Thresholds returns the current encoding-promotion thresholds, read
// from the live config snapshot. Must run inside a Job, since Config is
// owned by the executor per spec.md section 5.
func (s *Store) Thresholds() value.Thresholds {
	return s.thresholds
}

// SetThresholds installs new promotion thresholds, called by CONFIG SET.
func (s *Store) SetThresholds(t value.Thresholds) {
	s.thresholds = t
}

// ProtoMaxBulkLen returns the current proto-max-bulk-len, consulted by
// SETRANGE/APPEND/BITFIELD growth checks.
func (s *Store) ProtoMaxBulkLen() int64 {
	return s.protoMaxBulkLen
}

func (s *Store) SetProtoMaxBulkLen(n int64) {
	s.protoMaxBulkLen = n
}

package store

import (
	"time"

	"github.com/edirooss/bradis/internal/glob"
)

// Exists reports how many of keys are present (and unexpired) in dbIndex
// — EXISTS counts duplicates in its argument list toward the total.
func (s *Store) Exists(dbIndex int, keys []string) int {
	db := s.dbs[dbIndex]
	now := time.Now()
	n := 0
	for _, k := range keys {
		if _, ok := db.get(k, now, &s.stats); ok {
			n++
		}
	}
	return n
}

// Del deletes keys from dbIndex, returning the count actually removed,
// and cancels any pending TTL for each.
func (s *Store) Del(dbIndex int, keys []string) int {
	db := s.dbs[dbIndex]
	now := time.Now()
	n := 0
	for _, k := range keys {
		if db.deleteKey(k, now) {
			n++
			s.ttl.push(dbIndex, k, time.Time{})
		}
	}
	if n > 0 {
		s.stats.markDirty(int64(n))
	}
	return n
}

// Keys returns every live key in dbIndex matching pattern.
func (s *Store) Keys(dbIndex int, pattern string) []string {
	db := s.dbs[dbIndex]
	now := time.Now()
	var out []string
	for k := range db.keys {
		if db.expiredAt(k, now) {
			continue
		}
		if glob.Match(pattern, k) {
			out = append(out, k)
		}
	}
	return out
}

// Touch updates the LRU-adjacent notion of "last accessed" the spec
// tracks only via hit/miss stats, returning how many keys existed.
func (s *Store) Touch(dbIndex int, keys []string) int {
	return s.Exists(dbIndex, keys)
}

// RandomKey returns a uniformly-ish chosen live key in dbIndex, or false
// if the database is empty. Iteration order over a Go map is already
// randomized per-process, so the first live key found serves this
// purpose without extra bookkeeping.
func (s *Store) RandomKey(dbIndex int) (string, bool) {
	db := s.dbs[dbIndex]
	now := time.Now()
	for k := range db.keys {
		if !db.expiredAt(k, now) {
			return k, true
		}
	}
	return "", false
}

// Rename moves src's value (and TTL) onto dst, deleting src. Reports
// whether src existed.
func (s *Store) Rename(dbIndex int, src, dst string) bool {
	db := s.dbs[dbIndex]
	now := time.Now()
	v, ok := db.get(src, now, &s.stats)
	if !ok {
		return false
	}
	when, hasTTL := db.expires[src]
	db.deleteKey(src, now)
	s.ttl.push(dbIndex, src, time.Time{})
	db.set(dst, v)
	if hasTTL {
		db.setExpireAt(dst, when)
		s.NoteExpireAt(dbIndex, dst, when)
	}
	s.stats.markDirty(1)
	return true
}

// RenameNX is Rename but only when dst doesn't already exist.
func (s *Store) RenameNX(dbIndex int, src, dst string) (bool, bool) {
	db := s.dbs[dbIndex]
	now := time.Now()
	if _, ok := db.peek(dst, now); ok {
		return false, true
	}
	return s.Rename(dbIndex, src, dst), true
}

// Copy duplicates src's value onto dst in destDB (which may equal
// dbIndex), optionally replacing an existing dst. src's TTL, if any, is
// carried across to dst, matching real COPY semantics.
func (s *Store) Copy(dbIndex int, src string, destDB int, dst string, replace bool) bool {
	srcDB := s.dbs[dbIndex]
	now := time.Now()
	v, ok := srcDB.get(src, now, &s.stats)
	if !ok {
		return false
	}
	dstDB := s.dbs[destDB]
	if !replace {
		if _, exists := dstDB.peek(dst, now); exists {
			return false
		}
	}
	dstDB.set(dst, v.Clone())
	if when, hasTTL := srcDB.expires[src]; hasTTL {
		dstDB.setExpireAt(dst, when)
		s.NoteExpireAt(destDB, dst, when)
	}
	return true
}

// Move relocates key from dbIndex to destDB, failing if key doesn't
// exist in the source or already exists in the destination.
func (s *Store) Move(dbIndex int, key string, destDB int) bool {
	if dbIndex == destDB {
		return false
	}
	srcDB := s.dbs[dbIndex]
	dstDB := s.dbs[destDB]
	now := time.Now()
	v, ok := srcDB.get(key, now, &s.stats)
	if !ok {
		return false
	}
	if _, exists := dstDB.peek(key, now); exists {
		return false
	}
	when, hasTTL := srcDB.expires[key]
	srcDB.deleteKey(key, now)
	s.ttl.push(dbIndex, key, time.Time{})
	dstDB.set(key, v)
	if hasTTL {
		dstDB.setExpireAt(key, when)
		s.NoteExpireAt(destDB, key, when)
	}
	s.stats.markDirty(1)
	return true
}

// SwapDB exchanges the entire contents of two logical databases,
// including every pending TTL, in O(1).
func (s *Store) SwapDB(a, b int) {
	if a == b {
		return
	}
	s.dbs[a], s.dbs[b] = s.dbs[b], s.dbs[a]
	s.stats.markDirty(1)
}

// DBSize returns the number of live (lazily-uncounted-expired) keys in
// dbIndex.
func (s *Store) DBSize(dbIndex int) int { return s.dbs[dbIndex].size() }

// FlushDB removes every key from dbIndex.
func (s *Store) FlushDB(dbIndex int) {
	db := s.dbs[dbIndex]
	for k := range db.keys {
		s.ttl.push(dbIndex, k, time.Time{})
	}
	s.dbs[dbIndex] = newDatabase()
	s.stats.markDirty(1)
}

// FlushAll clears every logical database.
func (s *Store) FlushAll() {
	for i := range s.dbs {
		s.FlushDB(i)
	}
}

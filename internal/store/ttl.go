package store

import "time"

// ExpireMode selects the NX/XX/GT/LT modifier EXPIRE/PEXPIRE/EXPIREAT/
// PEXPIREAT accept (spec.md section 4).
type ExpireMode int

const (
	ExpireAlways ExpireMode = iota
	ExpireNX
	ExpireXX
	ExpireGT
	ExpireLT
)

// SetExpireAt applies when as key's new absolute deadline in dbIndex,
// honoring mode, and reports whether the change was applied. Must run
// inside a Job.
func (s *Store) SetExpireAt(dbIndex int, key string, when time.Time, mode ExpireMode) bool {
	db := s.dbs[dbIndex]
	now := time.Now()
	if _, ok := db.get(key, now, &s.stats); !ok {
		return false
	}
	current, hasTTL := db.expires[key]

	switch mode {
	case ExpireNX:
		if hasTTL {
			return false
		}
	case ExpireXX:
		if !hasTTL {
			return false
		}
	case ExpireGT:
		if !hasTTL || !when.After(current) {
			return false
		}
	case ExpireLT:
		if hasTTL && !when.Before(current) {
			return false
		}
	}

	if !when.After(now) {
		// A non-positive remaining TTL deletes synchronously rather than
		// scheduling a future expiry (spec.md section 4.C).
		db.deleteKey(key, now)
		s.ttl.push(dbIndex, key, time.Time{})
		s.stats.markDirty(1)
		return true
	}

	db.setExpireAt(key, when)
	db.touch(key)
	s.NoteExpireAt(dbIndex, key, when)
	s.stats.markDirty(1)
	return true
}

// Persist removes key's TTL, reporting whether one was present.
func (s *Store) Persist(dbIndex int, key string) bool {
	db := s.dbs[dbIndex]
	now := time.Now()
	if _, ok := db.get(key, now, &s.stats); !ok {
		return false
	}
	if _, hasTTL := db.expires[key]; !hasTTL {
		return false
	}
	db.setExpireAt(key, time.Time{})
	s.NoteExpireAt(dbIndex, key, time.Time{})
	db.touch(key)
	s.stats.markDirty(1)
	return true
}

// TTLOf returns key's remaining lifetime: (0, -2) if key is absent,
// (0, -1) if it exists without a TTL, otherwise (remaining duration, 0);
// the caller rounds the duration to its precision (TTL vs PTTL).
func (s *Store) TTLOf(dbIndex int, key string) (time.Duration, int) {
	db := s.dbs[dbIndex]
	now := time.Now()
	if _, ok := db.get(key, now, &s.stats); !ok {
		return 0, -2
	}
	when, hasTTL := db.expires[key]
	if !hasTTL {
		return 0, -1
	}
	return when.Sub(now), 0
}

// ExpireTimeOf returns key's absolute expiry instant with code 0, or the
// zero Time with code -2/-1 mirroring TTLOf's no-key/no-ttl cases.
func (s *Store) ExpireTimeOf(dbIndex int, key string) (time.Time, int) {
	db := s.dbs[dbIndex]
	now := time.Now()
	if _, ok := db.get(key, now, &s.stats); !ok {
		return time.Time{}, -2
	}
	when, hasTTL := db.expires[key]
	if !hasTTL {
		return time.Time{}, -1
	}
	return when, 0
}

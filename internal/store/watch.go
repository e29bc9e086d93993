package store

// Watch records that clientID is watching key in dbIndex at the key's
// current version. It returns nothing: a fresh WATCH always observes the
// current version, so it can never start dirty.
func (s *Store) Watch(dbIndex int, key string, clientID int64) {
	s.dbs[dbIndex].addWatcher(key, clientID)
}

// Unwatch clears every watch clientID holds on key within dbIndex.
func (s *Store) Unwatch(dbIndex int, key string, clientID int64) {
	s.dbs[dbIndex].clearWatcher(key, clientID)
}

// CheckWatch reports whether clientID's watch on key in dbIndex is still
// valid (the key hasn't mutated since the WATCH was taken).
func (s *Store) CheckWatch(dbIndex int, key string, clientID int64) bool {
	return s.dbs[dbIndex].watchStillValid(key, clientID)
}

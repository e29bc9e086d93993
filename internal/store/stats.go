package store

// Stats holds the INFO-visible counters spec.md sections 8 and M call
// out. All fields are mutated only from the executor goroutine.
type Stats struct {
	totalConnectionsReceived int64
	totalCommandsProcessed   int64
	expiredKeys              int64
	keyspaceHits             int64
	keyspaceMisses           int64
	rdbChangesSinceLastSave  int64
	pubsubChannels           int64
	pubsubPatterns           int64
}

// Snapshot is an immutable copy safe to hand to a reader goroutine (e.g.
// INFO's formatter) outside the executor.
type Snapshot struct {
	TotalConnectionsReceived int64
	TotalCommandsProcessed   int64
	ExpiredKeys              int64
	KeyspaceHits             int64
	KeyspaceMisses           int64
	RDBChangesSinceLastSave  int64
	PubsubChannels           int64
	PubsubPatterns           int64
}

func (s *Stats) snapshot() Snapshot {
	return Snapshot{
		TotalConnectionsReceived: s.totalConnectionsReceived,
		TotalCommandsProcessed:   s.totalCommandsProcessed,
		ExpiredKeys:              s.expiredKeys,
		KeyspaceHits:             s.keyspaceHits,
		KeyspaceMisses:           s.keyspaceMisses,
		RDBChangesSinceLastSave:  s.rdbChangesSinceLastSave,
		PubsubChannels:           s.pubsubChannels,
		PubsubPatterns:           s.pubsubPatterns,
	}
}

// markDirty bumps rdb_changes_since_last_save by n, the way real Redis
// counts every keyspace mutation toward the next (never-taken, since
// persistence is out of scope) save.
func (s *Stats) markDirty(n int64) {
	s.rdbChangesSinceLastSave += n
}

// reset zeroes the counters CONFIG RESETSTAT governs, leaving
// totalConnectionsReceived-style lifetime counters untouched the way
// real Redis keeps a handful of stats outside resetstat's scope.
func (s *Stats) reset() {
	s.totalCommandsProcessed = 0
	s.expiredKeys = 0
	s.keyspaceHits = 0
	s.keyspaceMisses = 0
}

// ResetStats implements CONFIG RESETSTAT. Must run inside a Job.
func (s *Store) ResetStats() { s.stats.reset() }

// IncrCommandsProcessed bumps total_commands_processed by one, called by
// the connection dispatch loop after every completed command.
func (s *Store) IncrCommandsProcessed() { s.stats.totalCommandsProcessed++ }

// IncrConnectionsReceived bumps total_connections_received by one,
// called once per accepted connection.
func (s *Store) IncrConnectionsReceived() { s.stats.totalConnectionsReceived++ }

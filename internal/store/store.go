// Package store implements the single-threaded keyspace executor:
// every command that touches a database runs as a closure submitted
// through one channel and executed by one goroutine, so no key or
// database ever needs its own lock (spec.md section 5).
//
// Grounded on processmgr/process_manager2.go's mainloop — a single
// goroutine draining a work-signal channel and a container/heap
// scheduler — generalized from process supervision to keyspace
// mutation plus TTL expiry.
package store

import (
	"context"
	"time"

	"github.com/edirooss/bradis/internal/value"
	"go.uber.org/zap"
)

const NumDatabases = 16

// Job is a unit of work executed exclusively on the store's single
// goroutine. It receives the Store itself (so it can reach any
// database) and returns whatever the caller's continuation needs.
type Job func(s *Store) any

type job struct {
	fn   Job
	done chan any
}

// Store owns every logical database and runs the sole goroutine allowed
// to mutate them.
type Store struct {
	log *zap.Logger

	dbs   [NumDatabases]*database
	stats Stats
	ttl   *ttlScheduler

	thresholds      value.Thresholds
	protoMaxBulkLen int64

	jobs chan job
	wake chan struct{}
}

func New(log *zap.Logger, thresholds value.Thresholds, protoMaxBulkLen int64) *Store {
	s := &Store{
		log:             log.Named("store"),
		ttl:             newTTLScheduler(),
		thresholds:      thresholds,
		protoMaxBulkLen: protoMaxBulkLen,
		jobs:            make(chan job, 256),
		wake:            make(chan struct{}, 1),
	}
	for i := range s.dbs {
		s.dbs[i] = newDatabase()
	}
	return s
}

// Run drives the executor loop until ctx is cancelled. Callers typically
// supervise it inside an errgroup alongside the server's accept loop.
func (s *Store) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		s.armNextExpiry(timer)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case j := <-s.jobs:
			j.done <- j.fn(s)
		case <-timer.C:
			s.reapExpired()
		case <-s.wake:
			// a TTL was pushed/removed while we were blocked on an
			// earlier timer; loop around to re-arm it.
		}
	}
}

// Submit runs fn on the executor goroutine and returns its result,
// blocking the caller until it completes or ctx is cancelled.
func (s *Store) Submit(ctx context.Context, fn Job) (any, error) {
	j := job{fn: fn, done: make(chan any, 1)}
	select {
	case s.jobs <- j:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case result := <-j.done:
		return result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) armNextExpiry(timer *time.Timer) {
	_, _, when, ok := s.ttl.next()
	if !ok {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	d := time.Until(when)
	if d < 0 {
		d = 0
	}
	timer.Reset(d)
}

// reapExpired actively deletes every key whose deadline has passed,
// mirroring real Redis's active-expire cycle rather than relying purely
// on lazy expiry at access time.
func (s *Store) reapExpired() {
	now := time.Now()
	for {
		dbIndex, key, when, ok := s.ttl.next()
		if !ok || when.After(now) {
			return
		}
		s.ttl.pop()
		db := s.dbs[dbIndex]
		if db.expiredAt(key, now) {
			db.deleteKey(key, now)
			s.stats.expiredKeys++
		}
	}
}

// DB returns the logical database at index i (0-15).
func (s *Store) DB(i int) *database { return s.dbs[i] }

// StatsSnapshot returns an immutable snapshot of the server's counters. Safe to
// call only from within a Job (i.e. from inside Submit), since *Stats is
// only ever mutated on the executor goroutine.
func (s *Store) StatsSnapshot() Snapshot { return s.stats.snapshot() }

// NoteExpireAt schedules key in db dbIndex for active expiry at when (or
// cancels it, for a zero when) and must be called from within a Job.
func (s *Store) NoteExpireAt(dbIndex int, key string, when time.Time) {
	s.ttl.push(dbIndex, key, when)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

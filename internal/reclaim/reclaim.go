// Package reclaim implements asynchronous value disposal for UNLINK and
// FLUSHALL/FLUSHDB ASYNC: the store executor hands off freed values to a
// bounded channel instead of paying their deallocation cost inline, the
// same shape real Redis's lazyfree threads use.
//
// Grounded on processmgr/log_buffer.go's LogManager — a bounded channel
// drained by one background consumer goroutine — adapted from buffering
// log lines to buffering dropped keyspace values.
package reclaim

import (
	"context"

	"github.com/edirooss/bradis/internal/value"
	"go.uber.org/zap"
)

// Reclaimer drains a channel of discarded values on its own goroutine so
// the store executor never blocks on garbage collection cost for large
// containers.
type Reclaimer struct {
	log  *zap.Logger
	drop chan value.Value
}

func New(log *zap.Logger, bufferSize int) *Reclaimer {
	return &Reclaimer{
		log:  log.Named("reclaim"),
		drop: make(chan value.Value, bufferSize),
	}
}

// Run drains the drop channel until ctx is cancelled. Intended to be
// supervised inside the same errgroup as the store executor and accept
// loop.
func (r *Reclaimer) Run(ctx context.Context) error {
	count := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case v := <-r.drop:
			_ = v // the Go GC reclaims it once unreferenced; this goroutine
			// exists to move that moment off the executor's hot path.
			count++
			if count%10000 == 0 {
				r.log.Debug("reclaimed values", zap.Int("count", count))
			}
		}
	}
}

// Drop hands v off for asynchronous disposal. Called from the store
// executor for UNLINK/FLUSHALL ASYNC; falls back to a synchronous no-op
// (the value is simply dropped on the floor, GC-eligible immediately) if
// the buffer is full, rather than blocking the single-threaded executor.
func (r *Reclaimer) Drop(v value.Value) {
	select {
	case r.drop <- v:
	default:
	}
}

package command

import (
	"context"
	"testing"
	"time"

	"github.com/edirooss/bradis/internal/config"
	"github.com/edirooss/bradis/internal/pubsub"
	"github.com/edirooss/bradis/internal/reclaim"
	"github.com/edirooss/bradis/internal/resp"
	"github.com/edirooss/bradis/internal/store"
	"github.com/edirooss/bradis/internal/value"
	"go.uber.org/zap"
)

// newTestDeps starts a real store executor goroutine in the background,
// since run() (and the WATCH/EXEC handlers directly) submit jobs onto it.
func newTestDeps(t *testing.T) *Deps {
	t.Helper()
	st := store.New(zap.NewNop(), value.Thresholds{
		HashMaxListpackEntries: 128, HashMaxListpackValue: 64,
		SetMaxIntsetEntries: 512, SetMaxListpackEntries: 128, SetMaxListpackValue: 64,
		ZSetMaxListpackEntries: 128, ZSetMaxListpackValue: 64,
		ListMaxListpackSize: 128,
	}, 512*1024*1024)

	ctx, cancel := context.WithCancel(context.Background())
	go st.Run(ctx)
	t.Cleanup(cancel)

	return NewDeps(st, config.Default(), pubsub.NewHub(), reclaim.New(zap.NewNop(), 16), zap.NewNop())
}

func dispatch(d *Deps, c *ClientState, name string, args ...string) *resp.Reply {
	spec := Lookup(name)
	argv := make([][]byte, 0, len(args)+1)
	argv = append(argv, []byte(name))
	for _, a := range args {
		argv = append(argv, []byte(a))
	}
	return spec.Handler(d, c, argv)
}

func TestMultiExecRunsQueuedCommandsAtomically(t *testing.T) {
	d := newTestDeps(t)
	c := NewClientState(1, "test")

	if r := dispatch(d, c, "MULTI"); r.Str != "OK" {
		t.Fatalf("MULTI reply = %v, want OK", r)
	}
	if !c.InMulti {
		t.Fatal("InMulti should be true after MULTI")
	}

	// Queueing happens at the connection coordinator layer in production
	// (dispatch() in internal/server), not inside the handler itself; here
	// we queue directly the way the coordinator would.
	c.MultiQueue = append(c.MultiQueue,
		QueuedCommand{Args: [][]byte{[]byte("SET"), []byte("k"), []byte("1")}},
		QueuedCommand{Args: [][]byte{[]byte("INCR"), []byte("k")}},
	)

	r := dispatch(d, c, "EXEC")
	if r.Kind != resp.KindArray || len(r.Array) != 2 {
		t.Fatalf("EXEC reply = %+v, want a 2-element array", r)
	}
	if r.Array[1].Int != 2 {
		t.Fatalf("second queued reply = %+v, want :2", r.Array[1])
	}
	if c.InMulti {
		t.Fatal("InMulti should be false after EXEC")
	}

	// The mutation really landed in the store.
	got := dispatch(d, c, "GET", "k")
	if string(got.Bulk) != "2" {
		t.Fatalf("GET k = %q, want 2", got.Bulk)
	}
}

func TestExecAbortsOnQueueError(t *testing.T) {
	d := newTestDeps(t)
	c := NewClientState(1, "test")
	dispatch(d, c, "MULTI")
	c.MultiError = true
	c.MultiQueue = append(c.MultiQueue, QueuedCommand{Args: [][]byte{[]byte("SET"), []byte("k"), []byte("1")}})

	r := dispatch(d, c, "EXEC")
	if r.Kind != resp.KindError {
		t.Fatalf("EXEC reply = %+v, want an error frame", r)
	}
}

func TestExecWithoutMultiErrors(t *testing.T) {
	d := newTestDeps(t)
	c := NewClientState(1, "test")
	r := dispatch(d, c, "EXEC")
	if r.Kind != resp.KindError {
		t.Fatalf("EXEC without MULTI = %+v, want an error", r)
	}
}

func TestWatchAbortsExecOnConcurrentModification(t *testing.T) {
	d := newTestDeps(t)
	dispatch(d, NewClientState(99, "writer"), "SET", "k", "original")

	c := NewClientState(1, "watcher")
	dispatch(d, c, "WATCH", "k")

	// A second, independent client mutates the watched key before EXEC.
	other := NewClientState(2, "other")
	dispatch(d, other, "SET", "k", "changed")

	dispatch(d, c, "MULTI")
	c.MultiQueue = append(c.MultiQueue, QueuedCommand{Args: [][]byte{[]byte("SET"), []byte("k"), []byte("from-txn")}})

	r := dispatch(d, c, "EXEC")
	if r.Kind != resp.KindNullArray {
		t.Fatalf("EXEC reply = %+v, want a null array (aborted by WATCH)", r)
	}

	got := dispatch(d, c, "GET", "k")
	if string(got.Bulk) != "changed" {
		t.Fatalf("GET k = %q, want changed (the queued SET must not have run)", got.Bulk)
	}
}

func TestWatchSurvivesUnrelatedKeyChange(t *testing.T) {
	d := newTestDeps(t)
	dispatch(d, NewClientState(99, "writer"), "SET", "k", "v")
	dispatch(d, NewClientState(99, "writer"), "SET", "other", "v")

	c := NewClientState(1, "watcher")
	dispatch(d, c, "WATCH", "k")
	dispatch(d, NewClientState(2, "other"), "SET", "other", "changed")

	dispatch(d, c, "MULTI")
	c.MultiQueue = append(c.MultiQueue, QueuedCommand{Args: [][]byte{[]byte("SET"), []byte("k"), []byte("from-txn")}})
	r := dispatch(d, c, "EXEC")
	if r.Kind != resp.KindArray {
		t.Fatalf("EXEC reply = %+v, want the transaction to run", r)
	}

	got := dispatch(d, c, "GET", "k")
	if string(got.Bulk) != "from-txn" {
		t.Fatalf("GET k = %q, want from-txn", got.Bulk)
	}
}

func TestDiscardClearsQueueAndWatches(t *testing.T) {
	d := newTestDeps(t)
	c := NewClientState(1, "test")
	dispatch(d, c, "WATCH", "k")
	dispatch(d, c, "MULTI")
	c.MultiQueue = append(c.MultiQueue, QueuedCommand{Args: [][]byte{[]byte("SET"), []byte("k"), []byte("v")}})

	r := dispatch(d, c, "DISCARD")
	if r.Str != "OK" {
		t.Fatalf("DISCARD reply = %+v, want OK", r)
	}
	if c.InMulti || len(c.MultiQueue) != 0 || len(c.WatchKeys) != 0 {
		t.Fatalf("state not cleared after DISCARD: InMulti=%v MultiQueue=%v WatchKeys=%v", c.InMulti, c.MultiQueue, c.WatchKeys)
	}
}

func TestMultiNested(t *testing.T) {
	d := newTestDeps(t)
	c := NewClientState(1, "test")
	dispatch(d, c, "MULTI")
	r := dispatch(d, c, "MULTI")
	if r.Kind != resp.KindError {
		t.Fatalf("nested MULTI = %+v, want an error", r)
	}
}

func TestSubmitFailsOnCancelledContextWithoutExecutor(t *testing.T) {
	st := store.New(zap.NewNop(), value.Thresholds{}, 0)
	// No Run() goroutine started: Submit must respect ctx cancellation
	// rather than hang forever waiting for a dead executor.
	d := NewDeps(st, config.Default(), pubsub.NewHub(), reclaim.New(zap.NewNop(), 16), zap.NewNop())
	c := NewClientState(1, "test")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := st.Submit(ctx, func(s *store.Store) any { return nil })
	if err == nil {
		t.Fatal("expected Submit to fail once its context is cancelled with no executor running")
	}
	_ = d
}

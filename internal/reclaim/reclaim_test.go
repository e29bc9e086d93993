package reclaim

import (
	"context"
	"testing"
	"time"

	"github.com/edirooss/bradis/internal/value"
	"go.uber.org/zap"
)

func TestDropNeverBlocksWhenBufferIsFull(t *testing.T) {
	r := New(zap.NewNop(), 1)
	r.Drop(value.NewString([]byte("a")))

	done := make(chan struct{})
	go func() {
		// The buffer is already full and nothing is draining it yet; Drop
		// must still return immediately rather than block the caller.
		r.Drop(value.NewString([]byte("b")))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Drop() blocked on a full buffer")
	}
}

func TestRunDrainsUntilCancelled(t *testing.T) {
	r := New(zap.NewNop(), 4)
	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- r.Run(ctx) }()

	r.Drop(value.NewString([]byte("a")))
	r.Drop(value.NewString([]byte("b")))

	cancel()
	select {
	case err := <-runErr:
		if err != context.Canceled {
			t.Fatalf("Run() returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() never returned after cancellation")
	}
}

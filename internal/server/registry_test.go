package server

import (
	"net"
	"testing"

	"github.com/edirooss/bradis/internal/command"
)

func TestRegistryAddGetRemove(t *testing.T) {
	r := newRegistry()
	client, srv := net.Pipe()
	defer client.Close()
	defer srv.Close()

	cs := command.NewClientState(1, "1.2.3.4:5")
	r.add(&connHandle{state: cs, conn: srv})

	got, ok := r.Get(1)
	if !ok || got != cs {
		t.Fatalf("Get(1) = %v, %v, want the registered state, true", got, ok)
	}
	if len(r.Snapshot()) != 1 {
		t.Fatalf("Snapshot() = %v, want 1 entry", r.Snapshot())
	}

	r.remove(1)
	if _, ok := r.Get(1); ok {
		t.Fatal("Get(1) should report false after remove")
	}
	if len(r.Snapshot()) != 0 {
		t.Fatal("Snapshot() should be empty after remove")
	}
}

func TestRegistryKillClosesConnection(t *testing.T) {
	r := newRegistry()
	client, srv := net.Pipe()
	defer client.Close()

	cs := command.NewClientState(1, "1.2.3.4:5")
	r.add(&connHandle{state: cs, conn: srv})

	if !r.Kill(1) {
		t.Fatal("Kill(1) = false, want true")
	}
	// The peer should observe the pipe closing.
	buf := make([]byte, 1)
	if _, err := client.Read(buf); err == nil {
		t.Fatal("expected a read error on the peer after Kill()")
	}
}

func TestRegistryKillUnknownClient(t *testing.T) {
	r := newRegistry()
	if r.Kill(999) {
		t.Fatal("Kill() of an unregistered client should report false")
	}
}

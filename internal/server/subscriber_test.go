package server

import (
	"testing"
	"time"

	"github.com/edirooss/bradis/internal/command"
	"github.com/edirooss/bradis/internal/pubsub"
	"github.com/edirooss/bradis/internal/resp"
)

func TestConnSubscriberDeliverRESP2Framing(t *testing.T) {
	cs := command.NewClientState(1, "addr")
	cs.RESP = 2
	sub := &connSubscriber{state: cs, out: make(chan *resp.Reply, 1)}

	sub.Deliver(pubsub.Message{Channel: "news", Payload: []byte("hi")})
	reply := <-sub.out
	if reply.Kind != resp.KindArray {
		t.Fatalf("Kind = %v, want KindArray under RESP2", reply.Kind)
	}
	if len(reply.Array) != 3 || reply.Array[0].Str != "message" {
		t.Fatalf("Array = %+v, want [message, news, hi]", reply.Array)
	}
}

func TestConnSubscriberDeliverRESP3UsesPush(t *testing.T) {
	cs := command.NewClientState(1, "addr")
	cs.RESP = 3
	sub := &connSubscriber{state: cs, out: make(chan *resp.Reply, 1)}

	sub.Deliver(pubsub.Message{Channel: "news", Payload: []byte("hi")})
	reply := <-sub.out
	if reply.Kind != resp.KindPush {
		t.Fatalf("Kind = %v, want KindPush under RESP3", reply.Kind)
	}
}

func TestConnSubscriberDeliverPatternMessage(t *testing.T) {
	cs := command.NewClientState(1, "addr")
	sub := &connSubscriber{state: cs, out: make(chan *resp.Reply, 1)}

	sub.Deliver(pubsub.Message{Channel: "news.sports", Pattern: "news.*", Payload: []byte("goal")})
	reply := <-sub.out
	if len(reply.Array) != 4 || reply.Array[0].Str != "pmessage" {
		t.Fatalf("Array = %+v, want [pmessage, news.*, news.sports, goal]", reply.Array)
	}
}

func TestConnSubscriberDeliverDropsWhenFull(t *testing.T) {
	cs := command.NewClientState(1, "addr")
	sub := &connSubscriber{state: cs, out: make(chan *resp.Reply, 1)}

	sub.Deliver(pubsub.Message{Channel: "a", Payload: []byte("1")})
	// The queue is now full; a second Deliver must not block the caller.
	done := make(chan struct{})
	go func() {
		sub.Deliver(pubsub.Message{Channel: "a", Payload: []byte("2")})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Deliver() blocked on a full queue")
	}
}

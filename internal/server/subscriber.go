package server

import (
	"github.com/edirooss/bradis/internal/command"
	"github.com/edirooss/bradis/internal/pubsub"
	"github.com/edirooss/bradis/internal/resp"
)

// connSubscriber adapts one connection's outbound reply queue to
// pubsub.Subscriber, so Hub.Publish can hand a message straight to a
// writer goroutine without the pubsub package knowing anything about
// net.Conn or RESP framing.
type connSubscriber struct {
	state *command.ClientState
	out   chan *resp.Reply
}

// Deliver builds the message/pmessage frame for the negotiated RESP
// version and enqueues it for the connection's writer. A publisher must
// never block on a slow subscriber, so a full queue drops the message —
// the same trade-off the teacher's bounded log buffer
// (processmgr/log_buffer.go, also grounding internal/reclaim) makes for
// a slow consumer.
func (s *connSubscriber) Deliver(m pubsub.Message) {
	var reply *resp.Reply
	if m.Pattern == "" {
		reply = resp.Arr(resp.BulkString("message"), resp.BulkString(m.Channel), resp.Bulk(m.Payload))
	} else {
		reply = resp.Arr(resp.BulkString("pmessage"), resp.BulkString(m.Pattern), resp.BulkString(m.Channel), resp.Bulk(m.Payload))
	}
	if s.state.RESP >= 3 {
		reply.Kind = resp.KindPush
	}
	select {
	case s.out <- reply:
	default:
	}
}

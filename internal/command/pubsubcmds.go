package command

import (
	"github.com/edirooss/bradis/internal/resp"
)

func registerPubSubCommands() {
	register(&Spec{Name: "SUBSCRIBE", Arity: -2, LocalOnly: true, Handler: cmdSubscribe})
	register(&Spec{Name: "UNSUBSCRIBE", Arity: -1, LocalOnly: true, Handler: cmdUnsubscribe})
	register(&Spec{Name: "PSUBSCRIBE", Arity: -2, LocalOnly: true, Handler: cmdPSubscribe})
	register(&Spec{Name: "PUNSUBSCRIBE", Arity: -1, LocalOnly: true, Handler: cmdPUnsubscribe})
	register(&Spec{Name: "PUBLISH", Arity: 3, Handler: cmdPublish})
	register(&Spec{Name: "PUBSUB", Arity: -2, Handler: cmdPubSub})
}

// cmdSubscribe and friends only update bookkeeping and craft the
// confirmation replies the protocol expects, one independent frame per
// channel/pattern (never batched into a single array) — the server layer
// assigns ClientState.Sub to its connection's delivery adapter before any
// SUBSCRIBE can run, and Hub.Publish calls into it via Subscriber.Deliver.

func cmdSubscribe(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	var replies []*resp.Reply
	for _, ch := range args[1:] {
		channel := string(ch)
		if _, already := c.SubChannels[channel]; !already {
			d.Pubsub.Subscribe(channel, c.ID, c.Sub)
			c.SubChannels[channel] = struct{}{}
		}
		replies = append(replies, subAck("subscribe", channel, c.SubCount()))
	}
	return resp.MultiReply(replies)
}

func cmdUnsubscribe(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	channels := args[1:]
	if len(channels) == 0 {
		for ch := range c.SubChannels {
			channels = append(channels, []byte(ch))
		}
	}
	if len(channels) == 0 {
		return subAck("unsubscribe", "", c.SubCount())
	}
	var replies []*resp.Reply
	for _, ch := range channels {
		channel := string(ch)
		d.Pubsub.Unsubscribe(channel, c.ID)
		delete(c.SubChannels, channel)
		replies = append(replies, subAck("unsubscribe", channel, c.SubCount()))
	}
	return resp.MultiReply(replies)
}

func cmdPSubscribe(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	var replies []*resp.Reply
	for _, p := range args[1:] {
		pattern := string(p)
		if _, already := c.SubPatterns[pattern]; !already {
			d.Pubsub.PSubscribe(pattern, c.ID, c.Sub)
			c.SubPatterns[pattern] = struct{}{}
		}
		replies = append(replies, subAck("psubscribe", pattern, c.SubCount()))
	}
	return resp.MultiReply(replies)
}

func cmdPUnsubscribe(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	patterns := args[1:]
	if len(patterns) == 0 {
		for p := range c.SubPatterns {
			patterns = append(patterns, []byte(p))
		}
	}
	if len(patterns) == 0 {
		return subAck("punsubscribe", "", c.SubCount())
	}
	var replies []*resp.Reply
	for _, p := range patterns {
		pattern := string(p)
		d.Pubsub.PUnsubscribe(pattern, c.ID)
		delete(c.SubPatterns, pattern)
		replies = append(replies, subAck("punsubscribe", pattern, c.SubCount()))
	}
	return resp.MultiReply(replies)
}

// subAck builds one SUBSCRIBE/UNSUBSCRIBE-family confirmation frame. An
// empty name (nothing was subscribed/left to unsubscribe) reports as a
// null bulk, matching real Redis's "no channels" reply.
func subAck(kind, name string, count int) *resp.Reply {
	nameReply := resp.NullBulk()
	if name != "" {
		nameReply = resp.BulkString(name)
	}
	return resp.Arr(resp.BulkString(kind), nameReply, resp.Int(int64(count)))
}

func cmdPublish(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	channel := string(args[1])
	n := d.Pubsub.Publish(channel, args[2])
	return resp.Int(int64(n))
}

func cmdPubSub(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	sub := upper(args[1])
	switch sub {
	case "CHANNELS":
		pattern := ""
		if len(args) > 2 {
			pattern = string(args[2])
		}
		return stringArray(d.Pubsub.Channels(pattern))
	case "NUMSUB":
		channels := make([]string, len(args)-2)
		for i, c := range args[2:] {
			channels[i] = string(c)
		}
		counts := d.Pubsub.NumSub(channels)
		out := make([]*resp.Reply, 0, len(channels)*2)
		for i, ch := range channels {
			out = append(out, resp.BulkString(ch), resp.Int(int64(counts[i])))
		}
		return resp.ArrSlice(out)
	case "NUMPAT":
		return resp.Int(int64(d.Pubsub.NumPat()))
	}
	return errUnknownSub(sub, "PUBSUB")
}

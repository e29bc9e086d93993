package command

import (
	"context"

	"github.com/edirooss/bradis/internal/resp"
	"github.com/edirooss/bradis/internal/store"
)

func registerTxnCommands() {
	register(&Spec{Name: "MULTI", Arity: 1, LocalOnly: true, Handler: cmdMulti})
	register(&Spec{Name: "EXEC", Arity: 1, LocalOnly: true, Handler: cmdExec})
	register(&Spec{Name: "DISCARD", Arity: 1, LocalOnly: true, Handler: cmdDiscard})
	register(&Spec{Name: "WATCH", Arity: -2, LocalOnly: true, Handler: cmdWatch})
	register(&Spec{Name: "UNWATCH", Arity: 1, LocalOnly: true, Handler: cmdUnwatch})
	register(&Spec{Name: "RESET", Arity: 1, LocalOnly: true, Handler: cmdReset})
}

func cmdMulti(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	if c.InMulti {
		return resp.Err("ERR MULTI calls can not be nested")
	}
	c.InMulti = true
	c.MultiError = false
	c.MultiQueue = nil
	return resp.OK()
}

func cmdDiscard(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	if !c.InMulti {
		return resp.Err("ERR DISCARD without MULTI")
	}
	clearWatchesInStore(d, c)
	c.ClearWatches()
	c.InMulti = false
	c.MultiError = false
	c.MultiQueue = nil
	return resp.OK()
}

func cmdWatch(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	if c.InMulti {
		return resp.Err("ERR WATCH inside MULTI is not allowed")
	}
	keys := args[1:]
	_, _ = d.Store.Submit(context.Background(), func(s *store.Store) any {
		for _, k := range keys {
			s.Watch(c.DBIndex, string(k), c.ID)
		}
		return nil
	})
	for _, k := range keys {
		c.AddWatch(c.DBIndex, string(k))
	}
	return resp.OK()
}

func cmdUnwatch(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	clearWatchesInStore(d, c)
	c.ClearWatches()
	return resp.OK()
}

func cmdReset(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	clearWatchesInStore(d, c)
	for ch := range c.SubChannels {
		d.Pubsub.Unsubscribe(ch, c.ID)
	}
	for p := range c.SubPatterns {
		d.Pubsub.PUnsubscribe(p, c.ID)
	}
	c.Reset()
	return resp.Simple("RESET")
}

// clearWatchesInStore drops every watch c currently holds, across every
// database it watched in, from the store's bookkeeping.
func clearWatchesInStore(d *Deps, c *ClientState) {
	if len(c.WatchKeys) == 0 {
		return
	}
	_, _ = d.Store.Submit(context.Background(), func(s *store.Store) any {
		for dbIndex, keys := range c.WatchKeys {
			for k := range keys {
				s.Unwatch(dbIndex, k, c.ID)
			}
		}
		return nil
	})
}

// cmdExec runs every queued command in order as a single job on the
// store executor, so no other client's command can interleave between
// two of this transaction's commands — the atomic-MULTI/EXEC guarantee
// spec.md section 1/4.B names. Watch validation, watch teardown, and the
// queued replay all happen inside that one Submit call; c.execStore is
// stashed for the duration so each queued Handler's run() call reuses
// this Store directly instead of resubmitting (which would deadlock the
// executor against itself — see run()'s doc comment).
func cmdExec(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	if !c.InMulti {
		return resp.Err("ERR EXEC without MULTI")
	}
	queued := c.MultiQueue
	hadError := c.MultiError
	c.InMulti = false
	c.MultiError = false
	c.MultiQueue = nil

	if hadError {
		clearWatchesInStore(d, c)
		c.ClearWatches()
		return resp.Err("EXECABORT Transaction discarded because of previous errors.")
	}

	watchKeys := c.WatchKeys
	c.ClearWatches()

	result, submitErr := d.Store.Submit(context.Background(), func(s *store.Store) any {
		for dbIndex, keys := range watchKeys {
			for k := range keys {
				if !s.CheckWatch(dbIndex, k, c.ID) {
					for dbIndex2, keys2 := range watchKeys {
						for k2 := range keys2 {
							s.Unwatch(dbIndex2, k2, c.ID)
						}
					}
					return (*resp.Reply)(nil)
				}
			}
		}
		for dbIndex, keys := range watchKeys {
			for k := range keys {
				s.Unwatch(dbIndex, k, c.ID)
			}
		}

		c.execStore = s
		defer func() { c.execStore = nil }()

		out := make([]*resp.Reply, 0, len(queued))
		for _, qc := range queued {
			name := string(qc.Args[0])
			spec := Lookup(name)
			if spec == nil {
				out = append(out, resp.Err("ERR unknown command"))
				continue
			}
			out = append(out, spec.Handler(d, c, qc.Args))
		}
		return resp.ArrSlice(out)
	})
	if submitErr != nil {
		return resp.Err("ERR server shutting down")
	}
	reply, ok := result.(*resp.Reply)
	if !ok || reply == nil {
		return resp.NullArray()
	}
	return reply
}

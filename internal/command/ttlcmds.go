package command

import (
	"strings"
	"time"

	"github.com/edirooss/bradis/internal/resp"
	"github.com/edirooss/bradis/internal/store"
)

func registerTTLCommands() {
	register(&Spec{Name: "EXPIRE", Arity: -3, Handler: cmdExpire})
	register(&Spec{Name: "PEXPIRE", Arity: -3, Handler: cmdPExpire})
	register(&Spec{Name: "EXPIREAT", Arity: -3, Handler: cmdExpireAt})
	register(&Spec{Name: "PEXPIREAT", Arity: -3, Handler: cmdPExpireAt})
	register(&Spec{Name: "PERSIST", Arity: 2, Handler: cmdPersist})
	register(&Spec{Name: "TTL", Arity: 2, Handler: cmdTTL})
	register(&Spec{Name: "PTTL", Arity: 2, Handler: cmdPTTL})
	register(&Spec{Name: "EXPIRETIME", Arity: 2, Handler: cmdExpireTime})
	register(&Spec{Name: "PEXPIRETIME", Arity: 2, Handler: cmdPExpireTime})
}

// msToTime converts a Unix-epoch millisecond timestamp to time.Time.
func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// expiryFromOpts resolves SET's EX/PX/EXAT/PXAT options to an absolute
// deadline. Only one of the four is ever set by the caller.
func expiryFromOpts(ex, px, exAt, pxAt int64, have bool) time.Time {
	if !have {
		return time.Time{}
	}
	switch {
	case ex != 0:
		return time.Now().Add(time.Duration(ex) * time.Second)
	case px != 0:
		return time.Now().Add(time.Duration(px) * time.Millisecond)
	case exAt != 0:
		return time.Unix(exAt, 0)
	case pxAt != 0:
		return msToTime(pxAt)
	}
	return time.Time{}
}

func parseExpireMode(opt string) (store.ExpireMode, bool) {
	switch strings.ToUpper(opt) {
	case "NX":
		return store.ExpireNX, true
	case "XX":
		return store.ExpireXX, true
	case "GT":
		return store.ExpireGT, true
	case "LT":
		return store.ExpireLT, true
	}
	return store.ExpireAlways, false
}

func expireHelper(d *Deps, c *ClientState, args [][]byte, cmdName string, unit time.Duration, absolute bool) *resp.Reply {
	key := string(args[1])
	n, ok := parseInt(args[2])
	if !ok {
		return errNotInt()
	}
	mode := store.ExpireAlways
	for i := 3; i < len(args); i++ {
		m, ok := parseExpireMode(string(args[i]))
		if !ok {
			return errSyntax()
		}
		mode = m
	}

	var when time.Time
	if absolute {
		when = time.UnixMilli(n * int64(unit/time.Millisecond))
	} else {
		delta := time.Duration(n) * unit
		when = time.Now().Add(delta)
	}

	return run(d, c, func(s *store.Store) *resp.Reply {
		if s.SetExpireAt(c.DBIndex, key, when, mode) {
			return resp.Int(1)
		}
		return resp.Int(0)
	})
}

func cmdExpire(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return expireHelper(d, c, args, "expire", time.Second, false)
}
func cmdPExpire(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return expireHelper(d, c, args, "pexpire", time.Millisecond, false)
}
func cmdExpireAt(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return expireHelper(d, c, args, "expireat", time.Second, true)
}
func cmdPExpireAt(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return expireHelper(d, c, args, "pexpireat", time.Millisecond, true)
}

func cmdPersist(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		if s.Persist(c.DBIndex, key) {
			return resp.Int(1)
		}
		return resp.Int(0)
	})
}

func cmdTTL(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		dur, code := s.TTLOf(c.DBIndex, key)
		if code < 0 {
			return resp.Int(int64(code))
		}
		secs := int64(dur/time.Second)
		if dur%time.Second != 0 {
			secs++
		}
		return resp.Int(secs)
	})
}

func cmdPTTL(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		dur, code := s.TTLOf(c.DBIndex, key)
		if code < 0 {
			return resp.Int(int64(code))
		}
		return resp.Int(dur.Milliseconds())
	})
}

func cmdExpireTime(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		when, code := s.ExpireTimeOf(c.DBIndex, key)
		if code < 0 {
			return resp.Int(int64(code))
		}
		return resp.Int(when.Unix())
	})
}

func cmdPExpireTime(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		when, code := s.ExpireTimeOf(c.DBIndex, key)
		if code < 0 {
			return resp.Int(int64(code))
		}
		return resp.Int(when.UnixMilli())
	})
}

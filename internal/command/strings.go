package command

import (
	"strings"

	"github.com/edirooss/bradis/internal/resp"
	"github.com/edirooss/bradis/internal/store"
	"github.com/edirooss/bradis/internal/value"
)

func registerStringCommands() {
	register(&Spec{Name: "GET", Arity: 2, Handler: cmdGet})
	register(&Spec{Name: "SET", Arity: -3, Handler: cmdSet})
	register(&Spec{Name: "GETSET", Arity: 3, Handler: cmdGetSet})
	register(&Spec{Name: "GETDEL", Arity: 2, Handler: cmdGetDel})
	register(&Spec{Name: "APPEND", Arity: 3, Handler: cmdAppend})
	register(&Spec{Name: "STRLEN", Arity: 2, Handler: cmdStrlen})
	register(&Spec{Name: "SETRANGE", Arity: 4, Handler: cmdSetRange})
	register(&Spec{Name: "GETRANGE", Arity: 4, Handler: cmdGetRange})
	register(&Spec{Name: "SUBSTR", Arity: 4, Handler: cmdGetRange})
	register(&Spec{Name: "INCR", Arity: 2, Handler: cmdIncr})
	register(&Spec{Name: "DECR", Arity: 2, Handler: cmdDecr})
	register(&Spec{Name: "INCRBY", Arity: 3, Handler: cmdIncrBy})
	register(&Spec{Name: "DECRBY", Arity: 3, Handler: cmdDecrBy})
	register(&Spec{Name: "INCRBYFLOAT", Arity: 3, Handler: cmdIncrByFloat})
	register(&Spec{Name: "MGET", Arity: -2, Handler: cmdMGet})
	register(&Spec{Name: "MSET", Arity: -3, Handler: cmdMSet})
	register(&Spec{Name: "MSETNX", Arity: -3, Handler: cmdMSetNX})
	register(&Spec{Name: "SETNX", Arity: 3, Handler: cmdSetNX})
	register(&Spec{Name: "SETEX", Arity: 4, Handler: cmdSetEX})
	register(&Spec{Name: "PSETEX", Arity: 4, Handler: cmdPSetEX})
}

// asString type-asserts v (which may be nil) to *value.String, reporting
// a WRONGTYPE error for anything else.
func asString(v value.Value) (*value.String, *resp.Reply) {
	if v == nil {
		return nil, nil
	}
	sv, ok := v.(*value.String)
	if !ok {
		return nil, errWrongType()
	}
	return sv, nil
}

func cmdGet(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return run(d, c, func(s *store.Store) *resp.Reply {
		v, ok := s.Get(c.DBIndex, string(args[1]))
		if !ok {
			return resp.NullBulk()
		}
		sv, werr := asString(v)
		if werr != nil {
			return werr
		}
		return resp.Bulk(sv.Bytes())
	})
}

func cmdSet(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	val := args[2]

	var ex, px int64
	var exAt, pxAt int64
	var nx, xx, keepTTL, get bool
	haveExpire := false

	for i := 3; i < len(args); i++ {
		opt := strings.ToUpper(string(args[i]))
		switch opt {
		case "NX":
			nx = true
		case "XX":
			xx = true
		case "GET":
			get = true
		case "KEEPTTL":
			keepTTL = true
		case "EX", "PX", "EXAT", "PXAT":
			if haveExpire || i+1 >= len(args) {
				return errSyntax()
			}
			n, ok := parseInt(args[i+1])
			if !ok {
				return errNotInt()
			}
			i++
			haveExpire = true
			switch opt {
			case "EX":
				ex = n
			case "PX":
				px = n
			case "EXAT":
				exAt = n
			case "PXAT":
				pxAt = n
			}
		default:
			return errSyntax()
		}
	}
	if nx && xx {
		return errSyntax()
	}
	if haveExpire && keepTTL {
		return errSyntax()
	}

	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, existed := s.Get(c.DBIndex, key)
		var oldReply *resp.Reply
		if get {
			sv, werr := asString(existing)
			if werr != nil {
				return werr
			}
			if sv != nil {
				oldReply = resp.Bulk(sv.Bytes())
			} else {
				oldReply = resp.NullBulk()
			}
		}
		if nx && existed {
			if get {
				return oldReply
			}
			return resp.NullBulk()
		}
		if xx && !existed {
			if get {
				return oldReply
			}
			return resp.NullBulk()
		}

		nv := value.NewString(val)
		if keepTTL {
			s.PutKeepTTL(c.DBIndex, key, nv)
		} else {
			s.Put(c.DBIndex, key, nv)
			when := expiryFromOpts(ex, px, exAt, pxAt, haveExpire)
			if haveExpire {
				s.SetExpireAt(c.DBIndex, key, when, store.ExpireAlways)
			}
		}
		if get {
			return oldReply
		}
		return resp.OK()
	})
}

func cmdGetSet(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, _ := s.Get(c.DBIndex, key)
		sv, werr := asString(existing)
		if werr != nil {
			return werr
		}
		s.Put(c.DBIndex, key, value.NewString(args[2]))
		if sv == nil {
			return resp.NullBulk()
		}
		return resp.Bulk(sv.Bytes())
	})
}

func cmdGetDel(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.NullBulk()
		}
		sv, werr := asString(existing)
		if werr != nil {
			return werr
		}
		s.Del(c.DBIndex, []string{key})
		return resp.Bulk(sv.Bytes())
	})
}

func cmdAppend(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, _ := s.Get(c.DBIndex, key)
		sv, werr := asString(existing)
		if werr != nil {
			return werr
		}
		if sv == nil {
			sv = value.NewString(nil)
		}
		nv := sv.Append(args[2])
		s.PutKeepTTL(c.DBIndex, key, nv)
		return resp.Int(int64(nv.Len()))
	})
}

func cmdStrlen(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.Int(0)
		}
		sv, werr := asString(existing)
		if werr != nil {
			return werr
		}
		return resp.Int(int64(sv.Len()))
	})
}

func cmdSetRange(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	offset, ok := parseInt(args[2])
	if !ok || offset < 0 {
		return errNotInt()
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, _ := s.Get(c.DBIndex, key)
		sv, werr := asString(existing)
		if werr != nil {
			return werr
		}
		if sv == nil {
			sv = value.NewString(nil)
		}
		nv, err := sv.SetRange(int(offset), args[3], s.ProtoMaxBulkLen())
		if err != nil {
			return resp.Err(err.Error())
		}
		s.PutKeepTTL(c.DBIndex, key, nv)
		return resp.Int(int64(nv.Len()))
	})
}

func cmdGetRange(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	start, ok1 := parseInt(args[2])
	end, ok2 := parseInt(args[3])
	if !ok1 || !ok2 {
		return errNotInt()
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.Bulk([]byte{})
		}
		sv, werr := asString(existing)
		if werr != nil {
			return werr
		}
		return resp.Bulk(sv.GetRange(int(start), int(end)))
	})
}

func cmdIncr(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return incrByHelper(d, c, string(args[1]), 1)
}
func cmdDecr(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return incrByHelper(d, c, string(args[1]), -1)
}

func cmdIncrBy(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	n, ok := parseInt(args[2])
	if !ok {
		return errNotInt()
	}
	return incrByHelper(d, c, string(args[1]), n)
}

func cmdDecrBy(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	n, ok := parseInt(args[2])
	if !ok {
		return errNotInt()
	}
	return incrByHelper(d, c, string(args[1]), -n)
}

func incrByHelper(d *Deps, c *ClientState, key string, delta int64) *resp.Reply {
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, _ := s.Get(c.DBIndex, key)
		sv, werr := asString(existing)
		if werr != nil {
			return werr
		}
		if sv == nil {
			sv = value.NewString([]byte("0"))
		}
		nv, result, err := sv.IncrBy(delta)
		if err != nil {
			return resp.Err(err.Error())
		}
		s.PutKeepTTL(c.DBIndex, key, nv)
		return resp.Int(result)
	})
}

func cmdIncrByFloat(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	delta, ok := parseFloat(args[2])
	if !ok {
		return errNotFloat()
	}
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, _ := s.Get(c.DBIndex, key)
		sv, werr := asString(existing)
		if werr != nil {
			return werr
		}
		if sv == nil {
			sv = value.NewString([]byte("0"))
		}
		nv, formatted, err := sv.IncrByFloat(delta)
		if err != nil {
			return resp.Err(err.Error())
		}
		s.PutKeepTTL(c.DBIndex, key, nv)
		return resp.BulkString(formatted)
	})
}

func cmdMGet(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	keys := args[1:]
	return run(d, c, func(s *store.Store) *resp.Reply {
		out := make([]*resp.Reply, len(keys))
		for i, k := range keys {
			v, ok := s.Get(c.DBIndex, string(k))
			if !ok {
				out[i] = resp.NullBulk()
				continue
			}
			sv, werr := v.(*value.String)
			if !werr {
				out[i] = resp.NullBulk()
				continue
			}
			out[i] = resp.Bulk(sv.Bytes())
		}
		return resp.ArrSlice(out)
	})
}

func cmdMSet(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	pairs := args[1:]
	if len(pairs)%2 != 0 {
		return errWrongArgs("mset")
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		for i := 0; i < len(pairs); i += 2 {
			s.Put(c.DBIndex, string(pairs[i]), value.NewString(pairs[i+1]))
		}
		return resp.OK()
	})
}

func cmdMSetNX(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	pairs := args[1:]
	if len(pairs)%2 != 0 {
		return errWrongArgs("msetnx")
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		for i := 0; i < len(pairs); i += 2 {
			if _, ok := s.Get(c.DBIndex, string(pairs[i])); ok {
				return resp.Int(0)
			}
		}
		for i := 0; i < len(pairs); i += 2 {
			s.Put(c.DBIndex, string(pairs[i]), value.NewString(pairs[i+1]))
		}
		return resp.Int(1)
	})
}

func cmdSetNX(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		if _, ok := s.Get(c.DBIndex, key); ok {
			return resp.Int(0)
		}
		s.Put(c.DBIndex, key, value.NewString(args[2]))
		return resp.Int(1)
	})
}

func cmdSetEX(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return setexHelper(d, c, args, false)
}
func cmdPSetEX(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return setexHelper(d, c, args, true)
}

func setexHelper(d *Deps, c *ClientState, args [][]byte, millis bool) *resp.Reply {
	seconds, ok := parseInt(args[2])
	if !ok || seconds <= 0 {
		cmd := "setex"
		if millis {
			cmd = "psetex"
		}
		return errInvalidExpire(cmd)
	}
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		s.Put(c.DBIndex, key, value.NewString(args[3]))
		var when int64
		if millis {
			when = seconds
		} else {
			when = seconds * 1000
		}
		s.SetExpireAt(c.DBIndex, key, expiryFromOpts(0, when, 0, 0, true), store.ExpireAlways)
		return resp.OK()
	})
}

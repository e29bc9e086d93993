package command

import (
	"github.com/edirooss/bradis/internal/resp"
	"github.com/edirooss/bradis/internal/store"
	"github.com/edirooss/bradis/internal/value"
)

func registerHashCommands() {
	register(&Spec{Name: "HSET", Arity: -4, Handler: cmdHSet})
	register(&Spec{Name: "HSETNX", Arity: 4, Handler: cmdHSetNX})
	register(&Spec{Name: "HGET", Arity: 3, Handler: cmdHGet})
	register(&Spec{Name: "HMSET", Arity: -4, Handler: cmdHMSet})
	register(&Spec{Name: "HMGET", Arity: -3, Handler: cmdHMGet})
	register(&Spec{Name: "HDEL", Arity: -3, Handler: cmdHDel})
	register(&Spec{Name: "HLEN", Arity: 2, Handler: cmdHLen})
	register(&Spec{Name: "HEXISTS", Arity: 3, Handler: cmdHExists})
	register(&Spec{Name: "HKEYS", Arity: 2, Handler: cmdHKeys})
	register(&Spec{Name: "HVALS", Arity: 2, Handler: cmdHVals})
	register(&Spec{Name: "HGETALL", Arity: 2, Handler: cmdHGetAll})
	register(&Spec{Name: "HSTRLEN", Arity: 3, Handler: cmdHStrlen})
	register(&Spec{Name: "HINCRBY", Arity: 4, Handler: cmdHIncrBy})
	register(&Spec{Name: "HINCRBYFLOAT", Arity: 4, Handler: cmdHIncrByFloat})
	register(&Spec{Name: "HRANDFIELD", Arity: -2, Handler: cmdHRandField})
}

func asHash(v value.Value) (*value.Hash, *resp.Reply) {
	if v == nil {
		return nil, nil
	}
	hv, ok := v.(*value.Hash)
	if !ok {
		return nil, errWrongType()
	}
	return hv, nil
}

func cmdHSet(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	pairs := args[2:]
	if len(pairs)%2 != 0 {
		return errWrongArgs("hset")
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, _ := s.Get(c.DBIndex, key)
		hv, werr := asHash(existing)
		if werr != nil {
			return werr
		}
		if hv == nil {
			hv = value.NewHash()
		}
		th := s.Thresholds()
		added := 0
		for i := 0; i < len(pairs); i += 2 {
			if hv.Set(string(pairs[i]), pairs[i+1], th) {
				added++
			}
		}
		s.PutKeepTTL(c.DBIndex, key, hv)
		return resp.Int(int64(added))
	})
}

func cmdHSetNX(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, _ := s.Get(c.DBIndex, key)
		hv, werr := asHash(existing)
		if werr != nil {
			return werr
		}
		if hv == nil {
			hv = value.NewHash()
		}
		ok := hv.SetNX(string(args[2]), args[3], s.Thresholds())
		s.PutKeepTTL(c.DBIndex, key, hv)
		if ok {
			return resp.Int(1)
		}
		return resp.Int(0)
	})
}

func cmdHMSet(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	reply := cmdHSet(d, c, args)
	if reply.Kind == resp.KindInteger {
		return resp.OK()
	}
	return reply
}

func cmdHGet(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.NullBulk()
		}
		hv, werr := asHash(existing)
		if werr != nil {
			return werr
		}
		v, ok := hv.Get(string(args[2]))
		if !ok {
			return resp.NullBulk()
		}
		return resp.Bulk(v)
	})
}

func cmdHMGet(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	fields := args[2:]
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		out := make([]*resp.Reply, len(fields))
		if !ok {
			for i := range out {
				out[i] = resp.NullBulk()
			}
			return resp.ArrSlice(out)
		}
		hv, werr := asHash(existing)
		if werr != nil {
			return werr
		}
		for i, f := range fields {
			v, ok := hv.Get(string(f))
			if !ok {
				out[i] = resp.NullBulk()
				continue
			}
			out[i] = resp.Bulk(v)
		}
		return resp.ArrSlice(out)
	})
}

func cmdHDel(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	fields := args[2:]
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.Int(0)
		}
		hv, werr := asHash(existing)
		if werr != nil {
			return werr
		}
		removed := 0
		for _, f := range fields {
			if hv.Del(string(f)) {
				removed++
			}
		}
		if hv.Empty() {
			s.DeleteIfEmpty(c.DBIndex, key, hv)
		} else {
			s.PutKeepTTL(c.DBIndex, key, hv)
		}
		return resp.Int(int64(removed))
	})
}

func cmdHLen(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.Int(0)
		}
		hv, werr := asHash(existing)
		if werr != nil {
			return werr
		}
		return resp.Int(int64(hv.Len()))
	})
}

func cmdHExists(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.Int(0)
		}
		hv, werr := asHash(existing)
		if werr != nil {
			return werr
		}
		if _, ok := hv.Get(string(args[2])); ok {
			return resp.Int(1)
		}
		return resp.Int(0)
	})
}

func cmdHKeys(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.ArrSlice(nil)
		}
		hv, werr := asHash(existing)
		if werr != nil {
			return werr
		}
		return stringArray(hv.Order())
	})
}

func cmdHVals(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.ArrSlice(nil)
		}
		hv, werr := asHash(existing)
		if werr != nil {
			return werr
		}
		out := make([][]byte, 0, hv.Len())
		for _, f := range hv.Order() {
			v, _ := hv.Get(f)
			out = append(out, v)
		}
		return bulkArray(out)
	})
}

func cmdHGetAll(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.ArrSlice(nil)
		}
		hv, werr := asHash(existing)
		if werr != nil {
			return werr
		}
		var pairs []*resp.Reply
		for _, f := range hv.Order() {
			v, _ := hv.Get(f)
			pairs = append(pairs, resp.BulkString(f), resp.Bulk(v))
		}
		if c.RESP >= 3 {
			return resp.MapReply(pairs)
		}
		return resp.ArrSlice(pairs)
	})
}

func cmdHStrlen(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.Int(0)
		}
		hv, werr := asHash(existing)
		if werr != nil {
			return werr
		}
		v, ok := hv.Get(string(args[2]))
		if !ok {
			return resp.Int(0)
		}
		return resp.Int(int64(len(v)))
	})
}

func cmdHIncrBy(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	delta, ok := parseInt(args[3])
	if !ok {
		return errNotInt()
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, _ := s.Get(c.DBIndex, key)
		hv, werr := asHash(existing)
		if werr != nil {
			return werr
		}
		if hv == nil {
			hv = value.NewHash()
		}
		result, err := hv.IncrBy(string(args[2]), delta, s.Thresholds())
		if err != nil {
			return resp.Err(err.Error())
		}
		s.PutKeepTTL(c.DBIndex, key, hv)
		return resp.Int(result)
	})
}

func cmdHIncrByFloat(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	delta, ok := parseFloat(args[3])
	if !ok {
		return errNotFloat()
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, _ := s.Get(c.DBIndex, key)
		hv, werr := asHash(existing)
		if werr != nil {
			return werr
		}
		if hv == nil {
			hv = value.NewHash()
		}
		formatted, err := hv.IncrByFloat(string(args[2]), delta, s.Thresholds())
		if err != nil {
			return resp.Err(err.Error())
		}
		s.PutKeepTTL(c.DBIndex, key, hv)
		return resp.BulkString(formatted)
	})
}

func cmdHRandField(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			if len(args) > 2 {
				return resp.ArrSlice(nil)
			}
			return resp.NullBulk()
		}
		hv, werr := asHash(existing)
		if werr != nil {
			return werr
		}
		order := hv.Order()
		if len(order) == 0 {
			if len(args) > 2 {
				return resp.ArrSlice(nil)
			}
			return resp.NullBulk()
		}
		if len(args) == 2 {
			return resp.BulkString(order[0])
		}
		n, ok := parseInt(args[2])
		if !ok {
			return errNotInt()
		}
		if n < 0 {
			n = -n
		}
		if int(n) > len(order) {
			n = int64(len(order))
		}
		return stringArray(order[:n])
	})
}

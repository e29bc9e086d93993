package command

import (
	"github.com/edirooss/bradis/internal/resp"
	"github.com/edirooss/bradis/internal/store"
	"github.com/edirooss/bradis/internal/value"
)

func registerSetCommands() {
	register(&Spec{Name: "SADD", Arity: -3, Handler: cmdSAdd})
	register(&Spec{Name: "SREM", Arity: -3, Handler: cmdSRem})
	register(&Spec{Name: "SISMEMBER", Arity: 3, Handler: cmdSIsMember})
	register(&Spec{Name: "SMISMEMBER", Arity: -3, Handler: cmdSMIsMember})
	register(&Spec{Name: "SCARD", Arity: 2, Handler: cmdSCard})
	register(&Spec{Name: "SMEMBERS", Arity: 2, Handler: cmdSMembers})
	register(&Spec{Name: "SPOP", Arity: -2, Handler: cmdSPop})
	register(&Spec{Name: "SRANDMEMBER", Arity: -2, Handler: cmdSRandMember})
	register(&Spec{Name: "SDIFF", Arity: -2, Handler: cmdSDiff})
	register(&Spec{Name: "SINTER", Arity: -2, Handler: cmdSInter})
	register(&Spec{Name: "SUNION", Arity: -2, Handler: cmdSUnion})
	register(&Spec{Name: "SDIFFSTORE", Arity: -3, Handler: cmdSDiffStore})
	register(&Spec{Name: "SINTERSTORE", Arity: -3, Handler: cmdSInterStore})
	register(&Spec{Name: "SUNIONSTORE", Arity: -3, Handler: cmdSUnionStore})
	register(&Spec{Name: "SMOVE", Arity: 4, Handler: cmdSMove})
}

func asSet(v value.Value) (*value.Set, *resp.Reply) {
	if v == nil {
		return nil, nil
	}
	sv, ok := v.(*value.Set)
	if !ok {
		return nil, errWrongType()
	}
	return sv, nil
}

func cmdSAdd(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	members := args[2:]
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, _ := s.Get(c.DBIndex, key)
		sv, werr := asSet(existing)
		if werr != nil {
			return werr
		}
		if sv == nil {
			sv = value.NewSet()
		}
		th := s.Thresholds()
		added := 0
		for _, m := range members {
			if sv.Add(m, th) {
				added++
			}
		}
		s.PutKeepTTL(c.DBIndex, key, sv)
		return resp.Int(int64(added))
	})
}

func cmdSRem(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	members := args[2:]
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.Int(0)
		}
		sv, werr := asSet(existing)
		if werr != nil {
			return werr
		}
		removed := 0
		for _, m := range members {
			if sv.Rem(m) {
				removed++
			}
		}
		if sv.Empty() {
			s.DeleteIfEmpty(c.DBIndex, key, sv)
		} else {
			s.PutKeepTTL(c.DBIndex, key, sv)
		}
		return resp.Int(int64(removed))
	})
}

func cmdSIsMember(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.Int(0)
		}
		sv, werr := asSet(existing)
		if werr != nil {
			return werr
		}
		if sv.Has(args[2]) {
			return resp.Int(1)
		}
		return resp.Int(0)
	})
}

func cmdSMIsMember(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	members := args[2:]
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		out := make([]*resp.Reply, len(members))
		if !ok {
			for i := range out {
				out[i] = resp.Int(0)
			}
			return resp.ArrSlice(out)
		}
		sv, werr := asSet(existing)
		if werr != nil {
			return werr
		}
		for i, m := range members {
			if sv.Has(m) {
				out[i] = resp.Int(1)
			} else {
				out[i] = resp.Int(0)
			}
		}
		return resp.ArrSlice(out)
	})
}

func cmdSCard(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.Int(0)
		}
		sv, werr := asSet(existing)
		if werr != nil {
			return werr
		}
		return resp.Int(int64(sv.Len()))
	})
}

func cmdSMembers(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.ArrSlice(nil)
		}
		sv, werr := asSet(existing)
		if werr != nil {
			return werr
		}
		return bulkArray(sv.Members())
	})
}

func cmdSPop(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	hasCount := len(args) > 2
	var count int64 = 1
	if hasCount {
		n, ok := parseInt(args[2])
		if !ok {
			return errNotInt()
		}
		if n < 0 {
			return resp.Err("ERR value is out of range, must be positive")
		}
		count = n
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			if hasCount {
				return resp.ArrSlice(nil)
			}
			return resp.NullBulk()
		}
		sv, werr := asSet(existing)
		if werr != nil {
			return werr
		}
		members := sv.Members()
		if int64(len(members)) > count {
			members = members[:count]
		}
		for _, m := range members {
			sv.Rem(m)
		}
		if sv.Empty() {
			s.DeleteIfEmpty(c.DBIndex, key, sv)
		} else {
			s.PutKeepTTL(c.DBIndex, key, sv)
		}
		if !hasCount {
			if len(members) == 0 {
				return resp.NullBulk()
			}
			return resp.Bulk(members[0])
		}
		return bulkArray(members)
	})
}

func cmdSRandMember(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	hasCount := len(args) > 2
	var count int64
	if hasCount {
		n, ok := parseInt(args[2])
		if !ok {
			return errNotInt()
		}
		count = n
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			if hasCount {
				return resp.ArrSlice(nil)
			}
			return resp.NullBulk()
		}
		sv, werr := asSet(existing)
		if werr != nil {
			return werr
		}
		members := sv.Members()
		if !hasCount {
			if len(members) == 0 {
				return resp.NullBulk()
			}
			return resp.Bulk(members[0])
		}
		if count >= 0 {
			if int64(len(members)) > count {
				members = members[:count]
			}
			return bulkArray(members)
		}
		// negative count: may repeat members, up to -count picks
		n := -count
		if len(members) == 0 {
			return resp.ArrSlice(nil)
		}
		out := make([][]byte, n)
		for i := range out {
			out[i] = members[int(i)%len(members)]
		}
		return bulkArray(out)
	})
}

func setOfMembers(v value.Value) map[string]struct{} {
	sv := v.(*value.Set)
	out := make(map[string]struct{})
	for _, m := range sv.Members() {
		out[string(m)] = struct{}{}
	}
	return out
}

func cmdSDiff(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return run(d, c, func(s *store.Store) *resp.Reply {
		result, werr := setOp(s, c.DBIndex, args[1:], "diff")
		if werr != nil {
			return werr
		}
		return stringSetReply(result, c.RESP)
	})
}
func cmdSInter(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return run(d, c, func(s *store.Store) *resp.Reply {
		result, werr := setOp(s, c.DBIndex, args[1:], "inter")
		if werr != nil {
			return werr
		}
		return stringSetReply(result, c.RESP)
	})
}
func cmdSUnion(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return run(d, c, func(s *store.Store) *resp.Reply {
		result, werr := setOp(s, c.DBIndex, args[1:], "union")
		if werr != nil {
			return werr
		}
		return stringSetReply(result, c.RESP)
	})
}

func stringSetReply(m map[string]struct{}, respVersion int) *resp.Reply {
	out := make([]*resp.Reply, 0, len(m))
	for k := range m {
		out = append(out, resp.BulkString(k))
	}
	if respVersion >= 3 {
		return resp.SetReply(out)
	}
	return resp.ArrSlice(out)
}

func setOp(s *store.Store, dbIndex int, keys [][]byte, op string) (map[string]struct{}, *resp.Reply) {
	var result map[string]struct{}
	for i, k := range keys {
		v, ok := s.Get(dbIndex, string(k))
		var cur map[string]struct{}
		if ok {
			sv, werr := asSet(v)
			if werr != nil {
				return nil, werr
			}
			cur = setOfMembers(sv)
		} else {
			cur = map[string]struct{}{}
		}
		if i == 0 {
			result = cur
			continue
		}
		switch op {
		case "diff":
			for k := range cur {
				delete(result, k)
			}
		case "inter":
			for k := range result {
				if _, ok := cur[k]; !ok {
					delete(result, k)
				}
			}
		case "union":
			for k := range cur {
				result[k] = struct{}{}
			}
		}
	}
	if result == nil {
		result = map[string]struct{}{}
	}
	return result, nil
}

func storeOp(d *Deps, c *ClientState, args [][]byte, op string) *resp.Reply {
	dest := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		result, werr := setOp(s, c.DBIndex, args[2:], op)
		if werr != nil {
			return werr
		}
		nv := value.NewSet()
		th := s.Thresholds()
		for m := range result {
			nv.Add([]byte(m), th)
		}
		if nv.Empty() {
			s.Del(c.DBIndex, []string{dest})
			return resp.Int(0)
		}
		s.Put(c.DBIndex, dest, nv)
		return resp.Int(int64(nv.Len()))
	})
}

func cmdSDiffStore(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return storeOp(d, c, args, "diff")
}
func cmdSInterStore(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return storeOp(d, c, args, "inter")
}
func cmdSUnionStore(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return storeOp(d, c, args, "union")
}

func cmdSMove(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	src, dst, member := string(args[1]), string(args[2]), args[3]
	return run(d, c, func(s *store.Store) *resp.Reply {
		srcV, ok := s.Get(c.DBIndex, src)
		if !ok {
			return resp.Int(0)
		}
		srcSet, werr := asSet(srcV)
		if werr != nil {
			return werr
		}
		if !srcSet.Has(member) {
			return resp.Int(0)
		}
		dstV, _ := s.Get(c.DBIndex, dst)
		dstSet, werr := asSet(dstV)
		if werr != nil {
			return werr
		}
		if dstSet == nil {
			dstSet = value.NewSet()
		}
		srcSet.Rem(member)
		dstSet.Add(member, s.Thresholds())
		if srcSet.Empty() {
			s.DeleteIfEmpty(c.DBIndex, src, srcSet)
		} else {
			s.PutKeepTTL(c.DBIndex, src, srcSet)
		}
		s.PutKeepTTL(c.DBIndex, dst, dstSet)
		return resp.Int(1)
	})
}

package command

import (
	"strings"
	"time"

	"github.com/edirooss/bradis/internal/resp"
	"github.com/edirooss/bradis/internal/store"
	"github.com/edirooss/bradis/internal/value"
)

func registerListCommands() {
	register(&Spec{Name: "LPUSH", Arity: -3, Handler: cmdLPush})
	register(&Spec{Name: "RPUSH", Arity: -3, Handler: cmdRPush})
	register(&Spec{Name: "LPUSHX", Arity: -3, Handler: cmdLPushX})
	register(&Spec{Name: "RPUSHX", Arity: -3, Handler: cmdRPushX})
	register(&Spec{Name: "LPOP", Arity: -2, Handler: cmdLPop})
	register(&Spec{Name: "RPOP", Arity: -2, Handler: cmdRPop})
	register(&Spec{Name: "LLEN", Arity: 2, Handler: cmdLLen})
	register(&Spec{Name: "LRANGE", Arity: 4, Handler: cmdLRange})
	register(&Spec{Name: "LINDEX", Arity: 3, Handler: cmdLIndex})
	register(&Spec{Name: "LSET", Arity: 4, Handler: cmdLSet})
	register(&Spec{Name: "LINSERT", Arity: 5, Handler: cmdLInsert})
	register(&Spec{Name: "LTRIM", Arity: 4, Handler: cmdLTrim})
	register(&Spec{Name: "LREM", Arity: 4, Handler: cmdLRem})
	register(&Spec{Name: "LPOS", Arity: -3, Handler: cmdLPos})
	register(&Spec{Name: "LMOVE", Arity: 5, Handler: cmdLMove})
	register(&Spec{Name: "RPOPLPUSH", Arity: 3, Handler: cmdRPopLPush})
	register(&Spec{Name: "BLPOP", Arity: -3, Handler: cmdBLPop})
	register(&Spec{Name: "BRPOP", Arity: -3, Handler: cmdBRPop})
	register(&Spec{Name: "BLMOVE", Arity: 6, Handler: cmdBLMove})
	register(&Spec{Name: "BRPOPLPUSH", Arity: 4, Handler: cmdBRPopLPush})
}

func asList(v value.Value) (*value.List, *resp.Reply) {
	if v == nil {
		return nil, nil
	}
	lv, ok := v.(*value.List)
	if !ok {
		return nil, errWrongType()
	}
	return lv, nil
}

func pushHelper(d *Deps, c *ClientState, args [][]byte, left, requireExisting bool) *resp.Reply {
	key := string(args[1])
	vals := args[2:]
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, _ := s.Get(c.DBIndex, key)
		lv, werr := asList(existing)
		if werr != nil {
			return werr
		}
		if lv == nil {
			if requireExisting {
				return resp.Int(0)
			}
			lv = value.NewList()
		}
		th := s.Thresholds()
		if left {
			lv.PushLeft(vals, th)
		} else {
			lv.PushRight(vals, th)
		}
		s.PutKeepTTL(c.DBIndex, key, lv)
		d.Blocking[c.DBIndex].Notify(key)
		return resp.Int(int64(lv.Len()))
	})
}

func cmdLPush(d *Deps, c *ClientState, args [][]byte) *resp.Reply  { return pushHelper(d, c, args, true, false) }
func cmdRPush(d *Deps, c *ClientState, args [][]byte) *resp.Reply  { return pushHelper(d, c, args, false, false) }
func cmdLPushX(d *Deps, c *ClientState, args [][]byte) *resp.Reply { return pushHelper(d, c, args, true, true) }
func cmdRPushX(d *Deps, c *ClientState, args [][]byte) *resp.Reply { return pushHelper(d, c, args, false, true) }

func popHelper(d *Deps, c *ClientState, args [][]byte, left bool) *resp.Reply {
	key := string(args[1])
	hasCount := len(args) > 2
	count := int64(1)
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
				return resp.NullArray()
			}
			return resp.NullBulk()
		}
		lv, werr := asList(existing)
		if werr != nil {
			return werr
		}
		var popped [][]byte
		if left {
			popped = lv.PopLeft(int(count))
		} else {
			popped = lv.PopRight(int(count))
		}
		if lv.Empty() {
			s.DeleteIfEmpty(c.DBIndex, key, lv)
		} else {
			s.PutKeepTTL(c.DBIndex, key, lv)
		}
		if !hasCount {
			if len(popped) == 0 {
				return resp.NullBulk()
			}
			return resp.Bulk(popped[0])
		}
		return bulkArray(popped)
	})
}

func cmdLPop(d *Deps, c *ClientState, args [][]byte) *resp.Reply { return popHelper(d, c, args, true) }
func cmdRPop(d *Deps, c *ClientState, args [][]byte) *resp.Reply { return popHelper(d, c, args, false) }

func cmdLLen(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.Int(0)
		}
		lv, werr := asList(existing)
		if werr != nil {
			return werr
		}
		return resp.Int(int64(lv.Len()))
	})
}

func cmdLRange(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	start, ok1 := parseInt(args[2])
	stop, ok2 := parseInt(args[3])
	if !ok1 || !ok2 {
		return errNotInt()
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.ArrSlice(nil)
		}
		lv, werr := asList(existing)
		if werr != nil {
			return werr
		}
		return bulkArray(lv.Range(int(start), int(stop)))
	})
}

func cmdLIndex(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	idx, ok := parseInt(args[2])
	if !ok {
		return errNotInt()
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.NullBulk()
		}
		lv, werr := asList(existing)
		if werr != nil {
			return werr
		}
		v, ok := lv.Index(int(idx))
		if !ok {
			return resp.NullBulk()
		}
		return resp.Bulk(v)
	})
}

func cmdLSet(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	idx, ok := parseInt(args[2])
	if !ok {
		return errNotInt()
	}
	val := args[3]
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return errNoSuchKey()
		}
		lv, werr := asList(existing)
		if werr != nil {
			return werr
		}
		if !lv.SetIndex(int(idx), val) {
			return errIndexRange()
		}
		s.PutKeepTTL(c.DBIndex, key, lv)
		return resp.OK()
	})
}

func cmdLInsert(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	where := strings.ToUpper(string(args[2]))
	if where != "BEFORE" && where != "AFTER" {
		return errSyntax()
	}
	pivot, val := args[3], args[4]
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.Int(0)
		}
		lv, werr := asList(existing)
		if werr != nil {
			return werr
		}
		if !lv.Insert(pivot, val, where == "BEFORE") {
			return resp.Int(-1)
		}
		s.PutKeepTTL(c.DBIndex, key, lv)
		return resp.Int(int64(lv.Len()))
	})
}

func cmdLTrim(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	start, ok1 := parseInt(args[2])
	stop, ok2 := parseInt(args[3])
	if !ok1 || !ok2 {
		return errNotInt()
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.OK()
		}
		lv, werr := asList(existing)
		if werr != nil {
			return werr
		}
		lv.Trim(int(start), int(stop), s.Thresholds())
		if lv.Empty() {
			s.DeleteIfEmpty(c.DBIndex, key, lv)
		} else {
			s.PutKeepTTL(c.DBIndex, key, lv)
		}
		return resp.OK()
	})
}

func cmdLRem(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	count, ok := parseInt(args[2])
	if !ok {
		return errNotInt()
	}
	val := args[3]
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.Int(0)
		}
		lv, werr := asList(existing)
		if werr != nil {
			return werr
		}
		removed := lv.Remove(val, int(count))
		if lv.Empty() {
			s.DeleteIfEmpty(c.DBIndex, key, lv)
		} else {
			s.PutKeepTTL(c.DBIndex, key, lv)
		}
		return resp.Int(int64(removed))
	})
}

func cmdLPos(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	val := args[2]
	rank, count, maxlen := 1, 1, 0
	hasCount := false
	for i := 3; i < len(args); i++ {
		opt := strings.ToUpper(string(args[i]))
		if i+1 >= len(args) {
			return errSyntax()
		}
		n, ok := parseInt(args[i+1])
		if !ok {
			return errNotInt()
		}
		switch opt {
		case "RANK":
			if n == 0 {
				return resp.Err("ERR RANK can't be zero")
			}
			rank = int(n)
		case "COUNT":
			if n < 0 {
				return resp.Err("ERR COUNT can't be negative")
			}
			count = int(n)
			hasCount = true
		case "MAXLEN":
			if n < 0 {
				return resp.Err("ERR MAXLEN can't be negative")
			}
			maxlen = int(n)
		default:
			return errSyntax()
		}
		i++
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			if hasCount {
				return resp.ArrSlice(nil)
			}
			return resp.NullBulk()
		}
		lv, werr := asList(existing)
		if werr != nil {
			return werr
		}
		indices := lv.Pos(val, rank, count, maxlen)
		if !hasCount {
			if len(indices) == 0 {
				return resp.NullBulk()
			}
			return resp.Int(int64(indices[0]))
		}
		out := make([]*resp.Reply, len(indices))
		for i, idx := range indices {
			out[i] = resp.Int(int64(idx))
		}
		return resp.ArrSlice(out)
	})
}

func moveOne(s *store.Store, d *Deps, dbIndex int, src, dst string, fromLeft, toLeft bool) ([]byte, bool, *resp.Reply) {
	existing, ok := s.Get(dbIndex, src)
	if !ok {
		return nil, false, nil
	}
	srcList, werr := asList(existing)
	if werr != nil {
		return nil, false, werr
	}
	var val []byte
	if fromLeft {
		popped := srcList.PopLeft(1)
		if len(popped) == 0 {
			return nil, false, nil
		}
		val = popped[0]
	} else {
		popped := srcList.PopRight(1)
		if len(popped) == 0 {
			return nil, false, nil
		}
		val = popped[0]
	}

	dstExisting, _ := s.Get(dbIndex, dst)
	dstList, werr := asList(dstExisting)
	if werr != nil {
		return nil, false, werr
	}
	if dstList == nil {
		dstList = value.NewList()
	}
	th := s.Thresholds()
	if toLeft {
		dstList.PushLeft([][]byte{val}, th)
	} else {
		dstList.PushRight([][]byte{val}, th)
	}

	if srcList.Empty() {
		s.DeleteIfEmpty(dbIndex, src, srcList)
	} else {
		s.PutKeepTTL(dbIndex, src, srcList)
	}
	s.PutKeepTTL(dbIndex, dst, dstList)
	d.Blocking[dbIndex].Notify(dst)
	return val, true, nil
}

func cmdLMove(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	src, dst := string(args[1]), string(args[2])
	fromLeft, ok1 := parseWhere(args[3])
	toLeft, ok2 := parseWhere(args[4])
	if !ok1 || !ok2 {
		return errSyntax()
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		val, ok, werr := moveOne(s, d, c.DBIndex, src, dst, fromLeft, toLeft)
		if werr != nil {
			return werr
		}
		if !ok {
			return resp.NullBulk()
		}
		return resp.Bulk(val)
	})
}

func cmdRPopLPush(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	src, dst := string(args[1]), string(args[2])
	return run(d, c, func(s *store.Store) *resp.Reply {
		val, ok, werr := moveOne(s, d, c.DBIndex, src, dst, false, true)
		if werr != nil {
			return werr
		}
		if !ok {
			return resp.NullBulk()
		}
		return resp.Bulk(val)
	})
}

func parseWhere(b []byte) (left bool, ok bool) {
	switch strings.ToUpper(string(b)) {
	case "LEFT":
		return true, true
	case "RIGHT":
		return false, true
	}
	return false, false
}

// parseTimeoutSeconds parses the blocking commands' trailing timeout
// argument (a non-negative, possibly fractional number of seconds; 0
// means block forever) into an absolute deadline.
func parseTimeoutSeconds(b []byte) (time.Time, bool) {
	f, ok := parseFloat(b)
	if !ok || f < 0 {
		return time.Time{}, false
	}
	if f == 0 {
		return time.Time{}, true
	}
	return time.Now().Add(time.Duration(f * float64(time.Second))), true
}

func blockingPopHelper(d *Deps, c *ClientState, args [][]byte, left bool) *resp.Reply {
	keys := make([]string, len(args)-2)
	for i, k := range args[1 : len(args)-1] {
		keys[i] = string(k)
	}
	deadline, ok := parseTimeoutSeconds(args[len(args)-1])
	if !ok {
		return resp.Err("ERR timeout is not a float or out of range")
	}

	for {
		var werr *resp.Reply
		var matchedKey string
		var popped []byte
		var found bool
		_ = run(d, c, func(s *store.Store) *resp.Reply {
			for _, key := range keys {
				existing, ok := s.Get(c.DBIndex, key)
				if !ok {
					continue
				}
				lv, e := asList(existing)
				if e != nil {
					werr = e
					return nil
				}
				var vals [][]byte
				if left {
					vals = lv.PopLeft(1)
				} else {
					vals = lv.PopRight(1)
				}
				if lv.Empty() {
					s.DeleteIfEmpty(c.DBIndex, key, lv)
				} else {
					s.PutKeepTTL(c.DBIndex, key, lv)
				}
				matchedKey, popped, found = key, vals[0], true
				return nil
			}
			return nil
		})
		if werr != nil {
			return werr
		}
		if found {
			return resp.Arr(resp.BulkString(matchedKey), resp.Bulk(popped))
		}
		if c.execStore != nil { // inside EXEC: never block
			return resp.NullArray()
		}

		outcome := d.Blocking[c.DBIndex].Wait(c.ID, keys, deadline)
		if outcome != 0 { // anything other than OutcomeReady (0) ends the wait
			return resp.NullArray()
		}
	}
}

func cmdBLPop(d *Deps, c *ClientState, args [][]byte) *resp.Reply { return blockingPopHelper(d, c, args, true) }
func cmdBRPop(d *Deps, c *ClientState, args [][]byte) *resp.Reply { return blockingPopHelper(d, c, args, false) }

func cmdBLMove(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	src, dst := string(args[1]), string(args[2])
	fromLeft, ok1 := parseWhere(args[3])
	toLeft, ok2 := parseWhere(args[4])
	if !ok1 || !ok2 {
		return errSyntax()
	}
	deadline, ok := parseTimeoutSeconds(args[5])
	if !ok {
		return resp.Err("ERR timeout is not a float or out of range")
	}
	return blockingMoveLoop(d, c, src, dst, fromLeft, toLeft, deadline)
}

func cmdBRPopLPush(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	src, dst := string(args[1]), string(args[2])
	deadline, ok := parseTimeoutSeconds(args[3])
	if !ok {
		return resp.Err("ERR timeout is not a float or out of range")
	}
	return blockingMoveLoop(d, c, src, dst, false, true, deadline)
}

func blockingMoveLoop(d *Deps, c *ClientState, src, dst string, fromLeft, toLeft bool, deadline time.Time) *resp.Reply {
	for {
		var werr *resp.Reply
		var val []byte
		var ok bool
		_ = run(d, c, func(s *store.Store) *resp.Reply {
			val, ok, werr = moveOne(s, d, c.DBIndex, src, dst, fromLeft, toLeft)
			return nil
		})
		if werr != nil {
			return werr
		}
		if ok {
			return resp.Bulk(val)
		}
		if c.execStore != nil { // inside EXEC: never block
			return resp.NullBulk()
		}

		outcome := d.Blocking[c.DBIndex].Wait(c.ID, []string{src}, deadline)
		if outcome != 0 {
			return resp.NullBulk()
		}
	}
}

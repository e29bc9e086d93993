package command

import (
	"math"
	"strconv"
	"strings"

	"github.com/edirooss/bradis/internal/resp"
	"github.com/edirooss/bradis/internal/store"
	"github.com/edirooss/bradis/internal/value"
)

func registerZSetCommands() {
	register(&Spec{Name: "ZADD", Arity: -4, Handler: cmdZAdd})
	register(&Spec{Name: "ZSCORE", Arity: 3, Handler: cmdZScore})
	register(&Spec{Name: "ZMSCORE", Arity: -3, Handler: cmdZMScore})
	register(&Spec{Name: "ZCARD", Arity: 2, Handler: cmdZCard})
	register(&Spec{Name: "ZREM", Arity: -3, Handler: cmdZRem})
	register(&Spec{Name: "ZINCRBY", Arity: 4, Handler: cmdZIncrBy})
	register(&Spec{Name: "ZRANK", Arity: -3, Handler: cmdZRank})
	register(&Spec{Name: "ZREVRANK", Arity: -3, Handler: cmdZRevRank})
	register(&Spec{Name: "ZRANGE", Arity: -4, Handler: cmdZRange})
	register(&Spec{Name: "ZREVRANGE", Arity: -4, Handler: cmdZRevRange})
	register(&Spec{Name: "ZRANGEBYSCORE", Arity: -4, Handler: cmdZRangeByScore})
	register(&Spec{Name: "ZREVRANGEBYSCORE", Arity: -4, Handler: cmdZRevRangeByScore})
	register(&Spec{Name: "ZCOUNT", Arity: 4, Handler: cmdZCount})
	register(&Spec{Name: "ZPOPMIN", Arity: -2, Handler: cmdZPopMin})
	register(&Spec{Name: "ZPOPMAX", Arity: -2, Handler: cmdZPopMax})
}

func asZSet(v value.Value) (*value.ZSet, *resp.Reply) {
	if v == nil {
		return nil, nil
	}
	zv, ok := v.(*value.ZSet)
	if !ok {
		return nil, errWrongType()
	}
	return zv, nil
}

func cmdZAdd(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	i := 2
	var nx, xx, gt, lt, ch, incr bool
	for i < len(args) {
		opt := strings.ToUpper(string(args[i]))
		switch opt {
		case "NX":
			nx = true
		case "XX":
			xx = true
		case "GT":
			gt = true
		case "LT":
			lt = true
		case "CH":
			ch = true
		case "INCR":
			incr = true
		default:
			goto parsed
		}
		i++
	}
parsed:
	if (nx && xx) || (nx && (gt || lt)) || (gt && lt) {
		return errSyntax()
	}
	rest := args[i:]
	if len(rest) == 0 || len(rest)%2 != 0 {
		return errWrongArgs("zadd")
	}
	if incr && len(rest) != 2 {
		return resp.Err("ERR INCR option supports a single increment-element pair")
	}

	type pair struct {
		score  float64
		member string
	}
	pairs := make([]pair, 0, len(rest)/2)
	for i := 0; i < len(rest); i += 2 {
		f, ok := parseFloat(rest[i])
		if !ok || math.IsNaN(f) {
			return errNotFloat()
		}
		pairs = append(pairs, pair{score: f, member: string(rest[i+1])})
	}

	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, _ := s.Get(c.DBIndex, key)
		zv, werr := asZSet(existing)
		if werr != nil {
			return werr
		}
		if zv == nil {
			zv = value.NewZSet()
		}
		th := s.Thresholds()
		added, changed := 0, 0
		var lastScore float64
		var incrOK = true

		for _, p := range pairs {
			oldScore, existed := zv.Score(p.member)
			newScore := p.score
			if incr {
				newScore = oldScore + p.score
				if existed && (math.IsNaN(newScore)) {
					incrOK = false
					break
				}
			}
			if existed && nx {
				if incr {
					lastScore = oldScore
				}
				continue
			}
			if !existed && xx {
				continue
			}
			if existed && gt && newScore <= oldScore {
				if incr {
					lastScore = oldScore
				}
				continue
			}
			if existed && lt && newScore >= oldScore {
				if incr {
					lastScore = oldScore
				}
				continue
			}
			wasAdded, wasChanged := zv.Add(p.member, newScore, th)
			if wasAdded {
				added++
			}
			if wasChanged {
				changed++
			}
			lastScore = newScore
		}

		s.PutKeepTTL(c.DBIndex, key, zv)

		if incr {
			if !incrOK {
				return resp.Err("ERR resulting score is not a number (NaN)")
			}
			return resp.DoubleReply(lastScore)
		}
		if ch {
			return resp.Int(int64(changed))
		}
		return resp.Int(int64(added))
	})
}

func cmdZScore(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.NullBulk()
		}
		zv, werr := asZSet(existing)
		if werr != nil {
			return werr
		}
		sc, ok := zv.Score(string(args[2]))
		if !ok {
			return resp.NullBulk()
		}
		return resp.DoubleReply(sc)
	})
}

func cmdZMScore(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	members := args[2:]
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		out := make([]*resp.Reply, len(members))
		if !ok {
			for i := range out {
				out[i] = resp.NullBulk()
			}
			return resp.ArrSlice(out)
		}
		zv, werr := asZSet(existing)
		if werr != nil {
			return werr
		}
		for i, m := range members {
			sc, ok := zv.Score(string(m))
			if !ok {
				out[i] = resp.NullBulk()
				continue
			}
			out[i] = resp.DoubleReply(sc)
		}
		return resp.ArrSlice(out)
	})
}

func cmdZCard(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.Int(0)
		}
		zv, werr := asZSet(existing)
		if werr != nil {
			return werr
		}
		return resp.Int(int64(zv.Len()))
	})
}

func cmdZRem(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	members := args[2:]
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.Int(0)
		}
		zv, werr := asZSet(existing)
		if werr != nil {
			return werr
		}
		removed := 0
		for _, m := range members {
			if zv.Rem(string(m)) {
				removed++
			}
		}
		if zv.Empty() {
			s.DeleteIfEmpty(c.DBIndex, key, zv)
		} else {
			s.PutKeepTTL(c.DBIndex, key, zv)
		}
		return resp.Int(int64(removed))
	})
}

func cmdZIncrBy(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	delta, ok := parseFloat(args[2])
	if !ok {
		return errNotFloat()
	}
	member := string(args[3])
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, _ := s.Get(c.DBIndex, key)
		zv, werr := asZSet(existing)
		if werr != nil {
			return werr
		}
		if zv == nil {
			zv = value.NewZSet()
		}
		old, _ := zv.Score(member)
		newScore := old + delta
		if math.IsNaN(newScore) {
			return resp.Err("ERR resulting score is not a number (NaN)")
		}
		zv.Add(member, newScore, s.Thresholds())
		s.PutKeepTTL(c.DBIndex, key, zv)
		return resp.DoubleReply(newScore)
	})
}

func cmdZRank(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return zrankHelper(d, c, args, false)
}
func cmdZRevRank(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return zrankHelper(d, c, args, true)
}

func zrankHelper(d *Deps, c *ClientState, args [][]byte, reverse bool) *resp.Reply {
	key := string(args[1])
	member := string(args[2])
	withScore := len(args) > 3 && strings.ToUpper(string(args[3])) == "WITHSCORE"
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			if withScore {
				return resp.NullArray()
			}
			return resp.NullBulk()
		}
		zv, werr := asZSet(existing)
		if werr != nil {
			return werr
		}
		rank := zv.Rank(member)
		if rank < 0 {
			if withScore {
				return resp.NullArray()
			}
			return resp.NullBulk()
		}
		if reverse {
			rank = zv.Len() - 1 - rank
		}
		if withScore {
			sc, _ := zv.Score(member)
			return resp.Arr(resp.Int(int64(rank)), resp.DoubleReply(sc))
		}
		return resp.Int(int64(rank))
	})
}

func zEntryReply(e value.ZEntry, respVersion int, withScores bool) []*resp.Reply {
	if !withScores {
		return []*resp.Reply{resp.BulkString(e.Member)}
	}
	if respVersion >= 3 {
		return []*resp.Reply{resp.Arr(resp.BulkString(e.Member), resp.DoubleReply(e.Score))}
	}
	return []*resp.Reply{resp.BulkString(e.Member), resp.BulkString(formatScore(e.Score))}
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func cmdZRange(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	startArg, stopArg := string(args[2]), string(args[3])
	withScores := false
	rev := false
	for i := 4; i < len(args); i++ {
		if strings.ToUpper(string(args[i])) == "WITHSCORES" {
			withScores = true
		}
		if strings.ToUpper(string(args[i])) == "REV" {
			rev = true
		}
	}
	start, err1 := strconv.Atoi(startArg)
	stop, err2 := strconv.Atoi(stopArg)
	if err1 != nil || err2 != nil {
		return errNotInt()
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.ArrSlice(nil)
		}
		zv, werr := asZSet(existing)
		if werr != nil {
			return werr
		}
		entries := zv.Entries()
		if rev {
			for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
				entries[i], entries[j] = entries[j], entries[i]
			}
		}
		n := len(entries)
		s0, e0 := normalizeIdx(start, stop, n)
		var out []*resp.Reply
		for i := s0; i <= e0 && i < n && i >= 0; i++ {
			out = append(out, zEntryReply(entries[i], c.RESP, withScores)...)
		}
		return resp.ArrSlice(out)
	})
}

func cmdZRevRange(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	newArgs := append([][]byte{}, args...)
	newArgs = append(newArgs, []byte("REV"))
	return cmdZRange(d, c, newArgs)
}

func normalizeIdx(start, stop, n int) (int, int) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	return start, stop
}

type scoreBound struct {
	val       float64
	exclusive bool
}

func parseScoreBound(s string) (scoreBound, bool) {
	excl := false
	if strings.HasPrefix(s, "(") {
		excl = true
		s = s[1:]
	}
	switch s {
	case "-inf":
		return scoreBound{val: math.Inf(-1), exclusive: excl}, true
	case "+inf", "inf":
		return scoreBound{val: math.Inf(1), exclusive: excl}, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return scoreBound{}, false
	}
	return scoreBound{val: f, exclusive: excl}, true
}

func (b scoreBound) includes(score float64, isMin bool) bool {
	if isMin {
		if b.exclusive {
			return score > b.val
		}
		return score >= b.val
	}
	if b.exclusive {
		return score < b.val
	}
	return score <= b.val
}

func zRangeByScoreHelper(d *Deps, c *ClientState, args [][]byte, reverse bool) *resp.Reply {
	key := string(args[1])
	minArg, maxArg := string(args[2]), string(args[3])
	if reverse {
		minArg, maxArg = maxArg, minArg
	}
	minB, ok1 := parseScoreBound(minArg)
	maxB, ok2 := parseScoreBound(maxArg)
	if !ok1 || !ok2 {
		return errNotFloat()
	}
	withScores := false
	limitOffset, limitCount := 0, -1
	hasLimit := false
	for i := 4; i < len(args); i++ {
		opt := strings.ToUpper(string(args[i]))
		switch opt {
		case "WITHSCORES":
			withScores = true
		case "LIMIT":
			if i+2 >= len(args) {
				return errSyntax()
			}
			o, e1 := strconv.Atoi(string(args[i+1]))
			n, e2 := strconv.Atoi(string(args[i+2]))
			if e1 != nil || e2 != nil {
				return errNotInt()
			}
			limitOffset, limitCount = o, n
			hasLimit = true
			i += 2
		default:
			return errSyntax()
		}
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.ArrSlice(nil)
		}
		zv, werr := asZSet(existing)
		if werr != nil {
			return werr
		}
		entries := zv.Entries()
		if reverse {
			for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
				entries[i], entries[j] = entries[j], entries[i]
			}
		}
		var matched []value.ZEntry
		for _, e := range entries {
			if minB.includes(e.Score, true) && maxB.includes(e.Score, false) {
				matched = append(matched, e)
			}
		}
		if hasLimit {
			if limitOffset >= len(matched) {
				matched = nil
			} else {
				matched = matched[limitOffset:]
				if limitCount >= 0 && limitCount < len(matched) {
					matched = matched[:limitCount]
				}
			}
		}
		var out []*resp.Reply
		for _, e := range matched {
			out = append(out, zEntryReply(e, c.RESP, withScores)...)
		}
		return resp.ArrSlice(out)
	})
}

func cmdZRangeByScore(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return zRangeByScoreHelper(d, c, args, false)
}
func cmdZRevRangeByScore(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return zRangeByScoreHelper(d, c, args, true)
}

func cmdZCount(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	minB, ok1 := parseScoreBound(string(args[2]))
	maxB, ok2 := parseScoreBound(string(args[3]))
	if !ok1 || !ok2 {
		return errNotFloat()
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.Int(0)
		}
		zv, werr := asZSet(existing)
		if werr != nil {
			return werr
		}
		n := int64(0)
		for _, e := range zv.Entries() {
			if minB.includes(e.Score, true) && maxB.includes(e.Score, false) {
				n++
			}
		}
		return resp.Int(n)
	})
}

func zPopHelper(d *Deps, c *ClientState, args [][]byte, max bool) *resp.Reply {
	key := string(args[1])
	count := int64(1)
	if len(args) > 2 {
		n, ok := parseInt(args[2])
		if !ok {
			return errNotInt()
		}
		count = n
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		existing, ok := s.Get(c.DBIndex, key)
		if !ok {
			return resp.ArrSlice(nil)
		}
		zv, werr := asZSet(existing)
		if werr != nil {
			return werr
		}
		var popped []value.ZEntry
		if max {
			popped = zv.PopMax(int(count))
		} else {
			popped = zv.PopMin(int(count))
		}
		if zv.Empty() {
			s.DeleteIfEmpty(c.DBIndex, key, zv)
		} else {
			s.PutKeepTTL(c.DBIndex, key, zv)
		}
		var out []*resp.Reply
		for _, e := range popped {
			out = append(out, resp.BulkString(e.Member), resp.DoubleReply(e.Score))
		}
		return resp.ArrSlice(out)
	})
}

func cmdZPopMin(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return zPopHelper(d, c, args, false)
}
func cmdZPopMax(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return zPopHelper(d, c, args, true)
}

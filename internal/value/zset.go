package value

import "sort"

// ZEntry is one (member, score) pair.
type ZEntry struct {
	Member string
	Score  float64
}

// ZSet maps member->score with score-ordered iteration, ties broken by
// lexicographic member order (spec.md section 3). Starts as listpack and
// promotes one-way to skiplist once it outgrows the configured
// thresholds.
type ZSet struct {
	enc    string // "listpack" or "skiplist"
	scores map[string]float64
	order  []string // sorted by (score, member); valid only while enc == "listpack"
	sl     *skiplist
}

var _ Value = (*ZSet)(nil)

// NewZSet returns an empty sorted set starting in the compact encoding.
func NewZSet() *ZSet {
	return &ZSet{enc: "listpack", scores: make(map[string]float64)}
}

func (*ZSet) Kind() Kind { return KindZSet }

func (z *ZSet) Encoding() string { return z.enc }

func (z *ZSet) Len() int { return len(z.scores) }

func (z *ZSet) Empty() bool { return len(z.scores) == 0 }

// Clone returns an independent copy. The skiplist (if any) is rebuilt
// from the member/score pairs rather than deep-copied node by node,
// since it carries no state beyond what Entries() already exposes.
func (z *ZSet) Clone() Value {
	cp := NewZSet()
	cp.enc = "listpack"
	for _, e := range z.Entries() {
		cp.scores[e.Member] = e.Score
		cp.order = append(cp.order, e.Member)
	}
	if z.enc == "skiplist" {
		cp.convertToSkiplist()
	}
	return cp
}

// Score returns member's score and whether it is present.
func (z *ZSet) Score(member string) (float64, bool) {
	s, ok := z.scores[member]
	return s, ok
}

// Add inserts or updates member=score, reporting whether it was newly
// added and whether its score changed.
func (z *ZSet) Add(member string, score float64, th Thresholds) (added, changed bool) {
	old, existed := z.scores[member]
	if existed && old == score {
		return false, false
	}
	if existed {
		z.removeFromOrdering(member, old)
	}
	z.scores[member] = score
	z.insertIntoOrdering(member, score)
	if !existed {
		z.maybePromote(member, th)
	}
	return !existed, true
}

// Rem removes member, reporting whether it was present.
func (z *ZSet) Rem(member string) bool {
	score, ok := z.scores[member]
	if !ok {
		return false
	}
	z.removeFromOrdering(member, score)
	delete(z.scores, member)
	return true
}

func (z *ZSet) insertIntoOrdering(member string, score float64) {
	if z.enc == "skiplist" {
		z.sl.insert(score, member)
		return
	}
	i := sort.Search(len(z.order), func(i int) bool {
		m := z.order[i]
		return !less(z.scores[m], m, score, member)
	})
	z.order = append(z.order, "")
	copy(z.order[i+1:], z.order[i:])
	z.order[i] = member
}

func (z *ZSet) removeFromOrdering(member string, score float64) {
	if z.enc == "skiplist" {
		z.sl.delete(score, member)
		return
	}
	for i, m := range z.order {
		if m == member {
			z.order = append(z.order[:i], z.order[i+1:]...)
			return
		}
	}
}

func (z *ZSet) maybePromote(member string, th Thresholds) {
	if z.enc == "skiplist" {
		return
	}
	if int64(len(z.scores)) > th.ZSetMaxListpackEntries || int64(len(member)) > th.ZSetMaxListpackValue {
		z.convertToSkiplist()
	}
}

func (z *ZSet) convertToSkiplist() {
	z.enc = "skiplist"
	z.sl = newSkiplist()
	for _, m := range z.order {
		z.sl.insert(z.scores[m], m)
	}
	z.order = nil
}

// Entries returns every (member, score) pair in ascending (score, member)
// order.
func (z *ZSet) Entries() []ZEntry {
	out := make([]ZEntry, 0, len(z.scores))
	if z.enc == "skiplist" {
		for n := z.sl.header.level[0].forward; n != nil; n = n.level[0].forward {
			out = append(out, ZEntry{Member: n.member, Score: n.score})
		}
		return out
	}
	for _, m := range z.order {
		out = append(out, ZEntry{Member: m, Score: z.scores[m]})
	}
	return out
}

// Rank returns the 0-based ascending rank of member, or -1 if absent.
func (z *ZSet) Rank(member string) int {
	score, ok := z.scores[member]
	if !ok {
		return -1
	}
	if z.enc == "skiplist" {
		return z.sl.rank(score, member) - 1
	}
	for i, m := range z.order {
		if m == member {
			return i
		}
	}
	return -1
}

// ByRank returns the entry at 0-based ascending rank, or false if out of
// range.
func (z *ZSet) ByRank(rank int) (ZEntry, bool) {
	if rank < 0 || rank >= z.Len() {
		return ZEntry{}, false
	}
	if z.enc == "skiplist" {
		n := z.sl.byRank(rank + 1)
		if n == nil {
			return ZEntry{}, false
		}
		return ZEntry{Member: n.member, Score: n.score}, true
	}
	m := z.order[rank]
	return ZEntry{Member: m, Score: z.scores[m]}, true
}

// PopMin removes and returns the n lowest-scoring entries.
func (z *ZSet) PopMin(n int) []ZEntry {
	entries := z.Entries()
	if n > len(entries) {
		n = len(entries)
	}
	out := entries[:n]
	for _, e := range out {
		z.Rem(e.Member)
	}
	return out
}

// PopMax removes and returns the n highest-scoring entries.
func (z *ZSet) PopMax(n int) []ZEntry {
	entries := z.Entries()
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]ZEntry, n)
	for i := 0; i < n; i++ {
		e := entries[len(entries)-1-i]
		out[i] = e
		z.Rem(e.Member)
	}
	return out
}

package value

// List is a double-ended sequence of byte strings, encoded as listpack
// while small and quicklist (conceptually: a chain of listpack nodes)
// once it outgrows list-max-listpack-size. This implementation keeps a
// single backing slice regardless of encoding — multi-node chaining is an
// internal memory-layout detail spec.md's testable properties never
// observe directly (OBJECT ENCODING only reports the encoding name) — and
// tracks only the encoding tag transition.
type List struct {
	enc   string // "listpack" or "quicklist"
	items [][]byte
}

var _ Value = (*List)(nil)

// NewList returns an empty list starting in the compact encoding.
func NewList() *List {
	return &List{enc: "listpack"}
}

func (*List) Kind() Kind { return KindList }

func (l *List) Encoding() string { return l.enc }

func (l *List) Empty() bool { return len(l.items) == 0 }

func (l *List) Len() int { return len(l.items) }

func (l *List) Clone() Value {
	cp := &List{enc: l.enc, items: make([][]byte, len(l.items))}
	for i, it := range l.items {
		b := make([]byte, len(it))
		copy(b, it)
		cp.items[i] = b
	}
	return cp
}

// PushLeft prepends vals (in argument order, so the last argument ends up
// closest to the head) and re-evaluates encoding.
func (l *List) PushLeft(vals [][]byte, th Thresholds) {
	for _, v := range vals {
		l.items = append([][]byte{v}, l.items...)
	}
	l.maybePromote(th)
}

// PushRight appends vals in argument order.
func (l *List) PushRight(vals [][]byte, th Thresholds) {
	l.items = append(l.items, vals...)
	l.maybePromote(th)
}

func (l *List) maybePromote(th Thresholds) {
	if l.enc == "quicklist" {
		return
	}
	limit := listpackEntryLimit(th.ListMaxListpackSize)
	if int64(len(l.items)) > limit {
		l.enc = "quicklist"
	}
}

// listpackEntryLimit turns the signed list-max-listpack-size config value
// into a maximum entry count: positive N is used directly; negative size
// classes are approximated by an entry count so this slice-based
// implementation can apply a single threshold (spec.md section 3).
func listpackEntryLimit(cfg int64) int64 {
	if cfg > 0 {
		return cfg
	}
	switch cfg {
	case -1:
		return 32
	case -2:
		return 128
	case -3:
		return 512
	case -4:
		return 2048
	case -5:
		return 8192
	default:
		return 128
	}
}

// PopLeft removes and returns up to count items from the head.
func (l *List) PopLeft(count int) [][]byte {
	if count > len(l.items) {
		count = len(l.items)
	}
	out := l.items[:count]
	l.items = l.items[count:]
	return out
}

// PopRight removes and returns up to count items from the tail, nearest
// first.
func (l *List) PopRight(count int) [][]byte {
	if count > len(l.items) {
		count = len(l.items)
	}
	n := len(l.items)
	out := make([][]byte, count)
	for i := 0; i < count; i++ {
		out[i] = l.items[n-1-i]
	}
	l.items = l.items[:n-count]
	return out
}

// Index returns the element at a Python-style (possibly negative) index.
func (l *List) Index(i int) ([]byte, bool) {
	n := len(l.items)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil, false
	}
	return l.items[i], true
}

// SetIndex overwrites the element at a Python-style index.
func (l *List) SetIndex(i int, val []byte) bool {
	n := len(l.items)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return false
	}
	l.items[i] = val
	return true
}

// Range returns a Python-style inclusive-bounds slice.
func (l *List) Range(start, stop int) [][]byte {
	n := len(l.items)
	start, stop = normalizeRange(start, stop, n)
	if start > stop {
		return [][]byte{}
	}
	out := make([][]byte, stop-start+1)
	copy(out, l.items[start:stop+1])
	return out
}

// Trim keeps only the Python-style inclusive-bounds slice, deleting the
// rest, and collapses back to listpack encoding if the remainder fits
// (spec.md section 3's explicit LTRIM exception to monotone promotion).
func (l *List) Trim(start, stop int, th Thresholds) {
	n := len(l.items)
	s, e := normalizeRange(start, stop, n)
	if s > e {
		l.items = nil
	} else {
		kept := make([][]byte, e-s+1)
		copy(kept, l.items[s:e+1])
		l.items = kept
	}
	if int64(len(l.items)) <= listpackEntryLimit(th.ListMaxListpackSize) {
		l.enc = "listpack"
	}
}

// Insert inserts val before (or, with before false, after) the first
// element equal to pivot, reporting whether the pivot was found.
func (l *List) Insert(pivot, val []byte, before bool) bool {
	idx := -1
	for i, it := range l.items {
		if string(it) == string(pivot) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}
	if !before {
		idx++
	}
	l.items = append(l.items, nil)
	copy(l.items[idx+1:], l.items[idx:])
	l.items[idx] = val
	return true
}

// Remove deletes up to |count| occurrences of val: forward from the head
// when count >= 0, backward from the tail when count < 0; count == 0
// removes all occurrences. Returns the number removed.
func (l *List) Remove(val []byte, count int) int {
	removed := 0
	if count >= 0 {
		out := l.items[:0]
		for _, it := range l.items {
			matches := string(it) == string(val)
			canRemove := matches && (count == 0 || removed < count)
			if canRemove {
				removed++
				continue
			}
			out = append(out, it)
		}
		l.items = out
		return removed
	}
	// negative count: remove from the tail backward
	limit := -count
	n := len(l.items)
	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}
	for i := n - 1; i >= 0 && removed < limit; i-- {
		if string(l.items[i]) == string(val) {
			keep[i] = false
			removed++
		}
	}
	out := l.items[:0]
	for i, it := range l.items {
		if keep[i] {
			out = append(out, it)
		}
	}
	l.items = out
	return removed
}

// Pos implements LPOS: rank selects the match-to-start-counting-from
// (negative scans from the tail), count==0 returns every match up to
// maxlen comparisons (0 = unlimited).
func (l *List) Pos(val []byte, rank, count, maxlen int) []int {
	if rank == 0 {
		rank = 1
	}
	var indices []int
	n := len(l.items)
	compared := 0
	matchSkip := rank
	if matchSkip < 0 {
		matchSkip = -matchSkip
	}

	step := func(i int) bool {
		compared++
		if maxlen > 0 && compared > maxlen {
			return false
		}
		if string(l.items[i]) != string(val) {
			return true
		}
		if matchSkip > 1 {
			matchSkip--
			return true
		}
		indices = append(indices, i)
		if count != 0 && len(indices) >= count {
			return false
		}
		return true
	}

	if rank > 0 {
		for i := 0; i < n; i++ {
			if !step(i) {
				break
			}
		}
	} else {
		for i := n - 1; i >= 0; i-- {
			if !step(i) {
				break
			}
		}
	}
	return indices
}

package value

import "sort"

// Set holds unique members using one of three encodings: intset (sorted
// array of int64), listpack (small mixed-content set) or hashtable
// (general case). Adding a non-integer member promotes intset to
// listpack; integer members never cause a demotion (spec.md section 3).
type Set struct {
	enc     string // "intset", "listpack" or "hashtable"
	ints    []int64
	members map[string]struct{}
	order   []string
}

var _ Value = (*Set)(nil)

// NewSet returns an empty set starting in the intset encoding.
func NewSet() *Set {
	return &Set{enc: "intset"}
}

func (*Set) Kind() Kind { return KindSet }

func (s *Set) Encoding() string { return s.enc }

func (s *Set) Len() int {
	if s.enc == "intset" {
		return len(s.ints)
	}
	return len(s.members)
}

func (s *Set) Empty() bool { return s.Len() == 0 }

func (s *Set) Clone() Value {
	cp := &Set{enc: s.enc, ints: append([]int64{}, s.ints...), order: append([]string{}, s.order...)}
	if s.members != nil {
		cp.members = make(map[string]struct{}, len(s.members))
		for k := range s.members {
			cp.members[k] = struct{}{}
		}
	}
	return cp
}

// Has reports whether member is present, regardless of encoding.
func (s *Set) Has(member []byte) bool {
	if s.enc == "intset" {
		n, ok := parseCanonicalInt(member)
		if !ok {
			return false
		}
		_, found := s.searchInt(n)
		return found
	}
	_, ok := s.members[string(member)]
	return ok
}

func (s *Set) searchInt(n int64) (int, bool) {
	i := sort.Search(len(s.ints), func(i int) bool { return s.ints[i] >= n })
	if i < len(s.ints) && s.ints[i] == n {
		return i, true
	}
	return i, false
}

// Add inserts member, promoting encoding as needed, and reports whether
// it was newly added.
func (s *Set) Add(member []byte, th Thresholds) bool {
	if s.enc == "intset" {
		if n, ok := parseCanonicalInt(member); ok {
			i, found := s.searchInt(n)
			if found {
				return false
			}
			s.ints = append(s.ints, 0)
			copy(s.ints[i+1:], s.ints[i:])
			s.ints[i] = n
			if int64(len(s.ints)) > th.SetMaxIntsetEntries {
				s.convertIntsetToListpack()
			}
			s.maybePromoteFromListpack(member, th)
			return true
		}
		// non-integer member: promote intset -> listpack, preserving members.
		s.convertIntsetToListpack()
	}

	if _, ok := s.members[string(member)]; ok {
		return false
	}
	s.members[string(member)] = struct{}{}
	s.order = append(s.order, string(member))
	s.maybePromoteFromListpack(member, th)
	return true
}

func (s *Set) convertIntsetToListpack() {
	s.enc = "listpack"
	s.members = make(map[string]struct{}, len(s.ints))
	s.order = nil
	for _, n := range s.ints {
		str := formatInt(n)
		s.members[str] = struct{}{}
		s.order = append(s.order, str)
	}
	s.ints = nil
}

func (s *Set) maybePromoteFromListpack(member []byte, th Thresholds) {
	if s.enc == "hashtable" || s.enc == "intset" {
		return
	}
	if int64(len(s.members)) > th.SetMaxListpackEntries || int64(len(member)) > th.SetMaxListpackValue {
		s.enc = "hashtable"
	}
}

// Rem removes member, reporting whether it was present.
func (s *Set) Rem(member []byte) bool {
	if s.enc == "intset" {
		n, ok := parseCanonicalInt(member)
		if !ok {
			return false
		}
		i, found := s.searchInt(n)
		if !found {
			return false
		}
		s.ints = append(s.ints[:i], s.ints[i+1:]...)
		return true
	}
	key := string(member)
	if _, ok := s.members[key]; !ok {
		return false
	}
	delete(s.members, key)
	for i, m := range s.order {
		if m == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Members returns every member, in ascending order for intset and
// insertion order otherwise.
func (s *Set) Members() [][]byte {
	if s.enc == "intset" {
		out := make([][]byte, len(s.ints))
		for i, n := range s.ints {
			out[i] = []byte(formatInt(n))
		}
		return out
	}
	out := make([][]byte, len(s.order))
	for i, m := range s.order {
		out[i] = []byte(m)
	}
	return out
}

func formatInt(n int64) string {
	return (&String{isInt: true, i: n}).String()
}

// String renders the int-encoded value's canonical decimal form.
func (s *String) String() string { return string(s.Bytes()) }

package value

import "fmt"

// Hash is a field->value mapping preserving insertion order, encoded as
// listpack while small and hashtable once it outgrows the configured
// thresholds. Promotion is one-way per key (spec.md section 3).
type Hash struct {
	enc    string // "listpack" or "hashtable"
	fields map[string][]byte
	order  []string
}

var _ Value = (*Hash)(nil)

// NewHash returns an empty hash starting in the compact encoding.
func NewHash() *Hash {
	return &Hash{enc: "listpack", fields: make(map[string][]byte)}
}

func (*Hash) Kind() Kind { return KindHash }

func (h *Hash) Encoding() string { return h.enc }

func (h *Hash) Empty() bool { return len(h.fields) == 0 }

func (h *Hash) Len() int { return len(h.fields) }

func (h *Hash) Clone() Value {
	cp := &Hash{enc: h.enc, fields: make(map[string][]byte, len(h.fields)), order: append([]string{}, h.order...)}
	for k, v := range h.fields {
		b := make([]byte, len(v))
		copy(b, v)
		cp.fields[k] = b
	}
	return cp
}

// Get returns the field's value and whether it was present.
func (h *Hash) Get(field string) ([]byte, bool) {
	v, ok := h.fields[field]
	return v, ok
}

// Order returns fields in insertion order, for HGETALL/HKEYS/HVALS/HSCAN.
func (h *Hash) Order() []string { return h.order }

// Set inserts or overwrites field=val, re-evaluating the encoding, and
// reports whether the field was newly created.
func (h *Hash) Set(field string, val []byte, th Thresholds) bool {
	_, existed := h.fields[field]
	if !existed {
		h.order = append(h.order, field)
	}
	h.fields[field] = val
	h.maybePromote(field, val, th)
	return !existed
}

// SetNX inserts field=val only if absent, reporting whether it was set.
func (h *Hash) SetNX(field string, val []byte, th Thresholds) bool {
	if _, ok := h.fields[field]; ok {
		return false
	}
	h.Set(field, val, th)
	return true
}

// Del removes field, reporting whether it was present.
func (h *Hash) Del(field string) bool {
	if _, ok := h.fields[field]; !ok {
		return false
	}
	delete(h.fields, field)
	for i, f := range h.order {
		if f == field {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	return true
}

func (h *Hash) maybePromote(field string, val []byte, th Thresholds) {
	if h.enc == "hashtable" {
		return
	}
	if int64(len(h.fields)) > th.HashMaxListpackEntries ||
		int64(len(field)) > th.HashMaxListpackValue ||
		int64(len(val)) > th.HashMaxListpackValue {
		h.enc = "hashtable"
	}
}

// IncrBy applies the integer-increment rule shared with strings to a
// hash field, creating it as "0" first if absent.
func (h *Hash) IncrBy(field string, delta int64, th Thresholds) (int64, error) {
	cur, ok := h.fields[field]
	var base int64
	if ok {
		n, valid := parseCanonicalInt(cur)
		if !valid {
			return 0, fmt.Errorf("ERR hash value is not an integer")
		}
		base = n
	}
	sum := base + delta
	if (delta > 0 && sum < base) || (delta < 0 && sum > base) {
		return 0, fmt.Errorf("ERR increment or decrement would overflow")
	}
	h.Set(field, NewString(nil).withInt(sum).Bytes(), th)
	return sum, nil
}

// IncrByFloat applies the float-increment rule to a hash field.
func (h *Hash) IncrByFloat(field string, delta float64, th Thresholds) (string, error) {
	cur, ok := h.fields[field]
	base := "0"
	if ok {
		base = string(cur)
	}
	sv := NewString([]byte(base))
	result, formatted, err := sv.IncrByFloat(delta)
	if err != nil {
		return "", err
	}
	h.Set(field, result.Bytes(), th)
	return formatted, nil
}

// withInt is a small helper used by IncrBy to avoid re-implementing
// int64->canonical-bytes formatting.
func (s *String) withInt(n int64) *String {
	return &String{isInt: true, i: n}
}

package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxEmbStrLen is the byte length below which a short string is encoded
// as embstr rather than raw, per spec.md section 3.
const maxEmbStrLen = 44

// String is the Value backing SET/GET and friends. The canonical textual
// form is always recoverable via Bytes(); Int encoding additionally keeps
// a parsed int64 so INCR/INCRBY don't need to re-parse on every call.
type String struct {
	isInt bool
	i     int64
	data  []byte // valid representation when isInt is false
}

var _ Value = (*String)(nil)

func (*String) Kind() Kind { return KindString }

func (s *String) Empty() bool { return false } // strings are never emptied by mutation; DEL removes them

func (s *String) Clone() Value {
	if s.isInt {
		return &String{isInt: true, i: s.i}
	}
	cp := make([]byte, len(s.data))
	copy(cp, s.data)
	return &String{data: cp}
}

// Encoding reports int, embstr or raw based on the current representation.
func (s *String) Encoding() string {
	if s.isInt {
		return "int"
	}
	if len(s.data) <= maxEmbStrLen {
		return "embstr"
	}
	return "raw"
}

// Bytes returns the canonical textual representation of the value.
func (s *String) Bytes() []byte {
	if s.isInt {
		return []byte(strconv.FormatInt(s.i, 10))
	}
	return s.data
}

// Len returns the byte length of the represented value.
func (s *String) Len() int {
	if s.isInt {
		return len(strconv.FormatInt(s.i, 10))
	}
	return len(s.data)
}

// NewString builds a String from raw bytes, selecting Int, EmbStr or Raw
// per the SET encoding rule in spec.md section 3.
func NewString(b []byte) *String {
	if n, ok := parseCanonicalInt(b); ok {
		return &String{isInt: true, i: n}
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return &String{data: cp}
}

// parseCanonicalInt reports whether b is the canonical decimal rendering
// of an int64: no leading zeros, no leading '+', no spaces, and "-0" is
// rejected.
func parseCanonicalInt(b []byte) (int64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	s := string(b)
	neg := false
	digits := s
	if s[0] == '-' {
		neg = true
		digits = s[1:]
	}
	if digits == "" {
		return 0, false
	}
	if digits[0] == '0' && len(digits) > 1 {
		return 0, false
	}
	if neg && digits == "0" {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Append concatenates b onto the value and re-derives the encoding from
// the result, exactly as a fresh SET would (spec.md section 4.A).
func (s *String) Append(b []byte) *String {
	merged := append(s.Bytes(), b...)
	return NewString(merged)
}

// SetRange pads with zero bytes up to offset and overwrites, capped by
// maxLen (proto-max-bulk-len); returns the error message spec.md section 7
// specifies when the cap would be exceeded.
func (s *String) SetRange(offset int, data []byte, maxLen int64) (*String, error) {
	if len(data) == 0 {
		return s, nil
	}
	end := offset + len(data)
	if int64(end) > maxLen {
		return nil, fmt.Errorf("ERR string exceeds maximum allowed size (proto-max-bulk-len)")
	}
	cur := s.Bytes()
	if len(cur) < end {
		grown := make([]byte, end)
		copy(grown, cur)
		cur = grown
	} else {
		cur2 := make([]byte, len(cur))
		copy(cur2, cur)
		cur = cur2
	}
	copy(cur[offset:], data)
	return NewString(cur), nil
}

// GetRange implements the Python-style inclusive-index slicing shared by
// GETRANGE/SUBSTR.
func (s *String) GetRange(start, end int) []byte {
	b := s.Bytes()
	n := len(b)
	start, end = normalizeRange(start, end, n)
	if start > end || n == 0 {
		return []byte{}
	}
	return b[start : end+1]
}

// normalizeRange clamps Python-style (possibly negative) inclusive bounds
// to [0, n-1], returning start > end when the range is empty.
func normalizeRange(start, end, n int) (int, int) {
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if end < 0 {
		end += n
		if end < 0 {
			end = -1
		}
	}
	if end >= n {
		end = n - 1
	}
	if start >= n {
		return 1, 0
	}
	return start, end
}

// IncrBy requires the current value be a canonical int64 (either Int
// encoding or bytes that reparse as one) and adds delta, failing on
// signed 64-bit overflow.
func (s *String) IncrBy(delta int64) (*String, int64, error) {
	cur, ok := s.asInt()
	if !ok {
		return nil, 0, fmt.Errorf("ERR value is not an integer or out of range")
	}
	sum := cur + delta
	if (delta > 0 && sum < cur) || (delta < 0 && sum > cur) {
		return nil, 0, fmt.Errorf("ERR increment or decrement would overflow")
	}
	return &String{isInt: true, i: sum}, sum, nil
}

func (s *String) asInt() (int64, bool) {
	if s.isInt {
		return s.i, true
	}
	return parseCanonicalInt(s.data)
}

// IncrByFloat requires the current value parse as a float, adds delta,
// and rejects NaN/Infinity results. The formatted result trims trailing
// zeroes and never uses scientific notation, per spec.md section 4.A.
func (s *String) IncrByFloat(delta float64) (*String, string, error) {
	cur, err := strconv.ParseFloat(strings.TrimSpace(string(s.Bytes())), 64)
	if err != nil {
		return nil, "", fmt.Errorf("ERR value is not a valid float")
	}
	sum := cur + delta
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, "", fmt.Errorf("ERR increment would produce NaN or Infinity")
	}
	formatted := formatFloatTrimmed(sum)
	return NewString([]byte(formatted)), formatted, nil
}

// formatFloatTrimmed renders f with up to 17 significant digits, fixed
// notation only, trailing zeroes (and a trailing '.') trimmed.
func formatFloatTrimmed(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "" || s == "-" {
		s = "0"
	}
	return s
}

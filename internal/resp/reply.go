// Package resp implements the RESP2/RESP3 wire protocol: frame types, a
// Reader that tokenizes both multibulk and inline commands, and a Writer
// that serializes replies for the negotiated protocol version.
//
// Per spec.md section 1, the RESP byte-level tokenizer is "glue, not
// engineering" — this package keeps that spirit by exposing a small,
// mechanical surface (ReadCommand / WriteReply) rather than a general
// streaming parser, while still honoring the exact framing rules spec.md
// section 6 calls out (protocol errors, inline quoting, RESP3 kinds).
package resp

// Kind identifies which RESP frame type a Reply carries.
type Kind int

const (
	KindSimpleString Kind = iota
	KindError
	KindInteger
	KindBulk
	KindNullBulk
	KindArray
	KindNullArray
	KindMap    // RESP3 map; downgrades to a flat array under RESP2
	KindSet    // RESP3 set; downgrades to an array under RESP2
	KindDouble // RESP3 double; downgrades to a bulk string under RESP2
	KindBool   // RESP3 boolean; downgrades to :1/:0 under RESP2
	KindBigNumber
	KindVerbatim // RESP3 verbatim string; downgrades to a bulk string under RESP2
	KindPush     // RESP3 push; downgrades to an array under RESP2

	// KindMultiReply is not a real RESP frame: it carries several
	// independent top-level replies (e.g. one SUBSCRIBE ack per channel)
	// that the Writer emits back to back rather than wrapping in an array.
	KindMultiReply
)

// Reply is a single RESP frame, able to represent any RESP2 or RESP3 type.
type Reply struct {
	Kind    Kind
	Str     string  // simple string / error / big number text
	Int     int64   // integer
	Bulk    []byte  // bulk string bytes
	Double  float64 // RESP3 double
	Bool    bool    // RESP3 boolean
	VFormat string  // RESP3 verbatim string format, e.g. "txt"
	Array   []*Reply
}

func Simple(s string) *Reply   { return &Reply{Kind: KindSimpleString, Str: s} }
func Err(s string) *Reply      { return &Reply{Kind: KindError, Str: s} }
func Int(n int64) *Reply       { return &Reply{Kind: KindInteger, Int: n} }
func Bulk(b []byte) *Reply     { return &Reply{Kind: KindBulk, Bulk: b} }
func BulkString(s string) *Reply { return &Reply{Kind: KindBulk, Bulk: []byte(s)} }
func NullBulk() *Reply         { return &Reply{Kind: KindNullBulk} }
func NullArray() *Reply        { return &Reply{Kind: KindNullArray} }
func Arr(items ...*Reply) *Reply { return &Reply{Kind: KindArray, Array: items} }
func ArrSlice(items []*Reply) *Reply { return &Reply{Kind: KindArray, Array: items} }
func MapReply(pairs []*Reply) *Reply { return &Reply{Kind: KindMap, Array: pairs} }
func SetReply(items []*Reply) *Reply { return &Reply{Kind: KindSet, Array: items} }
func DoubleReply(f float64) *Reply   { return &Reply{Kind: KindDouble, Double: f} }
func BoolReply(b bool) *Reply        { return &Reply{Kind: KindBool, Bool: b} }
func BigNumber(s string) *Reply      { return &Reply{Kind: KindBigNumber, Str: s} }
func Verbatim(format, text string) *Reply {
	return &Reply{Kind: KindVerbatim, VFormat: format, Str: text}
}
func PushReply(items []*Reply) *Reply { return &Reply{Kind: KindPush, Array: items} }
func MultiReply(items []*Reply) *Reply { return &Reply{Kind: KindMultiReply, Array: items} }

// OK is the canned "+OK" reply most write commands return.
func OK() *Reply { return Simple("OK") }

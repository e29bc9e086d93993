package resp

import (
	"bufio"
	"bytes"
	"testing"
)

func render(t *testing.T, r *Reply, protoVersion int) string {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(bufio.NewWriter(&buf))
	if err := w.WriteReply(r, protoVersion); err != nil {
		t.Fatalf("WriteReply: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	return buf.String()
}

func TestWriteReplyBasicFrames(t *testing.T) {
	cases := []struct {
		name string
		r    *Reply
		v    int
		want string
	}{
		{"simple", Simple("OK"), 2, "+OK\r\n"},
		{"error", Err("ERR bad"), 2, "-ERR bad\r\n"},
		{"integer", Int(42), 2, ":42\r\n"},
		{"bulk", BulkString("hi"), 2, "$2\r\nhi\r\n"},
		{"nil bulk", NullBulk(), 2, "$-1\r\n"},
		{"nil array", NullArray(), 2, "*-1\r\n"},
		{"array", Arr(Int(1), Int(2)), 2, "*2\r\n:1\r\n:2\r\n"},
	}
	for _, tc := range cases {
		if got := render(t, tc.r, tc.v); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestWriteReplyRESP3Downgrades(t *testing.T) {
	cases := []struct {
		name   string
		r      *Reply
		v3want string
		v2want string
	}{
		{"null", NullBulk(), "_\r\n", "$-1\r\n"},
		{"double", DoubleReply(1.5), ",1.5\r\n", "$3\r\n1.5\r\n"},
		{"bool true", BoolReply(true), "#t\r\n", ":1\r\n"},
		{"bool false", BoolReply(false), "#f\r\n", ":0\r\n"},
		{"set", SetReply([]*Reply{Int(1)}), "~1\r\n:1\r\n", "*1\r\n:1\r\n"},
		{"push", PushReply([]*Reply{BulkString("msg")}), ">1\r\n$3\r\nmsg\r\n", "*1\r\n$3\r\nmsg\r\n"},
		{"big number", BigNumber("123456789012345678901234567890"), "(123456789012345678901234567890\r\n", "$30\r\n123456789012345678901234567890\r\n"},
	}
	for _, tc := range cases {
		if got := render(t, tc.r, 3); got != tc.v3want {
			t.Errorf("%s (RESP3): got %q, want %q", tc.name, got, tc.v3want)
		}
		if got := render(t, tc.r, 2); got != tc.v2want {
			t.Errorf("%s (RESP2): got %q, want %q", tc.name, got, tc.v2want)
		}
	}
}

func TestWriteReplyMap(t *testing.T) {
	r := MapReply([]*Reply{BulkString("k"), Int(1)})
	if got, want := render(t, r, 3), "%1\r\n$1\r\nk\r\n:1\r\n"; got != want {
		t.Errorf("RESP3 map: got %q, want %q", got, want)
	}
	if got, want := render(t, r, 2), "*2\r\n$1\r\nk\r\n:1\r\n"; got != want {
		t.Errorf("RESP2 map downgrade: got %q, want %q", got, want)
	}
}

func TestWriteReplyMultiReply(t *testing.T) {
	r := MultiReply([]*Reply{Simple("a"), Simple("b")})
	if got, want := render(t, r, 2), "+a\r\n+b\r\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

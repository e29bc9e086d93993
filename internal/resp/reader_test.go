package resp

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReadCommandMultibulk(t *testing.T) {
	raw := "*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n"
	r := NewReader(bufio.NewReader(strings.NewReader(raw)), 0)
	args, err := r.ReadCommand()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]byte{[]byte("SET"), []byte("foo"), []byte("bar")}
	for i, w := range want {
		if !bytes.Equal(args[i], w) {
			t.Errorf("arg[%d] = %q, want %q", i, args[i], w)
		}
	}
}

func TestReadCommandInline(t *testing.T) {
	raw := "PING\r\n"
	r := NewReader(bufio.NewReader(strings.NewReader(raw)), 0)
	args, err := r.ReadCommand()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(args) != 1 || string(args[0]) != "PING" {
		t.Fatalf("args = %v, want [PING]", args)
	}
}

func TestReadCommandInlineQuoted(t *testing.T) {
	raw := `SET foo "bar baz"` + "\r\n"
	r := NewReader(bufio.NewReader(strings.NewReader(raw)), 0)
	args, err := r.ReadCommand()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"SET", "foo", "bar baz"}
	for i, w := range want {
		if string(args[i]) != w {
			t.Errorf("arg[%d] = %q, want %q", i, args[i], w)
		}
	}
}

func TestReadCommandInlineUnbalancedQuotes(t *testing.T) {
	raw := `SET foo "bar` + "\r\n"
	r := NewReader(bufio.NewReader(strings.NewReader(raw)), 0)
	_, err := r.ReadCommand()
	var aerr *ErrArgument
	if !errors.As(err, &aerr) {
		t.Fatalf("err = %v, want *ErrArgument", err)
	}
}

func TestReadCommandMultibulkProtocolError(t *testing.T) {
	raw := "*abc\r\n"
	r := NewReader(bufio.NewReader(strings.NewReader(raw)), 0)
	_, err := r.ReadCommand()
	var perr *ErrProtocol
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ErrProtocol", err)
	}
}

func TestReadCommandBulkOversized(t *testing.T) {
	// proto-max-bulk-len of 4 bytes; the payload is 10, so the reader
	// should drain it and report a non-fatal ErrArgument, then keep
	// reading the next well-framed command.
	raw := "*1\r\n$10\r\n0123456789\r\n*1\r\n$4\r\nPING\r\n"
	r := NewReader(bufio.NewReader(strings.NewReader(raw)), 4)

	_, err := r.ReadCommand()
	var aerr *ErrArgument
	if !errors.As(err, &aerr) {
		t.Fatalf("err = %v, want *ErrArgument", err)
	}

	args, err := r.ReadCommand()
	if err != nil {
		t.Fatalf("unexpected error reading next command: %v", err)
	}
	if len(args) != 1 || string(args[0]) != "PING" {
		t.Fatalf("args = %v, want [PING]", args)
	}
}

func TestReadCommandEOF(t *testing.T) {
	r := NewReader(bufio.NewReader(strings.NewReader("")), 0)
	_, err := r.ReadCommand()
	if !errors.Is(err, io.EOF) {
		t.Fatalf("err = %v, want io.EOF", err)
	}
}

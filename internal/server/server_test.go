package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/edirooss/bradis/internal/command"
	"github.com/edirooss/bradis/internal/config"
	"github.com/edirooss/bradis/internal/pubsub"
	"github.com/edirooss/bradis/internal/reclaim"
	"github.com/edirooss/bradis/internal/store"
	"github.com/edirooss/bradis/internal/value"
	"go.uber.org/zap"
)

// newTestServer wires a full Server the way cmd/bradis-server/main.go does,
// binding an OS-assigned loopback port so parallel test runs never collide.
func newTestServer(t *testing.T) (addr string, cancel context.CancelFunc) {
	t.Helper()
	st := store.New(zap.NewNop(), value.Thresholds{
		HashMaxListpackEntries: 128, HashMaxListpackValue: 64,
		SetMaxIntsetEntries: 512, SetMaxListpackEntries: 128, SetMaxListpackValue: 64,
		ZSetMaxListpackEntries: 128, ZSetMaxListpackValue: 64,
		ListMaxListpackSize: 128,
	}, 512*1024*1024)
	rc := reclaim.New(zap.NewNop(), 16)
	deps := command.NewDeps(st, config.Default(), pubsub.NewHub(), rc, zap.NewNop())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve a loopback port: %v", err)
	}
	addr = ln.Addr().String()
	ln.Close()

	srv := New(Config{Addr: addr}, deps, st, rc, zap.NewNop())
	ctx, cancelFn := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- srv.Run(ctx) }()
	t.Cleanup(func() {
		cancelFn()
		select {
		case <-runErr:
		case <-time.After(time.Second):
		}
	})

	if !waitForListener(addr, 2*time.Second) {
		t.Fatalf("server never started listening on %s", addr)
	}
	return addr, cancelFn
}

func waitForListener(addr string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		c, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err == nil {
			c.Close()
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// sendCommand writes a RESP multibulk command frame.
func sendCommand(t *testing.T, w io.Writer, args ...string) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "*%d\r\n", len(args))
	for _, a := range args {
		fmt.Fprintf(&b, "$%d\r\n%s\r\n", len(a), a)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		t.Fatalf("write command: %v", err)
	}
}

// readReply parses one RESP2 reply frame, recursively for arrays, joining
// array elements with "|" so a test can assert with strings.Contains
// without hand-rolling a full decoder.
func readReply(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("empty reply line")
	}
	switch line[0] {
	case '+', '-', ':':
		return line, nil
	case '$':
		n, _ := strconv.Atoi(line[1:])
		if n < 0 {
			return line, nil
		}
		buf := make([]byte, n+2)
		if _, err := io.ReadFull(br, buf); err != nil {
			return "", err
		}
		return line + "\r\n" + string(buf[:n]), nil
	case '*':
		n, _ := strconv.Atoi(line[1:])
		if n < 0 {
			return line, nil
		}
		parts := []string{line}
		for i := 0; i < n; i++ {
			p, err := readReply(br)
			if err != nil {
				return "", err
			}
			parts = append(parts, p)
		}
		return strings.Join(parts, "|"), nil
	}
	return line, nil
}

// TestServerEndToEndSetGetPing dials a real listener started by Server.Run
// and drives a handful of commands over the wire, exercising the full
// reader/coordinator/writer/dispatch path end to end (the path review
// comments #1 and #2 found entirely unreachable before internal/server and
// cmd/bradis-server existed).
func TestServerEndToEndSetGetPing(t *testing.T) {
	addr, _ := newTestServer(t)

	c, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	br := bufio.NewReader(c)

	sendCommand(t, c, "PING")
	if got, err := readReply(br); err != nil || got != "+PONG" {
		t.Fatalf("PING reply = %q, %v, want +PONG", got, err)
	}

	sendCommand(t, c, "SET", "greeting", "hello")
	if got, err := readReply(br); err != nil || got != "+OK" {
		t.Fatalf("SET reply = %q, %v, want +OK", got, err)
	}

	sendCommand(t, c, "GET", "greeting")
	if got, err := readReply(br); err != nil || got != "$5\r\nhello" {
		t.Fatalf("GET reply = %q, %v, want $5 hello", got, err)
	}

	sendCommand(t, c, "INCR", "counter")
	if got, err := readReply(br); err != nil || got != ":1" {
		t.Fatalf("INCR reply = %q, %v, want :1", got, err)
	}

	sendCommand(t, c, "GET", "missing-key")
	if got, err := readReply(br); err != nil || got != "$-1" {
		t.Fatalf("GET of missing key = %q, %v, want a nil bulk", got, err)
	}
}

// TestServerEndToEndMultiExec exercises MULTI/QUEUED/EXEC over a live
// connection, confirming the coordinator's queueing logic (conn.dispatch)
// and cmdExec's single-Submit replay interoperate correctly end to end.
func TestServerEndToEndMultiExec(t *testing.T) {
	addr, _ := newTestServer(t)

	c, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	br := bufio.NewReader(c)

	sendCommand(t, c, "MULTI")
	if got, _ := readReply(br); got != "+OK" {
		t.Fatalf("MULTI reply = %q, want +OK", got)
	}

	sendCommand(t, c, "SET", "txnkey", "1")
	if got, _ := readReply(br); got != "+QUEUED" {
		t.Fatalf("queued SET reply = %q, want +QUEUED", got)
	}

	sendCommand(t, c, "INCR", "txnkey")
	if got, _ := readReply(br); got != "+QUEUED" {
		t.Fatalf("queued INCR reply = %q, want +QUEUED", got)
	}

	sendCommand(t, c, "EXEC")
	got, err := readReply(br)
	if err != nil {
		t.Fatalf("EXEC reply error: %v", err)
	}
	if !strings.HasPrefix(got, "*2|") || !strings.HasSuffix(got, ":2") {
		t.Fatalf("EXEC reply = %q, want a 2-element array ending in :2", got)
	}

	sendCommand(t, c, "GET", "txnkey")
	if got, _ := readReply(br); got != "$1\r\n2" {
		t.Fatalf("GET txnkey = %q, want $1 2", got)
	}
}

// TestServerEndToEndUnknownCommand confirms an unrecognized command reaches
// conn.dispatch and produces the expected error frame rather than hanging
// or closing the connection.
func TestServerEndToEndUnknownCommand(t *testing.T) {
	addr, _ := newTestServer(t)

	c, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	br := bufio.NewReader(c)

	sendCommand(t, c, "NOTACOMMAND")
	got, err := readReply(br)
	if err != nil {
		t.Fatalf("reply error: %v", err)
	}
	if !strings.HasPrefix(got, "-ERR unknown command") {
		t.Fatalf("reply = %q, want an unknown-command error", got)
	}

	// The connection must still be alive afterward.
	sendCommand(t, c, "PING")
	if got, _ := readReply(br); got != "+PONG" {
		t.Fatalf("PING after unknown command = %q, want +PONG", got)
	}
}

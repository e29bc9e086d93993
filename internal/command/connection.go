package command

import (
	"fmt"
	"strings"

	"github.com/edirooss/bradis/internal/blocking"
	"github.com/edirooss/bradis/internal/resp"
	"github.com/edirooss/bradis/internal/store"
)

func registerConnectionCommands() {
	register(&Spec{Name: "HELLO", Arity: -1, LocalOnly: true, Handler: cmdHello})
	register(&Spec{Name: "SELECT", Arity: 2, LocalOnly: true, Handler: cmdSelect})
	register(&Spec{Name: "PING", Arity: -1, LocalOnly: true, Handler: cmdPing})
	register(&Spec{Name: "ECHO", Arity: 2, LocalOnly: true, Handler: cmdEcho})
	register(&Spec{Name: "QUIT", Arity: -1, LocalOnly: true, Handler: cmdQuit})
	register(&Spec{Name: "AUTH", Arity: -2, LocalOnly: true, Handler: cmdAuth})
	register(&Spec{Name: "CLIENT", Arity: -2, LocalOnly: true, Handler: cmdClient})
}

func cmdHello(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	i := 1
	if len(args) > 1 {
		if n, ok := parseInt(args[1]); ok {
			if n != 2 && n != 3 {
				return resp.Err("NOPROTO unsupported protocol version")
			}
			c.RESP = int(n)
			i = 2
		}
	}
	for i < len(args) {
		opt := strings.ToUpper(string(args[i]))
		switch opt {
		case "AUTH":
			if i+2 >= len(args) {
				return errSyntax()
			}
			i += 3
		case "SETNAME":
			if i+1 >= len(args) {
				return errSyntax()
			}
			c.Name = string(args[i+1])
			i += 2
		default:
			return errSyntax()
		}
	}

	fields := []*resp.Reply{
		resp.BulkString("server"), resp.BulkString("bradis"),
		resp.BulkString("version"), resp.BulkString("1.0.0"),
		resp.BulkString("proto"), resp.Int(int64(c.RESP)),
		resp.BulkString("id"), resp.Int(c.ID),
		resp.BulkString("mode"), resp.BulkString("standalone"),
		resp.BulkString("role"), resp.BulkString("master"),
		resp.BulkString("modules"), resp.ArrSlice(nil),
	}
	if c.RESP >= 3 {
		return resp.MapReply(fields)
	}
	return resp.ArrSlice(fields)
}

func cmdSelect(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	n, ok := parseInt(args[1])
	if !ok || n < 0 || int(n) >= store.NumDatabases {
		return errDBRange()
	}
	c.DBIndex = int(n)
	return resp.OK()
}

func cmdPing(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	if c.SubCount() > 0 && c.RESP < 3 {
		msg := []byte("PONG")
		if len(args) > 1 {
			msg = args[1]
		}
		return resp.PushReply([]*resp.Reply{resp.BulkString("pong"), resp.Bulk(msg)})
	}
	if len(args) > 1 {
		return resp.Bulk(args[1])
	}
	return resp.Simple("PONG")
}

func cmdEcho(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return resp.Bulk(args[1])
}

func cmdQuit(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return resp.OK()
}

func cmdAuth(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return resp.Err("ERR Client sent AUTH, but no password is set. Did you mean AUTH <username> <password>?")
}

func cmdClient(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	if len(args) < 2 {
		return errWrongArgs("client")
	}
	sub := upper(args[1])
	switch sub {
	case "ID":
		return resp.Int(c.ID)
	case "GETNAME":
		return resp.BulkString(c.Name)
	case "SETNAME":
		if len(args) != 3 {
			return errWrongArgs("client|setname")
		}
		name := string(args[2])
		if strings.ContainsAny(name, " \n") {
			return resp.Err("ERR Client names cannot contain spaces, newlines or special characters.")
		}
		c.Name = name
		return resp.OK()
	case "NO-EVICT":
		if len(args) != 3 {
			return errSyntax()
		}
		c.NoEvict = strings.EqualFold(string(args[2]), "on")
		return resp.OK()
	case "NO-TOUCH":
		if len(args) != 3 {
			return errSyntax()
		}
		c.NoTouch = strings.EqualFold(string(args[2]), "on")
		return resp.OK()
	case "REPLY":
		if len(args) != 3 {
			return errSyntax()
		}
		switch upper(args[2]) {
		case "ON":
			c.ReplyMode = ReplyOn
			return resp.OK()
		case "OFF":
			c.ReplyMode = ReplyOff
			return nil
		case "SKIP":
			c.ReplyMode = ReplySkip
			return nil
		}
		return errSyntax()
	case "LIST":
		return clientListReply(d)
	case "INFO":
		return resp.BulkString(clientInfoLine(c))
	case "UNBLOCK":
		if len(args) < 3 {
			return errWrongArgs("client|unblock")
		}
		id, ok := parseInt(args[2])
		if !ok {
			return errNotInt()
		}
		outcome := blocking.OutcomeTimeout
		if len(args) > 3 && strings.EqualFold(string(args[3]), "ERROR") {
			outcome = blocking.OutcomeError
		}
		unblocked := false
		for i := range d.Blocking {
			if d.Blocking[i].Unblock(id, outcome) {
				unblocked = true
			}
		}
		if unblocked {
			return resp.Int(1)
		}
		return resp.Int(0)
	case "KILL":
		if d.Registry == nil || len(args) < 3 {
			return resp.Int(0)
		}
		id, ok := parseInt(args[2])
		if !ok {
			return errNotInt()
		}
		if d.Registry.Kill(id) {
			return resp.Int(1)
		}
		return resp.Int(0)
	}
	return errUnknownSub(sub, "CLIENT")
}

func clientInfoLine(c *ClientState) string {
	return fmt.Sprintf("id=%d addr=%s name=%s db=%d resp=%d age=%d sub=%d psub=%d multi=%d",
		c.ID, c.RemoteAddr, c.Name, c.DBIndex, c.RESP, 0, len(c.SubChannels), len(c.SubPatterns), multiCount(c))
}

func multiCount(c *ClientState) int {
	if !c.InMulti {
		return -1
	}
	return len(c.MultiQueue)
}

func clientListReply(d *Deps) *resp.Reply {
	if d.Registry == nil {
		return resp.BulkString("")
	}
	var b strings.Builder
	for _, cs := range d.Registry.Snapshot() {
		b.WriteString(clientInfoLine(cs))
		b.WriteByte('\n')
	}
	return resp.BulkString(b.String())
}

package command

import (
	"fmt"

	"github.com/edirooss/bradis/internal/resp"
)

func errWrongType() *resp.Reply {
	return resp.Err("WRONGTYPE Operation against a key holding the wrong kind of value")
}

func errWrongArgs(cmd string) *resp.Reply {
	return resp.Err(fmt.Sprintf("ERR wrong number of arguments for '%s' command", cmd))
}

func errSyntax() *resp.Reply {
	return resp.Err("ERR syntax error")
}

func errUnknownSub(sub, cmd string) *resp.Reply {
	return resp.Err(fmt.Sprintf("ERR Unknown subcommand or wrong number of arguments for '%s'. Try %s HELP.", sub, cmd))
}

func errNotInt() *resp.Reply {
	return resp.Err("ERR value is not an integer or out of range")
}

func errNotFloat() *resp.Reply {
	return resp.Err("ERR value is not a valid float")
}

func errNoSuchKey() *resp.Reply {
	return resp.Err("ERR no such key")
}

func errDBRange() *resp.Reply {
	return resp.Err("ERR DB index is out of range")
}

func errIndexRange() *resp.Reply {
	return resp.Err("ERR index out of range")
}

func errInvalidExpire(cmd string) *resp.Reply {
	return resp.Err(fmt.Sprintf("ERR invalid expire time in '%s' command", cmd))
}

func errSameObject() *resp.Reply {
	return resp.Err("ERR source and destination objects are the same")
}

func err(msg string) *resp.Reply { return resp.Err(msg) }

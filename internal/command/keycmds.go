package command

import (
	"strings"

	"github.com/edirooss/bradis/internal/resp"
	"github.com/edirooss/bradis/internal/store"
)

func registerKeyCommands() {
	register(&Spec{Name: "EXISTS", Arity: -2, Handler: cmdExists})
	register(&Spec{Name: "DEL", Arity: -2, Handler: cmdDel})
	register(&Spec{Name: "UNLINK", Arity: -2, Handler: cmdUnlink})
	register(&Spec{Name: "RENAME", Arity: 3, Handler: cmdRename})
	register(&Spec{Name: "RENAMENX", Arity: 3, Handler: cmdRenameNX})
	register(&Spec{Name: "KEYS", Arity: 2, Handler: cmdKeys})
	register(&Spec{Name: "TOUCH", Arity: -2, Handler: cmdTouch})
	register(&Spec{Name: "COPY", Arity: -3, Handler: cmdCopy})
	register(&Spec{Name: "MOVE", Arity: 3, Handler: cmdMove})
	register(&Spec{Name: "SWAPDB", Arity: 3, Handler: cmdSwapDB})
	register(&Spec{Name: "RANDOMKEY", Arity: 1, Handler: cmdRandomKey})
	register(&Spec{Name: "TYPE", Arity: 2, Handler: cmdType})
	register(&Spec{Name: "DBSIZE", Arity: 1, Handler: cmdDBSize})
	register(&Spec{Name: "FLUSHDB", Arity: -1, Handler: cmdFlushDB})
	register(&Spec{Name: "FLUSHALL", Arity: -1, Handler: cmdFlushAll})
}

func cmdExists(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	keys := make([]string, len(args)-1)
	for i, k := range args[1:] {
		keys[i] = string(k)
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		return resp.Int(int64(s.Exists(c.DBIndex, keys)))
	})
}

func cmdDel(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	keys := make([]string, len(args)-1)
	for i, k := range args[1:] {
		keys[i] = string(k)
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		return resp.Int(int64(s.Del(c.DBIndex, keys)))
	})
}

func cmdUnlink(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	keys := make([]string, len(args)-1)
	for i, k := range args[1:] {
		keys[i] = string(k)
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		n := 0
		for _, k := range keys {
			if v, ok := s.Get(c.DBIndex, k); ok {
				if s.Del(c.DBIndex, []string{k}) > 0 {
					n++
					d.Reclaim.Drop(v)
				}
			}
		}
		return resp.Int(int64(n))
	})
}

func cmdRename(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	src, dst := string(args[1]), string(args[2])
	return run(d, c, func(s *store.Store) *resp.Reply {
		if !s.Rename(c.DBIndex, src, dst) {
			return errNoSuchKey()
		}
		return resp.OK()
	})
}

func cmdRenameNX(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	src, dst := string(args[1]), string(args[2])
	return run(d, c, func(s *store.Store) *resp.Reply {
		ok, srcExisted := s.RenameNX(c.DBIndex, src, dst)
		if !srcExisted {
			return errNoSuchKey()
		}
		if ok {
			return resp.Int(1)
		}
		return resp.Int(0)
	})
}

func cmdKeys(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	pattern := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		return stringArray(s.Keys(c.DBIndex, pattern))
	})
}

func cmdTouch(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	keys := make([]string, len(args)-1)
	for i, k := range args[1:] {
		keys[i] = string(k)
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		return resp.Int(int64(s.Touch(c.DBIndex, keys)))
	})
}

func cmdCopy(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	src, dst := string(args[1]), string(args[2])
	destDB := c.DBIndex
	replace := false
	for i := 3; i < len(args); i++ {
		opt := strings.ToUpper(string(args[i]))
		switch opt {
		case "DB":
			if i+1 >= len(args) {
				return errSyntax()
			}
			n, ok := parseInt(args[i+1])
			if !ok || n < 0 || int(n) >= store.NumDatabases {
				return errDBRange()
			}
			destDB = int(n)
			i++
		case "REPLACE":
			replace = true
		default:
			return errSyntax()
		}
	}
	if destDB == c.DBIndex && src == dst {
		return errSameObject()
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		if s.Copy(c.DBIndex, src, destDB, dst, replace) {
			return resp.Int(1)
		}
		return resp.Int(0)
	})
}

func cmdMove(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	n, ok := parseInt(args[2])
	if !ok || n < 0 || int(n) >= store.NumDatabases {
		return errDBRange()
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		if s.Move(c.DBIndex, key, int(n)) {
			return resp.Int(1)
		}
		return resp.Int(0)
	})
}

func cmdSwapDB(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	a, ok1 := parseInt(args[1])
	b, ok2 := parseInt(args[2])
	if !ok1 || !ok2 || a < 0 || b < 0 || int(a) >= store.NumDatabases || int(b) >= store.NumDatabases {
		return errDBRange()
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		s.SwapDB(int(a), int(b))
		return resp.OK()
	})
}

func cmdRandomKey(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return run(d, c, func(s *store.Store) *resp.Reply {
		k, ok := s.RandomKey(c.DBIndex)
		if !ok {
			return resp.NullBulk()
		}
		return resp.BulkString(k)
	})
}

func cmdType(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	return run(d, c, func(s *store.Store) *resp.Reply {
		v, ok := s.Peek(c.DBIndex, key)
		if !ok {
			return resp.Simple("none")
		}
		return resp.Simple(v.Kind().String())
	})
}

func cmdDBSize(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return run(d, c, func(s *store.Store) *resp.Reply {
		return resp.Int(int64(s.DBSize(c.DBIndex)))
	})
}

func parseAsyncFlag(args [][]byte) (bool, *resp.Reply) {
	if len(args) == 1 {
		return false, nil
	}
	if len(args) != 2 {
		return false, errSyntax()
	}
	switch strings.ToUpper(string(args[1])) {
	case "ASYNC":
		return true, nil
	case "SYNC":
		return false, nil
	}
	return false, errSyntax()
}

func cmdFlushDB(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	async, werr := parseAsyncFlag(args)
	if werr != nil {
		return werr
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		if async {
			for _, k := range s.Keys(c.DBIndex, "*") {
				if v, ok := s.Peek(c.DBIndex, k); ok {
					d.Reclaim.Drop(v)
				}
			}
		}
		s.FlushDB(c.DBIndex)
		return resp.OK()
	})
}

func cmdFlushAll(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	async, werr := parseAsyncFlag(args)
	if werr != nil {
		return werr
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		for db := 0; async && db < store.NumDatabases; db++ {
			for _, k := range s.Keys(db, "*") {
				if v, ok := s.Peek(db, k); ok {
					d.Reclaim.Drop(v)
				}
			}
		}
		s.FlushAll()
		return resp.OK()
	})
}

package command

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/edirooss/bradis/internal/config"
	"github.com/edirooss/bradis/internal/glob"
	"github.com/edirooss/bradis/internal/resp"
	"github.com/edirooss/bradis/internal/store"
	"github.com/edirooss/bradis/internal/value"
)

func registerServerCommands() {
	register(&Spec{Name: "COMMAND", Arity: -1, Handler: cmdCommand})
	register(&Spec{Name: "CONFIG", Arity: -2, Handler: cmdConfig})
	register(&Spec{Name: "TIME", Arity: 1, Handler: cmdTime})
	register(&Spec{Name: "LASTSAVE", Arity: 1, Handler: cmdLastSave})
	register(&Spec{Name: "OBJECT", Arity: -2, Handler: cmdObject})
	register(&Spec{Name: "DEBUG", Arity: -2, Handler: cmdDebug})
	register(&Spec{Name: "SCAN", Arity: -2, Handler: cmdScan})
	register(&Spec{Name: "HSCAN", Arity: -3, Handler: cmdHScan})
	register(&Spec{Name: "SSCAN", Arity: -3, Handler: cmdSScan})
	register(&Spec{Name: "ZSCAN", Arity: -3, Handler: cmdZScan})
}

// --- COMMAND ---------------------------------------------------------

func cmdCommand(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	if len(args) == 1 {
		out := make([]*resp.Reply, 0, len(registry))
		for _, spec := range registry {
			out = append(out, commandInfoReply(spec))
		}
		return resp.ArrSlice(out)
	}
	switch upper(args[1]) {
	case "DOCS":
		return resp.MapReply(nil)
	case "COUNT":
		return resp.Int(int64(len(registry)))
	case "LIST":
		names := make([]string, 0, len(registry))
		for name := range registry {
			names = append(names, strings.ToLower(name))
		}
		sort.Strings(names)
		return stringArray(names)
	case "INFO":
		out := make([]*resp.Reply, 0, len(args)-2)
		for _, name := range args[2:] {
			spec := Lookup(string(name))
			if spec == nil {
				out = append(out, resp.NullArray())
				continue
			}
			out = append(out, commandInfoReply(spec))
		}
		return resp.ArrSlice(out)
	}
	return errUnknownSub(upper(args[1]), "COMMAND")
}

func commandInfoReply(spec *Spec) *resp.Reply {
	return resp.Arr(
		resp.BulkString(strings.ToLower(spec.Name)),
		resp.Int(int64(spec.Arity)),
		resp.ArrSlice(nil),
		resp.Int(0),
		resp.Int(0),
		resp.Int(0),
	)
}

// --- CONFIG ------------------------------------------------------------

func cmdConfig(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	switch upper(args[1]) {
	case "GET":
		if len(args) < 3 {
			return errWrongArgs("config|get")
		}
		return run(d, c, func(s *store.Store) *resp.Reply {
			var out []string
			for _, pat := range args[2:] {
				out = append(out, d.Config.Get(string(pat))...)
			}
			return stringArray(out)
		})
	case "SET":
		if len(args) < 4 || len(args)%2 != 0 {
			return errWrongArgs("config|set")
		}
		return run(d, c, func(s *store.Store) *resp.Reply {
			for i := 2; i+1 < len(args); i += 2 {
				if err := d.Config.Set(string(args[i]), string(args[i+1])); err != nil {
					return resp.Err(err.Error())
				}
			}
			syncConfigToStore(s, d.Config)
			return resp.OK()
		})
	case "RESETSTAT":
		return run(d, c, func(s *store.Store) *resp.Reply {
			s.ResetStats()
			return resp.OK()
		})
	case "HELP":
		return stringArray([]string{
			"CONFIG <subcommand> [<arg> [value] [opt] ...]. Subcommands are:",
			"GET <pattern>", "SET <directive> <value>", "RESETSTAT", "HELP",
		})
	}
	return errUnknownSub(upper(args[1]), "CONFIG")
}

// syncConfigToStore pushes the just-mutated Config fields that the store
// consults on every write (encoding thresholds, proto-max-bulk-len) into
// the store's own copies. Must run inside a Job.
func syncConfigToStore(s *store.Store, cfg *config.Config) {
	s.SetThresholds(value.Thresholds{
		HashMaxListpackEntries: cfg.HashMaxListpackEntries,
		HashMaxListpackValue:   cfg.HashMaxListpackValue,
		SetMaxIntsetEntries:    cfg.SetMaxIntsetEntries,
		SetMaxListpackEntries:  cfg.SetMaxListpackEntries,
		SetMaxListpackValue:    cfg.SetMaxListpackValue,
		ZSetMaxListpackEntries: cfg.ZSetMaxListpackEntries,
		ZSetMaxListpackValue:   cfg.ZSetMaxListpackValue,
		ListMaxListpackSize:    cfg.ListMaxListpackSize,
	})
	s.SetProtoMaxBulkLen(cfg.ProtoMaxBulkLen)
}

// --- TIME / LASTSAVE -----------------------------------------------------

func cmdTime(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	now := time.Now()
	return resp.Arr(
		resp.BulkString(strconv.FormatInt(now.Unix(), 10)),
		resp.BulkString(strconv.FormatInt(int64(now.Nanosecond()/1000), 10)),
	)
}

func cmdLastSave(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return resp.Int(0)
}

// --- OBJECT --------------------------------------------------------------

func cmdObject(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	sub := upper(args[1])
	switch sub {
	case "ENCODING", "REFCOUNT", "FREQ", "IDLETIME":
		if len(args) != 3 {
			return errWrongArgs("object|" + strings.ToLower(sub))
		}
		key := string(args[2])
		return run(d, c, func(s *store.Store) *resp.Reply {
			v, ok := s.Peek(c.DBIndex, key)
			if !ok {
				return errNoSuchKey()
			}
			switch sub {
			case "ENCODING":
				return resp.BulkString(v.Encoding())
			case "REFCOUNT":
				return resp.Int(1)
			default: // FREQ, IDLETIME
				return resp.Int(0)
			}
		})
	}
	return errUnknownSub(sub, "OBJECT")
}

// --- DEBUG -----------------------------------------------------------------

func cmdDebug(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	return resp.Err("ERR DEBUG subcommand not supported")
}

// --- SCAN family -----------------------------------------------------------

// scanOpts holds the options SCAN/HSCAN/SSCAN/ZSCAN share. typeFilter is
// only honored by top-level SCAN.
type scanOpts struct {
	match      string
	count      int64
	typeFilter string
}

func parseScanOpts(args [][]byte, allowType bool) (scanOpts, *resp.Reply) {
	opts := scanOpts{match: "*", count: 10}
	i := 0
	for i < len(args) {
		switch upper(args[i]) {
		case "MATCH":
			if i+1 >= len(args) {
				return opts, errSyntax()
			}
			opts.match = string(args[i+1])
			i += 2
		case "COUNT":
			if i+1 >= len(args) {
				return opts, errSyntax()
			}
			n, ok := parseInt(args[i+1])
			if !ok || n <= 0 {
				return opts, errNotInt()
			}
			opts.count = n
			i += 2
		case "TYPE":
			if !allowType || i+1 >= len(args) {
				return opts, errSyntax()
			}
			opts.typeFilter = strings.ToLower(string(args[i+1]))
			i += 2
		default:
			return opts, errSyntax()
		}
	}
	return opts, nil
}

// scanPage slices a deterministically-sorted snapshot of candidate names
// by a plain integer cursor: cursor 0 starts a scan, and the returned
// cursor is 0 once every matching name has been returned. The full
// candidate list is recomputed fresh on every call rather than cached
// across calls, trading Redis's live-mutation guarantees for simplicity.
func scanPage(all []string, cursor int64, count int64) ([]string, int64) {
	sort.Strings(all)
	if cursor < 0 || cursor >= int64(len(all)) {
		return nil, 0
	}
	end := cursor + count
	if end >= int64(len(all)) {
		return all[cursor:], 0
	}
	return all[cursor:end], end
}

func cursorReply(next int64, items []*resp.Reply) *resp.Reply {
	return resp.Arr(resp.BulkString(strconv.FormatInt(next, 10)), resp.ArrSlice(items))
}

func cmdScan(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	cursor, ok := parseInt(args[1])
	if !ok {
		return errNotInt()
	}
	opts, errReply := parseScanOpts(args[2:], true)
	if errReply != nil {
		return errReply
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		all := s.Keys(c.DBIndex, "*")
		var matched []string
		for _, k := range all {
			if opts.match != "*" && !glob.Match(opts.match, k) {
				continue
			}
			if opts.typeFilter != "" {
				v, ok := s.Peek(c.DBIndex, k)
				if !ok || v.Kind().String() != opts.typeFilter {
					continue
				}
			}
			matched = append(matched, k)
		}
		page, next := scanPage(matched, cursor, opts.count)
		return cursorReply(next, stringArray(page).Array)
	})
}

func cmdHScan(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	cursor, ok := parseInt(args[2])
	if !ok {
		return errNotInt()
	}
	opts, errReply := parseScanOpts(args[3:], false)
	if errReply != nil {
		return errReply
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		v, ok := s.Peek(c.DBIndex, key)
		if !ok {
			return cursorReply(0, nil)
		}
		hv, errR := asHash(v)
		if errR != nil {
			return errR
		}
		fields := hv.Order()
		matched := make([]string, 0, len(fields))
		for _, f := range fields {
			if opts.match == "*" || glob.Match(opts.match, f) {
				matched = append(matched, f)
			}
		}
		page, next := scanPage(matched, cursor, opts.count)
		out := make([]*resp.Reply, 0, len(page)*2)
		for _, f := range page {
			val, _ := hv.Get(f)
			out = append(out, resp.BulkString(f), resp.Bulk(val))
		}
		return cursorReply(next, out)
	})
}

func cmdSScan(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	cursor, ok := parseInt(args[2])
	if !ok {
		return errNotInt()
	}
	opts, errReply := parseScanOpts(args[3:], false)
	if errReply != nil {
		return errReply
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		v, ok := s.Peek(c.DBIndex, key)
		if !ok {
			return cursorReply(0, nil)
		}
		sv, errR := asSet(v)
		if errR != nil {
			return errR
		}
		members := sv.Members()
		matched := make([]string, 0, len(members))
		for _, m := range members {
			ms := string(m)
			if opts.match == "*" || glob.Match(opts.match, ms) {
				matched = append(matched, ms)
			}
		}
		page, next := scanPage(matched, cursor, opts.count)
		return cursorReply(next, stringArray(page).Array)
	})
}

func cmdZScan(d *Deps, c *ClientState, args [][]byte) *resp.Reply {
	key := string(args[1])
	cursor, ok := parseInt(args[2])
	if !ok {
		return errNotInt()
	}
	opts, errReply := parseScanOpts(args[3:], false)
	if errReply != nil {
		return errReply
	}
	return run(d, c, func(s *store.Store) *resp.Reply {
		v, ok := s.Peek(c.DBIndex, key)
		if !ok {
			return cursorReply(0, nil)
		}
		zv, errR := asZSet(v)
		if errR != nil {
			return errR
		}
		entries := zv.Entries()
		matched := make([]string, 0, len(entries))
		byMember := map[string]float64{}
		for _, e := range entries {
			if opts.match == "*" || glob.Match(opts.match, e.Member) {
				matched = append(matched, e.Member)
				byMember[e.Member] = e.Score
			}
		}
		page, next := scanPage(matched, cursor, opts.count)
		out := make([]*resp.Reply, 0, len(page)*2)
		for _, m := range page {
			out = append(out, resp.BulkString(m), resp.BulkString(formatScore(byMember[m])))
		}
		return cursorReply(next, out)
	})
}

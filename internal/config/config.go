// Package config holds the process-wide configuration snapshot.
//
// Per the store's single-writer design, a Config is owned and mutated
// exclusively by the store executor goroutine; other goroutines only ever
// see a value returned from the executor (e.g. via CONFIG GET routed
// through the command channel like any other command).
package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/edirooss/bradis/internal/glob"
)

// Config mirrors the subset of redis.conf parameters this server honors.
type Config struct {
	HashMaxListpackEntries int64
	HashMaxListpackValue   int64

	SetMaxIntsetEntries   int64
	SetMaxListpackEntries int64
	SetMaxListpackValue   int64

	ZSetMaxListpackEntries int64
	ZSetMaxListpackValue   int64

	ListMaxListpackSize int64

	ProtoMaxBulkLen int64

	LazyfreeLazyExpire   bool
	LazyfreeLazyUserDel  bool
	LazyfreeLazyFlush    bool
	LazyfreeLazyServerDel bool
}

// Default returns the stock set of thresholds, matching redis.conf defaults.
func Default() *Config {
	return &Config{
		HashMaxListpackEntries: 128,
		HashMaxListpackValue:   64,

		SetMaxIntsetEntries:   512,
		SetMaxListpackEntries: 128,
		SetMaxListpackValue:   64,

		ZSetMaxListpackEntries: 128,
		ZSetMaxListpackValue:   64,

		ListMaxListpackSize: 128,

		ProtoMaxBulkLen: 512 * 1024 * 1024,

		LazyfreeLazyExpire:    false,
		LazyfreeLazyUserDel:   false,
		LazyfreeLazyFlush:     false,
		LazyfreeLazyServerDel: false,
	}
}

// canonical parameter name -> getter/setter pair plus its aliases.
type param struct {
	name    string
	aliases []string
	get     func(c *Config) string
	set     func(c *Config, v string) error
}

func boolParam(name string, get func(*Config) bool, set func(*Config, bool)) param {
	return param{
		name: name,
		get: func(c *Config) string {
			if get(c) {
				return "yes"
			}
			return "no"
		},
		set: func(c *Config, v string) error {
			switch strings.ToLower(v) {
			case "yes":
				set(c, true)
			case "no":
				set(c, false)
			default:
				return fmt.Errorf("argument must be 'yes' or 'no'")
			}
			return nil
		},
	}
}

func intParam(name string, aliases []string, get func(*Config) int64, set func(*Config, int64)) param {
	return param{
		name:    name,
		aliases: aliases,
		get:     func(c *Config) string { return strconv.FormatInt(get(c), 10) },
		set: func(c *Config, v string) error {
			n, err := parseMemoryOrInt(v)
			if err != nil {
				return err
			}
			set(c, n)
			return nil
		},
	}
}

// parseMemoryOrInt parses a plain integer or a memory literal with suffix
// k/kb/m/mb/g/gb, case-insensitive (single-letter suffixes are
// 1000-based, two-letter ones 1024-based, matching redis.conf's
// convention that "k"=1000 and "kb"=1024).
func parseMemoryOrInt(v string) (int64, error) {
	s := strings.TrimSpace(v)
	if s == "" {
		return 0, fmt.Errorf("ERR Invalid argument")
	}
	lower := strings.ToLower(s)
	mult := int64(1)
	numPart := lower
	suffixes := []struct {
		suf  string
		mult int64
	}{
		{"kb", 1024},
		{"mb", 1024 * 1024},
		{"gb", 1024 * 1024 * 1024},
		{"k", 1000},
		{"m", 1000 * 1000},
		{"g", 1000 * 1000 * 1000},
	}
	for _, s2 := range suffixes {
		if strings.HasSuffix(lower, s2.suf) {
			mult = s2.mult
			numPart = strings.TrimSuffix(lower, s2.suf)
			break
		}
	}
	n, err := strconv.ParseInt(strings.TrimSpace(numPart), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ERR Invalid argument")
	}
	return n * mult, nil
}

func (c *Config) params() []param {
	return []param{
		intParam("hash-max-listpack-entries", []string{"hash-max-ziplist-entries"},
			func(c *Config) int64 { return c.HashMaxListpackEntries },
			func(c *Config, n int64) { c.HashMaxListpackEntries = n }),
		intParam("hash-max-listpack-value", []string{"hash-max-ziplist-value"},
			func(c *Config) int64 { return c.HashMaxListpackValue },
			func(c *Config, n int64) { c.HashMaxListpackValue = n }),

		intParam("set-max-intset-entries", nil,
			func(c *Config) int64 { return c.SetMaxIntsetEntries },
			func(c *Config, n int64) { c.SetMaxIntsetEntries = n }),
		intParam("set-max-listpack-entries", nil,
			func(c *Config) int64 { return c.SetMaxListpackEntries },
			func(c *Config, n int64) { c.SetMaxListpackEntries = n }),
		intParam("set-max-listpack-value", nil,
			func(c *Config) int64 { return c.SetMaxListpackValue },
			func(c *Config, n int64) { c.SetMaxListpackValue = n }),

		intParam("zset-max-listpack-entries", []string{"zset-max-ziplist-entries"},
			func(c *Config) int64 { return c.ZSetMaxListpackEntries },
			func(c *Config, n int64) { c.ZSetMaxListpackEntries = n }),
		intParam("zset-max-listpack-value", []string{"zset-max-ziplist-value"},
			func(c *Config) int64 { return c.ZSetMaxListpackValue },
			func(c *Config, n int64) { c.ZSetMaxListpackValue = n }),

		intParam("list-max-listpack-size", []string{"list-max-ziplist-size"},
			func(c *Config) int64 { return c.ListMaxListpackSize },
			func(c *Config, n int64) { c.ListMaxListpackSize = n }),

		intParam("proto-max-bulk-len", nil,
			func(c *Config) int64 { return c.ProtoMaxBulkLen },
			func(c *Config, n int64) { c.ProtoMaxBulkLen = n }),

		boolParam("lazyfree-lazy-expire",
			func(c *Config) bool { return c.LazyfreeLazyExpire },
			func(c *Config, b bool) { c.LazyfreeLazyExpire = b }),
		boolParam("lazyfree-lazy-user-del",
			func(c *Config) bool { return c.LazyfreeLazyUserDel },
			func(c *Config, b bool) { c.LazyfreeLazyUserDel = b }),
		boolParam("lazyfree-lazy-server-del",
			func(c *Config) bool { return c.LazyfreeLazyServerDel },
			func(c *Config, b bool) { c.LazyfreeLazyServerDel = b }),
		boolParam("lazyfree-lazy-eviction",
			func(c *Config) bool { return c.LazyfreeLazyFlush },
			func(c *Config, b bool) { c.LazyfreeLazyFlush = b }),
	}
}

func (c *Config) lookup(name string) *param {
	name = strings.ToLower(name)
	for _, p := range c.params() {
		if p.name == name {
			pp := p
			return &pp
		}
		for _, a := range p.aliases {
			if a == name {
				pp := p
				return &pp
			}
		}
	}
	return nil
}

// Get implements CONFIG GET <glob-pattern>, case-insensitive.
func (c *Config) Get(pattern string) []string {
	pattern = strings.ToLower(pattern)
	var names []string
	seen := map[string]bool{}
	for _, p := range c.params() {
		match := glob.Match(pattern, p.name)
		for _, a := range p.aliases {
			match = match || glob.Match(pattern, a)
		}
		if !seen[p.name] && match {
			names = append(names, p.name)
			seen[p.name] = true
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names)*2)
	for _, n := range names {
		p := c.lookup(n)
		out = append(out, n, p.get(c))
	}
	return out
}

// Set implements CONFIG SET <param> <value>.
func (c *Config) Set(name, value string) error {
	p := c.lookup(name)
	if p == nil {
		return fmt.Errorf("ERR Unknown option or number of arguments for CONFIG SET - '%s'", name)
	}
	return p.set(c, value)
}

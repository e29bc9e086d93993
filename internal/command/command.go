// Package command implements the dispatch table and handlers for every
// RESP command this server understands, translating parsed argument
// vectors into store.Job closures (or client-local state changes for
// connection/transaction commands that never reach the executor).
//
// Grounded on the big-switch routeCommand dispatch in the HyperCache
// resp-server.go reference file, scaled from its handful of commands to
// the full command surface spec.md section 4 and SPEC_FULL.md section I
// enumerate. Error strings follow the teacher's fmt.Errorf convention,
// rendered as RESP error frames instead of Go errors at the boundary.
package command

import (
	"strings"

	"github.com/edirooss/bradis/internal/resp"
)

// Handler executes one already-arity-checked command and returns its
// reply. Most handlers close over Deps/ClientState via the dispatch
// call site rather than receiving them as package-level globals.
type Handler func(d *Deps, c *ClientState, args [][]byte) *resp.Reply

// Spec describes one command's shape for arity/queueing classification.
type Spec struct {
	Name string
	// Arity mirrors Redis's own convention: a positive N requires exactly
	// N arguments total (including the command name); a negative N
	// requires at least -N.
	Arity int
	// LocalOnly commands (MULTI/EXEC/DISCARD/WATCH/UNWATCH/RESET/HELLO/
	// SELECT/SUBSCRIBE family/CLIENT REPLY/QUIT) are handled directly by
	// the client coordinator and bypass both the MULTI queue and the
	// store executor, per spec.md section 4.B.
	LocalOnly bool
	Handler   Handler
}

var registry = map[string]*Spec{}

func register(s *Spec) { registry[s.Name] = s }

// Lookup returns the Spec for name (case-insensitive), or nil if the
// command is unknown.
func Lookup(name string) *Spec {
	return registry[strings.ToUpper(name)]
}

// CheckArity reports whether argc (including the command name) satisfies
// spec's arity requirement.
func CheckArity(spec *Spec, argc int) bool {
	if spec.Arity >= 0 {
		return argc == spec.Arity
	}
	return argc >= -spec.Arity
}

func init() {
	registerStringCommands()
	registerHashCommands()
	registerSetCommands()
	registerZSetCommands()
	registerListCommands()
	registerBitCommands()
	registerKeyCommands()
	registerTTLCommands()
	registerTxnCommands()
	registerConnectionCommands()
	registerServerCommands()
	registerPubSubCommands()
}

package command

import (
	"time"

	"github.com/edirooss/bradis/internal/blocking"
	"github.com/edirooss/bradis/internal/config"
	"github.com/edirooss/bradis/internal/pubsub"
	"github.com/edirooss/bradis/internal/reclaim"
	"github.com/edirooss/bradis/internal/store"
	"go.uber.org/zap"
)

// ClientRegistry lets CLIENT LIST/INFO/KILL/UNBLOCK see every connected
// client. The server package, which owns accept/connection lifecycle,
// implements and installs this on Deps.
type ClientRegistry interface {
	Snapshot() []*ClientState
	Get(id int64) (*ClientState, bool)
	Kill(id int64) bool
}

// Deps bundles every shared subsystem a command handler may need. One
// instance is constructed at server bring-up and shared by every
// connection.
type Deps struct {
	Store     *store.Store
	Config    *config.Config
	Pubsub    *pubsub.Hub
	Blocking  [store.NumDatabases]*blocking.Queues
	Reclaim   *reclaim.Reclaimer
	Registry  ClientRegistry
	Log       *zap.Logger
	StartedAt time.Time
}

func NewDeps(st *store.Store, cfg *config.Config, hub *pubsub.Hub, rc *reclaim.Reclaimer, log *zap.Logger) *Deps {
	d := &Deps{
		Store:     st,
		Config:    cfg,
		Pubsub:    hub,
		Reclaim:   rc,
		Log:       log.Named("command"),
		StartedAt: time.Now(),
	}
	for i := range d.Blocking {
		d.Blocking[i] = blocking.NewQueues()
	}
	return d
}

// QueuedCommand is one command buffered while a client is inside MULTI.
type QueuedCommand struct {
	Args [][]byte
}

// ReplyMode selects CLIENT REPLY's three modes.
type ReplyMode int

const (
	ReplyOn ReplyMode = iota
	ReplyOff
	ReplySkip
)

// ClientState is every piece of per-connection state the spec calls
// "local" — MULTI queue, WATCH set, pubsub subscriptions, RESP version,
// and the informational fields CLIENT LIST/INFO reports.
type ClientState struct {
	ID       int64
	Name     string
	DBIndex  int
	RESP     int // 2 or 3, negotiated via HELLO
	ReplyMode ReplyMode

	InMulti     bool
	MultiError  bool
	MultiQueue  []QueuedCommand
	WatchKeys   map[int]map[string]struct{} // dbIndex -> set of watched keys

	SubChannels  map[string]struct{}
	SubPatterns  map[string]struct{}
	// Sub is this connection's pubsub.Subscriber adapter, assigned by the
	// server layer at connection setup so SUBSCRIBE/PSUBSCRIBE can register
	// it with the Hub without this package depending on net.Conn.
	Sub pubsub.Subscriber

	NoEvict bool
	NoTouch bool

	// execStore is non-nil only while cmdExec is replaying this client's
	// queued commands from inside the transaction's single executor Job
	// — see run()'s doc comment in helpers.go for why this must bypass
	// Store.Submit instead of calling it re-entrantly.
	execStore *store.Store

	CreatedAt    time.Time
	LastCmd      string
	RemoteAddr   string
}

func NewClientState(id int64, remoteAddr string) *ClientState {
	return &ClientState{
		ID:          id,
		DBIndex:     0,
		RESP:        2,
		WatchKeys:   make(map[int]map[string]struct{}),
		SubChannels: make(map[string]struct{}),
		SubPatterns: make(map[string]struct{}),
		CreatedAt:   time.Now(),
		RemoteAddr:  remoteAddr,
	}
}

// SubCount reports the combined channel+pattern subscription count,
// used both for the 'P' connection flag and for RESP2's subscribe-mode
// command restriction.
func (c *ClientState) SubCount() int {
	return len(c.SubChannels) + len(c.SubPatterns)
}

// Reset restores a client to its just-connected state, per RESET's
// contract in spec.md section 4.C.
func (c *ClientState) Reset() {
	c.DBIndex = 0
	c.RESP = 2
	c.ReplyMode = ReplyOn
	c.InMulti = false
	c.MultiError = false
	c.MultiQueue = nil
	c.WatchKeys = make(map[int]map[string]struct{})
	c.Name = ""
	c.SubChannels = make(map[string]struct{})
	c.SubPatterns = make(map[string]struct{})
	c.NoEvict = false
	c.NoTouch = false
}

// ClearWatches drops every watched key, used by UNWATCH and on EXEC/
// DISCARD completion.
func (c *ClientState) ClearWatches() {
	c.WatchKeys = make(map[int]map[string]struct{})
}

// AddWatch records dbIndex/key as watched by this client.
func (c *ClientState) AddWatch(dbIndex int, key string) {
	m, ok := c.WatchKeys[dbIndex]
	if !ok {
		m = make(map[string]struct{})
		c.WatchKeys[dbIndex] = m
	}
	m[key] = struct{}{}
}

package server

import (
	"net"
	"sync"

	"github.com/edirooss/bradis/internal/command"
)

// registry tracks every live connection so CLIENT LIST/INFO/KILL can see
// and act on them, implementing command.ClientRegistry. Guarded by its
// own mutex the way the teacher's connection map in the HyperCache
// resp-server.go reference file is — registry membership has no
// relationship to the store executor's single-writer keyspace, so it
// does not need to run on that goroutine.
type registry struct {
	mu      sync.RWMutex
	clients map[int64]*connHandle
}

// connHandle pairs a ClientState with the net.Conn CLIENT KILL needs to
// close to actually terminate that connection.
type connHandle struct {
	state *command.ClientState
	conn  net.Conn
}

func newRegistry() *registry {
	return &registry{clients: make(map[int64]*connHandle)}
}

func (r *registry) add(h *connHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[h.state.ID] = h
}

func (r *registry) remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, id)
}

func (r *registry) Snapshot() []*command.ClientState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*command.ClientState, 0, len(r.clients))
	for _, h := range r.clients {
		out = append(out, h.state)
	}
	return out
}

func (r *registry) Get(id int64) (*command.ClientState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.clients[id]
	if !ok {
		return nil, false
	}
	return h.state, true
}

// Kill closes the connection's socket, which unblocks its reader
// goroutine with an error and tears the connection's goroutines down.
func (r *registry) Kill(id int64) bool {
	r.mu.RLock()
	h, ok := r.clients[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	h.conn.Close()
	return true
}

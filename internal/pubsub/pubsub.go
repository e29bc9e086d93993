// Package pubsub implements channel and glob-pattern publish/subscribe,
// generalized from the teacher's repository-pattern subscriber maps
// (originally backed by an external Redis) into an in-process fan-out.
package pubsub

import (
	"sync"

	"github.com/edirooss/bradis/internal/glob"
	"github.com/google/uuid"
)

// Message is a single published event delivered to a matching
// subscriber.
type Message struct {
	Channel string
	Pattern string // empty for a direct channel subscription
	Payload []byte
}

// Subscriber receives fan-out deliveries. The server package's
// per-connection writer implements this by pushing onto its reply
// queue.
type Subscriber interface {
	Deliver(Message)
}

type subscription struct {
	id   uuid.UUID
	sub  Subscriber
}

// Hub owns every channel and pattern subscription across all clients.
// Every exported method is safe for concurrent use — unlike the keyspace
// executor, pubsub fan-out has no cross-key invariant requiring a single
// goroutine, so it uses an RWMutex the way the teacher's repository
// layer guards its in-memory maps.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[int64]subscription // channel -> clientID -> subscription
	patterns map[string]map[int64]subscription // pattern -> clientID -> subscription
}

func NewHub() *Hub {
	return &Hub{
		channels: make(map[string]map[int64]subscription),
		patterns: make(map[string]map[int64]subscription),
	}
}

// Subscribe registers clientID's sub under channel, returning a token
// identifying this particular subscription; subscribing again returns
// the existing token instead of adding a second subscription.
func (h *Hub) Subscribe(channel string, clientID int64, sub Subscriber) uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.channels[channel]
	if !ok {
		m = make(map[int64]subscription)
		h.channels[channel] = m
	}
	if existing, ok := m[clientID]; ok {
		return existing.id
	}
	id := uuid.New()
	m[clientID] = subscription{id: id, sub: sub}
	return id
}

// PSubscribe registers clientID's sub under a glob pattern.
func (h *Hub) PSubscribe(pattern string, clientID int64, sub Subscriber) uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.patterns[pattern]
	if !ok {
		m = make(map[int64]subscription)
		h.patterns[pattern] = m
	}
	if existing, ok := m[clientID]; ok {
		return existing.id
	}
	id := uuid.New()
	m[clientID] = subscription{id: id, sub: sub}
	return id
}

// Unsubscribe removes clientID's channel subscription, reporting whether
// one existed.
func (h *Hub) Unsubscribe(channel string, clientID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.channels[channel]
	if !ok {
		return false
	}
	if _, ok := m[clientID]; !ok {
		return false
	}
	delete(m, clientID)
	if len(m) == 0 {
		delete(h.channels, channel)
	}
	return true
}

func (h *Hub) PUnsubscribe(pattern string, clientID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.patterns[pattern]
	if !ok {
		return false
	}
	if _, ok := m[clientID]; !ok {
		return false
	}
	delete(m, clientID)
	if len(m) == 0 {
		delete(h.patterns, pattern)
	}
	return true
}

// UnsubscribeAll drops every channel and pattern subscription clientID
// holds, used on disconnect. Returns the channels and patterns
// it was removed from, so the caller can emit the usual unsubscribe
// replies.
func (h *Hub) UnsubscribeAll(clientID int64) (channels, patterns []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch, m := range h.channels {
		if _, ok := m[clientID]; ok {
			delete(m, clientID)
			channels = append(channels, ch)
			if len(m) == 0 {
				delete(h.channels, ch)
			}
		}
	}
	for pat, m := range h.patterns {
		if _, ok := m[clientID]; ok {
			delete(m, clientID)
			patterns = append(patterns, pat)
			if len(m) == 0 {
				delete(h.patterns, pat)
			}
		}
	}
	return channels, patterns
}

// Publish delivers payload to every direct subscriber of channel and
// every pattern subscriber whose pattern matches it, returning the
// total number of receivers.
func (h *Hub) Publish(channel string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, sub := range h.channels[channel] {
		sub.sub.Deliver(Message{Channel: channel, Payload: payload})
		n++
	}
	for pat, m := range h.patterns {
		if !glob.Match(pat, channel) {
			continue
		}
		for _, sub := range m {
			sub.sub.Deliver(Message{Channel: channel, Pattern: pat, Payload: payload})
			n++
		}
	}
	return n
}

// Channels returns every channel with at least one subscriber, filtered
// by an optional glob pattern (empty pattern = all).
func (h *Hub) Channels(pattern string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []string
	for ch := range h.channels {
		if pattern == "" || glob.Match(pattern, ch) {
			out = append(out, ch)
		}
	}
	return out
}

// NumSub returns the subscriber count for each requested channel, in
// the same order.
func (h *Hub) NumSub(channels []string) []int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]int, len(channels))
	for i, ch := range channels {
		out[i] = len(h.channels[ch])
	}
	return out
}

// NumPat returns the total number of distinct active patterns.
func (h *Hub) NumPat() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.patterns)
}

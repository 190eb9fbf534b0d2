package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/love4pets/realtime/internal/core"
)

type connEntry struct {
	sender core.Sender
	rooms  map[string]struct{}
}

// Registry tracks live connections and their room memberships. It holds a
// weak association only: the transport adapter owns connection lifecycle
// and must Unbind on disconnect.
//
// Invariant: membership is bidirectional-consistent; a connection appears
// in a room's member set iff the room appears in the connection's room set.
type Registry struct {
	mu    sync.RWMutex
	conns map[core.ConnID]*connEntry
	rooms map[string]map[core.ConnID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[core.ConnID]*connEntry),
		rooms: make(map[string]map[core.ConnID]struct{}),
	}
}

// Bind registers a freshly connected client. Rebinding an id purges the
// previous entry's room memberships so the bidirectional invariant holds
// even if the transport reuses an id.
func (r *Registry) Bind(id core.ConnID, s core.Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.conns[id]; ok {
		for room := range old.rooms {
			r.dropMember(room, id)
		}
	}
	r.conns[id] = &connEntry{sender: s, rooms: make(map[string]struct{})}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("bound connection")
}

// Unbind removes the connection and purges it from every room it joined.
// Called exactly once per connection, at transport-level disconnect.
func (r *Registry) Unbind(id core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conns[id]
	if !ok {
		return
	}
	for room := range entry.rooms {
		r.dropMember(room, id)
	}
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unbound connection")
}

// Join adds the connection to a room. Idempotent; unknown connections are
// ignored (a client cannot join before the transport binds it).
func (r *Registry) Join(id core.ConnID, room string) {
	if room == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conns[id]
	if !ok {
		return
	}
	entry.rooms[room] = struct{}{}
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[core.ConnID]struct{})
		r.rooms[room] = members
	}
	members[id] = struct{}{}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("room", room).Msg("joined room")
}

// Leave removes the connection from a room. Idempotent.
func (r *Registry) Leave(id core.ConnID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conns[id]
	if !ok {
		return
	}
	delete(entry.rooms, room)
	r.dropMember(room, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("room", room).Msg("left room")
}

// dropMember removes id from the room's member set and deletes the room
// when it empties. Caller must hold the write lock.
func (r *Registry) dropMember(room string, id core.ConnID) {
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// MembersOf returns a snapshot of the senders currently in the room.
// Unknown rooms yield an empty slice.
func (r *Registry) MembersOf(room string) []core.Sender {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.rooms[room]
	out := make([]core.Sender, 0, len(members))
	for id := range members {
		if entry, ok := r.conns[id]; ok {
			out = append(out, entry.sender)
		}
	}
	return out
}

// Snapshot returns every currently connected sender.
func (r *Registry) Snapshot() []core.Sender {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Sender, 0, len(r.conns))
	for _, entry := range r.conns {
		out = append(out, entry.sender)
	}
	return out
}

// RoomsOf returns the rooms the connection currently belongs to.
func (r *Registry) RoomsOf(id core.ConnID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.conns[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(entry.rooms))
	for room := range entry.rooms {
		out = append(out, room)
	}
	return out
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

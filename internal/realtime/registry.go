// Package realtime tracks live socket connections and their group-room
// memberships, and broadcasts notifications to group rooms.
package realtime

import "sync"

// Registry maps connection IDs to the set of group rooms each has joined.
// It is a pure in-memory structure, independent of any transport; the
// websocket layer calls into it on connect, join and disconnect. Nothing is
// persisted: clients rebuild membership by re-joining after a reconnect.
type Registry struct {
	mu sync.RWMutex
	// rooms: group ID -> set of connection IDs
	rooms map[string]map[string]struct{}
	// conns: connection ID -> set of group IDs (for cleanup on disconnect)
	conns map[string]map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]map[string]struct{}),
		conns: make(map[string]map[string]struct{}),
	}
}

// Join adds the connection to a group room. A connection may join any
// number of rooms; joining twice is a no-op.
func (r *Registry) Join(connID, groupID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[groupID] == nil {
		r.rooms[groupID] = make(map[string]struct{})
	}
	r.rooms[groupID][connID] = struct{}{}

	if r.conns[connID] == nil {
		r.conns[connID] = make(map[string]struct{})
	}
	r.conns[connID][groupID] = struct{}{}
}

// Leave removes the connection from one group room.
func (r *Registry) Leave(connID, groupID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(connID, groupID)
	if set := r.conns[connID]; set != nil {
		delete(set, groupID)
		if len(set) == 0 {
			delete(r.conns, connID)
		}
	}
}

// Drop removes the connection from every room it joined. Called on
// disconnect.
func (r *Registry) Drop(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for groupID := range r.conns[connID] {
		r.removeLocked(connID, groupID)
	}
	delete(r.conns, connID)
}

func (r *Registry) removeLocked(connID, groupID string) {
	if room := r.rooms[groupID]; room != nil {
		delete(room, connID)
		if len(room) == 0 {
			delete(r.rooms, groupID)
		}
	}
}

// MembersOf returns the connection IDs currently joined to a group room.
func (r *Registry) MembersOf(groupID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[groupID]
	if len(room) == 0 {
		return nil
	}
	members := make([]string, 0, len(room))
	for connID := range room {
		members = append(members, connID)
	}
	return members
}

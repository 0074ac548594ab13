// Package runtime owns the live-connection bookkeeping: which connection is
// joined to which room, and how to reach its event sink.
package runtime

import (
	"sync"

	"campus-link/contract"
	"campus-link/domain"
)

type Set map[string]struct{}

// Registry is the room-membership table. Connections are indexed by id so
// removal on disconnect is cheap, whatever number of rooms they joined.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]contract.EventSink         // connection id -> sink
	roomMembers map[domain.RoomID]Set                 // room -> connection ids
	joined      map[string]map[domain.RoomID]struct{} // connection id -> rooms
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:    make(map[string]contract.EventSink),
		roomMembers: make(map[domain.RoomID]Set),
		joined:      make(map[string]map[domain.RoomID]struct{}),
	}
}

// GetSinksForRoom retrieves all active communication channels for a room.
// It performs a two-step lookup: member connection ids via roomMembers, then
// their sinks via sessions. A connection joined to several rooms is still
// managed in a single place. Returns nil for an unknown or empty room.
func (r *Registry) GetSinksForRoom(roomID domain.RoomID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[roomID]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for connectionID := range members {
		if sink, exists := r.sessions[connectionID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

// Subscribe registers a connection's sink and assigns it to a room.
// Idempotent: joining an already-joined room leaves the state unchanged.
func (r *Registry) Subscribe(connectionID string, roomID domain.RoomID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[connectionID] = sink

	if _, ok := r.roomMembers[roomID]; !ok {
		r.roomMembers[roomID] = make(Set)
	}
	r.roomMembers[roomID][connectionID] = struct{}{}

	if _, ok := r.joined[connectionID]; !ok {
		r.joined[connectionID] = make(map[domain.RoomID]struct{})
	}
	r.joined[connectionID][roomID] = struct{}{}
}

// Unsubscribe removes a connection from one room, keeping its other
// memberships. Empty sets are cleaned up to prevent slow leaks.
func (r *Registry) Unsubscribe(connectionID string, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(connectionID, roomID)

	if rooms, ok := r.joined[connectionID]; ok && len(rooms) == 0 {
		delete(r.joined, connectionID)
		delete(r.sessions, connectionID)
	}
}

// UnsubscribeAll drops a disconnected connection from every room it had
// joined, then forgets its session entirely.
func (r *Registry) UnsubscribeAll(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for roomID := range r.joined[connectionID] {
		r.removeLocked(connectionID, roomID)
	}
	delete(r.joined, connectionID)
	delete(r.sessions, connectionID)
}

func (r *Registry) removeLocked(connectionID string, roomID domain.RoomID) {
	if members, ok := r.roomMembers[roomID]; ok {
		delete(members, connectionID)
		if len(members) == 0 {
			delete(r.roomMembers, roomID)
		}
	}
	if rooms, ok := r.joined[connectionID]; ok {
		delete(rooms, roomID)
	}
}

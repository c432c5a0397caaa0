// Package relay implements the real-time notification fan-out: connections
// join named project rooms and events are rebroadcast verbatim to every other
// member of the room. Nothing is persisted; a client that is offline simply
// misses the event and is expected to re-fetch state on reconnect.
package relay

import (
	"fmt"
	"sync"
)

// RoomName returns the room key for a project.
func RoomName(projectID uint) string {
	return fmt.Sprintf("project:%d", projectID)
}

// Hub is the per-process room membership table. It holds no state beyond which
// connection is currently in which room.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
	}
}

// Join adds the client to a room. Joining twice is a no-op.
func (h *Hub) Join(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
}

// Leave removes the client from a room, dropping the room once empty.
func (h *Hub) Leave(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Drop removes the client from every room it joined. Called when the
// connection closes; membership lifetime is tied to connection lifetime.
func (h *Hub) Drop(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast queues msg for every room member except the sender. A member whose
// outbound queue is full is skipped: the relay never blocks on a slow reader.
func (h *Hub) Broadcast(room string, sender *Client, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for member := range h.rooms[room] {
		if member == sender {
			continue
		}
		member.enqueue(msg)
	}
}

// RoomSize reports the current member count of a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

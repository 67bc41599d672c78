package relay

import (
	"errors"
	"log/slog"
	"sync"
)

// ErrEmptyRoom is returned by Join for a blank room id. Callers log and drop;
// the client receives no feedback.
var ErrEmptyRoom = errors.New("room id must not be empty")

// Hub tracks live authenticated connections and their room memberships.
//
// Membership is held in two indexes kept consistent under one lock: rooms
// (room id -> members) answers MembersOf, memberships (client -> room ids)
// makes disconnect cleanup cheap. A room with no members has no entry.
type Hub struct {
	mu          sync.RWMutex
	clients     map[*Client]struct{}
	rooms       map[string]map[*Client]struct{}
	memberships map[*Client]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:     make(map[*Client]struct{}),
		rooms:       make(map[string]map[*Client]struct{}),
		memberships: make(map[*Client]map[string]struct{}),
	}
}

// Register admits an authenticated client. Called only after the handshake
// has bound an identity to the connection.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	slog.Info("client registered", "clientID", c.id, "userID", c.userID, "username", c.username)
}

// Unregister removes the client and every room membership it holds. The
// removal is atomic with respect to MembersOf: a concurrent snapshot either
// still contains the client in all its rooms or in none of them.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)

	for roomID := range h.memberships[c] {
		members := h.rooms[roomID]
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	delete(h.memberships, c)

	slog.Info("client unregistered", "clientID", c.id, "userID", c.userID)
}

// Join adds the client to a room. Joining a room twice is a no-op. Joining
// after disconnect is also a no-op so a racing join cannot resurrect a
// connection that Unregister already cleaned up.
func (h *Hub) Join(c *Client, roomID string) error {
	if roomID == "" {
		return ErrEmptyRoom
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return nil
	}

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]struct{})
	}
	h.rooms[roomID][c] = struct{}{}

	if h.memberships[c] == nil {
		h.memberships[c] = make(map[string]struct{})
	}
	h.memberships[c][roomID] = struct{}{}

	slog.Debug("client joined room", "clientID", c.id, "userID", c.userID, "roomID", roomID)
	return nil
}

// MembersOf returns a copy-on-read snapshot of the room's current members.
// Fanout iterates the snapshot without holding the hub lock, so concurrent
// joins and disconnects never corrupt an in-flight delivery pass.
func (h *Hub) MembersOf(roomID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.rooms[roomID]
	snapshot := make([]*Client, 0, len(members))
	for c := range members {
		snapshot = append(snapshot, c)
	}
	return snapshot
}

// Rooms returns the room ids the client currently belongs to.
func (h *Hub) Rooms(c *Client) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms := make([]string, 0, len(h.memberships[c]))
	for roomID := range h.memberships[c] {
		rooms = append(rooms, roomID)
	}
	return rooms
}

// ClientCount reports the number of admitted connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

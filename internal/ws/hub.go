package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/balalek/Masters-Thesis-sub000/internal"
)

// Hub is the room registry and message bus. A room is a named set of
// connections: one room per player name for private messages, plus the
// "main" and "remote" display rooms. Broadcast reaches every connection.
//
// Sends marshal once and hand the bytes to each connection's buffered write
// pump, so a slow socket can never block the caller. Per-connection order
// is preserved by the pump's FIFO channel.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	for room, members := range h.rooms {
		if _, ok := members[c]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	h.mu.Unlock()
}

// Join adds the connection to a room, creating the room on first use.
func (h *Hub) Join(room string, c *Client) {
	h.mu.Lock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	h.mu.Unlock()
	log.Printf("[Hub.Join] client=%s joined room=%q", c.ID, room)
}

// Leave removes the connection from a room.
func (h *Hub) Leave(room string, c *Client) {
	h.mu.Lock()
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()
	log.Printf("[Hub.Leave] client=%s left room=%q", c.ID, room)
}

// Rename atomically moves every member of oldRoom into newRoom so private
// routing survives a player rename.
func (h *Hub) Rename(oldRoom, newRoom string) {
	h.mu.Lock()
	members, ok := h.rooms[oldRoom]
	if ok {
		delete(h.rooms, oldRoom)
		dst, exists := h.rooms[newRoom]
		if !exists {
			dst = make(map[*Client]struct{})
			h.rooms[newRoom] = dst
		}
		for c := range members {
			dst[c] = struct{}{}
		}
	}
	h.mu.Unlock()
	log.Printf("[Hub.Rename] room %q -> %q (existed=%v)", oldRoom, newRoom, ok)
}

// Send delivers a message to every connection in the room.
func (h *Hub) Send(room string, msg internal.Message[any]) {
	raw, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[Hub.Send] room=%q type=%s marshal failed: %v", room, msg.Type, err)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.enqueue(raw)
	}
}

// Broadcast delivers a message to every connected client.
func (h *Hub) Broadcast(msg internal.Message[any]) {
	raw, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[Hub.Broadcast] type=%s marshal failed: %v", msg.Type, err)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.enqueue(raw)
	}
}

// ClientCount reports the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

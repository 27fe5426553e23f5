package session

import "sync"

// Registry tracks every live connection and the single room it currently
// belongs to. A connection is in at most one room at a time; only the
// registry mutates that mapping.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Client // connection id -> client
	rooms map[string]string  // connection id -> current doc id
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]*Client),
		rooms: make(map[string]string),
	}
}

// Connect registers a connection with no room. Idempotent per connection id.
func (rg *Registry) Connect(c *Client) {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	if _, ok := rg.conns[c.ID]; ok {
		return
	}
	rg.conns[c.ID] = c
}

func (rg *Registry) Get(connID string) (*Client, bool) {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	c, ok := rg.conns[connID]
	return c, ok
}

// RoomOf returns the doc id the connection is currently attached to,
// "" if it has not joined a room.
func (rg *Registry) RoomOf(connID string) string {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	return rg.rooms[connID]
}

func (rg *Registry) setRoom(connID, docID string) {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	if _, ok := rg.conns[connID]; !ok {
		return
	}
	if docID == "" {
		delete(rg.rooms, connID)
		return
	}
	rg.rooms[connID] = docID
}

// remove discards the connection record entirely.
func (rg *Registry) remove(connID string) {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	delete(rg.conns, connID)
	delete(rg.rooms, connID)
}

// ConnectionsInRoom counts live connections by username attached to docID.
// The presence tracker consults this before retracting a user, so a user
// with several tabs open stays present until the last one goes.
func (rg *Registry) ConnectionsInRoom(docID, username string) int {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	n := 0
	for id, room := range rg.rooms {
		if room != docID {
			continue
		}
		if c, ok := rg.conns[id]; ok && c.Username == username {
			n++
		}
	}
	return n
}

// ConnectionCount reports the number of registered connections.
func (rg *Registry) ConnectionCount() int {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	return len(rg.conns)
}

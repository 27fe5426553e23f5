package session

import (
	"sort"
	"sync"

	"docsync/internal/models"
)

// Room holds the live state for one open document: the last-accepted
// content blob, the set of present usernames, and the attached clients.
// All mutations to a room happen under its mutex; different rooms are
// fully independent.
type Room struct {
	ID string

	mu      sync.Mutex
	clients map[*Client]struct{}
	content string
	present map[string]struct{}
	typing  map[string]bool

	// closed marks a room that has been emptied and detached from the
	// store; a join racing the removal must create a fresh room instead
	// of landing in this one.
	closed bool
}

func NewRoom(id string) *Room {
	return &Room{
		ID:      id,
		clients: make(map[*Client]struct{}),
		present: make(map[string]struct{}),
		typing:  make(map[string]bool),
	}
}

func (r *Room) ClientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *Room) Content() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.content
}

// SetContent overwrites the blob unconditionally: no comparison, no merge,
// no timestamp check. Whichever edit is processed last wins.
func (r *Room) SetContent(content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content = content
}

// Snapshot returns the sorted set of currently present usernames.
func (r *Room) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() []string {
	out := make([]string, 0, len(r.present))
	for u := range r.present {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

func (r *Room) addPresentLocked(username string) bool {
	if _, ok := r.present[username]; ok {
		return false
	}
	r.present[username] = struct{}{}
	return true
}

func (r *Room) removePresentLocked(username string) bool {
	if _, ok := r.present[username]; !ok {
		return false
	}
	delete(r.present, username)
	delete(r.typing, username)
	return true
}

// broadcastLocked fans a frame out to every client except the sender.
// A failed write drops that one delivery; the rest of the room still
// receives the frame.
func (r *Room) broadcastLocked(sender *Client, frame models.WSFrame, onFail func(*Client)) {
	for c := range r.clients {
		if c == sender {
			continue
		}
		if err := c.Send(frame); err != nil && onFail != nil {
			onFail(c)
		}
	}
}

package session

import (
	"docsync/internal/metrics"
	"docsync/internal/models"
	"docsync/internal/utils"
)

// Router owns the event flow between connections and rooms: it moves
// connections in and out of rooms through the registry, applies edits to
// the room store, and fans resulting frames out to peers. Every event is
// applied and broadcast inside a single critical section of its room, so
// concurrent events on one room serialize in arrival order while
// different rooms proceed in parallel.
type Router struct {
	log   *utils.Logger
	store *RoomStore
	reg   *Registry
	pres  *Presence
	bus   *Bus // nil in single-instance mode
}

func NewRouter(log *utils.Logger, store *RoomStore, reg *Registry, bus *Bus) *Router {
	rt := &Router{
		log:   log,
		store: store,
		reg:   reg,
		pres:  NewPresence(store, reg),
		bus:   bus,
	}
	if bus != nil {
		bus.OnRemote(rt.applyRemote)
	}
	return rt
}

func (rt *Router) Presence() *Presence { return rt.pres }

// Connect registers a fresh connection with no room.
func (rt *Router) Connect(c *Client) {
	rt.reg.Connect(c)
	metrics.ConnectionsGauge.Set(float64(rt.reg.ConnectionCount()))
}

// Join attaches the connection to docID's room. If the connection is in a
// different room, the full leave sequence for that room runs first; a
// connection belongs to exactly one room at a time, enforced here.
// The joiner alone receives the current content and presence snapshot;
// everyone else gets a joined notice and the updated snapshot.
func (rt *Router) Join(c *Client, docID string) {
	if _, ok := rt.reg.Get(c.ID); !ok || docID == "" {
		return
	}
	if old := rt.reg.RoomOf(c.ID); old != "" && old != docID {
		rt.leave(c, old, false)
	}
	rt.reg.setRoom(c.ID, docID)

	room := rt.lockLiveRoom(docID)
	room.clients[c] = struct{}{}
	room.addPresentLocked(c.Username)
	snap := room.snapshotLocked()
	content := room.content

	rt.deliver(c, models.WSFrame{Type: models.EventResync, Data: models.Resync{Content: content}})
	rt.deliver(c, models.WSFrame{Type: models.EventPresence, Data: models.PresenceSnapshot{Usernames: snap}})
	room.broadcastLocked(c, models.WSFrame{Type: models.EventJoined, Data: models.MemberChange{Username: c.Username}}, rt.dropDelivery)
	room.broadcastLocked(c, models.WSFrame{Type: models.EventPresence, Data: models.PresenceSnapshot{Usernames: snap}}, rt.dropDelivery)
	room.mu.Unlock()

	metrics.RoomsGauge.Set(float64(rt.store.RoomCount()))
	rt.publish(docID, models.WSFrame{Type: models.EventJoined, Data: models.MemberChange{Username: c.Username}})
	rt.log.Info("client joined room", "doc", docID, "user", c.Username, "conn", c.ID)
}

// Edit replaces the room's content with newContent and fans a peer-edit
// out to every other connection in the room. Last writer wins: the blob
// is overwritten unconditionally, and the sender's own echo is
// suppressed. An edit from a connection not attached to docID is a
// protocol error and is dropped with no room mutation.
func (rt *Router) Edit(c *Client, docID, newContent string) {
	if rt.reg.RoomOf(c.ID) != docID {
		rt.log.Warn("edit without room context dropped", "doc", docID, "conn", c.ID)
		return
	}
	room, ok := rt.store.Get(docID)
	if !ok {
		return
	}
	frame := models.WSFrame{Type: models.EventPeerEdit, Data: models.PeerEdit{Content: newContent, Username: c.Username}}

	room.mu.Lock()
	room.content = newContent
	room.broadcastLocked(c, frame, rt.dropDelivery)
	room.mu.Unlock()

	metrics.EditsTotal.Inc()
	rt.publishEdit(docID, c.Username, newContent)
}

// Activity relays the advisory typing hint to peers. An inactive hint
// never retracts presence; the presence snapshot is re-broadcast only in
// the rare case it actually changed.
func (rt *Router) Activity(c *Client, docID string, isActive bool) {
	if rt.reg.RoomOf(c.ID) != docID {
		return
	}
	room, ok := rt.store.Get(docID)
	if !ok {
		return
	}

	room.mu.Lock()
	changed := false
	if isActive {
		changed = room.addPresentLocked(c.Username)
	}
	room.typing[c.Username] = isActive
	room.broadcastLocked(c, models.WSFrame{Type: models.EventActivity, Data: models.ActivityNotice{Username: c.Username, IsActive: isActive}}, rt.dropDelivery)
	if changed {
		snap := room.snapshotLocked()
		frame := models.WSFrame{Type: models.EventPresence, Data: models.PresenceSnapshot{Usernames: snap}}
		rt.deliver(c, frame)
		room.broadcastLocked(c, frame, rt.dropDelivery)
	}
	room.mu.Unlock()
}

// Disconnect runs the leave sequence for the connection's current room,
// if any, then discards the connection record.
func (rt *Router) Disconnect(c *Client) {
	docID := rt.reg.RoomOf(c.ID)
	if docID != "" {
		rt.leave(c, docID, true)
	} else {
		rt.reg.remove(c.ID)
	}
	metrics.ConnectionsGauge.Set(float64(rt.reg.ConnectionCount()))
}

// leave detaches c from docID's room. The username is retracted from the
// presence set only when this was the user's last connection to the room;
// remaining members then get a left notice and the updated snapshot.
func (rt *Router) leave(c *Client, docID string, discard bool) {
	if discard {
		rt.reg.remove(c.ID)
	} else {
		rt.reg.setRoom(c.ID, "")
	}
	room, ok := rt.store.Get(docID)
	if !ok {
		return
	}

	room.mu.Lock()
	delete(room.clients, c)
	removed := false
	// Consulting the registry inside the critical section keeps a
	// concurrent second-tab join from flapping the user's presence.
	if rt.reg.ConnectionsInRoom(docID, c.Username) == 0 {
		removed = room.removePresentLocked(c.Username)
	}
	if removed {
		snap := room.snapshotLocked()
		room.broadcastLocked(c, models.WSFrame{Type: models.EventLeft, Data: models.MemberChange{Username: c.Username}}, rt.dropDelivery)
		room.broadcastLocked(c, models.WSFrame{Type: models.EventPresence, Data: models.PresenceSnapshot{Usernames: snap}}, rt.dropDelivery)
	}
	empty := len(room.clients) == 0
	if empty {
		room.closed = true
	}
	room.mu.Unlock()

	if empty {
		rt.store.remove(docID, room)
	}
	metrics.RoomsGauge.Set(float64(rt.store.RoomCount()))
	if removed {
		rt.publish(docID, models.WSFrame{Type: models.EventLeft, Data: models.MemberChange{Username: c.Username}})
	}
	rt.log.Info("client left room", "doc", docID, "user", c.Username, "conn", c.ID)
}

func (rt *Router) deliver(c *Client, frame models.WSFrame) {
	if err := c.Send(frame); err != nil {
		rt.dropDelivery(c)
	}
}

// dropDelivery is the per-target failure path: the delivery is counted
// and abandoned; the rest of the fan-out continues.
func (rt *Router) dropDelivery(c *Client) {
	metrics.DeliveryFailures.Inc()
	rt.log.Warn("dropped delivery to unreachable peer", "conn", c.ID, "user", c.Username)
}

func (rt *Router) publish(docID string, frame models.WSFrame) {
	if rt.bus == nil {
		return
	}
	rt.bus.Publish(docID, frame, "")
}

func (rt *Router) publishEdit(docID, username, content string) {
	if rt.bus == nil {
		return
	}
	rt.bus.Publish(docID, models.WSFrame{
		Type: models.EventPeerEdit,
		Data: models.PeerEdit{Content: content, Username: username},
	}, content)
}

// lockLiveRoom returns docID's room with its mutex held, creating a
// fresh room if a racing collection just closed the existing one.
func (rt *Router) lockLiveRoom(docID string) *Room {
	for {
		room := rt.store.GetOrCreate(docID)
		room.mu.Lock()
		if !room.closed {
			return room
		}
		room.mu.Unlock()
		rt.store.remove(docID, room)
	}
}

// applyRemote handles a frame published by another instance serving the
// same document. Instances without a live room for the document ignore
// the message. A remote edit updates the local blob so later joiners
// resync correctly; joined/left notices pass through untouched since
// remote membership is not tracked locally.
func (rt *Router) applyRemote(msg BusMessage) {
	room, ok := rt.store.Get(msg.DocID)
	if !ok {
		return
	}
	room.mu.Lock()
	if msg.Frame.Type == models.EventPeerEdit {
		room.content = msg.Content
	}
	room.broadcastLocked(nil, msg.Frame, rt.dropDelivery)
	room.mu.Unlock()
}

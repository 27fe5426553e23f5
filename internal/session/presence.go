package session

// Presence derives the "currently present" user set per room from
// connection membership. Presence answers "does this user have the
// document open", not "is this user typing": the advisory activity hint
// from clients is relayed to peers but never removes anyone. A username
// leaves a room's presence set only when its last connection to that
// room disconnects or switches documents.
type Presence struct {
	store *RoomStore
	reg   *Registry
}

func NewPresence(store *RoomStore, reg *Registry) *Presence {
	return &Presence{store: store, reg: reg}
}

// MarkPresent adds username to the room's present set. Reports whether
// the set changed (no-op if already present).
func (p *Presence) MarkPresent(docID, username string) bool {
	r := p.store.GetOrCreate(docID)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addPresentLocked(username)
}

// MarkAbsent removes username only if no other live connection keeps the
// user in the room. Reports whether the set changed.
func (p *Presence) MarkAbsent(docID, username string) bool {
	if p.reg.ConnectionsInRoom(docID, username) > 0 {
		return false
	}
	r, ok := p.store.Get(docID)
	if !ok {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removePresentLocked(username)
}

// Snapshot returns the sorted set of usernames present in the room.
func (p *Presence) Snapshot(docID string) []string {
	r, ok := p.store.Get(docID)
	if !ok {
		return nil
	}
	return r.Snapshot()
}

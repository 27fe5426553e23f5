package session

import "sync"

// RoomStore maps a document id to its in-memory live room. Rooms are
// created lazily on first use and deleted once their last connection
// leaves; the durable copy lives in the document store, not here.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[string]*Room)}
}

// GetOrCreate returns the room for docID, creating an empty one (empty
// content, empty presence set) if absent. Never fails.
func (s *RoomStore) GetOrCreate(docID string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[docID]; ok {
		return r
	}
	r := NewRoom(docID)
	s.rooms[docID] = r
	return r
}

func (s *RoomStore) Get(docID string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[docID]
	return r, ok
}

func (s *RoomStore) Delete(docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, docID)
}

// remove drops the mapping only if it still points at r, so collecting
// an emptied room never discards a replacement created in the meantime.
func (s *RoomStore) remove(docID string, r *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.rooms[docID]; ok && cur == r {
		delete(s.rooms, docID)
	}
}

// SetContent overwrites the room's blob, creating the room if needed.
func (s *RoomStore) SetContent(docID, content string) {
	s.GetOrCreate(docID).SetContent(content)
}

// GetContent returns the current blob, "" if the room was never written to.
func (s *RoomStore) GetContent(docID string) string {
	r, ok := s.Get(docID)
	if !ok {
		return ""
	}
	return r.Content()
}

// RoomCount reports the number of live rooms.
func (s *RoomStore) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

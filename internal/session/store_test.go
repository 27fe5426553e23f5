package session

import (
	"reflect"
	"testing"
)

func TestRoomStoreGetOrCreate(t *testing.T) {
	store := NewRoomStore()
	a := store.GetOrCreate("d1")
	b := store.GetOrCreate("d1")
	if a != b {
		t.Fatalf("expected the same room instance")
	}
	if _, ok := store.Get("missing"); ok {
		t.Fatalf("expected missing room")
	}
	if got := store.RoomCount(); got != 1 {
		t.Fatalf("expected one room, got %d", got)
	}
	if got := a.ClientCount(); got != 0 {
		t.Fatalf("expected empty room, got %d clients", got)
	}
}

func TestRoomStoreContentDefaultsEmpty(t *testing.T) {
	store := NewRoomStore()
	if got := store.GetContent("never-written"); got != "" {
		t.Fatalf("expected empty content, got %q", got)
	}
	store.GetOrCreate("d1")
	if got := store.GetContent("d1"); got != "" {
		t.Fatalf("fresh room content must be empty, got %q", got)
	}
}

func TestRoomStoreSetContentOverwritesUnconditionally(t *testing.T) {
	store := NewRoomStore()
	store.SetContent("d1", "long first version")
	store.SetContent("d1", "v2")
	if got := store.GetContent("d1"); got != "v2" {
		t.Fatalf("expected last write to win, got %q", got)
	}
}

func TestRoomStoreDelete(t *testing.T) {
	store := NewRoomStore()
	store.GetOrCreate("d1")
	store.Delete("d1")
	if _, ok := store.Get("d1"); ok {
		t.Fatalf("expected room to be deleted")
	}
}

func TestRegistryConnectIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	c := NewClient("c1", "A", nil)
	reg.Connect(c)
	reg.Connect(c)
	if got := reg.ConnectionCount(); got != 1 {
		t.Fatalf("expected one connection, got %d", got)
	}
}

func TestRegistryRoomTracking(t *testing.T) {
	reg := NewRegistry()
	c := NewClient("c1", "A", nil)
	reg.Connect(c)

	if got := reg.RoomOf("c1"); got != "" {
		t.Fatalf("fresh connection must have no room, got %q", got)
	}
	reg.setRoom("c1", "d1")
	if got := reg.RoomOf("c1"); got != "d1" {
		t.Fatalf("expected d1, got %q", got)
	}
	reg.setRoom("c1", "")
	if got := reg.RoomOf("c1"); got != "" {
		t.Fatalf("expected detached connection, got %q", got)
	}

	// setRoom for an unknown connection is a no-op.
	reg.setRoom("ghost", "d1")
	if got := reg.RoomOf("ghost"); got != "" {
		t.Fatalf("unknown connection must not be tracked, got %q", got)
	}
}

func TestRegistryConnectionsInRoom(t *testing.T) {
	reg := NewRegistry()
	for _, c := range []*Client{
		NewClient("c1", "A", nil),
		NewClient("c2", "A", nil),
		NewClient("c3", "B", nil),
	} {
		reg.Connect(c)
		reg.setRoom(c.ID, "d1")
	}
	reg.setRoom("c2", "d2")

	if got := reg.ConnectionsInRoom("d1", "A"); got != 1 {
		t.Fatalf("expected one connection for A in d1, got %d", got)
	}
	if got := reg.ConnectionsInRoom("d2", "A"); got != 1 {
		t.Fatalf("expected one connection for A in d2, got %d", got)
	}
	reg.remove("c1")
	if got := reg.ConnectionsInRoom("d1", "A"); got != 0 {
		t.Fatalf("expected no connections after removal, got %d", got)
	}
}

func TestPresenceTracker(t *testing.T) {
	store := NewRoomStore()
	reg := NewRegistry()
	pres := NewPresence(store, reg)

	if changed := pres.MarkPresent("d1", "A"); !changed {
		t.Fatalf("expected first mark to change the set")
	}
	if changed := pres.MarkPresent("d1", "A"); changed {
		t.Fatalf("expected repeat mark to be a no-op")
	}
	pres.MarkPresent("d1", "B")

	if got := pres.Snapshot("d1"); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("expected sorted snapshot, got %v", got)
	}
	if got := pres.Snapshot("missing"); got != nil {
		t.Fatalf("expected nil snapshot for unknown room, got %v", got)
	}
}

func TestPresenceMarkAbsentConsultsRegistry(t *testing.T) {
	store := NewRoomStore()
	reg := NewRegistry()
	pres := NewPresence(store, reg)

	c := NewClient("c1", "A", nil)
	reg.Connect(c)
	reg.setRoom("c1", "d1")
	pres.MarkPresent("d1", "A")

	// A still has a live connection in the room: removal refused.
	if changed := pres.MarkAbsent("d1", "A"); changed {
		t.Fatalf("must not remove a user with a live connection")
	}
	reg.remove("c1")
	if changed := pres.MarkAbsent("d1", "A"); !changed {
		t.Fatalf("expected removal once no connections remain")
	}
	if got := pres.Snapshot("d1"); len(got) != 0 {
		t.Fatalf("expected empty snapshot, got %v", got)
	}
}

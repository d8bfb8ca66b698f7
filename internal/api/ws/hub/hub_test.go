package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"circle-service/domain"
	"circle-service/infra/memory"

	"github.com/google/uuid"
)

func newRoom(t *testing.T, store *memory.Store, owner uuid.UUID) *domain.Room {
	t.Helper()
	now := time.Now().UTC()
	room, err := domain.NewRoom(owner, domain.RoomConfig{Name: "r", MaxParticipants: 4, FocusDuration: 25}, now)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.CreateRoom(context.Background(), room, domain.NewParticipant(room.ID, owner, "o", now)); err != nil {
		t.Fatal(err)
	}
	return room
}

func nextMessage(t *testing.T, c *domain.Client) Message {
	t.Helper()
	select {
	case raw, ok := <-c.Send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatal(err)
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message pushed")
	}
	return Message{}
}

func TestRoomEventPushesSnapshot(t *testing.T) {
	store := memory.NewStore()
	bus := memory.NewEventBus()
	h := NewHub(store, bus)
	owner := uuid.New()
	room := newRoom(t, store, owner)

	client := domain.NewClient(owner, room.ID, nil)
	h.registerClient(client)
	if h.GetRoomClientCount(room.ID) != 1 {
		t.Fatal("client not registered")
	}

	bus.PublishMessage(context.Background(), domain.NewRoomEvent(domain.EventReadyChanged, room.ID, owner, nil))

	want := []string{MessageEvent, MessageRoom, MessageParticipants}
	for _, typ := range want {
		if msg := nextMessage(t, client); msg.Type != typ {
			t.Fatalf("got %q, want %q", msg.Type, typ)
		}
	}

	h.unregisterClient(client)
	select {
	case <-client.Done:
	default:
		t.Fatal("client not released")
	}
	if h.GetRoomClientCount(room.ID) != 0 {
		t.Fatal("room not cleaned up")
	}
}

func TestRoomDeletedIsPushed(t *testing.T) {
	store := memory.NewStore()
	bus := memory.NewEventBus()
	h := NewHub(store, bus)
	owner := uuid.New()
	room := newRoom(t, store, owner)

	client := domain.NewClient(owner, room.ID, nil)
	h.registerClient(client)
	defer h.unregisterClient(client)

	store.LeaveRoom(context.Background(), room.ID, owner)
	bus.PublishMessage(context.Background(), domain.NewRoomEvent(domain.EventRoomDeleted, room.ID, owner, nil))

	nextMessage(t, client)
	if msg := nextMessage(t, client); msg.Type != MessageRoomDeleted {
		t.Fatalf("got %q, want room_deleted", msg.Type)
	}
}

func TestReconnectReplacesClient(t *testing.T) {
	store := memory.NewStore()
	h := NewHub(store, memory.NewEventBus())
	owner := uuid.New()
	room := newRoom(t, store, owner)

	first := domain.NewClient(owner, room.ID, nil)
	second := domain.NewClient(owner, room.ID, nil)
	h.registerClient(first)
	h.registerClient(second)

	select {
	case <-first.Done:
	default:
		t.Fatal("old connection not released")
	}

	// the stale client's pumps unregistering must not drop the new one
	h.unregisterClient(first)
	if h.GetRoomClientCount(room.ID) != 1 {
		t.Fatal("new connection dropped")
	}
	h.unregisterClient(second)
}

func TestSnapshotOfMissingRoom(t *testing.T) {
	h := NewHub(memory.NewStore(), memory.NewEventBus())
	msgs, err := h.Snapshot(context.Background(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].Type != MessageRoomDeleted {
		t.Fatalf("snapshot = %+v", msgs)
	}
}

func TestChangeRightAfterRegistrationIsPushed(t *testing.T) {
	store := memory.NewStore()
	bus := memory.NewEventBus()
	h := NewHub(store, bus)
	owner := uuid.New()
	room := newRoom(t, store, owner)

	client := domain.NewClient(owner, room.ID, nil)
	h.registerClient(client)
	defer h.unregisterClient(client)

	// the owner starts a session before the initial snapshot is loaded
	ctx := context.Background()
	if _, err := store.StartSession(ctx, room.ID, owner, time.Now().UTC()); err != nil {
		t.Fatal(err)
	}
	bus.PublishMessage(ctx, domain.NewRoomEvent(domain.EventSessionStarted, room.ID, owner, nil))
	h.sendSnapshot(client)

	sawEvent := false
	var last *domain.Room
	for i := 0; i < 5; i++ {
		msg := nextMessage(t, client)
		switch msg.Type {
		case MessageEvent:
			sawEvent = true
		case MessageRoom:
			raw, _ := json.Marshal(msg.Content)
			last = &domain.Room{}
			if err := json.Unmarshal(raw, last); err != nil {
				t.Fatal(err)
			}
		}
	}
	if !sawEvent {
		t.Fatal("event published after registration was not pushed")
	}
	if last == nil || last.CurrentSessionStart == nil {
		t.Fatalf("last room pushed = %+v, want a running session", last)
	}
}

func TestErrorGoesToTheFailingConnectionOnly(t *testing.T) {
	store := memory.NewStore()
	h := NewHub(store, memory.NewEventBus())
	owner := uuid.New()
	room := newRoom(t, store, owner)

	stale := domain.NewClient(owner, room.ID, nil)
	current := domain.NewClient(owner, room.ID, nil)
	h.registerClient(stale)
	h.registerClient(current)
	defer h.unregisterClient(current)

	h.sendErrorToClient(stale, "malformed message")
	select {
	case raw := <-current.Send:
		t.Fatalf("replaced connection's error reached the new one: %s", raw)
	default:
	}

	h.sendErrorToClient(current, "malformed message")
	if msg := nextMessage(t, current); msg.Type != MessageError {
		t.Fatalf("got %q, want error", msg.Type)
	}
}

func TestStoppedHubReleasesClients(t *testing.T) {
	store := memory.NewStore()
	h := NewHub(store, memory.NewEventBus())
	owner := uuid.New()
	room := newRoom(t, store, owner)

	ctx, cancel := context.WithCancel(context.Background())
	h.Run(ctx)

	client := domain.NewClient(owner, room.ID, nil)
	h.registerClient(client)
	cancel()

	select {
	case <-client.Done:
	case <-time.After(2 * time.Second):
		t.Fatal("client not released on shutdown")
	}

	returned := make(chan struct{})
	go func() {
		h.UnregisterClient(client)
		h.RegisterClient(domain.NewClient(uuid.New(), room.ID, nil))
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("hub calls block after shutdown")
	}
}

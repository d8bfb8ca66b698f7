package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"circle-service/domain"

	"github.com/google/uuid"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func createRoom(t *testing.T, s *Store, owner uuid.UUID, maxParticipants, focus int) *domain.Room {
	t.Helper()
	room, err := domain.NewRoom(owner, domain.RoomConfig{
		Name:            "deep work",
		MaxParticipants: maxParticipants,
		FocusDuration:   focus,
	}, t0)
	if err != nil {
		t.Fatalf("NewRoom: %v", err)
	}
	if err := s.CreateRoom(context.Background(), room, domain.NewParticipant(room.ID, owner, "owner", t0)); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	return room
}

func TestJoinCapacity(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	room := createRoom(t, s, uuid.New(), 3, 25)

	joined, err := s.JoinRoom(ctx, room.ID, uuid.New(), "b", t0)
	if err != nil || !joined {
		t.Fatalf("join at max-1: joined=%v err=%v", joined, err)
	}
	got, _ := s.GetRoom(ctx, room.ID)
	if got.ParticipantCount != 2 {
		t.Fatalf("count = %d, want 2", got.ParticipantCount)
	}

	if _, err := s.JoinRoom(ctx, room.ID, uuid.New(), "c", t0); err != nil {
		t.Fatalf("join at max-1: %v", err)
	}
	_, err = s.JoinRoom(ctx, room.ID, uuid.New(), "d", t0)
	if !errors.Is(err, domain.ErrFull) {
		t.Fatalf("join full room: err = %v, want ErrFull", err)
	}
	got, _ = s.GetRoom(ctx, room.ID)
	if got.ParticipantCount != 3 {
		t.Fatalf("count after rejected join = %d, want 3", got.ParticipantCount)
	}
}

func TestJoinTwiceIsNoop(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := uuid.New()
	room := createRoom(t, s, owner, 5, 25)

	joined, err := s.JoinRoom(ctx, room.ID, owner, "owner", t0)
	if err != nil || joined {
		t.Fatalf("rejoin by active member: joined=%v err=%v", joined, err)
	}
	got, _ := s.GetRoom(ctx, room.ID)
	if got.ParticipantCount != 1 {
		t.Fatalf("count = %d, want 1", got.ParticipantCount)
	}
}

func TestJoinMissingRoom(t *testing.T) {
	_, err := NewStore().JoinRoom(context.Background(), uuid.New(), uuid.New(), "x", t0)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLastLeaveDeletesRoom(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner, member := uuid.New(), uuid.New()
	room := createRoom(t, s, owner, 5, 25)
	if _, err := s.JoinRoom(ctx, room.ID, member, "m", t0.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}

	res, err := s.LeaveRoom(ctx, room.ID, member)
	if err != nil || res.RoomDeleted {
		t.Fatalf("first leave: %+v %v", res, err)
	}
	got, _ := s.GetRoom(ctx, room.ID)
	if got.ParticipantCount != 1 {
		t.Fatalf("count = %d, want 1", got.ParticipantCount)
	}
	if _, err := s.GetParticipant(ctx, room.ID, member); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("left member still present: %v", err)
	}

	res, err = s.LeaveRoom(ctx, room.ID, owner)
	if err != nil || !res.RoomDeleted {
		t.Fatalf("last leave: %+v %v", res, err)
	}
	if _, err := s.GetRoom(ctx, room.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("room still present: %v", err)
	}
	if ps, _ := s.ListParticipants(ctx, room.ID); len(ps) != 0 {
		t.Fatalf("participants left behind: %d", len(ps))
	}
}

func TestOwnerLeaveHandsOverRoom(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner, first, second := uuid.New(), uuid.New(), uuid.New()
	room := createRoom(t, s, owner, 5, 25)
	s.JoinRoom(ctx, room.ID, second, "second", t0.Add(2*time.Minute))
	s.JoinRoom(ctx, room.ID, first, "first", t0.Add(time.Minute))

	res, err := s.LeaveRoom(ctx, room.ID, owner)
	if err != nil {
		t.Fatal(err)
	}
	if res.NewOwner != first {
		t.Fatalf("new owner = %s, want earliest joined %s", res.NewOwner, first)
	}
	got, _ := s.GetRoom(ctx, room.ID)
	if got.CreatedBy != first {
		t.Fatalf("created_by = %s, want %s", got.CreatedBy, first)
	}
}

func TestLeaveNotMember(t *testing.T) {
	s := NewStore()
	room := createRoom(t, s, uuid.New(), 5, 25)
	_, err := s.LeaveRoom(context.Background(), room.ID, uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestConcurrentAutoStopTransitionsOnce(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := uuid.New()
	room := createRoom(t, s, owner, 5, 25)
	if _, err := s.StartSession(ctx, room.ID, owner, t0); err != nil {
		t.Fatal(err)
	}
	now := t0.Add(25 * time.Minute)

	var wg sync.WaitGroup
	results := make([]domain.StopResult, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.AutoStopSession(ctx, room.ID, nil, now, 5*time.Second)
		}(i)
	}
	wg.Wait()

	stopped := 0
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("call %d: %v", i, errs[i])
		}
		if results[i].Stopped {
			stopped++
		}
	}
	if stopped != 1 {
		t.Fatalf("transitions = %d, want 1", stopped)
	}
	got, _ := s.GetRoom(ctx, room.ID)
	if got.IsRunning() {
		t.Fatal("session still running")
	}
}

func TestOwnerGatingDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner, other := uuid.New(), uuid.New()
	room := createRoom(t, s, owner, 5, 25)
	s.JoinRoom(ctx, room.ID, other, "other", t0)

	if _, err := s.StartSession(ctx, room.ID, other, t0); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("start by non-owner: %v", err)
	}
	got, _ := s.GetRoom(ctx, room.ID)
	if got.IsRunning() {
		t.Fatal("non-owner start mutated the room")
	}

	s.StartSession(ctx, room.ID, owner, t0)
	if _, err := s.StopSession(ctx, room.ID, other, t0.Add(time.Minute), true); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("stop by non-owner: %v", err)
	}
	got, _ = s.GetRoom(ctx, room.ID)
	if got.CurrentSessionStart == nil || !got.CurrentSessionStart.Equal(t0) {
		t.Fatal("non-owner stop mutated the session start")
	}
}

func TestPlantTreeRequiresParticipant(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	room := createRoom(t, s, uuid.New(), 5, 25)

	_, _, err := s.PlantTree(ctx, domain.PlantRequest{RoomID: room.ID, UserID: uuid.New(), FocusMinutes: 25}, t0)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPlantTreeUpdatesStats(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := uuid.New()
	room := createRoom(t, s, owner, 5, 25)

	tree, name, err := s.PlantTree(ctx, domain.PlantRequest{RoomID: room.ID, UserID: owner, FocusMinutes: 30}, t0)
	if err != nil {
		t.Fatal(err)
	}
	if name != "deep work" || tree.PlantedByName != "owner" || tree.GrowthStage != domain.StageSapling {
		t.Fatalf("unexpected tree %+v in %q", tree, name)
	}
	p, _ := s.GetParticipant(ctx, room.ID, owner)
	if p.TotalFocusMinutes != 30 || p.TreesPlanted != 1 {
		t.Fatalf("stats = %d/%d, want 30/1", p.TotalFocusMinutes, p.TreesPlanted)
	}
}

func TestListExpiredSessions(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := uuid.New()
	short := createRoom(t, s, owner, 5, 10)
	long := createRoom(t, s, owner, 5, 50)
	s.StartSession(ctx, short.ID, owner, t0)
	s.StartSession(ctx, long.ID, owner, t0)

	expired, err := s.ListExpiredSessions(ctx, t0.Add(10*time.Minute), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(expired) != 1 || expired[0].RoomID != short.ID || !expired[0].SessionStart.Equal(t0) {
		t.Fatalf("expired = %+v", expired)
	}
}

func TestEventBusDeliversPerRoom(t *testing.T) {
	ctx := context.Background()
	bus := NewEventBus()
	roomA, roomB := uuid.New(), uuid.New()

	ch, cancel, err := bus.Subscribe(ctx, roomA)
	if err != nil {
		t.Fatal(err)
	}
	bus.PublishMessage(ctx, domain.NewRoomEvent(domain.EventSessionStarted, roomB, uuid.Nil, nil))
	bus.PublishMessage(ctx, domain.NewRoomEvent(domain.EventSessionStarted, roomA, uuid.Nil, nil))

	select {
	case evt := <-ch:
		if evt.RoomID != roomA {
			t.Fatalf("got event for %s", evt.RoomID)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("channel not closed after cancel")
	}
}

package worker

import (
	"context"
	"testing"
	"time"

	"circle-service/domain"
	httpUsecase "circle-service/internal/api/http/usecase"
	"circle-service/infra/memory"

	"github.com/google/uuid"
)

func startedRoom(t *testing.T, store *memory.Store, focus int, startedAt time.Time) *domain.Room {
	t.Helper()
	ctx := context.Background()
	owner := uuid.New()
	room, err := domain.NewRoom(owner, domain.RoomConfig{Name: "circle", MaxParticipants: 5, FocusDuration: focus}, startedAt)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.CreateRoom(ctx, room, domain.NewParticipant(room.ID, owner, "owner", startedAt)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.StartSession(ctx, room.ID, owner, startedAt); err != nil {
		t.Fatal(err)
	}
	return room
}

func TestSweepStopsOnlyExpiredSessions(t *testing.T) {
	store := memory.NewStore()
	bus := memory.NewEventBus()
	now := time.Now().UTC()

	expired := startedRoom(t, store, 1, now.Add(-2*time.Minute))
	running := startedRoom(t, store, 25, now.Add(-time.Minute))

	events, cancel, err := bus.Subscribe(context.Background(), expired.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()

	expire := httpUsecase.NewExpireSessionUseCase(store, bus, nil, 5*time.Second)
	sweeper := NewExpirySweeper(store, expire, time.Second)

	if n := sweeper.Sweep(context.Background()); n != 1 {
		t.Fatalf("stopped %d sessions, want 1", n)
	}

	room, _ := store.GetRoom(context.Background(), expired.ID)
	if room.IsRunning() {
		t.Fatal("expired session still running")
	}
	room, _ = store.GetRoom(context.Background(), running.ID)
	if !room.IsRunning() {
		t.Fatal("running session was stopped")
	}

	select {
	case evt := <-events:
		if evt.Type != domain.EventSessionExpired {
			t.Fatalf("event = %s", evt.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no session_expired event")
	}

	if n := sweeper.Sweep(context.Background()); n != 0 {
		t.Fatalf("second sweep stopped %d sessions", n)
	}
}

func TestSweepRunsUntilCancelled(t *testing.T) {
	store := memory.NewStore()
	room := startedRoom(t, store, 1, time.Now().UTC().Add(-time.Hour))

	expire := httpUsecase.NewExpireSessionUseCase(store, memory.NewEventBus(), nil, 5*time.Second)
	sweeper := NewExpirySweeper(store, expire, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		got, _ := store.GetRoom(context.Background(), room.ID)
		if !got.IsRunning() {
			break
		}
		select {
		case <-deadline:
			t.Fatal("sweeper never stopped the session")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

package httpUsecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"circle-service/domain"
	"circle-service/infra/memory"

	"github.com/google/uuid"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func setNow(t *testing.T, at time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = prev })
}

type recordingBus struct {
	mu     sync.Mutex
	events []domain.RoomEvent
}

func (b *recordingBus) PublishMessage(ctx context.Context, evt domain.RoomEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, evt)
}

func (b *recordingBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Type)
	}
	return out
}

type failingGarden struct{}

func (failingGarden) AddEntry(ctx context.Context, entry domain.GardenEntry) error {
	return domain.ErrTransientIO
}

func (failingGarden) ListEntries(ctx context.Context, userID uuid.UUID, limit int) ([]domain.GardenEntry, error) {
	return nil, domain.ErrTransientIO
}

type fixture struct {
	store  *memory.Store
	garden *memory.GardenHistory
	bus    *recordingBus

	create  CreateRoomUseCase
	join    JoinRoomUseCase
	leave   LeaveRoomUseCase
	start   StartSessionUseCase
	stop    StopSessionUseCase
	expire  ExpireSessionUseCase
	plant   PlantTreeUseCase
	ready   ToggleReadyUseCase
	getRoom GetRoomUseCase
}

func newFixture() *fixture {
	f := &fixture{
		store:  memory.NewStore(),
		garden: memory.NewGardenHistory(),
		bus:    &recordingBus{},
	}
	f.create = NewCreateRoomUseCase(f.store, f.bus, nil, 25)
	f.join = NewJoinRoomUseCase(f.store, f.bus, nil)
	f.leave = NewLeaveRoomUseCase(f.store, f.bus, nil)
	f.start = NewStartSessionUseCase(f.store, f.bus, nil)
	f.stop = NewStopSessionUseCase(f.store, f.bus, nil)
	f.expire = NewExpireSessionUseCase(f.store, f.bus, nil, 5*time.Second)
	f.plant = NewPlantTreeUseCase(f.store, f.garden, f.bus, nil)
	f.ready = NewToggleReadyUseCase(f.store, f.bus, nil)
	f.getRoom = NewGetRoomUseCase(f.store)
	return f
}

func (f *fixture) newRoom(t *testing.T, owner uuid.UUID, focus, maxParticipants int) *domain.Room {
	t.Helper()
	status, room, err := f.create.Execute(context.Background(), owner, "A", domain.RoomConfig{
		Name:            "morning focus",
		FocusDuration:   focus,
		MaxParticipants: maxParticipants,
	})
	if err != nil || status != http.StatusCreated {
		t.Fatalf("create room: %d %v", status, err)
	}
	return room
}

func (f *fixture) room(t *testing.T, roomID uuid.UUID) *domain.Room {
	t.Helper()
	_, room, err := f.getRoom.Execute(context.Background(), roomID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	return room
}

func (f *fixture) plantTrees(t *testing.T, roomID, userID uuid.UUID, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		status, _, err := f.plant.Execute(context.Background(), domain.PlantRequest{
			RoomID: roomID, UserID: userID, FocusMinutes: 25,
		})
		if err != nil {
			t.Fatalf("plant %d: %d %v", i, status, err)
		}
	}
}

func TestUnattendedExpiryIsStoppedOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a, b := uuid.New(), uuid.New()

	setNow(t, t0)
	room := f.newRoom(t, a, 25, 2)
	if status, err := f.join.Execute(ctx, room.ID, b, "B"); err != nil || status != http.StatusCreated {
		t.Fatalf("join: %d %v", status, err)
	}
	if got := f.room(t, room.ID).ParticipantCount; got != 2 {
		t.Fatalf("count = %d, want 2", got)
	}
	if _, _, err := f.start.Execute(ctx, room.ID, a); err != nil {
		t.Fatalf("start: %v", err)
	}
	start := *f.room(t, room.ID).CurrentSessionStart

	// Nobody is polling for the whole session; a client shows up afterwards.
	setNow(t, t0.Add(40*time.Minute))
	status, res, err := f.expire.Execute(ctx, room.ID, &start)
	if err != nil || status != http.StatusOK || !res.Stopped {
		t.Fatalf("expire: %d %+v %v", status, res, err)
	}
	if f.room(t, room.ID).IsRunning() {
		t.Fatal("session still running after auto-stop")
	}

	status, res, err = f.expire.Execute(ctx, room.ID, &start)
	if err != nil || status != http.StatusOK || res.Stopped {
		t.Fatalf("duplicate expire: %d %+v %v", status, res, err)
	}

	expired := 0
	for _, typ := range f.bus.types() {
		if typ == domain.EventSessionExpired {
			expired++
		}
	}
	if expired != 1 {
		t.Fatalf("session_expired published %d times, want 1", expired)
	}
}

func TestEarlyStopWithKillTrees(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := uuid.New()

	setNow(t, t0)
	room := f.newRoom(t, a, 25, 4)
	f.plantTrees(t, room.ID, a, 3)
	before, _ := f.store.GetParticipant(ctx, room.ID, a)

	f.start.Execute(ctx, room.ID, a)
	setNow(t, t0.Add(10*time.Minute))
	status, res, err := f.stop.Execute(ctx, room.ID, a, true)
	if err != nil || status != http.StatusOK {
		t.Fatalf("stop: %d %v", status, err)
	}
	if !res.Early || res.ElapsedMinutes != 10 || res.TreesKilled != 3 {
		t.Fatalf("unexpected result %+v", res)
	}

	got := f.room(t, room.ID)
	if len(got.Trees) != 3 {
		t.Fatalf("trees = %d, want 3", len(got.Trees))
	}
	for i, tree := range got.Trees {
		if tree.IsAlive {
			t.Fatalf("tree %d still alive", i)
		}
	}

	after, _ := f.store.GetParticipant(ctx, room.ID, a)
	if after.TotalFocusMinutes != before.TotalFocusMinutes || after.TreesPlanted != before.TreesPlanted {
		t.Fatalf("stop changed stats: before %+v after %+v", before, after)
	}
}

func TestEarlyStopWithoutKillTreesKeepsTrees(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := uuid.New()

	setNow(t, t0)
	room := f.newRoom(t, a, 25, 4)
	f.plantTrees(t, room.ID, a, 2)
	f.start.Execute(ctx, room.ID, a)

	setNow(t, t0.Add(5*time.Minute))
	_, res, err := f.stop.Execute(ctx, room.ID, a, false)
	if err != nil || !res.Early || res.TreesKilled != 0 {
		t.Fatalf("stop: %+v %v", res, err)
	}
	for _, tree := range f.room(t, room.ID).Trees {
		if !tree.IsAlive {
			t.Fatal("tree killed without kill_trees")
		}
	}
}

func TestStopThresholdRounding(t *testing.T) {
	cases := []struct {
		elapsed time.Duration
		early   bool
	}{
		{1476 * time.Second, false},
		{1464 * time.Second, true},
	}
	for _, tc := range cases {
		ctx := context.Background()
		f := newFixture()
		a := uuid.New()

		setNow(t, t0)
		room := f.newRoom(t, a, 25, 2)
		f.plantTrees(t, room.ID, a, 1)
		f.start.Execute(ctx, room.ID, a)

		setNow(t, t0.Add(tc.elapsed))
		_, res, err := f.stop.Execute(ctx, room.ID, a, true)
		if err != nil {
			t.Fatal(err)
		}
		if res.Early != tc.early {
			t.Fatalf("elapsed %v: early = %v, want %v", tc.elapsed, res.Early, tc.early)
		}
		if alive := f.room(t, room.ID).Trees[0].IsAlive; alive == tc.early {
			t.Fatalf("elapsed %v: tree alive = %v", tc.elapsed, alive)
		}
	}
}

func TestSessionControlIsOwnerOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a, b := uuid.New(), uuid.New()

	setNow(t, t0)
	room := f.newRoom(t, a, 25, 3)
	f.join.Execute(ctx, room.ID, b, "B")

	status, _, err := f.start.Execute(ctx, room.ID, b)
	if status != http.StatusForbidden || !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("start by member: %d %v", status, err)
	}
	if !strings.Contains(err.Error(), a.String()) {
		t.Fatalf("error does not name the owner: %v", err)
	}
	if f.room(t, room.ID).IsRunning() {
		t.Fatal("member start mutated room")
	}

	f.start.Execute(ctx, room.ID, a)
	status, _, err = f.stop.Execute(ctx, room.ID, b, false)
	if status != http.StatusForbidden || !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("stop by member: %d %v", status, err)
	}
	if !f.room(t, room.ID).IsRunning() {
		t.Fatal("member stop mutated room")
	}

	status, _, err = f.start.Execute(ctx, room.ID, a)
	if status != http.StatusConflict || !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("second start: %d %v", status, err)
	}
}

func TestStopIdleIsNoop(t *testing.T) {
	f := newFixture()
	a := uuid.New()
	setNow(t, t0)
	room := f.newRoom(t, a, 25, 2)

	status, res, err := f.stop.Execute(context.Background(), room.ID, a, true)
	if err != nil || status != http.StatusOK || res.Stopped {
		t.Fatalf("stop idle: %d %+v %v", status, res, err)
	}
}

func TestExpireRejectsRunningSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := uuid.New()

	setNow(t, t0)
	room := f.newRoom(t, a, 25, 2)
	f.start.Execute(ctx, room.ID, a)

	setNow(t, t0.Add(20*time.Minute))
	status, _, err := f.expire.Execute(ctx, room.ID, nil)
	if status != http.StatusConflict || !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("early expire: %d %v", status, err)
	}

	// within tolerance of the deadline
	setNow(t, t0.Add(25*time.Minute-3*time.Second))
	if _, res, err := f.expire.Execute(ctx, room.ID, nil); err != nil || !res.Stopped {
		t.Fatalf("expire within tolerance: %+v %v", res, err)
	}
}

func TestExpireIgnoresStaleObservedStart(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := uuid.New()

	setNow(t, t0)
	room := f.newRoom(t, a, 1, 2)
	f.start.Execute(ctx, room.ID, a)
	old := t0

	setNow(t, t0.Add(2*time.Minute))
	f.stop.Execute(ctx, room.ID, a, false)
	f.start.Execute(ctx, room.ID, a)

	setNow(t, t0.Add(4*time.Minute))
	_, res, err := f.expire.Execute(ctx, room.ID, &old)
	if err != nil || res.Stopped {
		t.Fatalf("stale expire: %+v %v", res, err)
	}
	if !f.room(t, room.ID).IsRunning() {
		t.Fatal("stale expire stopped the newer session")
	}
}

func TestCreateRoomFocusDefault(t *testing.T) {
	f := newFixture()
	setNow(t, t0)

	if room := f.newRoom(t, uuid.New(), 0, 2); room.FocusDuration != 25 {
		t.Fatalf("focus duration = %d, want 25", room.FocusDuration)
	}
	if room := f.newRoom(t, uuid.New(), 50, 2); room.FocusDuration != 50 {
		t.Fatalf("explicit focus duration overridden: %d", room.FocusDuration)
	}
}

func TestJoinErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := uuid.New()
	setNow(t, t0)
	room := f.newRoom(t, a, 25, 2)

	if status, err := f.join.Execute(ctx, uuid.New(), uuid.New(), "x"); status != http.StatusNotFound || !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing room: %d %v", status, err)
	}
	if status, err := f.join.Execute(ctx, room.ID, uuid.New(), "B"); err != nil || status != http.StatusCreated {
		t.Fatalf("join: %d %v", status, err)
	}
	if status, err := f.join.Execute(ctx, room.ID, uuid.New(), "C"); status != http.StatusConflict || !errors.Is(err, domain.ErrFull) {
		t.Fatalf("full room: %d %v", status, err)
	}
}

func TestLeavePublishesDeletion(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := uuid.New()
	setNow(t, t0)
	room := f.newRoom(t, a, 25, 2)

	status, res, err := f.leave.Execute(ctx, room.ID, a)
	if err != nil || status != http.StatusOK || !res.RoomDeleted {
		t.Fatalf("leave: %d %+v %v", status, res, err)
	}
	types := f.bus.types()
	if types[len(types)-1] != domain.EventRoomDeleted {
		t.Fatalf("last event = %s, want room_deleted", types[len(types)-1])
	}
	if status, _, _ := f.getRoom.Execute(ctx, room.ID); status != http.StatusNotFound {
		t.Fatalf("deleted room status = %d", status)
	}
}

func TestPlantTreePreconditions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := uuid.New()
	setNow(t, t0)
	room := f.newRoom(t, a, 25, 2)

	status, _, err := f.plant.Execute(ctx, domain.PlantRequest{RoomID: room.ID, UserID: a, FocusMinutes: 0})
	if status != http.StatusConflict || !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("zero minutes: %d %v", status, err)
	}
	status, _, err = f.plant.Execute(ctx, domain.PlantRequest{RoomID: uuid.New(), UserID: a, FocusMinutes: 5})
	if status != http.StatusNotFound {
		t.Fatalf("missing room: %d %v", status, err)
	}
	status, _, err = f.plant.Execute(ctx, domain.PlantRequest{RoomID: room.ID, UserID: uuid.New(), FocusMinutes: 5})
	if status != http.StatusNotFound {
		t.Fatalf("non-member: %d %v", status, err)
	}
}

func TestPlantTreeMirrorsGarden(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := uuid.New()
	setNow(t, t0)
	room := f.newRoom(t, a, 25, 2)

	_, tree, err := f.plant.Execute(ctx, domain.PlantRequest{
		RoomID: room.ID, UserID: a, FocusMinutes: 61,
		Variety: &domain.Variety{Emoji: "🌲", Name: "pine"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if tree.GrowthStage != domain.StageMature || tree.PlantedByName != "A" {
		t.Fatalf("unexpected tree %+v", tree)
	}

	entries, _ := f.garden.ListEntries(ctx, a, 10)
	if len(entries) != 1 || entries[0].TreeID != tree.ID || entries[0].RoomName != "morning focus" {
		t.Fatalf("garden = %+v", entries)
	}
}

func TestPlantTreeSurvivesGardenFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.plant = NewPlantTreeUseCase(f.store, failingGarden{}, f.bus, nil)
	a := uuid.New()
	setNow(t, t0)
	room := f.newRoom(t, a, 25, 2)

	status, _, err := f.plant.Execute(ctx, domain.PlantRequest{RoomID: room.ID, UserID: a, FocusMinutes: 20})
	if err != nil || status != http.StatusCreated {
		t.Fatalf("plant: %d %v", status, err)
	}
	if len(f.room(t, room.ID).Trees) != 1 {
		t.Fatal("tree not stored")
	}
}

func TestToggleReady(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := uuid.New()
	setNow(t, t0)
	room := f.newRoom(t, a, 25, 2)

	if status, err := f.ready.Execute(ctx, room.ID, a, true); err != nil || status != http.StatusOK {
		t.Fatalf("ready: %d %v", status, err)
	}
	p, _ := f.store.GetParticipant(ctx, room.ID, a)
	if !p.IsReady {
		t.Fatal("ready flag not set")
	}

	f.start.Execute(ctx, room.ID, a)
	p, _ = f.store.GetParticipant(ctx, room.ID, a)
	if p.IsReady {
		t.Fatal("start did not clear the owner's ready flag")
	}

	if status, _ := f.ready.Execute(ctx, room.ID, uuid.New(), true); status != http.StatusNotFound {
		t.Fatalf("non-member ready: %d", status)
	}
}

func TestDisplayNameFallsBackToDirectory(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a, b := uuid.New(), uuid.New()
	setNow(t, t0)
	room := f.newRoom(t, a, 25, 3)

	NewCreateUserUseCase(f.store).Execute(ctx, b, "bora", "bora@example.com")
	f.join.Execute(ctx, room.ID, b, "")

	p, err := f.store.GetParticipant(ctx, room.ID, b)
	if err != nil || p.DisplayName != "bora" {
		t.Fatalf("participant = %+v %v", p, err)
	}
}

func TestStatusFromError(t *testing.T) {
	cases := map[error]int{
		domain.ErrInvalidInput:  http.StatusBadRequest,
		domain.ErrUnauthorized:  http.StatusUnauthorized,
		domain.ErrForbidden:     http.StatusForbidden,
		domain.ErrNotFound:      http.StatusNotFound,
		domain.ErrInvalidState:  http.StatusConflict,
		domain.ErrFull:          http.StatusConflict,
		domain.ErrConflict:      http.StatusConflict,
		domain.ErrTransientIO:   http.StatusServiceUnavailable,
		errors.New("unplanned"): http.StatusInternalServerError,
	}
	for err, want := range cases {
		if got := statusFromError(err); got != want {
			t.Errorf("%v: status %d, want %d", err, got, want)
		}
	}
}

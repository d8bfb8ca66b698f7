package httpUsecase

import (
	"context"
	"time"

	"circle-service/domain"

	"github.com/google/uuid"
)

// CircleRepository is the document store for rooms, participants, trees and
// the user directory. Postgres and the in-memory store both implement it.
type CircleRepository interface {
	CreateRoom(ctx context.Context, room *domain.Room, owner domain.Participant) error
	GetRoom(ctx context.Context, roomID uuid.UUID) (*domain.Room, error)
	ListRooms(ctx context.Context, limit int) ([]domain.Room, error)
	ListParticipants(ctx context.Context, roomID uuid.UUID) ([]domain.Participant, error)
	GetParticipant(ctx context.Context, roomID, userID uuid.UUID) (*domain.Participant, error)
	JoinRoom(ctx context.Context, roomID, userID uuid.UUID, displayName string, now time.Time) (bool, error)
	LeaveRoom(ctx context.Context, roomID, userID uuid.UUID) (domain.LeaveResult, error)
	StartSession(ctx context.Context, roomID, actor uuid.UUID, now time.Time) (*domain.Room, error)
	StopSession(ctx context.Context, roomID, actor uuid.UUID, now time.Time, killTrees bool) (domain.StopResult, error)
	AutoStopSession(ctx context.Context, roomID uuid.UUID, observed *time.Time, now time.Time, tolerance time.Duration) (domain.StopResult, error)
	PlantTree(ctx context.Context, req domain.PlantRequest, now time.Time) (domain.Tree, string, error)
	SetReady(ctx context.Context, roomID, userID uuid.UUID, ready bool) error
	ListExpiredSessions(ctx context.Context, now time.Time, limit int) ([]domain.ExpiredSession, error)
	UpsertUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// RoomRedisRepository pushes room events to the websocket subscribers.
type RoomRedisRepository interface {
	PublishMessage(ctx context.Context, evt domain.RoomEvent)
}

// EventStream forwards room events to other services.
type EventStream interface {
	PublishEvent(ctx context.Context, evt domain.RoomEvent) error
}

type TimerRepository interface {
	GetTimer(ctx context.Context, userID uuid.UUID) (*domain.TimerState, error)
	SaveTimer(ctx context.Context, state domain.TimerState) error
}

type GardenRepository interface {
	AddEntry(ctx context.Context, entry domain.GardenEntry) error
	ListEntries(ctx context.Context, userID uuid.UUID, limit int) ([]domain.GardenEntry, error)
}

// timeNow is the server clock. Stored timestamps keep microsecond precision
// so they compare equal after a Postgres round trip.
var timeNow = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

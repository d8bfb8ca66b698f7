package httpUsecase

import (
	"context"
	"net/http"

	"circle-service/domain"

	"github.com/google/uuid"
)

type StartSessionUseCase interface {
	Execute(ctx context.Context, roomID, userID uuid.UUID) (int, *domain.Room, error)
}

type startSessionUseCase struct {
	repository CircleRepository
	notifier   notifier
}

func NewStartSessionUseCase(repository CircleRepository, roomRedisRepo RoomRedisRepository, stream EventStream) StartSessionUseCase {
	return &startSessionUseCase{
		repository: repository,
		notifier:   newNotifier(roomRedisRepo, stream),
	}
}

func (u *startSessionUseCase) Execute(ctx context.Context, roomID, userID uuid.UUID) (int, *domain.Room, error) {
	room, err := u.repository.StartSession(ctx, roomID, userID, timeNow())
	if err != nil {
		return statusFromError(err), nil, err
	}

	u.notifier.publish(domain.NewRoomEvent(domain.EventSessionStarted, roomID, userID, map[string]any{
		"session_start":  room.CurrentSessionStart,
		"focus_duration": room.FocusDuration,
	}))
	return http.StatusOK, room, nil
}

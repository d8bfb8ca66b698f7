package httpUsecase

import (
	"context"
	"net/http"

	"circle-service/domain"

	"github.com/google/uuid"
)

type ToggleReadyUseCase interface {
	Execute(ctx context.Context, roomID, userID uuid.UUID, ready bool) (int, error)
}

type toggleReadyUseCase struct {
	repository CircleRepository
	notifier   notifier
}

func NewToggleReadyUseCase(repository CircleRepository, roomRedisRepo RoomRedisRepository, stream EventStream) ToggleReadyUseCase {
	return &toggleReadyUseCase{
		repository: repository,
		notifier:   newNotifier(roomRedisRepo, stream),
	}
}

func (u *toggleReadyUseCase) Execute(ctx context.Context, roomID, userID uuid.UUID, ready bool) (int, error) {
	if err := u.repository.SetReady(ctx, roomID, userID, ready); err != nil {
		return statusFromError(err), err
	}

	u.notifier.publish(domain.NewRoomEvent(domain.EventReadyChanged, roomID, userID,
		map[string]any{"user_id": userID.String(), "ready": ready}))
	return http.StatusOK, nil
}

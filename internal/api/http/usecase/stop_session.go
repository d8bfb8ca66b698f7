package httpUsecase

import (
	"context"
	"net/http"

	"circle-service/domain"

	"github.com/google/uuid"
)

type StopSessionUseCase interface {
	Execute(ctx context.Context, roomID, userID uuid.UUID, killTrees bool) (int, domain.StopResult, error)
}

type stopSessionUseCase struct {
	repository CircleRepository
	notifier   notifier
}

func NewStopSessionUseCase(repository CircleRepository, roomRedisRepo RoomRedisRepository, stream EventStream) StopSessionUseCase {
	return &stopSessionUseCase{
		repository: repository,
		notifier:   newNotifier(roomRedisRepo, stream),
	}
}

func (u *stopSessionUseCase) Execute(ctx context.Context, roomID, userID uuid.UUID, killTrees bool) (int, domain.StopResult, error) {
	result, err := u.repository.StopSession(ctx, roomID, userID, timeNow(), killTrees)
	if err != nil {
		return statusFromError(err), result, err
	}

	if result.Stopped {
		u.notifier.publish(domain.NewRoomEvent(domain.EventSessionStopped, roomID, userID, result))
	}
	return http.StatusOK, result, nil
}

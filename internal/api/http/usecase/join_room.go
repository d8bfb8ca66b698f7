package httpUsecase

import (
	"context"
	"net/http"

	"circle-service/domain"

	"github.com/google/uuid"
)

type JoinRoomUseCase interface {
	Execute(ctx context.Context, roomID, userID uuid.UUID, displayName string) (int, error)
}

type joinRoomUseCase struct {
	repository CircleRepository
	notifier   notifier
}

func NewJoinRoomUseCase(repository CircleRepository, roomRedisRepo RoomRedisRepository, stream EventStream) JoinRoomUseCase {
	return &joinRoomUseCase{
		repository: repository,
		notifier:   newNotifier(roomRedisRepo, stream),
	}
}

func (u *joinRoomUseCase) Execute(ctx context.Context, roomID, userID uuid.UUID, displayName string) (int, error) {
	name := resolveDisplayName(ctx, u.repository, userID, displayName)

	joined, err := u.repository.JoinRoom(ctx, roomID, userID, name, timeNow())
	if err != nil {
		return statusFromError(err), err
	}
	if !joined {
		return http.StatusOK, nil
	}

	u.notifier.publish(domain.NewRoomEvent(domain.EventParticipantJoined, roomID, userID,
		map[string]string{"user_id": userID.String(), "display_name": name}))
	return http.StatusCreated, nil
}

package httpUsecase

import (
	"context"
	"net/http"

	"circle-service/domain"

	"github.com/google/uuid"
)

type LeaveRoomUseCase interface {
	Execute(ctx context.Context, roomID, userID uuid.UUID) (int, domain.LeaveResult, error)
}

type leaveRoomUseCase struct {
	repository CircleRepository
	notifier   notifier
}

func NewLeaveRoomUseCase(repository CircleRepository, roomRedisRepo RoomRedisRepository, stream EventStream) LeaveRoomUseCase {
	return &leaveRoomUseCase{
		repository: repository,
		notifier:   newNotifier(roomRedisRepo, stream),
	}
}

func (u *leaveRoomUseCase) Execute(ctx context.Context, roomID, userID uuid.UUID) (int, domain.LeaveResult, error) {
	result, err := u.repository.LeaveRoom(ctx, roomID, userID)
	if err != nil {
		return statusFromError(err), result, err
	}

	if result.RoomDeleted {
		u.notifier.publish(domain.NewRoomEvent(domain.EventRoomDeleted, roomID, userID, nil))
		return http.StatusOK, result, nil
	}

	u.notifier.publish(domain.NewRoomEvent(domain.EventParticipantLeft, roomID, userID,
		map[string]string{"user_id": userID.String()}))
	if result.NewOwner != uuid.Nil {
		u.notifier.publish(domain.NewRoomEvent(domain.EventOwnerChanged, roomID, result.NewOwner,
			map[string]string{"previous_owner": userID.String(), "new_owner": result.NewOwner.String()}))
	}
	return http.StatusOK, result, nil
}

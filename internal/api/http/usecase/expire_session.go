package httpUsecase

import (
	"context"
	"net/http"
	"time"

	"circle-service/domain"

	"github.com/google/uuid"
)

// ExpireSessionUseCase ends a session whose time is up. Any participant's
// client may call it, and so does the expiry sweeper.
type ExpireSessionUseCase interface {
	Execute(ctx context.Context, roomID uuid.UUID, observed *time.Time) (int, domain.StopResult, error)
}

type expireSessionUseCase struct {
	repository CircleRepository
	notifier   notifier
	tolerance  time.Duration
}

func NewExpireSessionUseCase(repository CircleRepository, roomRedisRepo RoomRedisRepository, stream EventStream, tolerance time.Duration) ExpireSessionUseCase {
	return &expireSessionUseCase{
		repository: repository,
		notifier:   newNotifier(roomRedisRepo, stream),
		tolerance:  tolerance,
	}
}

func (u *expireSessionUseCase) Execute(ctx context.Context, roomID uuid.UUID, observed *time.Time) (int, domain.StopResult, error) {
	result, err := u.repository.AutoStopSession(ctx, roomID, observed, timeNow(), u.tolerance)
	if err != nil {
		return statusFromError(err), result, err
	}

	if result.Stopped {
		u.notifier.publish(domain.NewRoomEvent(domain.EventSessionExpired, roomID, uuid.Nil, result))
	}
	return http.StatusOK, result, nil
}

package httpUsecase

import (
	"context"
	"net/http"

	"circle-service/domain"

	"github.com/google/uuid"
)

type CreateRoomUseCase interface {
	Execute(ctx context.Context, ownerID uuid.UUID, ownerName string, cfg domain.RoomConfig) (int, *domain.Room, error)
}

type createRoomUseCase struct {
	repository   CircleRepository
	notifier     notifier
	defaultFocus int
}

// NewCreateRoomUseCase builds the use case. defaultFocus, in minutes, is used
// for rooms created without a focus duration.
func NewCreateRoomUseCase(repository CircleRepository, roomRedisRepo RoomRedisRepository, stream EventStream, defaultFocus int) CreateRoomUseCase {
	return &createRoomUseCase{
		repository:   repository,
		notifier:     newNotifier(roomRedisRepo, stream),
		defaultFocus: defaultFocus,
	}
}

func (u *createRoomUseCase) Execute(ctx context.Context, ownerID uuid.UUID, ownerName string, cfg domain.RoomConfig) (int, *domain.Room, error) {
	if cfg.FocusDuration == 0 {
		cfg.FocusDuration = u.defaultFocus
	}

	now := timeNow()
	room, err := domain.NewRoom(ownerID, cfg, now)
	if err != nil {
		return statusFromError(err), nil, err
	}

	owner := domain.NewParticipant(room.ID, ownerID, resolveDisplayName(ctx, u.repository, ownerID, ownerName), now)
	if err := u.repository.CreateRoom(ctx, room, owner); err != nil {
		return statusFromError(err), nil, err
	}

	u.notifier.publish(domain.NewRoomEvent(domain.EventRoomCreated, room.ID, ownerID, room))
	return http.StatusCreated, room, nil
}

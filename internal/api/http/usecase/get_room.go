package httpUsecase

import (
	"context"
	"net/http"

	"circle-service/domain"

	"github.com/google/uuid"
)

const (
	defaultRoomListLimit = 50
	maxRoomListLimit     = 200
)

type GetRoomUseCase interface {
	Execute(ctx context.Context, roomID uuid.UUID) (int, *domain.Room, error)
}

type getRoomUseCase struct {
	repository CircleRepository
}

func NewGetRoomUseCase(repository CircleRepository) GetRoomUseCase {
	return &getRoomUseCase{repository: repository}
}

func (u *getRoomUseCase) Execute(ctx context.Context, roomID uuid.UUID) (int, *domain.Room, error) {
	room, err := u.repository.GetRoom(ctx, roomID)
	if err != nil {
		return statusFromError(err), nil, err
	}
	return http.StatusOK, room, nil
}

type ListRoomsUseCase interface {
	Execute(ctx context.Context, limit int) (int, []domain.Room, error)
}

type listRoomsUseCase struct {
	repository CircleRepository
}

func NewListRoomsUseCase(repository CircleRepository) ListRoomsUseCase {
	return &listRoomsUseCase{repository: repository}
}

func (u *listRoomsUseCase) Execute(ctx context.Context, limit int) (int, []domain.Room, error) {
	if limit <= 0 {
		limit = defaultRoomListLimit
	}
	if limit > maxRoomListLimit {
		limit = maxRoomListLimit
	}

	rooms, err := u.repository.ListRooms(ctx, limit)
	if err != nil {
		return statusFromError(err), nil, err
	}
	return http.StatusOK, rooms, nil
}

type ListParticipantsUseCase interface {
	Execute(ctx context.Context, roomID uuid.UUID) (int, []domain.Participant, error)
}

type listParticipantsUseCase struct {
	repository CircleRepository
}

func NewListParticipantsUseCase(repository CircleRepository) ListParticipantsUseCase {
	return &listParticipantsUseCase{repository: repository}
}

func (u *listParticipantsUseCase) Execute(ctx context.Context, roomID uuid.UUID) (int, []domain.Participant, error) {
	if _, err := u.repository.GetRoom(ctx, roomID); err != nil {
		return statusFromError(err), nil, err
	}

	participants, err := u.repository.ListParticipants(ctx, roomID)
	if err != nil {
		return statusFromError(err), nil, err
	}
	return http.StatusOK, participants, nil
}

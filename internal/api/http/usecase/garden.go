package httpUsecase

import (
	"context"
	"net/http"

	"circle-service/domain"

	"github.com/google/uuid"
)

type GardenUseCase interface {
	Execute(ctx context.Context, userID uuid.UUID, limit int) (int, []domain.GardenEntry, error)
}

type gardenUseCase struct {
	garden GardenRepository
}

func NewGardenUseCase(garden GardenRepository) GardenUseCase {
	return &gardenUseCase{garden: garden}
}

func (u *gardenUseCase) Execute(ctx context.Context, userID uuid.UUID, limit int) (int, []domain.GardenEntry, error) {
	if limit <= 0 || limit > maxRoomListLimit {
		limit = defaultRoomListLimit
	}
	entries, err := u.garden.ListEntries(ctx, userID, limit)
	if err != nil {
		return statusFromError(err), nil, err
	}
	return http.StatusOK, entries, nil
}

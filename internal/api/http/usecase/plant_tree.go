package httpUsecase

import (
	"context"
	"net/http"

	"circle-service/domain"

	"go.uber.org/zap"
)

type PlantTreeUseCase interface {
	Execute(ctx context.Context, req domain.PlantRequest) (int, *domain.Tree, error)
}

type plantTreeUseCase struct {
	repository CircleRepository
	garden     GardenRepository
	notifier   notifier
}

func NewPlantTreeUseCase(repository CircleRepository, garden GardenRepository, roomRedisRepo RoomRedisRepository, stream EventStream) PlantTreeUseCase {
	return &plantTreeUseCase{
		repository: repository,
		garden:     garden,
		notifier:   newNotifier(roomRedisRepo, stream),
	}
}

func (u *plantTreeUseCase) Execute(ctx context.Context, req domain.PlantRequest) (int, *domain.Tree, error) {
	tree, roomName, err := u.repository.PlantTree(ctx, req, timeNow())
	if err != nil {
		return statusFromError(err), nil, err
	}

	// The room keeps the tree even when the personal history write fails.
	if u.garden != nil {
		if err := u.garden.AddEntry(ctx, domain.NewGardenEntry(tree, roomName)); err != nil {
			zap.L().Warn("Failed to mirror tree into garden history",
				zap.String("tree_id", tree.ID.String()),
				zap.String("user_id", tree.PlantedBy.String()),
				zap.Error(err),
			)
		}
	}

	u.notifier.publish(domain.NewRoomEvent(domain.EventTreePlanted, tree.RoomID, tree.PlantedBy, tree))
	return http.StatusCreated, &tree, nil
}

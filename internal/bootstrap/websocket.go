package bootstrap

import (
	"context"

	"circle-service/domain"
	"circle-service/internal/initializer"

	"github.com/google/uuid"
)

type Hub interface {
	Run(ctx context.Context)
	RegisterClient(client *domain.Client)
	UnregisterClient(client *domain.Client)
	GetRoomClientCount(roomID uuid.UUID) int
}

func InitWebsocket(ctx context.Context, stores *Stores) Hub {
	return initializer.InitWebsocket(ctx, stores.Circles, stores.Bus)
}

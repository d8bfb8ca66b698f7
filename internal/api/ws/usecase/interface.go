package wsUsecase

import (
	"context"

	"circle-service/domain"

	"github.com/google/uuid"
)

type PostgresRepository interface {
	GetParticipant(ctx context.Context, roomID, userID uuid.UUID) (*domain.Participant, error)
}

type Hub interface {
	Run(ctx context.Context)
	RegisterClient(client *domain.Client)
	UnregisterClient(client *domain.Client)
}

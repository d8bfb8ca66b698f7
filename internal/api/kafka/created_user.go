package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"circle-service/domain"
	httpUsecase "circle-service/internal/api/http/usecase"
	"circle-service/pkg/messaging"

	"github.com/google/uuid"
)

type CreatedUserHandler struct {
	usecase httpUsecase.CreateUserUseCase
}

func NewCreatedUserHandler(createdUserUsecase httpUsecase.CreateUserUseCase) *CreatedUserHandler {
	return &CreatedUserHandler{
		usecase: createdUserUsecase,
	}
}

func (h *CreatedUserHandler) Handle(ctx context.Context, msg *messaging.Message) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("user_created payload is empty for message ID: %s", msg.ID)
	}

	var data domain.UserCreatedPayload
	if err := json.Unmarshal(msg.Payload, &data); err != nil {
		return fmt.Errorf("invalid user_created payload for message ID %s: %w", msg.ID, err)
	}
	idUUID, err := uuid.Parse(data.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id %q for message ID %s: %w", data.UserID, msg.ID, err)
	}
	return h.usecase.Execute(ctx, idUUID, data.Username, data.Email)
}

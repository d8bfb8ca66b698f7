package handler

import (
	"context"

	httpUsecase "circle-service/internal/api/http/usecase"
	baseHandler "circle-service/internal/handler"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ToggleReadyRequest struct {
	RoomID uuid.UUID `params:"room_id"`
	Ready  bool      `json:"ready"`
}

type ToggleReadyResponse struct {
	Ready bool `json:"ready"`
}

type ToggleReadyHandler struct {
	usecase httpUsecase.ToggleReadyUseCase
}

func NewToggleReadyHandler(usecase httpUsecase.ToggleReadyUseCase) *ToggleReadyHandler {
	return &ToggleReadyHandler{usecase: usecase}
}

func (h *ToggleReadyHandler) Handle(fbrCtx *fiber.Ctx, ctx context.Context, req *ToggleReadyRequest) (*ToggleReadyResponse, int, error) {
	userID, status, err := baseHandler.CurrentUserID(fbrCtx)
	if err != nil {
		return nil, status, err
	}

	status, err = h.usecase.Execute(ctx, req.RoomID, userID, req.Ready)
	if err != nil {
		return nil, status, err
	}
	return &ToggleReadyResponse{Ready: req.Ready}, status, nil
}

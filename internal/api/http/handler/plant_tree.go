package handler

import (
	"context"

	"circle-service/domain"
	httpUsecase "circle-service/internal/api/http/usecase"
	baseHandler "circle-service/internal/handler"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PlantTreeRequest struct {
	RoomID       uuid.UUID       `params:"room_id"`
	DisplayName  string          `json:"display_name" validate:"max=100"`
	Category     string          `json:"category" validate:"max=50"`
	FocusMinutes int             `json:"focus_minutes"`
	Variety      *domain.Variety `json:"variety"`
}

type PlantTreeResponse struct {
	Tree *domain.Tree `json:"tree"`
}

type PlantTreeHandler struct {
	usecase httpUsecase.PlantTreeUseCase
}

func NewPlantTreeHandler(usecase httpUsecase.PlantTreeUseCase) *PlantTreeHandler {
	return &PlantTreeHandler{usecase: usecase}
}

func (h *PlantTreeHandler) Handle(fbrCtx *fiber.Ctx, ctx context.Context, req *PlantTreeRequest) (*PlantTreeResponse, int, error) {
	userID, status, err := baseHandler.CurrentUserID(fbrCtx)
	if err != nil {
		return nil, status, err
	}

	status, tree, err := h.usecase.Execute(ctx, domain.PlantRequest{
		RoomID:       req.RoomID,
		UserID:       userID,
		DisplayName:  req.DisplayName,
		Category:     req.Category,
		FocusMinutes: req.FocusMinutes,
		Variety:      req.Variety,
	})
	if err != nil {
		return nil, status, err
	}
	return &PlantTreeResponse{Tree: tree}, status, nil
}

package handler

import (
	"context"

	"circle-service/domain"
	httpUsecase "circle-service/internal/api/http/usecase"
	baseHandler "circle-service/internal/handler"

	"github.com/gofiber/fiber/v2"
)

type GardenRequest struct {
	Limit int `query:"limit" validate:"gte=0"`
}

type GardenResponse struct {
	Trees []domain.GardenEntry `json:"trees"`
}

type GardenHandler struct {
	usecase httpUsecase.GardenUseCase
}

func NewGardenHandler(usecase httpUsecase.GardenUseCase) *GardenHandler {
	return &GardenHandler{usecase: usecase}
}

func (h *GardenHandler) Handle(fbrCtx *fiber.Ctx, ctx context.Context, req *GardenRequest) (*GardenResponse, int, error) {
	userID, status, err := baseHandler.CurrentUserID(fbrCtx)
	if err != nil {
		return nil, status, err
	}

	status, trees, err := h.usecase.Execute(ctx, userID, req.Limit)
	if err != nil {
		return nil, status, err
	}
	return &GardenResponse{Trees: trees}, status, nil
}

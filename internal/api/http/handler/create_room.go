package handler

import (
	"context"

	"circle-service/domain"
	httpUsecase "circle-service/internal/api/http/usecase"
	baseHandler "circle-service/internal/handler"

	"github.com/gofiber/fiber/v2"
)

type CreateRoomRequest struct {
	Name            string `json:"name" validate:"required,max=100"`
	Description     string `json:"description" validate:"max=500"`
	MaxParticipants int    `json:"max_participants" validate:"required,min=2,max=50"`
	FocusDuration   int    `json:"focus_duration" validate:"omitempty,min=1,max=240"`
	Category        string `json:"category" validate:"max=50"`
	DisplayName     string `json:"display_name" validate:"max=100"`
}

type CreateRoomResponse struct {
	Message string       `json:"message"`
	Room    *domain.Room `json:"room"`
}

type CreateRoomHandler struct {
	usecase httpUsecase.CreateRoomUseCase
}

func NewCreateRoomHandler(usecase httpUsecase.CreateRoomUseCase) *CreateRoomHandler {
	return &CreateRoomHandler{
		usecase: usecase,
	}
}

func (h *CreateRoomHandler) Handle(fbrCtx *fiber.Ctx, ctx context.Context, req *CreateRoomRequest) (*CreateRoomResponse, int, error) {
	userID, status, err := baseHandler.CurrentUserID(fbrCtx)
	if err != nil {
		return nil, status, err
	}

	status, room, err := h.usecase.Execute(ctx, userID, req.DisplayName, domain.RoomConfig{
		Name:            req.Name,
		Description:     req.Description,
		MaxParticipants: req.MaxParticipants,
		FocusDuration:   req.FocusDuration,
		Category:        req.Category,
	})
	if err != nil {
		return nil, status, err
	}

	return &CreateRoomResponse{Message: "Circle created", Room: room}, status, nil
}

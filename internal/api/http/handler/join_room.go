package handler

import (
	"context"

	httpUsecase "circle-service/internal/api/http/usecase"
	baseHandler "circle-service/internal/handler"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type JoinRoomRequest struct {
	RoomID      uuid.UUID `params:"room_id"`
	DisplayName string    `json:"display_name" validate:"max=100"`
}

type JoinRoomResponse struct {
	Message string `json:"message"`
}

type JoinRoomHandler struct {
	usecase httpUsecase.JoinRoomUseCase
}

func NewJoinRoomHandler(usecase httpUsecase.JoinRoomUseCase) *JoinRoomHandler {
	return &JoinRoomHandler{
		usecase: usecase,
	}
}

func (h *JoinRoomHandler) Handle(fbrCtx *fiber.Ctx, ctx context.Context, req *JoinRoomRequest) (*JoinRoomResponse, int, error) {
	userID, status, err := baseHandler.CurrentUserID(fbrCtx)
	if err != nil {
		return nil, status, err
	}

	status, err = h.usecase.Execute(ctx, req.RoomID, userID, req.DisplayName)
	if err != nil {
		return nil, status, err
	}
	if status == fiber.StatusOK {
		return &JoinRoomResponse{Message: "Already a member"}, status, nil
	}
	return &JoinRoomResponse{Message: "Joined circle"}, status, nil
}

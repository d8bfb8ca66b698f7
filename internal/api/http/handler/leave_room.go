package handler

import (
	"context"

	httpUsecase "circle-service/internal/api/http/usecase"
	baseHandler "circle-service/internal/handler"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type LeaveRoomRequest struct {
	RoomID uuid.UUID `params:"room_id"`
}

type LeaveRoomResponse struct {
	Message     string     `json:"message"`
	RoomDeleted bool       `json:"room_deleted"`
	NewOwner    *uuid.UUID `json:"new_owner,omitempty"`
}

type LeaveRoomHandler struct {
	usecase httpUsecase.LeaveRoomUseCase
}

func NewLeaveRoomHandler(usecase httpUsecase.LeaveRoomUseCase) *LeaveRoomHandler {
	return &LeaveRoomHandler{
		usecase: usecase,
	}
}

func (h *LeaveRoomHandler) Handle(fbrCtx *fiber.Ctx, ctx context.Context, req *LeaveRoomRequest) (*LeaveRoomResponse, int, error) {
	userID, status, err := baseHandler.CurrentUserID(fbrCtx)
	if err != nil {
		return nil, status, err
	}

	status, result, err := h.usecase.Execute(ctx, req.RoomID, userID)
	if err != nil {
		return nil, status, err
	}

	res := &LeaveRoomResponse{Message: "Left circle", RoomDeleted: result.RoomDeleted}
	if result.NewOwner != uuid.Nil {
		owner := result.NewOwner
		res.NewOwner = &owner
	}
	return res, status, nil
}

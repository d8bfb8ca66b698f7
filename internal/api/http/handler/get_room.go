package handler

import (
	"context"

	"circle-service/domain"
	httpUsecase "circle-service/internal/api/http/usecase"
	baseHandler "circle-service/internal/handler"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type GetRoomRequest struct {
	RoomID uuid.UUID `params:"room_id"`
}

type GetRoomResponse struct {
	Room *domain.Room `json:"room"`
}

type GetRoomHandler struct {
	usecase httpUsecase.GetRoomUseCase
}

func NewGetRoomHandler(usecase httpUsecase.GetRoomUseCase) *GetRoomHandler {
	return &GetRoomHandler{usecase: usecase}
}

func (h *GetRoomHandler) Handle(fbrCtx *fiber.Ctx, ctx context.Context, req *GetRoomRequest) (*GetRoomResponse, int, error) {
	if _, status, err := baseHandler.CurrentUserID(fbrCtx); err != nil {
		return nil, status, err
	}

	status, room, err := h.usecase.Execute(ctx, req.RoomID)
	if err != nil {
		return nil, status, err
	}
	return &GetRoomResponse{Room: room}, status, nil
}

type ListRoomsRequest struct {
	Limit int `query:"limit" validate:"gte=0"`
}

type ListRoomsResponse struct {
	Rooms []domain.Room `json:"rooms"`
}

type ListRoomsHandler struct {
	usecase httpUsecase.ListRoomsUseCase
}

func NewListRoomsHandler(usecase httpUsecase.ListRoomsUseCase) *ListRoomsHandler {
	return &ListRoomsHandler{usecase: usecase}
}

func (h *ListRoomsHandler) Handle(fbrCtx *fiber.Ctx, ctx context.Context, req *ListRoomsRequest) (*ListRoomsResponse, int, error) {
	if _, status, err := baseHandler.CurrentUserID(fbrCtx); err != nil {
		return nil, status, err
	}

	status, rooms, err := h.usecase.Execute(ctx, req.Limit)
	if err != nil {
		return nil, status, err
	}
	return &ListRoomsResponse{Rooms: rooms}, status, nil
}

type ListParticipantsRequest struct {
	RoomID uuid.UUID `params:"room_id"`
}

type ListParticipantsResponse struct {
	Participants []domain.Participant `json:"participants"`
}

type ListParticipantsHandler struct {
	usecase httpUsecase.ListParticipantsUseCase
}

func NewListParticipantsHandler(usecase httpUsecase.ListParticipantsUseCase) *ListParticipantsHandler {
	return &ListParticipantsHandler{usecase: usecase}
}

func (h *ListParticipantsHandler) Handle(fbrCtx *fiber.Ctx, ctx context.Context, req *ListParticipantsRequest) (*ListParticipantsResponse, int, error) {
	if _, status, err := baseHandler.CurrentUserID(fbrCtx); err != nil {
		return nil, status, err
	}

	status, participants, err := h.usecase.Execute(ctx, req.RoomID)
	if err != nil {
		return nil, status, err
	}
	return &ListParticipantsResponse{Participants: participants}, status, nil
}

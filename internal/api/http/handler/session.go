package handler

import (
	"context"
	"time"

	"circle-service/domain"
	httpUsecase "circle-service/internal/api/http/usecase"
	baseHandler "circle-service/internal/handler"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type StartSessionRequest struct {
	RoomID uuid.UUID `params:"room_id"`
}

type StartSessionResponse struct {
	Room *domain.Room `json:"room"`
}

type StartSessionHandler struct {
	usecase httpUsecase.StartSessionUseCase
}

func NewStartSessionHandler(usecase httpUsecase.StartSessionUseCase) *StartSessionHandler {
	return &StartSessionHandler{usecase: usecase}
}

func (h *StartSessionHandler) Handle(fbrCtx *fiber.Ctx, ctx context.Context, req *StartSessionRequest) (*StartSessionResponse, int, error) {
	userID, status, err := baseHandler.CurrentUserID(fbrCtx)
	if err != nil {
		return nil, status, err
	}

	status, room, err := h.usecase.Execute(ctx, req.RoomID, userID)
	if err != nil {
		return nil, status, err
	}
	return &StartSessionResponse{Room: room}, status, nil
}

type StopSessionRequest struct {
	RoomID    uuid.UUID `params:"room_id"`
	KillTrees bool      `json:"kill_trees"`
}

type StopSessionHandler struct {
	usecase httpUsecase.StopSessionUseCase
}

func NewStopSessionHandler(usecase httpUsecase.StopSessionUseCase) *StopSessionHandler {
	return &StopSessionHandler{usecase: usecase}
}

func (h *StopSessionHandler) Handle(fbrCtx *fiber.Ctx, ctx context.Context, req *StopSessionRequest) (*domain.StopResult, int, error) {
	userID, status, err := baseHandler.CurrentUserID(fbrCtx)
	if err != nil {
		return nil, status, err
	}

	status, result, err := h.usecase.Execute(ctx, req.RoomID, userID, req.KillTrees)
	if err != nil {
		return nil, status, err
	}
	return &result, status, nil
}

// ExpireSessionRequest carries the session start the client's countdown
// reached zero on. Without it the currently running session is targeted.
type ExpireSessionRequest struct {
	RoomID       uuid.UUID  `params:"room_id"`
	SessionStart *time.Time `json:"session_start"`
}

type ExpireSessionHandler struct {
	usecase httpUsecase.ExpireSessionUseCase
}

func NewExpireSessionHandler(usecase httpUsecase.ExpireSessionUseCase) *ExpireSessionHandler {
	return &ExpireSessionHandler{usecase: usecase}
}

func (h *ExpireSessionHandler) Handle(fbrCtx *fiber.Ctx, ctx context.Context, req *ExpireSessionRequest) (*domain.StopResult, int, error) {
	if _, status, err := baseHandler.CurrentUserID(fbrCtx); err != nil {
		return nil, status, err
	}

	status, result, err := h.usecase.Execute(ctx, req.RoomID, req.SessionStart)
	if err != nil {
		return nil, status, err
	}
	return &result, status, nil
}

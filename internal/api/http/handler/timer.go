package handler

import (
	"context"

	"circle-service/domain"
	httpUsecase "circle-service/internal/api/http/usecase"
	baseHandler "circle-service/internal/handler"

	"github.com/gofiber/fiber/v2"
)

type GetTimerRequest struct{}

type UpdateTimerRequest struct {
	Action          string `json:"action" validate:"required,oneof=start pause resume"`
	Mode            string `json:"mode" validate:"omitempty,oneof=focus short_break long_break"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0,lte=14400"`
}

type ResetTimerRequest struct{}

type TimerResponse struct {
	Timer *domain.TimerState `json:"timer"`
}

type TimerHandler struct {
	usecase httpUsecase.TimerUseCase
}

func NewTimerHandler(usecase httpUsecase.TimerUseCase) *TimerHandler {
	return &TimerHandler{usecase: usecase}
}

func (h *TimerHandler) Handle(fbrCtx *fiber.Ctx, ctx context.Context, req *GetTimerRequest) (*TimerResponse, int, error) {
	userID, status, err := baseHandler.CurrentUserID(fbrCtx)
	if err != nil {
		return nil, status, err
	}

	status, state, err := h.usecase.Get(ctx, userID)
	if err != nil {
		return nil, status, err
	}
	return &TimerResponse{Timer: state}, status, nil
}

type UpdateTimerHandler struct {
	usecase httpUsecase.TimerUseCase
}

func NewUpdateTimerHandler(usecase httpUsecase.TimerUseCase) *UpdateTimerHandler {
	return &UpdateTimerHandler{usecase: usecase}
}

func (h *UpdateTimerHandler) Handle(fbrCtx *fiber.Ctx, ctx context.Context, req *UpdateTimerRequest) (*TimerResponse, int, error) {
	userID, status, err := baseHandler.CurrentUserID(fbrCtx)
	if err != nil {
		return nil, status, err
	}

	status, state, err := h.usecase.Update(ctx, userID, req.Action, req.Mode, req.DurationSeconds)
	if err != nil {
		return nil, status, err
	}
	return &TimerResponse{Timer: state}, status, nil
}

type ResetTimerHandler struct {
	usecase httpUsecase.TimerUseCase
}

func NewResetTimerHandler(usecase httpUsecase.TimerUseCase) *ResetTimerHandler {
	return &ResetTimerHandler{usecase: usecase}
}

func (h *ResetTimerHandler) Handle(fbrCtx *fiber.Ctx, ctx context.Context, req *ResetTimerRequest) (*TimerResponse, int, error) {
	userID, status, err := baseHandler.CurrentUserID(fbrCtx)
	if err != nil {
		return nil, status, err
	}

	status, state, err := h.usecase.Reset(ctx, userID)
	if err != nil {
		return nil, status, err
	}
	return &TimerResponse{Timer: state}, status, nil
}

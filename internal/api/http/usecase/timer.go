package httpUsecase

import (
	"context"
	"fmt"
	"net/http"

	"circle-service/domain"

	"github.com/google/uuid"
)

const (
	TimerActionStart  = "start"
	TimerActionPause  = "pause"
	TimerActionResume = "resume"
)

// TimerUseCase is the personal pomodoro timer. Every change is persisted so
// the countdown survives reconnects.
type TimerUseCase interface {
	Get(ctx context.Context, userID uuid.UUID) (int, *domain.TimerState, error)
	Update(ctx context.Context, userID uuid.UUID, action, mode string, durationSeconds int) (int, *domain.TimerState, error)
	Reset(ctx context.Context, userID uuid.UUID) (int, *domain.TimerState, error)
}

type timerUseCase struct {
	repository TimerRepository
}

func NewTimerUseCase(repository TimerRepository) TimerUseCase {
	return &timerUseCase{repository: repository}
}

func (u *timerUseCase) load(ctx context.Context, userID uuid.UUID) (domain.TimerState, error) {
	state, err := u.repository.GetTimer(ctx, userID)
	if err != nil {
		return domain.TimerState{}, err
	}
	if state == nil {
		return domain.NewTimerState(userID, timeNow()), nil
	}
	return *state, nil
}

func (u *timerUseCase) Get(ctx context.Context, userID uuid.UUID) (int, *domain.TimerState, error) {
	state, err := u.load(ctx, userID)
	if err != nil {
		return statusFromError(err), nil, err
	}
	live := state.Live(timeNow())
	return http.StatusOK, &live, nil
}

func (u *timerUseCase) Update(ctx context.Context, userID uuid.UUID, action, mode string, durationSeconds int) (int, *domain.TimerState, error) {
	state, err := u.load(ctx, userID)
	if err != nil {
		return statusFromError(err), nil, err
	}

	now := timeNow()
	switch action {
	case TimerActionStart:
		err = state.Start(mode, durationSeconds, now)
	case TimerActionPause:
		err = state.Pause(now)
	case TimerActionResume:
		err = state.Resume(now)
	default:
		err = fmt.Errorf("%w: unknown timer action %q", domain.ErrInvalidInput, action)
	}
	if err != nil {
		return statusFromError(err), nil, err
	}

	if err := u.repository.SaveTimer(ctx, state); err != nil {
		return statusFromError(err), nil, err
	}
	live := state.Live(now)
	return http.StatusOK, &live, nil
}

func (u *timerUseCase) Reset(ctx context.Context, userID uuid.UUID) (int, *domain.TimerState, error) {
	state, err := u.load(ctx, userID)
	if err != nil {
		return statusFromError(err), nil, err
	}

	state.Reset(timeNow())
	if err := u.repository.SaveTimer(ctx, state); err != nil {
		return statusFromError(err), nil, err
	}
	return http.StatusOK, &state, nil
}

package memory

import (
	"context"
	"sync"

	"circle-service/domain"

	"github.com/google/uuid"
)

// TimerStore keeps personal timer state per user.
type TimerStore struct {
	mu     sync.RWMutex
	timers map[uuid.UUID]domain.TimerState
}

func NewTimerStore() *TimerStore {
	return &TimerStore{timers: make(map[uuid.UUID]domain.TimerState)}
}

// GetTimer returns nil when the user has no saved timer.
func (s *TimerStore) GetTimer(ctx context.Context, userID uuid.UUID) (*domain.TimerState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.timers[userID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (s *TimerStore) SaveTimer(ctx context.Context, state domain.TimerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timers[state.UserID] = state
	return nil
}

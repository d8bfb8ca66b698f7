package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"circle-service/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TimerStore persists personal timer state as JSON under timer:<user_id>.
// Every save refreshes the TTL.
type TimerStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTimerStore(client *redis.Client, ttl time.Duration) *TimerStore {
	return &TimerStore{client: client, ttl: ttl}
}

func timerKey(userID uuid.UUID) string {
	return fmt.Sprintf("timer:%s", userID.String())
}

// GetTimer returns nil when the user has no saved timer.
func (s *TimerStore) GetTimer(ctx context.Context, userID uuid.UUID) (*domain.TimerState, error) {
	raw, err := s.client.Get(ctx, timerKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to read timer: %w", domain.ErrTransientIO, err)
	}

	var state domain.TimerState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("%w: corrupt timer state: %w", domain.ErrInternal, err)
	}
	return &state, nil
}

func (s *TimerStore) SaveTimer(ctx context.Context, state domain.TimerState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: failed to encode timer: %w", domain.ErrInternal, err)
	}
	if err := s.client.Set(ctx, timerKey(state.UserID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: failed to save timer: %w", domain.ErrTransientIO, err)
	}
	return nil
}

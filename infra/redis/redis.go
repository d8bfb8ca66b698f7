package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"circle-service/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisManager publishes room events on per-room Pub/Sub channels and keeps
// the personal timer state.
type RedisManager struct {
	client *redis.Client
}

func NewRedisManager(redisAddr string, password string, db int) (*RedisManager, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: password,
		DB:       db,
	})

	// Bağlantıyı test et
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	zap.L().Info("Connected to Redis successfully", zap.String("addr", redisAddr))
	return &RedisManager{client: rdb}, nil
}

func (rm *RedisManager) GetRedisClient() *redis.Client {
	return rm.client
}

func (rm *RedisManager) Close() error {
	return rm.client.Close()
}

func roomChannel(roomID uuid.UUID) string {
	return fmt.Sprintf("room:%s", roomID.String())
}

// PublishMessage sends evt to the room channel. Failures are logged; the
// mutation that produced the event has already been committed.
func (rm *RedisManager) PublishMessage(ctx context.Context, evt domain.RoomEvent) {
	payload, err := json.Marshal(evt)
	if err != nil {
		zap.L().Error("Failed to marshal room event", zap.Error(err))
		return
	}

	channel := roomChannel(evt.RoomID)
	if err := rm.client.Publish(ctx, channel, payload).Err(); err != nil {
		zap.L().Error("Failed to publish message to Redis channel",
			zap.String("channel", channel),
			zap.Error(err),
		)
	}
}

// Subscribe listens on the room channel until the returned cancel function
// is called. Malformed payloads are skipped.
func (rm *RedisManager) Subscribe(ctx context.Context, roomID uuid.UUID) (<-chan domain.RoomEvent, func(), error) {
	channel := roomChannel(roomID)
	pubsub := rm.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	out := make(chan domain.RoomEvent, 64)
	go func() {
		defer close(out)
		zap.L().Debug("Subscribed to Redis channel", zap.String("channel", channel))

		for msg := range pubsub.Channel() {
			var evt domain.RoomEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				zap.L().Warn("Failed to unmarshal Redis message", zap.String("channel", channel), zap.Error(err))
				continue
			}
			out <- evt
		}
		zap.L().Debug("Unsubscribed from Redis channel", zap.String("channel", channel))
	}()

	cancel := func() {
		if err := pubsub.Close(); err != nil {
			zap.L().Warn("Failed to close Redis subscription", zap.String("channel", channel), zap.Error(err))
		}
	}
	return out, cancel, nil
}

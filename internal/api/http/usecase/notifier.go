package httpUsecase

import (
	"context"

	"circle-service/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// notifier publishes a committed change to the room channel and, when
// configured, to the event stream. Both are best effort.
type notifier struct {
	roomRedisRepo RoomRedisRepository
	stream        EventStream
}

func newNotifier(roomRedisRepo RoomRedisRepository, stream EventStream) notifier {
	return notifier{roomRedisRepo: roomRedisRepo, stream: stream}
}

func (n notifier) publish(evt domain.RoomEvent) {
	if n.roomRedisRepo != nil {
		n.roomRedisRepo.PublishMessage(context.Background(), evt)
	}
	if n.stream == nil {
		return
	}
	go func() {
		if err := n.stream.PublishEvent(context.Background(), evt); err != nil {
			zap.L().Warn("Failed to publish event to stream",
				zap.String("type", evt.Type),
				zap.String("room_id", evt.RoomID.String()),
				zap.Error(err),
			)
		}
	}()
}

// resolveDisplayName falls back to the user directory, then to a generic
// name, when the caller did not send one.
func resolveDisplayName(ctx context.Context, repository CircleRepository, userID uuid.UUID, given string) string {
	if given != "" {
		return given
	}
	if user, err := repository.GetUser(ctx, userID); err == nil && user.Username != "" {
		return user.Username
	}
	return "Anonymous"
}

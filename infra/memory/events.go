package memory

import (
	"context"
	"sync"

	"circle-service/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const subscriberBuffer = 64

// EventBus fans room events out to in-process subscribers. It stands in for
// the Redis room channels.
type EventBus struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]map[int]chan domain.RoomEvent
	nextID int
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[uuid.UUID]map[int]chan domain.RoomEvent)}
}

// PublishMessage delivers evt to every subscriber of its room. Slow
// subscribers lose the event rather than block the publisher.
func (b *EventBus) PublishMessage(ctx context.Context, evt domain.RoomEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[evt.RoomID] {
		select {
		case ch <- evt:
		default:
			zap.L().Warn("Room subscriber is full, dropping event",
				zap.String("room_id", evt.RoomID.String()),
				zap.String("type", evt.Type),
			)
		}
	}
}

// Subscribe returns a channel of events for roomID and a function that ends
// the subscription and closes the channel.
func (b *EventBus) Subscribe(ctx context.Context, roomID uuid.UUID) (<-chan domain.RoomEvent, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan domain.RoomEvent, subscriberBuffer)
	if b.subs[roomID] == nil {
		b.subs[roomID] = make(map[int]chan domain.RoomEvent)
	}
	b.subs[roomID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[roomID], id)
			if len(b.subs[roomID]) == 0 {
				delete(b.subs, roomID)
			}
			close(ch)
		})
	}
	return ch, cancel, nil
}

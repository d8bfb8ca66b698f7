package hub

import (
	"context"
	"sync"

	"circle-service/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// roomHub keeps one room-channel subscription per room that has at least one
// connected client.
type roomHub struct {
	subscriber  Subscriber
	hub         *Hub
	subscribers map[uuid.UUID]func()
	mutex       sync.Mutex
}

func newRoomHub(subscriber Subscriber, hub *Hub) *roomHub {
	return &roomHub{
		subscriber:  subscriber,
		hub:         hub,
		subscribers: make(map[uuid.UUID]func()),
	}
}

func (rm *roomHub) StartSubscriber(roomID uuid.UUID) {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	if _, ok := rm.subscribers[roomID]; ok {
		return
	}

	events, cancel, err := rm.subscriber.Subscribe(context.Background(), roomID)
	if err != nil {
		zap.L().Error("Failed to subscribe to room channel", zap.String("room_id", roomID.String()), zap.Error(err))
		return
	}
	rm.subscribers[roomID] = cancel

	go func() {
		for evt := range events {
			rm.handleRoomEvent(roomID, evt)
		}
	}()
}

func (rm *roomHub) StopSubscriber(roomID uuid.UUID) {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	if cancel, ok := rm.subscribers[roomID]; ok {
		cancel()
		delete(rm.subscribers, roomID)
	}
}

func (rm *roomHub) stopAll() {
	rm.mutex.Lock()
	defer rm.mutex.Unlock()

	for roomID, cancel := range rm.subscribers {
		cancel()
		delete(rm.subscribers, roomID)
	}
}

// handleRoomEvent forwards the event itself, then the fresh room state.
func (rm *roomHub) handleRoomEvent(roomID uuid.UUID, evt domain.RoomEvent) {
	rm.hub.BroadcastMessage(roomID, &Message{Type: MessageEvent, Content: evt})

	if evt.Type == domain.EventRoomDeleted {
		rm.hub.BroadcastMessage(roomID, roomDeletedMessage(roomID))
		return
	}
	rm.hub.pushSnapshot(roomID)
}

package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Room channel / event stream message types
const (
	EventRoomCreated       = "room_created"
	EventRoomDeleted       = "room_deleted"
	EventParticipantJoined = "participant_joined"
	EventParticipantLeft   = "participant_left"
	EventOwnerChanged      = "owner_changed"
	EventReadyChanged      = "ready_changed"
	EventSessionStarted    = "session_started"
	EventSessionStopped    = "session_stopped"
	EventSessionExpired    = "session_expired"
	EventTreePlanted       = "tree_planted"

	// inbound from the auth service
	EventUserCreated = "user_created"
)

// RoomEvent is the envelope published on the room channel and on the event
// stream.
type RoomEvent struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	RoomID    uuid.UUID       `json:"room_id"`
	UserID    uuid.UUID       `json:"user_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewRoomEvent(eventType string, roomID, userID uuid.UUID, payload any) RoomEvent {
	evt := RoomEvent{
		ID:        uuid.New(),
		Type:      eventType,
		RoomID:    roomID,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			evt.Payload = raw
		}
	}
	return evt
}

// UserCreatedPayload is the body of a user_created event.
type UserCreatedPayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

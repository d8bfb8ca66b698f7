package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"circle-service/domain"
	"circle-service/internal/api/ws/hub"

	"github.com/fasthttp/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoomListener receives what the server pushes for one room.
type RoomListener struct {
	OnRoom         func(room *domain.Room)
	OnParticipants func(participants []domain.Participant)
	OnEvent        func(evt domain.RoomEvent)
	OnError        func(message string)
}

// pushMessage covers both hub messages and the error frame sent right
// before the server closes a rejected connection.
type pushMessage struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
	Message string          `json:"message"`
	Code    int             `json:"code"`
}

// Subscribe connects to the room's websocket and feeds pushed snapshots to
// the listener until ctx is done or the room is deleted. OnRoom is called
// with nil for a deleted room.
func Subscribe(ctx context.Context, baseURL string, userID, roomID uuid.UUID, listener RoomListener) error {
	url := wsURL(baseURL) + "/ws/circle/" + roomID.String()
	header := http.Header{}
	header.Set("X-User-ID", userID.String())

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", domain.ErrTransientIO, url, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("%w: read: %v", domain.ErrTransientIO, err)
		}

		var msg pushMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			zap.L().Warn("Skipping undecodable push message", zap.Error(err))
			continue
		}
		if done, err := dispatch(msg, listener); err != nil || done {
			return err
		}
	}
}

func dispatch(msg pushMessage, listener RoomListener) (bool, error) {
	switch msg.Type {
	case hub.MessageRoom:
		var room domain.Room
		if err := json.Unmarshal(msg.Content, &room); err != nil {
			return false, fmt.Errorf("%w: decode room: %v", domain.ErrInternal, err)
		}
		if listener.OnRoom != nil {
			listener.OnRoom(&room)
		}
	case hub.MessageParticipants:
		var participants []domain.Participant
		if err := json.Unmarshal(msg.Content, &participants); err != nil {
			return false, fmt.Errorf("%w: decode participants: %v", domain.ErrInternal, err)
		}
		if listener.OnParticipants != nil {
			listener.OnParticipants(participants)
		}
	case hub.MessageEvent:
		var evt domain.RoomEvent
		if err := json.Unmarshal(msg.Content, &evt); err == nil && listener.OnEvent != nil {
			listener.OnEvent(evt)
		}
	case hub.MessageRoomDeleted:
		if listener.OnRoom != nil {
			listener.OnRoom(nil)
		}
		return true, nil
	case hub.MessageError:
		if msg.Message != "" {
			if listener.OnError != nil {
				listener.OnError(msg.Message)
			}
			return true, &APIError{Status: msg.Code, Message: msg.Message}
		}
		var text string
		if err := json.Unmarshal(msg.Content, &text); err != nil {
			text = string(msg.Content)
		}
		if listener.OnError != nil {
			listener.OnError(text)
		}
	}
	return false, nil
}

func wsURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}

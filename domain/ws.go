package domain

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

type WebSocketErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
}

// Client is one websocket subscription of a user to a room. Done is closed
// when the hub lets go of the client.
type Client struct {
	ID        uuid.UUID
	RoomID    uuid.UUID
	Send      chan []byte
	Conn      *websocket.Conn
	WriteLock sync.Mutex
	Done      chan struct{}
}

func NewClient(userID, roomID uuid.UUID, conn *websocket.Conn) *Client {
	return &Client{
		ID:     userID,
		RoomID: roomID,
		Send:   make(chan []byte, 256),
		Conn:   conn,
		Done:   make(chan struct{}),
	}
}

package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"circle-service/domain"

	"github.com/fasthttp/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Push message types sent to subscribers.
const (
	MessageRoom         = "room"
	MessageParticipants = "participants"
	MessageRoomDeleted  = "room_deleted"
	MessageEvent        = "event"
	MessageError        = "error"
)

type Message struct {
	Type    string      `json:"type"`
	Content interface{} `json:"content"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type Repository interface {
	GetRoom(ctx context.Context, roomID uuid.UUID) (*domain.Room, error)
	ListParticipants(ctx context.Context, roomID uuid.UUID) ([]domain.Participant, error)
}

// Subscriber delivers the events published for one room.
type Subscriber interface {
	Subscribe(ctx context.Context, roomID uuid.UUID) (<-chan domain.RoomEvent, func(), error)
}

// Hub keeps the websocket clients of every room and pushes room snapshots to
// them whenever the room channel reports a change.
type Hub struct {
	roomsClients map[uuid.UUID]map[uuid.UUID]*domain.Client

	register   chan *domain.Client
	unregister chan *domain.Client

	mutex   sync.RWMutex
	repo    Repository
	roomHub *roomHub

	// snapshotMu orders snapshot loads with their delivery, so a client never
	// receives an older room state after a newer one.
	snapshotMu sync.Mutex
	// done is closed once Run has stopped and released every client.
	done chan struct{}
}

func NewHub(repo Repository, subscriber Subscriber) *Hub {
	hub := &Hub{
		roomsClients: make(map[uuid.UUID]map[uuid.UUID]*domain.Client),
		register:     make(chan *domain.Client),
		unregister:   make(chan *domain.Client),
		repo:         repo,
		done:         make(chan struct{}),
	}
	hub.roomHub = newRoomHub(subscriber, hub)
	return hub
}

func (h *Hub) Run(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-h.register:
				// the room channel is subscribed before the first snapshot
				// is loaded, so no change in between goes unseen
				h.registerClient(client)
				go h.sendSnapshot(client)
				go h.readPump(client)
				go h.writePump(client)
			case client := <-h.unregister:
				h.unregisterClient(client)
			case <-ctx.Done():
				h.roomHub.stopAll()
				h.releaseAll()
				close(h.done)
				return
			}
		}
	}()
}

// RegisterClient hands the client to the hub. Once the hub has stopped the
// client is released right away.
func (h *Hub) RegisterClient(client *domain.Client) {
	select {
	case h.register <- client:
	case <-h.done:
		h.release(client)
	}
}

func (h *Hub) UnregisterClient(client *domain.Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// registerClient is only called from the Run loop.
func (h *Hub) registerClient(client *domain.Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	roomClients, ok := h.roomsClients[client.RoomID]
	if !ok {
		roomClients = make(map[uuid.UUID]*domain.Client)
		h.roomsClients[client.RoomID] = roomClients
	}

	// Aynı kullanıcı tekrar bağlandıysa eski bağlantıyı kapat
	if existing, ok := roomClients[client.ID]; ok {
		zap.L().Info("User reconnected, closing previous connection",
			zap.String("user_id", client.ID.String()),
			zap.String("room_id", client.RoomID.String()),
		)
		h.release(existing)
		delete(roomClients, client.ID)
	}

	first := len(roomClients) == 0
	roomClients[client.ID] = client

	// Odaya ilk kişi bağlandı: kanal aboneliğini başlat
	if first {
		h.roomHub.StartSubscriber(client.RoomID)
	}
}

func (h *Hub) unregisterClient(client *domain.Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	roomClients, ok := h.roomsClients[client.RoomID]
	if !ok {
		return
	}
	// A replaced connection was already released on reconnect.
	if current, ok := roomClients[client.ID]; !ok || current != client {
		return
	}

	delete(roomClients, client.ID)
	h.release(client)
	zap.L().Debug("Client unregistered",
		zap.String("user_id", client.ID.String()),
		zap.String("room_id", client.RoomID.String()),
		zap.Int("remaining", len(roomClients)),
	)

	if len(roomClients) == 0 {
		h.roomHub.StopSubscriber(client.RoomID)
		delete(h.roomsClients, client.RoomID)
	}
}

func (h *Hub) releaseAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for roomID, roomClients := range h.roomsClients {
		for _, client := range roomClients {
			h.release(client)
		}
		delete(h.roomsClients, roomID)
	}
}

// release closes the client's channels. It runs once per client: either under
// h.mutex right as the client leaves the room map, or for a client that never
// got into it.
func (h *Hub) release(client *domain.Client) {
	close(client.Send)
	close(client.Done)
}

func (h *Hub) readPump(client *domain.Client) {
	defer h.UnregisterClient(client)

	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				zap.L().Debug("Client read error", zap.String("user_id", client.ID.String()), zap.Error(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.sendErrorToClient(client, "malformed message")
			continue
		}

		switch msg.Type {
		case "get_room":
			h.pushSnapshot(client.RoomID)
		default:
			h.sendErrorToClient(client, fmt.Sprintf("unknown message type %q", msg.Type))
		}
	}
}

func (h *Hub) writePump(client *domain.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
		h.UnregisterClient(client)
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			client.WriteLock.Lock()
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				client.WriteLock.Unlock()
				return
			}
			err := client.Conn.WriteMessage(websocket.TextMessage, msg)
			client.WriteLock.Unlock()
			if err != nil {
				zap.L().Debug("WebSocket write error", zap.String("user_id", client.ID.String()), zap.Error(err))
				return
			}

		case <-ticker.C:
			client.WriteLock.Lock()
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := client.Conn.WriteMessage(websocket.PingMessage, nil)
			client.WriteLock.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (h *Hub) sendErrorToClient(client *domain.Client, errorMessage string) {
	h.sendToClient(client, &Message{Type: MessageError, Content: errorMessage})
}

// sendToClient queues msg for this very connection. Nothing is sent once the
// client was unregistered or replaced by a reconnect.
func (h *Hub) sendToClient(client *domain.Client, msg *Message) error {
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.roomsClients[client.RoomID][client.ID] != client {
		return fmt.Errorf("client %s is no longer registered in room %s", client.ID, client.RoomID)
	}
	select {
	case client.Send <- messageBytes:
		return nil
	default:
		return fmt.Errorf("client send channel is full")
	}
}

func (h *Hub) BroadcastMessage(roomID uuid.UUID, msg *Message) {
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		zap.L().Error("Failed to marshal broadcast message", zap.Error(err))
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for _, client := range h.roomsClients[roomID] {
		select {
		case client.Send <- messageBytes:
		default:
			zap.L().Warn("Client send channel is full, dropping message",
				zap.String("user_id", client.ID.String()),
				zap.String("type", msg.Type),
			)
		}
	}
}

func (h *Hub) GetRoomClientCount(roomID uuid.UUID) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.roomsClients[roomID])
}

// Snapshot builds the messages describing the current state of a room: the
// room and its participants, or room_deleted once it is gone.
func (h *Hub) Snapshot(ctx context.Context, roomID uuid.UUID) ([]*Message, error) {
	room, err := h.repo.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []*Message{roomDeletedMessage(roomID)}, nil
		}
		return nil, err
	}
	participants, err := h.repo.ListParticipants(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return []*Message{
		{Type: MessageRoom, Content: room},
		{Type: MessageParticipants, Content: participants},
	}, nil
}

// sendSnapshot delivers the current room state to one newly registered
// client.
func (h *Hub) sendSnapshot(client *domain.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h.snapshotMu.Lock()
	defer h.snapshotMu.Unlock()

	msgs, err := h.Snapshot(ctx, client.RoomID)
	if err != nil {
		zap.L().Warn("Failed to load room snapshot", zap.String("room_id", client.RoomID.String()), zap.Error(err))
		h.sendErrorToClient(client, "failed to load room")
		return
	}
	for _, msg := range msgs {
		if err := h.sendToClient(client, msg); err != nil {
			zap.L().Debug("Initial snapshot not delivered", zap.String("user_id", client.ID.String()), zap.Error(err))
			return
		}
	}
}

func (h *Hub) pushSnapshot(roomID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h.snapshotMu.Lock()
	defer h.snapshotMu.Unlock()

	msgs, err := h.Snapshot(ctx, roomID)
	if err != nil {
		zap.L().Warn("Failed to load room snapshot", zap.String("room_id", roomID.String()), zap.Error(err))
		return
	}
	for _, msg := range msgs {
		h.BroadcastMessage(roomID, msg)
	}
}

func roomDeletedMessage(roomID uuid.UUID) *Message {
	return &Message{Type: MessageRoomDeleted, Content: map[string]string{"room_id": roomID.String()}}
}

package wsUsecase

import (
	"context"
	"errors"

	"circle-service/domain"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoomSubscribeUseCase attaches a member's websocket to the room's push
// stream: subscribeRoom and subscribeParticipants in one connection.
type RoomSubscribeUseCase interface {
	Execute(c *websocket.Conn, ctx context.Context, roomID, currentUserID uuid.UUID)
}

type roomSubscribeUseCase struct {
	hub        Hub
	repository PostgresRepository
}

func NewRoomSubscribeUseCase(hub Hub, repository PostgresRepository) RoomSubscribeUseCase {
	return &roomSubscribeUseCase{
		hub:        hub,
		repository: repository,
	}
}

func SendErrorAndClose(conn *websocket.Conn, msg string, code int) {
	errorMessage := domain.WebSocketErrorMessage{
		Type:    "error",
		Message: msg,
		Code:    code,
	}
	if err := conn.WriteJSON(errorMessage); err != nil {
		zap.L().Debug("Failed to send error message to client", zap.Error(err))
	}
	conn.Close()
}

func (u *roomSubscribeUseCase) Execute(c *websocket.Conn, ctx context.Context, roomID, currentUserID uuid.UUID) {
	if _, err := u.repository.GetParticipant(ctx, roomID, currentUserID); err != nil {
		code := fiber.StatusInternalServerError
		if errors.Is(err, domain.ErrNotFound) {
			code = fiber.StatusForbidden
		}
		SendErrorAndClose(c, "Authorization error: "+err.Error(), code)
		return
	}

	client := domain.NewClient(currentUserID, roomID, c)

	// İlk durumu hub, oda kanalına abone olduktan sonra gönderir
	u.hub.RegisterClient(client)
	zap.L().Info("Client subscribed to circle",
		zap.String("user_id", currentUserID.String()),
		zap.String("room_id", roomID.String()),
	)

	<-client.Done
}

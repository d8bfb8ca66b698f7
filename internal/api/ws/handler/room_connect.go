package wsHandler

import (
	"context"
	"fmt"

	wsUsecase "circle-service/internal/api/ws/usecase"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type WebSocketRoomHandler struct {
	usecase wsUsecase.RoomSubscribeUseCase
}

type WebSocketRoomRequest struct{}

func NewWebSocketRoomHandler(usecase wsUsecase.RoomSubscribeUseCase) *WebSocketRoomHandler {
	return &WebSocketRoomHandler{
		usecase: usecase,
	}
}

func (h *WebSocketRoomHandler) HandleWS(c *websocket.Conn, ctx context.Context, req *WebSocketRoomRequest) {
	userID := c.Headers("X-User-ID")
	if userID == "" {
		userID = c.Query("user_id")
	}

	currentUserID, err := uuid.Parse(userID)
	if err != nil {
		wsUsecase.SendErrorAndClose(c, fmt.Sprintf("Failed to parse user ID: %v", err), fiber.StatusUnauthorized)
		return
	}

	roomID, err := uuid.Parse(c.Params("room_id"))
	if err != nil {
		wsUsecase.SendErrorAndClose(c, fmt.Sprintf("Failed to parse room ID: %v", err), fiber.StatusBadRequest)
		return
	}

	h.usecase.Execute(c, ctx, roomID, currentUserID)
}

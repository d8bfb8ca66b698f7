package bootstrap

import (
	"time"

	"circle-service/config"
	"circle-service/domain"
	httpHandler "circle-service/internal/api/http/handler"
	wsHandler "circle-service/internal/api/ws/handler"
	"circle-service/internal/handler"
	"circle-service/internal/middleware"
	"circle-service/internal/server"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func SetupServer(appConfig config.Config, httpHandlers map[string]interface{}, wsHandlers map[string]interface{}) *fiber.App {
	serverConfig := server.Config{
		Port:         appConfig.Server.Port,
		AllowOrigin:  appConfig.Server.AllowOrigin,
		IdleTimeout:  5 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	app := server.NewFiberApp(serverConfig)

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerMinute: appConfig.RateLimit.RequestsPerMinute,
		Burst:             appConfig.RateLimit.Burst,
	})

	createRoomHandler := httpHandlers["create-room"].(*httpHandler.CreateRoomHandler)
	getRoomHandler := httpHandlers["get-room"].(*httpHandler.GetRoomHandler)
	listRoomsHandler := httpHandlers["list-rooms"].(*httpHandler.ListRoomsHandler)
	listParticipantsHandler := httpHandlers["list-participants"].(*httpHandler.ListParticipantsHandler)
	joinRoomHandler := httpHandlers["join-room"].(*httpHandler.JoinRoomHandler)
	leaveRoomHandler := httpHandlers["leave-room"].(*httpHandler.LeaveRoomHandler)
	startSessionHandler := httpHandlers["start-session"].(*httpHandler.StartSessionHandler)
	stopSessionHandler := httpHandlers["stop-session"].(*httpHandler.StopSessionHandler)
	expireSessionHandler := httpHandlers["expire-session"].(*httpHandler.ExpireSessionHandler)
	plantTreeHandler := httpHandlers["plant-tree"].(*httpHandler.PlantTreeHandler)
	toggleReadyHandler := httpHandlers["toggle-ready"].(*httpHandler.ToggleReadyHandler)
	timerHandler := httpHandlers["get-timer"].(*httpHandler.TimerHandler)
	updateTimerHandler := httpHandlers["update-timer"].(*httpHandler.UpdateTimerHandler)
	resetTimerHandler := httpHandlers["reset-timer"].(*httpHandler.ResetTimerHandler)
	gardenHandler := httpHandlers["garden"].(*httpHandler.GardenHandler)

	circles := app.Group("/circles", limiter.Middleware())
	circles.Post("/", handler.HandleWithFiber[httpHandler.CreateRoomRequest, httpHandler.CreateRoomResponse](createRoomHandler))
	circles.Get("/", handler.HandleWithFiber[httpHandler.ListRoomsRequest, httpHandler.ListRoomsResponse](listRoomsHandler))
	circles.Get("/:room_id", handler.HandleWithFiber[httpHandler.GetRoomRequest, httpHandler.GetRoomResponse](getRoomHandler))
	circles.Get("/:room_id/participants", handler.HandleWithFiber[httpHandler.ListParticipantsRequest, httpHandler.ListParticipantsResponse](listParticipantsHandler))
	circles.Post("/:room_id/join", handler.HandleWithFiber[httpHandler.JoinRoomRequest, httpHandler.JoinRoomResponse](joinRoomHandler))
	circles.Post("/:room_id/leave", handler.HandleWithFiber[httpHandler.LeaveRoomRequest, httpHandler.LeaveRoomResponse](leaveRoomHandler))
	circles.Post("/:room_id/session/start", handler.HandleWithFiber[httpHandler.StartSessionRequest, httpHandler.StartSessionResponse](startSessionHandler))
	circles.Post("/:room_id/session/stop", handler.HandleWithFiber[httpHandler.StopSessionRequest, domain.StopResult](stopSessionHandler))
	circles.Post("/:room_id/session/expire", handler.HandleWithFiber[httpHandler.ExpireSessionRequest, domain.StopResult](expireSessionHandler))
	circles.Post("/:room_id/trees", handler.HandleWithFiber[httpHandler.PlantTreeRequest, httpHandler.PlantTreeResponse](plantTreeHandler))
	circles.Put("/:room_id/ready", handler.HandleWithFiber[httpHandler.ToggleReadyRequest, httpHandler.ToggleReadyResponse](toggleReadyHandler))

	timer := app.Group("/timer", limiter.Middleware())
	timer.Get("/", handler.HandleWithFiber[httpHandler.GetTimerRequest, httpHandler.TimerResponse](timerHandler))
	timer.Put("/", handler.HandleWithFiber[httpHandler.UpdateTimerRequest, httpHandler.TimerResponse](updateTimerHandler))
	timer.Delete("/", handler.HandleWithFiber[httpHandler.ResetTimerRequest, httpHandler.TimerResponse](resetTimerHandler))

	app.Get("/garden", limiter.Middleware(), handler.HandleWithFiber[httpHandler.GardenRequest, httpHandler.GardenResponse](gardenHandler))

	wsRoute := app.Group("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	roomConnectHandler := wsHandlers["room-connect"].(*wsHandler.WebSocketRoomHandler)
	wsRoute.Get("/circle/:room_id", handler.HandleWithFiberWS[wsHandler.WebSocketRoomRequest](roomConnectHandler))

	return app
}

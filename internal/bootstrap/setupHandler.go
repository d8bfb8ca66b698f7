package bootstrap

import (
	"circle-service/config"
	"circle-service/domain"
	httpHandler "circle-service/internal/api/http/handler"
	httpUsecase "circle-service/internal/api/http/usecase"
	kafkaHandler "circle-service/internal/api/kafka"
	wsHandler "circle-service/internal/api/ws/handler"
	wsUsecase "circle-service/internal/api/ws/usecase"
)

// UseCases that are shared between handlers and background workers.
type UseCases struct {
	CreateRoom    httpUsecase.CreateRoomUseCase
	ExpireSession httpUsecase.ExpireSessionUseCase
}

func SetupUseCases(appConfig config.Config, stores *Stores, stream httpUsecase.EventStream) UseCases {
	return UseCases{
		CreateRoom:    httpUsecase.NewCreateRoomUseCase(stores.Circles, stores.Bus, stream, appConfig.Session.DefaultFocusMinute),
		ExpireSession: httpUsecase.NewExpireSessionUseCase(stores.Circles, stores.Bus, stream, appConfig.Session.AutoStopTolerance),
	}
}

func SetupHTTPHandlers(stores *Stores, stream httpUsecase.EventStream, useCases UseCases) map[string]interface{} {
	repo := stores.Circles
	bus := stores.Bus

	createRoomHandler := httpHandler.NewCreateRoomHandler(useCases.CreateRoom)

	getRoomUseCase := httpUsecase.NewGetRoomUseCase(repo)
	getRoomHandler := httpHandler.NewGetRoomHandler(getRoomUseCase)

	listRoomsUseCase := httpUsecase.NewListRoomsUseCase(repo)
	listRoomsHandler := httpHandler.NewListRoomsHandler(listRoomsUseCase)

	listParticipantsUseCase := httpUsecase.NewListParticipantsUseCase(repo)
	listParticipantsHandler := httpHandler.NewListParticipantsHandler(listParticipantsUseCase)

	joinRoomUseCase := httpUsecase.NewJoinRoomUseCase(repo, bus, stream)
	joinRoomHandler := httpHandler.NewJoinRoomHandler(joinRoomUseCase)

	leaveRoomUseCase := httpUsecase.NewLeaveRoomUseCase(repo, bus, stream)
	leaveRoomHandler := httpHandler.NewLeaveRoomHandler(leaveRoomUseCase)

	startSessionUseCase := httpUsecase.NewStartSessionUseCase(repo, bus, stream)
	startSessionHandler := httpHandler.NewStartSessionHandler(startSessionUseCase)

	stopSessionUseCase := httpUsecase.NewStopSessionUseCase(repo, bus, stream)
	stopSessionHandler := httpHandler.NewStopSessionHandler(stopSessionUseCase)

	expireSessionHandler := httpHandler.NewExpireSessionHandler(useCases.ExpireSession)

	plantTreeUseCase := httpUsecase.NewPlantTreeUseCase(repo, stores.Garden, bus, stream)
	plantTreeHandler := httpHandler.NewPlantTreeHandler(plantTreeUseCase)

	toggleReadyUseCase := httpUsecase.NewToggleReadyUseCase(repo, bus, stream)
	toggleReadyHandler := httpHandler.NewToggleReadyHandler(toggleReadyUseCase)

	timerUseCase := httpUsecase.NewTimerUseCase(stores.Timers)
	timerHandler := httpHandler.NewTimerHandler(timerUseCase)
	updateTimerHandler := httpHandler.NewUpdateTimerHandler(timerUseCase)
	resetTimerHandler := httpHandler.NewResetTimerHandler(timerUseCase)

	gardenUseCase := httpUsecase.NewGardenUseCase(stores.Garden)
	gardenHandler := httpHandler.NewGardenHandler(gardenUseCase)

	return map[string]interface{}{
		"create-room":       createRoomHandler,
		"get-room":          getRoomHandler,
		"list-rooms":        listRoomsHandler,
		"list-participants": listParticipantsHandler,
		"join-room":         joinRoomHandler,
		"leave-room":        leaveRoomHandler,
		"start-session":     startSessionHandler,
		"stop-session":      stopSessionHandler,
		"expire-session":    expireSessionHandler,
		"plant-tree":        plantTreeHandler,
		"toggle-ready":      toggleReadyHandler,
		"get-timer":         timerHandler,
		"update-timer":      updateTimerHandler,
		"reset-timer":       resetTimerHandler,
		"garden":            gardenHandler,
	}
}

func SetupMessageHandlers(stores *Stores) map[string]MessageHandler {
	createdUserUseCase := httpUsecase.NewCreateUserUseCase(stores.Circles)
	createdUserHandler := kafkaHandler.NewCreatedUserHandler(createdUserUseCase)

	return map[string]MessageHandler{
		domain.EventUserCreated: createdUserHandler,
	}
}

func SetupWSHandlers(stores *Stores, wsHub Hub) map[string]interface{} {
	roomSubscribe := wsUsecase.NewRoomSubscribeUseCase(wsHub, stores.Circles)
	roomSubscribeHandler := wsHandler.NewWebSocketRoomHandler(roomSubscribe)

	return map[string]interface{}{
		"room-connect": roomSubscribeHandler,
	}
}

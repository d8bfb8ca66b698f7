package bootstrap

import (
	"context"
	"time"

	"circle-service/config"
	httpUsecase "circle-service/internal/api/http/usecase"
	"circle-service/internal/server"
	"circle-service/internal/worker"
	"circle-service/pkg/graceful"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type App struct {
	config          config.Config
	ctx             context.Context
	cancel          context.CancelFunc
	stores          *Stores
	kafka           Messaging
	stream          httpUsecase.EventStream
	hub             Hub
	sweeper         *worker.ExpirySweeper
	fiberApp        *fiber.App
	httpHandlers    map[string]interface{}
	wsHandlers      map[string]interface{}
	messageHandlers map[string]MessageHandler
}

func NewApp(config config.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
	app.initDependencies()
	return app
}

func (a *App) initDependencies() {
	a.stores = InitStores(a.config)
	a.messageHandlers = SetupMessageHandlers(a.stores)
	a.kafka = SetupMessaging(a.ctx, a.messageHandlers, a.config)
	a.stream = SetupEventStream(a.kafka, a.config)

	useCases := SetupUseCases(a.config, a.stores, a.stream)
	a.sweeper = worker.NewExpirySweeper(a.stores.Circles, useCases.ExpireSession, a.config.Session.SweepInterval)

	a.hub = InitWebsocket(a.ctx, a.stores)
	a.httpHandlers = SetupHTTPHandlers(a.stores, a.stream, useCases)
	a.wsHandlers = SetupWSHandlers(a.stores, a.hub)
	a.fiberApp = SetupServer(a.config, a.httpHandlers, a.wsHandlers)
}

func (a *App) Start() {
	go func() {
		if err := server.Start(a.fiberApp, a.config.Server.Host, a.config.Server.Port); err != nil {
			zap.L().Error("Failed to start server", zap.Error(err))
		}
	}()

	go a.sweeper.Start(a.ctx)

	zap.L().Info("Server started on port",
		zap.String("port", a.config.Server.Port),
		zap.String("store", a.config.Store.Driver),
	)

	defer func() {
		a.cancel()
		if a.kafka != nil {
			if err := a.kafka.Close(); err != nil {
				zap.L().Error("Failed to close kafka client", zap.Error(err))
			}
		}
		a.stores.Close()
	}()

	graceful.WaitForShutdown(a.fiberApp, 5*time.Second, context.Background())
}

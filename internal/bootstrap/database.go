package bootstrap

import (
	"context"

	"circle-service/config"
	"circle-service/domain"
	httpUsecase "circle-service/internal/api/http/usecase"
	"circle-service/internal/initializer"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CircleRepository interface {
	httpUsecase.CircleRepository
	Close() error
}

// RoomEventBus is the room channel: use cases publish on it, the websocket
// hub subscribes to it.
type RoomEventBus interface {
	PublishMessage(ctx context.Context, evt domain.RoomEvent)
	Subscribe(ctx context.Context, roomID uuid.UUID) (<-chan domain.RoomEvent, func(), error)
}

type Stores struct {
	Circles CircleRepository
	Bus     RoomEventBus
	Timers  httpUsecase.TimerRepository
	Garden  httpUsecase.GardenRepository
	closers []func() error
}

func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			zap.L().Error("Failed to close store", zap.Error(err))
		}
	}
}

// InitStores picks the backend from store.driver.
func InitStores(appConfig config.Config) *Stores {
	if appConfig.Store.Driver == "memory" {
		mem := initializer.InitMemoryStores()
		return &Stores{
			Circles: mem.Store,
			Bus:     mem.Bus,
			Timers:  mem.Timers,
			Garden:  mem.Garden,
		}
	}

	postgresRepo := initializer.InitDatabase(appConfig)
	roomRedis := initializer.InitRoomRedis(appConfig)
	stores := &Stores{
		Circles: postgresRepo,
		Bus:     roomRedis,
		Timers:  initializer.InitTimerStore(appConfig, roomRedis),
		closers: []func() error{postgresRepo.Close, roomRedis.Close},
	}

	if garden := initializer.InitGardenStore(appConfig); garden != nil {
		stores.Garden = garden
		stores.closers = append(stores.closers, garden.Close)
	} else {
		stores.Garden = initializer.InitMemoryStores().Garden
	}
	return stores
}

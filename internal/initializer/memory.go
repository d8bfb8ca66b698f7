package initializer

import (
	"circle-service/infra/memory"

	"go.uber.org/zap"
)

// MemoryStores is the local fallback: every document, the room channel, the
// personal timers and the garden history kept in process.
type MemoryStores struct {
	Store  *memory.Store
	Bus    *memory.EventBus
	Timers *memory.TimerStore
	Garden *memory.GardenHistory
}

func InitMemoryStores() MemoryStores {
	zap.L().Warn("Using in-memory store; state is lost on restart")
	return MemoryStores{
		Store:  memory.NewStore(),
		Bus:    memory.NewEventBus(),
		Timers: memory.NewTimerStore(),
		Garden: memory.NewGardenHistory(),
	}
}

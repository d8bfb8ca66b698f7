package initializer

import (
	"fmt"

	"circle-service/config"
	"circle-service/infra/redis"

	"go.uber.org/zap"
)

func InitRoomRedis(appConfig config.Config) *redis.RedisManager {
	address := fmt.Sprintf("%s:%s", appConfig.Redis.Host, appConfig.Redis.Port)

	redisManager, err := redis.NewRedisManager(address, appConfig.Redis.Password, appConfig.Redis.DB)
	if err != nil {
		zap.L().Fatal("Failed to initialize redis", zap.String("addr", address), zap.Error(err))
	}
	return redisManager
}

func InitTimerStore(appConfig config.Config, redisManager *redis.RedisManager) *redis.TimerStore {
	return redis.NewTimerStore(redisManager.GetRedisClient(), appConfig.Session.TimerStateTTL)
}

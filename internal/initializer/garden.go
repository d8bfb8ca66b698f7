package initializer

import (
	"circle-service/config"
	"circle-service/infra/mongo"

	"go.uber.org/zap"
)

// InitGardenStore connects the Mongo garden history. It returns nil when Mongo
// is disabled or unreachable; the caller falls back to the in-process history.
func InitGardenStore(appConfig config.Config) *mongo.GardenStore {
	if !appConfig.Mongo.Enabled {
		return nil
	}
	store, err := mongo.NewGardenStore(appConfig.Mongo.URI, appConfig.Mongo.Database)
	if err != nil {
		zap.L().Error("Failed to connect garden history, using in-memory history", zap.Error(err))
		return nil
	}
	zap.L().Info("Garden history connected", zap.String("database", appConfig.Mongo.Database))
	return store
}

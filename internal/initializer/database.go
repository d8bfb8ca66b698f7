package initializer

import (
	"fmt"

	"circle-service/config"
	"circle-service/infra/postgres"

	"go.uber.org/zap"
)

func InitDatabase(appConfig config.Config) *postgres.Repository {
	connString := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		appConfig.Postgres.User,
		appConfig.Postgres.Password,
		appConfig.Postgres.Host,
		appConfig.Postgres.Port,
		appConfig.Postgres.DB,
		appConfig.Postgres.SSLMode,
	)

	repo, err := postgres.NewRepository(connString)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	return repo
}

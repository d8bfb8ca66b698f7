package initializer

import (
	"context"
	"time"

	"circle-service/config"
	"circle-service/domain"
	"circle-service/pkg/messaging"

	"go.uber.org/zap"
)

// InitMessaging connects to Kafka and starts the user_created consumers. The
// returned client publishes to the circle-events topic. It returns nil when
// Kafka is disabled or unreachable.
func InitMessaging(ctx context.Context, appConfig config.Config, handlers messaging.HandlerFunc) *messaging.KafkaClient {
	if !appConfig.Kafka.Enabled {
		return nil
	}

	kafkaConfig := messaging.NewDefaultConfig(appConfig.Kafka.Brokers)
	kafkaConfig.Topic = appConfig.Kafka.Topic
	kafkaConfig.RetryTopic = appConfig.Kafka.RetryTopic
	kafkaConfig.DLQTopic = appConfig.Kafka.DLQTopic
	kafkaConfig.MaxRetries = appConfig.Kafka.MaxRetries
	kafkaConfig.ServiceName = appConfig.Kafka.ServiceName
	kafkaConfig.ClientID = appConfig.Kafka.ServiceName
	kafkaConfig.ConnectionTimeout = 10 * time.Second
	kafkaConfig.AllowedMessageTypes = []string{domain.EventUserCreated}
	kafkaConfig.CriticalMessageTypes = []string{domain.EventUserCreated}

	kafkaClient, err := messaging.NewKafkaClient(kafkaConfig)
	if err != nil {
		zap.L().Error("Kafka connection failed, events will not be streamed", zap.Error(err))
		return nil
	}
	zap.L().Info("Kafka client initialized",
		zap.String("service", kafkaConfig.ServiceName),
		zap.String("topic", kafkaConfig.Topic),
	)

	// Ana consumer
	go func() {
		groupID := kafkaConfig.ServiceName + "-main-group"
		topic := appConfig.Kafka.UserTopic
		zap.L().Info("Starting Kafka consumer", zap.String("topic", topic))
		if err := kafkaClient.ConsumeMessages(ctx, handlers, &topic, &groupID); err != nil {
			zap.L().Error("Main consumer stopped", zap.Error(err))
		}
	}()

	// Retry consumer
	go func() {
		groupID := kafkaConfig.ServiceName + "-retry-group"
		topic := kafkaConfig.RetryTopic
		zap.L().Info("Starting Kafka consumer", zap.String("topic", topic))
		if err := kafkaClient.ConsumeMessages(ctx, handlers, &topic, &groupID); err != nil {
			zap.L().Error("Retry consumer stopped", zap.Error(err))
		}
	}()

	// DLQ consumer
	go func() {
		zap.L().Info("Starting DLQ recovery consumer", zap.String("topic", kafkaConfig.DLQTopic))
		if err := kafkaClient.ConsumeDLQWithRecovery(ctx, handlers); err != nil {
			zap.L().Error("DLQ consumer stopped", zap.Error(err))
		}
	}()

	return kafkaClient
}

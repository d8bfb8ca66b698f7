package bootstrap

import (
	"context"

	"circle-service/config"
	httpUsecase "circle-service/internal/api/http/usecase"
	kafkaHandler "circle-service/internal/api/kafka"
	"circle-service/internal/initializer"
	"circle-service/pkg/messaging"

	"go.uber.org/zap"
)

type Messaging interface {
	Close() error
	PublishMessage(ctx context.Context, msg *messaging.Message) error
}

type MessageHandler interface {
	Handle(ctx context.Context, msg *messaging.Message) error
}

func SetupMessaging(ctx context.Context, handlers map[string]MessageHandler, appConfig config.Config) Messaging {
	messageRouter := func(ctx context.Context, msg *messaging.Message) error {
		handler, ok := handlers[msg.Type]
		if !ok {
			zap.L().Debug("No handler for message type", zap.String("type", msg.Type))
			return nil
		}
		return handler.Handle(ctx, msg)
	}

	client := initializer.InitMessaging(ctx, appConfig, messageRouter)
	if client == nil {
		return nil
	}
	return client
}

// SetupEventStream returns the producer the use cases forward room events
// through, or nil when Kafka is off.
func SetupEventStream(kafka Messaging, appConfig config.Config) httpUsecase.EventStream {
	if kafka == nil {
		return nil
	}
	return kafkaHandler.NewRoomEventProducer(kafka, appConfig.Kafka.ServiceName)
}

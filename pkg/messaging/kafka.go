package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Message is the JSON envelope exchanged between services.
type Message struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Source     string          `json:"source"`
	Key        string          `json:"key,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	RetryCount int             `json:"retry_count"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewMessage wraps payload into an envelope.
func NewMessage(msgType, source, key string, payload any) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return &Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		Source:    source,
		Key:       key,
		Payload:   raw,
		Timestamp: time.Now().UTC(),
	}, nil
}

type HandlerFunc func(ctx context.Context, msg *Message) error

type KafkaClient struct {
	config KafkaConfig
	writer *kafka.Writer
}

func NewKafkaClient(config KafkaConfig) (*KafkaClient, error) {
	if len(config.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.ConnectionTimeout)
	defer cancel()
	conn, err := kafka.DialContext(ctx, "tcp", config.Brokers[0])
	if err != nil {
		return nil, fmt.Errorf("kafka: failed to reach broker %s: %w", config.Brokers[0], err)
	}
	conn.Close()

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(config.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
	if config.ClientID != "" {
		writer.Transport = &kafka.Transport{ClientID: config.ClientID}
	}

	return &KafkaClient{config: config, writer: writer}, nil
}

func (k *KafkaClient) Close() error {
	return k.writer.Close()
}

// PublishMessage writes msg to the main topic.
func (k *KafkaClient) PublishMessage(ctx context.Context, msg *Message) error {
	return k.publishTo(ctx, k.config.Topic, msg)
}

func (k *KafkaClient) publishTo(ctx context.Context, topic string, msg *Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(msg.Key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(msg.Type)},
			{Key: "source", Value: []byte(msg.Source)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write message to %s: %w", topic, err)
	}
	return nil
}

// ConsumeMessages reads topic as groupID until ctx is done. A message whose
// handler fails is re-published to the retry topic, or to the DLQ once its
// retries are used up; the original offset is committed either way.
func (k *KafkaClient) ConsumeMessages(ctx context.Context, handler HandlerFunc, topic, groupID *string) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.config.Brokers,
		GroupID:  *groupID,
		Topic:    *topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		k.handle(ctx, handler, m)

		if err := reader.CommitMessages(ctx, m); err != nil {
			zap.L().Error("Failed to commit kafka message", zap.String("topic", m.Topic), zap.Error(err))
		}
	}
}

func (k *KafkaClient) handle(ctx context.Context, handler HandlerFunc, m kafka.Message) {
	var msg Message
	if err := json.Unmarshal(m.Value, &msg); err != nil {
		zap.L().Warn("Skipping undecodable kafka message", zap.String("topic", m.Topic), zap.Error(err))
		return
	}
	if !k.config.allows(msg.Type) {
		return
	}

	if err := handler(ctx, &msg); err != nil {
		target := k.config.failureTopic(&msg)
		zap.L().Warn("Kafka handler failed",
			zap.String("id", msg.ID),
			zap.String("type", msg.Type),
			zap.Int("retry_count", msg.RetryCount),
			zap.String("next_topic", target),
			zap.Error(err),
		)
		if target == "" {
			return
		}
		msg.RetryCount++
		if err := k.publishTo(ctx, target, &msg); err != nil {
			zap.L().Error("Failed to forward failed message", zap.String("topic", target), zap.Error(err))
		}
	}
}

// ConsumeDLQWithRecovery gives critical messages in the DLQ one last try and
// logs everything else.
func (k *KafkaClient) ConsumeDLQWithRecovery(ctx context.Context, handler HandlerFunc) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.config.Brokers,
		GroupID:  k.config.ServiceName + "-dlq-group",
		Topic:    k.config.DLQTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("failed to fetch dlq message: %w", err)
		}

		var msg Message
		if err := json.Unmarshal(m.Value, &msg); err == nil && k.config.isCritical(msg.Type) {
			if err := handler(ctx, &msg); err != nil {
				zap.L().Error("Critical message could not be recovered", zap.String("id", msg.ID), zap.String("type", msg.Type), zap.Error(err))
			} else {
				zap.L().Info("Recovered critical message from DLQ", zap.String("id", msg.ID), zap.String("type", msg.Type))
			}
		} else {
			zap.L().Warn("Dropping message from DLQ", zap.String("topic", m.Topic), zap.ByteString("key", m.Key))
		}

		if err := reader.CommitMessages(ctx, m); err != nil {
			zap.L().Error("Failed to commit dlq message", zap.Error(err))
		}
	}
}

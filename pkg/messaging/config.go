package messaging

import "time"

type KafkaConfig struct {
	Brokers           []string
	Topic             string
	ClientID          string // Kafka loglarında görünür
	EnableRetry       bool
	MaxRetries        int
	RetryTopic        string
	DLQTopic          string
	ConnectionTimeout time.Duration
	ServiceName       string
	// AllowedMessageTypes limits what the consumers hand to the router; an
	// empty list lets everything through.
	AllowedMessageTypes []string
	// CriticalMessageTypes are replayed once more from the DLQ before they
	// are given up on.
	CriticalMessageTypes []string
}

func NewDefaultConfig(kafkaBrokers []string) KafkaConfig {
	if len(kafkaBrokers) == 0 {
		kafkaBrokers = []string{"localhost:9092"}
	}

	return KafkaConfig{
		Brokers:              kafkaBrokers,
		Topic:                "circle-events",
		RetryTopic:           "circle-events-retry",
		DLQTopic:             "circle-events-dlq",
		ServiceName:          "circle-service",
		EnableRetry:          true,
		MaxRetries:           3,
		ConnectionTimeout:    10 * time.Second,
		CriticalMessageTypes: []string{},
	}
}

func (c KafkaConfig) allows(msgType string) bool {
	if len(c.AllowedMessageTypes) == 0 {
		return true
	}
	for _, t := range c.AllowedMessageTypes {
		if t == msgType {
			return true
		}
	}
	return false
}

func (c KafkaConfig) isCritical(msgType string) bool {
	for _, t := range c.CriticalMessageTypes {
		if t == msgType {
			return true
		}
	}
	return false
}

// failureTopic decides where a message that failed handling goes next.
func (c KafkaConfig) failureTopic(msg *Message) string {
	if c.EnableRetry && c.RetryTopic != "" && msg.RetryCount < c.MaxRetries {
		return c.RetryTopic
	}
	return c.DLQTopic
}

package handler

import (
	"context"

	"circle-service/domain"
	"circle-service/pkg/messaging"
)

// Publisher is the part of the Kafka client the producer needs.
type Publisher interface {
	PublishMessage(ctx context.Context, msg *messaging.Message) error
}

// RoomEventProducer forwards room events to the circle-events topic, keyed by
// room so that one room's events stay ordered.
type RoomEventProducer struct {
	publisher Publisher
	source    string
}

func NewRoomEventProducer(publisher Publisher, source string) *RoomEventProducer {
	return &RoomEventProducer{publisher: publisher, source: source}
}

func (p *RoomEventProducer) PublishEvent(ctx context.Context, evt domain.RoomEvent) error {
	msg, err := messaging.NewMessage(evt.Type, p.source, evt.RoomID.String(), evt)
	if err != nil {
		return err
	}
	msg.ID = evt.ID.String()
	return p.publisher.PublishMessage(ctx, msg)
}

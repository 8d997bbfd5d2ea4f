package storage

import (
	"context"
	"encoding/json"

	"restaurant-ordering/ordering-svc/internal/domain"

	"github.com/segmentio/kafka-go"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher writes order events to one topic and rating events to another.
// A nil writer disables that stream.
type KafkaPublisher struct {
	Orders  MessageWriter
	Ratings MessageWriter
}

func NewKafkaPublisher(orders, ratings MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Orders: orders, Ratings: ratings}
}

func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	return publish(ctx, p.Orders, event.OrderID, event)
}

func (p *KafkaPublisher) PublishRatingEvent(ctx context.Context, event domain.RatingEvent) error {
	return publish(ctx, p.Ratings, event.OrderID, event)
}

func publish(ctx context.Context, w MessageWriter, key string, event any) error {
	if w == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
}

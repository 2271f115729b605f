package adapters

import (
	"context"

	"pooja-supplies/internal/orders/domain"
	"pooja-supplies/pkg/events"
	"pooja-supplies/pkg/logger"
)

// MessagePublisher sends a JSON message under a key. For RabbitMQ the key
// is the routing key, for Kafka the partition key.
type MessagePublisher interface {
	Publish(ctx context.Context, key string, message interface{}) error
}

// RabbitMQPublisher implements EventPublisher using RabbitMQ
type RabbitMQPublisher struct {
	publisher MessagePublisher
}

// NewRabbitMQPublisher creates a new RabbitMQ event publisher
func NewRabbitMQPublisher(publisher MessagePublisher) *RabbitMQPublisher {
	return &RabbitMQPublisher{publisher: publisher}
}

// PublishOrderPlaced publishes an order.placed event
func (p *RabbitMQPublisher) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	event := events.NewOrderPlacedEvent(toPayload(order), logger.GetTraceID(ctx))
	return p.publisher.Publish(ctx, events.RoutingKeyOrderPlaced, event)
}

// PublishOrderUpdated publishes an order.updated event
func (p *RabbitMQPublisher) PublishOrderUpdated(ctx context.Context, order *domain.Order, transition string) error {
	event := events.NewOrderUpdatedEvent(transition, toPayload(order), logger.GetTraceID(ctx))
	return p.publisher.Publish(ctx, events.RoutingKeyOrderUpdated, event)
}

// KafkaPublisher implements EventPublisher using Kafka. Events are keyed by
// order ID so one order's events stay in one partition.
type KafkaPublisher struct {
	publisher MessagePublisher
}

// NewKafkaPublisher creates a new Kafka event publisher
func NewKafkaPublisher(publisher MessagePublisher) *KafkaPublisher {
	return &KafkaPublisher{publisher: publisher}
}

// PublishOrderPlaced publishes an order.placed event
func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	event := events.NewOrderPlacedEvent(toPayload(order), logger.GetTraceID(ctx))
	return p.publisher.Publish(ctx, order.ID, event)
}

// PublishOrderUpdated publishes an order.updated event
func (p *KafkaPublisher) PublishOrderUpdated(ctx context.Context, order *domain.Order, transition string) error {
	event := events.NewOrderUpdatedEvent(transition, toPayload(order), logger.GetTraceID(ctx))
	return p.publisher.Publish(ctx, order.ID, event)
}

func toPayload(o *domain.Order) events.OrderPayload {
	return events.OrderPayload{
		OrderID:       o.ID,
		UserID:        o.UserID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		PaymentMethod: string(o.PaymentMethod),
		TotalAmount:   o.TotalAmount,
		PlacedAt:      o.PlacedAt,
	}
}

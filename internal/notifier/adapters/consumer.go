package adapters

import (
	"context"

	"go.uber.org/zap"

	"pooja-supplies/pkg/events"
	"pooja-supplies/pkg/kafka"
	"pooja-supplies/pkg/logger"
	"pooja-supplies/pkg/rabbitmq"
)

// EventHandler processes one raw order event
type EventHandler func(ctx context.Context, body []byte) error

// OrderEventsQueue is the notifier's queue on the orders exchange
const OrderEventsQueue = "notifier.order-events"

// RabbitMQConsumer feeds order events from RabbitMQ to a handler
type RabbitMQConsumer struct {
	consumer *rabbitmq.Consumer
	log      *logger.Logger
}

// NewRabbitMQConsumer binds the notifier queue to both order routing keys
func NewRabbitMQConsumer(conn *rabbitmq.Connection, log *logger.Logger) (*RabbitMQConsumer, error) {
	consumer, err := rabbitmq.NewConsumer(
		conn,
		OrderEventsQueue,
		events.ExchangeOrders,
		[]string{events.RoutingKeyOrderPlaced, events.RoutingKeyOrderUpdated},
		log,
	)
	if err != nil {
		return nil, err
	}
	return &RabbitMQConsumer{consumer: consumer, log: log}, nil
}

// Start starts consuming until ctx is cancelled
func (c *RabbitMQConsumer) Start(ctx context.Context, handle EventHandler) error {
	return c.consumer.Consume(ctx, func(ctx context.Context, routingKey string, body []byte) error {
		c.log.WithContext(ctx).Debug("order event received", zap.String("routing_key", routingKey))
		return handle(ctx, body)
	})
}

// KafkaConsumer feeds order events from a Kafka topic to a handler
type KafkaConsumer struct {
	consumer *kafka.Consumer
}

// NewKafkaConsumer wraps a consumer group reader
func NewKafkaConsumer(consumer *kafka.Consumer) *KafkaConsumer {
	return &KafkaConsumer{consumer: consumer}
}

// Start blocks reading the topic until ctx is cancelled
func (c *KafkaConsumer) Start(ctx context.Context, handle EventHandler) error {
	return c.consumer.Run(ctx, kafka.MessageHandler(handle))
}

// Close closes the reader
func (c *KafkaConsumer) Close() error {
	return c.consumer.Close()
}

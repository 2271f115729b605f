// Package kafka carries order events over Kafka: a sarama producer on the
// publishing side and a kafka-go consumer group reader on the consuming side.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"pooja-supplies/pkg/logger"
)

const traceHeader = "x-trace-id"

// NewSyncProducer creates a producer that waits for all in-sync replicas
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1
	config.Version = sarama.V2_8_0_0

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return producer, nil
}

// Publisher writes JSON messages to one topic
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewPublisher creates a publisher for a topic
func NewPublisher(producer sarama.SyncProducer, topic string, log *logger.Logger) *Publisher {
	return &Publisher{producer: producer, topic: topic, log: log}
}

// Publish sends a message keyed by key so events of one entity stay ordered
func (p *Publisher) Publish(ctx context.Context, key string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	carrier := headerCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, &carrier)
	if traceID := logger.GetTraceID(ctx); traceID != "" {
		carrier.Set(traceHeader, traceID)
	}

	msg := &sarama.ProducerMessage{
		Topic:   p.topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader(carrier),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	p.log.WithContext(ctx).Debug("message published",
		zap.String("topic", p.topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

// Close closes the underlying producer
func (p *Publisher) Close() error {
	return p.producer.Close()
}

// MessageHandler handles one message value
type MessageHandler func(ctx context.Context, value []byte) error

// Consumer reads a topic as part of a consumer group
type Consumer struct {
	reader     *kafkago.Reader
	log        *logger.Logger
	maxRetries int
}

// NewConsumer creates a consumer group reader
func NewConsumer(brokers []string, topic, groupID string, log *logger.Logger) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})
	return &Consumer{reader: reader, log: log, maxRetries: 3}
}

// Run fetches messages until ctx is cancelled. Offsets are committed after
// the handler returns, including after the final failed retry, so a poison
// message cannot block the partition.
func (c *Consumer) Run(ctx context.Context, handler MessageHandler) error {
	c.log.Info("kafka consumer started", zap.String("topic", c.reader.Config().Topic))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		msgCtx := otel.GetTextMapPropagator().Extract(ctx, readerCarrier(msg.Headers))
		for _, h := range msg.Headers {
			if h.Key == traceHeader {
				msgCtx = logger.WithTraceIDContext(msgCtx, string(h.Value))
			}
		}

		if err := c.handleWithRetry(msgCtx, msg.Value, handler); err != nil {
			c.log.WithContext(msgCtx).Error("dropping message after retries",
				zap.Error(err),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("failed to commit offset: %w", err)
		}
	}
}

func (c *Consumer) handleWithRetry(ctx context.Context, value []byte, handler MessageHandler) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if lastErr = handler(ctx, value); lastErr == nil {
			return nil
		}
		if attempt < c.maxRetries {
			backoff := time.Duration(attempt) * time.Second
			c.log.WithContext(ctx).Warn("retrying message",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", c.maxRetries, lastErr)
}

// Close closes the reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// headerCarrier adapts sarama headers to the OpenTelemetry propagator
type headerCarrier []sarama.RecordHeader

func (c headerCarrier) Get(key string) string {
	for _, h := range c {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Set(key, value string) {
	*c = append(*c, sarama.RecordHeader{Key: []byte(key), Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, len(c))
	for i, h := range c {
		keys[i] = string(h.Key)
	}
	return keys
}

// readerCarrier adapts kafka-go headers to the OpenTelemetry propagator
type readerCarrier []kafkago.Header

func (c readerCarrier) Get(key string) string {
	for _, h := range c {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c readerCarrier) Set(string, string) {}

func (c readerCarrier) Keys() []string {
	keys := make([]string, len(c))
	for i, h := range c {
		keys[i] = h.Key
	}
	return keys
}

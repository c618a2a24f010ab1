package events

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dadkeeper/internal/logging"
	"github.com/segmentio/kafka-go"
)

const writeTimeout = 2 * time.Second

// KafkaPublisher writes events to a single topic, keyed by user id.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher writes every event type to one topic; the type travels
// in the "event_type" header.
// Writes are asynchronous; delivery failures are logged from the writer's
// completion callback so a slow broker never holds up a request.
func NewKafkaPublisher(brokers []string, topic string, logger logging.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka publisher requires a topic")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			RequiredAcks:           kafka.RequireOne,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			Async:                  true,
			WriteTimeout:           writeTimeout,
			Completion:             completion(logger.With("module", "events.kafka")),
		},
	}, nil
}

// Publish enqueues one message. Delivery is asynchronous; failures are
// reported to the writer's completion callback.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(partitionKey),
		Value:   payload,
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(eventType)}},
		Time:    time.Now().UTC(),
	})
}

func completion(logger logging.Logger) func([]kafka.Message, error) {
	return func(msgs []kafka.Message, err error) {
		if err != nil {
			logger.Warn(context.Background(), "event delivery failed", "messages", len(msgs), "error", err)
		}
	}
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/prince-ramoliya/founder-harmony/internal/events"
)

// Publisher writes mutation events to a Kafka topic, keyed by workspace so
// per-workspace ordering is preserved within a partition.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher constructs a Kafka publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

// Publish sends one mutation event.
func (p *Publisher) Publish(ctx context.Context, mutation events.Mutation) error {
	data, err := json.Marshal(mutation)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(mutation.WorkspaceID),
		Value: data,
	})
}

// Close releases the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ events.Publisher = (*Publisher)(nil)

// Package kafka publishes result events to a Kafka topic so long-running
// sweeps can feed shared dashboards as they go.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/writebench/pkg/eventstream"
)

// Publisher writes result events to a Kafka topic. Events for the same run
// are keyed by run id so a partitioned topic keeps per-run ordering.
type Publisher struct {
	writer *kafkago.Writer
}

var _ eventstream.Publisher = (*Publisher)(nil)

// NewPublisher creates a Kafka publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka: topic is required")
	}

	return &Publisher{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkago.Hash{},
			RequiredAcks: kafkago.RequireOne,
			BatchTimeout: 100 * time.Millisecond,
		},
	}, nil
}

// PublishResult implements eventstream.Publisher.
func (p *Publisher) PublishResult(ctx context.Context, event *eventstream.ResultRecordedEvent) error {
	if event == nil {
		return eventstream.ErrNilResultEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling result event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.Result.RunID),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing result event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Package kafka appends committed order changes to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dispatch/internal/adapters/out/codec"
	"dispatch/internal/core/ports"

	"github.com/Shopify/sarama"
)

// Event is the message value written for every committed change.
type Event struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Order      codec.Snapshot `json:"order"`
}

// EventPublisher writes events keyed by order id, so the changes of one
// order stay in one partition and in commit order.
type EventPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

var _ ports.EventPublisher = (*EventPublisher)(nil)

func NewEventPublisher(producer sarama.SyncProducer, topic string) (*EventPublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("kafka producer is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	return &EventPublisher{producer: producer, topic: topic}, nil
}

// NewSyncProducer connects a producer that waits for the leader to ack.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return producer, nil
}

func (p *EventPublisher) Publish(ctx context.Context, event ports.OrderEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(Event{
		Type:       string(event.Type),
		OccurredAt: event.OccurredAt.UTC(),
		Order:      codec.FromSnapshot(event.Order),
	})
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Order.ID.String()),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("send %s event: %w", event.Type, err)
	}
	return nil
}

func (p *EventPublisher) Close() error {
	return p.producer.Close()
}

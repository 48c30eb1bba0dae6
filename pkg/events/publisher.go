package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Header keys shared with downstream consumers.
const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
	HeaderTimestamp = "timestamp"
)

type Publisher interface {
	Publish(ctx context.Context, event TourEvent) error
	Close() error
}

// KafkaPublisher writes tour events to a single topic, keyed by property id
// so events for one property stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
	source string

	mu     sync.Mutex
	closed bool
}

func NewKafkaPublisher(brokers []string, topic, source string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
	}

	return &KafkaPublisher{writer: writer, source: source}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event TourEvent) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("publisher is closed")
	}
	p.mu.Unlock()

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.PropertyID),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(uuid.New().String())},
			{Key: HeaderEventType, Value: []byte(event.Type)},
			{Key: HeaderSource, Value: []byte(p.source)},
			{Key: HeaderTimestamp, Value: []byte(event.OccurredAt.Format(time.RFC3339))},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, TourEvent) error { return nil }

func (NopPublisher) Close() error { return nil }

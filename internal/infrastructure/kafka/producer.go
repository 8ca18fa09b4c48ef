package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/example/apparel-storefront/internal/events"
)

// Producer publishes change events to the storefront topic.
type Producer struct {
	writer *kafka.Writer
	source string
}

// NewProducer creates a producer. source identifies this instance so that it
// can skip its own events when consuming.
func NewProducer(brokers []string, topic, source string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer, source: source}
}

func (p *Producer) Publish(ctx context.Context, eventType, key string, data any) error {
	value, err := EncodeEvent(p.source, eventType, key, data)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// EncodeEvent wraps data in an events.Event envelope.
func EncodeEvent(source, eventType, key string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(events.Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		Source:     source,
		Key:        key,
		Data:       payload,
		OccurredAt: time.Now().UTC(),
	})
}

var _ events.Publisher = (*Producer)(nil)

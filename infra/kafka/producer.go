// Package kafka wraps the kafka-go writer used for the periodic depth
// feed. Order-event streaming goes through the outbox broadcaster
// instead; depth snapshots are idempotent so they skip the outbox.
package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (p *Producer) Send(ctx context.Context, key, value []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
}

// Publish satisfies the depth feed's sink interface. The constant key
// keeps all depth frames on one partition, in order.
func (p *Producer) Publish(ctx context.Context, value []byte) error {
	return p.Send(ctx, []byte("depth"), value)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

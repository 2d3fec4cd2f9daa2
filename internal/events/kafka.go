// README: Kafka publisher for booking state events; keyed by booking id so one booking's events stay ordered.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"vanbook/internal/modules/booking"
)

const DefaultTopic = "booking_events"

type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher writes asynchronously; delivery failures are logged by
// the writer's completion callback rather than returned to the caller.
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
	}
	w.Completion = func(messages []kafka.Message, err error) {
		if err != nil {
			logger.Warn("booking events not delivered",
				zap.String("topic", topic), zap.Int("messages", len(messages)), zap.Error(err))
		}
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e booking.Event) error {
	msg, err := encodeEvent(e)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encodeEvent(e booking.Event) (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode booking event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(e.BookingID),
		Value: value,
		Time:  e.CreatedAt,
	}, nil
}

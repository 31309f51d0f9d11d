package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// SeatEventConsumer reads seat events from a consumer group and commits each
// offset only after the handler accepted the event.
type SeatEventConsumer struct {
	reader MessageReader
	logger *zap.Logger
}

func NewSeatEventConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *SeatEventConsumer {
	return NewSeatEventConsumerWithReader(kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	}), logger)
}

func NewSeatEventConsumerWithReader(reader MessageReader, logger *zap.Logger) *SeatEventConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeatEventConsumer{reader: reader, logger: logger}
}

func (c *SeatEventConsumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Run blocks until ctx is cancelled, the reader fails or handle returns an error.
// Undecodable messages are committed and skipped.
func (c *SeatEventConsumer) Run(ctx context.Context, handle func(context.Context, domain.SeatEvent) error) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		event, err := DecodeSeatEvent(msg)
		if err != nil {
			c.logger.Warn("drop undecodable event", zap.Int("partition", msg.Partition), zap.Error(err))
		} else if err := handle(ctx, event); err != nil {
			return fmt.Errorf("handle %s for seat %s: %w", event.Type, event.SeatID, err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}

func DecodeSeatEvent(msg kafka.Message) (domain.SeatEvent, error) {
	var event domain.SeatEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return domain.SeatEvent{}, fmt.Errorf("decode seat event at offset %d: %w", msg.Offset, err)
	}
	return event, nil
}

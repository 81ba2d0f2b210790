package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/avolkova/fix-exchange/internal/domain"
	"github.com/avolkova/fix-exchange/internal/port"
)

var _ port.ExecutionPublisher = (*KafkaPublisher)(nil)

// executionEvent is the JSON shape published to the executions topic. Keys
// are the symbol so per-instrument ordering is preserved within a partition.
type executionEvent struct {
	ExecID    uint64  `json:"exec_id"`
	Symbol    string  `json:"symbol"`
	BuyOrder  uint64  `json:"buy_order"`
	SellOrder uint64  `json:"sell_order"`
	Quantity  uint64  `json:"quantity"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ex domain.Execution) error {
	value, err := json.Marshal(executionEvent{
		ExecID:    ex.ID,
		Symbol:    ex.Buy.Symbol,
		BuyOrder:  ex.Buy.ID,
		SellOrder: ex.Sell.ID,
		Quantity:  ex.Quantity(),
		Price:     ex.Price(),
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("stream: marshal execution: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ex.Buy.Symbol),
		Value: value,
		Headers: []kafka.Header{
			{Key: "exec_id", Value: []byte(strconv.FormatUint(ex.ID, 10))},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("stream: write execution %d: %w", ex.ID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

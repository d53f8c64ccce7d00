package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// StockRecorded is emitted after a count is stored
type StockRecorded struct {
	EntryID      string    `json:"entry_id"`
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name"`
	Date         string    `json:"date"`
	Quantity     float64   `json:"quantity"`
	MinimumStock float64   `json:"minimum_stock"`
	Status       string    `json:"status"`
	RecordedBy   string    `json:"recorded_by"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// Publisher delivers stock events to downstream consumers
type Publisher interface {
	PublishStockRecorded(ctx context.Context, event StockRecorded) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
}

// NewKafkaPublisher publishes to topic, keyed by product id so a product's
// events stay ordered within a partition
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}

	return newKafkaPublisher(writer, logger)
}

func newKafkaPublisher(writer messageWriter, logger *zap.Logger) *kafkaPublisher {
	return &kafkaPublisher{writer: writer, logger: logger}
}

func (p *kafkaPublisher) PublishStockRecorded(ctx context.Context, event StockRecorded) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal stock event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.ProductID),
		Value: payload,
		Time:  event.RecordedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("stock.recorded")},
			{Key: "status", Value: []byte(event.Status)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish stock event: %w", err)
	}

	p.logger.Debug("Stock event published",
		zap.String("product_id", event.ProductID),
		zap.String("status", event.Status),
	)
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type nopPublisher struct{}

// NewNopPublisher discards events; used when no brokers are configured
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) PublishStockRecorded(context.Context, StockRecorded) error { return nil }

func (nopPublisher) Close() error { return nil }

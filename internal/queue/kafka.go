package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"disasterwatch/internal/types"
)

// messageWriter is the subset of *kafkago.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaAlertPublisher produces alerts to a Kafka topic keyed by city, so all
// alerts for one city land on the same partition in order.
type KafkaAlertPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

var _ types.AlertPublisher = (*KafkaAlertPublisher)(nil)

// NewKafkaAlertPublisher creates a producer for topic on brokers.
func NewKafkaAlertPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaAlertPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &KafkaAlertPublisher{writer: w, logger: logger}
}

func (p *KafkaAlertPublisher) PublishAlert(ctx context.Context, alert *types.Alert) error {
	msg, err := serializeAlert(alert)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("queue: failed to produce alert %s: %w", alert.ID, err)
	}
	p.logger.InfoContext(ctx, "alert message produced",
		"alert_id", alert.ID,
		"city", alert.City,
		"risk_level", string(alert.RiskLevel),
	)
	return nil
}

func (p *KafkaAlertPublisher) Close() error {
	return p.writer.Close()
}

func serializeAlert(alert *types.Alert) (kafkago.Message, error) {
	data, err := json.Marshal(alert)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("queue: serialize alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(alert.City),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert_id", Value: []byte(alert.ID)},
			{Key: "risk_level", Value: []byte(alert.RiskLevel)},
			{Key: "created_at", Value: []byte(alert.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}

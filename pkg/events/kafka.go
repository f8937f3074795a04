package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"learnx/internal/data/entity"
	"learnx/pkg/utils"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventPaymentSubmitted = "payment.submitted"
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
)

// PaymentEvent is the message published on payment lifecycle transitions.
// Keyed by transaction id so all events of one payment land in one partition.
type PaymentEvent struct {
	Type          string    `json:"type"`
	TransactionID string    `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	CourseID      string    `json:"course_id"`
	Amount        float64   `json:"amount"`
	Method        string    `json:"method"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher writes payment lifecycle events to Kafka. A nil Publisher is
// valid and drops everything, so callers never need to guard.
type Publisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

// NewPublisher returns nil when no brokers are configured.
func NewPublisher(config utils.KafkaConfig, log *zap.Logger) *Publisher {
	if len(config.Brokers) == 0 {
		log.Info("Kafka events disabled (no brokers configured)")
		return nil
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireAll,
	}

	log.Info("Kafka events publisher initialized",
		zap.Strings("brokers", config.Brokers),
		zap.String("topic", config.Topic),
	)

	return &Publisher{
		writer: writer,
		log:    log.With(zap.String("component", "events")),
	}
}

// Publish emits one payment event. Failures are logged and returned but the
// payment flow treats them as non-fatal.
func (p *Publisher) Publish(ctx context.Context, eventType string, payment *entity.Payment) error {
	if p == nil {
		return nil
	}

	event := PaymentEvent{
		Type:          eventType,
		TransactionID: payment.TransactionID,
		UserID:        payment.UserID.String(),
		CourseID:      payment.CourseID.String(),
		Amount:        payment.Amount,
		Method:        string(payment.Method),
		Status:        string(payment.Status),
		OccurredAt:    time.Now(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal payment event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(payment.TransactionID),
		Value: value,
	})
	if err != nil {
		p.log.Error("Failed to publish payment event",
			zap.Error(err),
			zap.String("type", eventType),
			zap.String("transaction_id", payment.TransactionID),
		)
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}

package service

import (
	"context"
	"errors"
	"io"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
)

const TopicCheckoutCompleted = "checkout.completed"

// MessageReader is satisfied by *kafka.Reader.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// SessionCloser removes the session of a checkout.
type SessionCloser interface {
	Remove(ctx context.Context, checkoutID string) error
}

// SessionReaper closes checkout sessions once the order service reports the
// checkout as completed or abandoned.
type SessionReaper struct {
	reader   MessageReader
	sessions SessionCloser
	logger   *zap.Logger
}

func NewSessionReaper(reader MessageReader, sessions SessionCloser, logger *zap.Logger) *SessionReaper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionReaper{reader: reader, sessions: sessions, logger: logger}
}

// NewKafkaReader builds the consumer group reader of the completion topic.
func NewKafkaReader(brokers string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{brokers},
		Topic:    TopicCheckoutCompleted,
		GroupID:  "checkout-orchestrator",
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
}

// Run consumes until ctx is canceled or the reader is closed.
func (r *SessionReaper) Run(ctx context.Context) error {
	defer r.reader.Close()

	r.logger.Info("Started consuming checkout.completed events")

	for {
		msg, err := r.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			r.logger.Error("Error reading message from Kafka", zap.Error(err))
			continue
		}

		var event models.CheckoutEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			r.logger.Error("Error unmarshaling event", zap.Error(err))
			continue
		}
		if event.CheckoutID == "" {
			event.CheckoutID = string(msg.Key)
		}

		r.logger.Info("Closing checkout session",
			zap.String("checkout_id", event.CheckoutID),
			zap.String("status", event.Status),
		)
		if err := r.sessions.Remove(ctx, event.CheckoutID); err != nil {
			r.logger.Error("Error closing checkout session",
				zap.String("checkout_id", event.CheckoutID),
				zap.Error(err),
			)
		}
	}
}

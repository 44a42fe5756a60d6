package journal

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/interfaces"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/store"
)

// TopicActionApplied carries every applied checkout action.
const TopicActionApplied = "checkout.action.applied"

// RepositorySink appends records to the action journal table.
type RepositorySink struct {
	repo interfaces.ActionJournalRepository
}

func NewRepositorySink(repo interfaces.ActionJournalRepository) *RepositorySink {
	return &RepositorySink{repo: repo}
}

func (s *RepositorySink) Write(ctx context.Context, record models.ActionRecord) error {
	return s.repo.Append(ctx, record)
}

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaSink publishes records keyed by checkout id, so one checkout's actions
// stay ordered within a partition.
type KafkaSink struct {
	writer MessageWriter
}

func NewKafkaSink(writer MessageWriter) *KafkaSink {
	return &KafkaSink{writer: writer}
}

func (s *KafkaSink) Write(ctx context.Context, record models.ActionRecord) error {
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(record.CheckoutID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "action_type", Value: []byte(record.Type)},
		},
	})
}

// Load reads the journal of a checkout and decodes it into actions.
func Load(ctx context.Context, repo interfaces.ActionJournalRepository, codec *Codec, checkoutID string) ([]store.Action, error) {
	records, err := repo.ListByCheckout(ctx, checkoutID)
	if err != nil {
		return nil, fmt.Errorf("list journal of %s: %w", checkoutID, err)
	}
	actions := make([]store.Action, 0, len(records))
	for _, rec := range records {
		a, err := codec.Decode(rec)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

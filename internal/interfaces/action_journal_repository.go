package interfaces

import (
	"context"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
)

// ActionJournalRepository defines the contract for the applied-action journal.
type ActionJournalRepository interface {
	Append(ctx context.Context, record models.ActionRecord) error
	ListByCheckout(ctx context.Context, checkoutID string) ([]models.ActionRecord, error)
}

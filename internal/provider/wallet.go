package provider

import (
	"context"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
)

type ButtonOptions struct {
	Color   string
	OnClick func(ctx context.Context) error
}

// WalletProcessor drives a wallet SDK such as Google Pay.
type WalletProcessor interface {
	Initialize(ctx context.Context, methodID string) error
	CreateButton(ctx context.Context, opts ButtonOptions) (*Button, error)
	DisplayWallet(ctx context.Context) (models.WalletPaymentData, error)
	HandleSuccess(ctx context.Context, data models.WalletPaymentData) error
	UpdateShippingAddress(ctx context.Context, address *models.Address) error
	Deinitialize(ctx context.Context) error
}

// Package strategy defines the lifecycle contract shared by customer and payment
// strategies and the machinery that drives them through a store.
package strategy

import (
	"context"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
)

// Domain names a family of interchangeable strategies.
type Domain string

const (
	DomainCustomer Domain = "customer"
	DomainPayment  Domain = "payment"
)

// Operation is the core action performed by Execute.
type Operation string

const (
	OperationSignIn        Operation = "sign_in"
	OperationSignOut       Operation = "sign_out"
	OperationSubmitPayment Operation = "submit_payment"
)

// WalletOptions configure strategies that render a wallet button.
type WalletOptions struct {
	Container   string
	ButtonColor string
	OnError     func(error)
}

type InitializeOptions struct {
	MethodID  string
	GatewayID string
	Wallet    *WalletOptions
}

type ExecuteOptions struct {
	Operation   Operation
	MethodID    string
	Credentials models.Credentials
	Payment     *models.PaymentPayload
}

// Strategy is one interchangeable implementation of a domain's operations.
// Every method returns the latest state snapshot once its work has been dispatched.
//
// Initialize validates options before acquiring anything and is a no-op when the
// strategy is already active. Deinitialize releases everything Initialize acquired
// and is a no-op when nothing was acquired.
type Strategy[S any] interface {
	Initialize(ctx context.Context, opts InitializeOptions) (S, error)
	Execute(ctx context.Context, opts ExecuteOptions) (S, error)
	Deinitialize(ctx context.Context) (S, error)
}

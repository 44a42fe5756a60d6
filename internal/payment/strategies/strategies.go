// Package strategies implements the payment method strategies.
package strategies

import (
	"context"
	"fmt"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/payment"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/state"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/strategy"
)

// submitter is embedded by strategies that submit through the checkout backend.
type submitter struct {
	store     strategy.Dispatcher[state.State]
	payments  *payment.ActionCreator
	lifecycle strategy.Lifecycle
}

func (s *submitter) Initialize(context.Context, strategy.InitializeOptions) (state.State, error) {
	_, err := s.lifecycle.Initialize(nil)
	return s.store.GetState(), err
}

func (s *submitter) Deinitialize(context.Context) (state.State, error) {
	_, err := s.lifecycle.Deinitialize(nil)
	return s.store.GetState(), err
}

// submit fills the amount and currency from the loaded checkout and dispatches
// the payment.
func (s *submitter) submit(ctx context.Context, payload models.PaymentPayload) (state.State, error) {
	current := s.store.GetState()
	c := current.Checkout.Data
	if c == nil {
		return current, errs.MissingData("checkout")
	}
	if payload.Amount.IsZero() {
		payload.Amount = c.OutstandingTotal
	}
	if payload.Currency == "" {
		payload.Currency = c.Currency
	}
	return s.store.Dispatch(ctx, s.payments.SubmitPayment(c.ID, payload))
}

// preflight checks the parts of an execute call common to every payment strategy.
func (s *submitter) preflight(opts strategy.ExecuteOptions) (models.PaymentPayload, error) {
	if !s.lifecycle.Active() {
		return models.PaymentPayload{}, errs.NotInitialized("the payment strategy")
	}
	if opts.Operation != strategy.OperationSubmitPayment {
		return models.PaymentPayload{}, errs.InvalidArgument(fmt.Sprintf("Payment strategies do not support the %q operation.", opts.Operation))
	}
	var payload models.PaymentPayload
	if opts.Payment != nil {
		payload = *opts.Payment
	}
	payload.MethodID = opts.MethodID
	return payload, nil
}

// CreditCardStrategy submits card details entered by the shopper.
type CreditCardStrategy struct {
	submitter
}

func NewCreditCardStrategy(store strategy.Dispatcher[state.State], payments *payment.ActionCreator) *CreditCardStrategy {
	return &CreditCardStrategy{submitter{store: store, payments: payments}}
}

func (s *CreditCardStrategy) Execute(ctx context.Context, opts strategy.ExecuteOptions) (state.State, error) {
	payload, err := s.preflight(opts)
	if err != nil {
		return s.store.GetState(), err
	}
	if payload.CreditCard == nil || payload.CreditCard.Number == "" {
		return s.store.GetState(), errs.InvalidArgument(`Unable to submit payment because "payment.paymentData" argument is not provided.`)
	}
	return s.submit(ctx, payload)
}

// OfflineStrategy places orders paid outside the checkout, such as cheque or
// bank transfer.
type OfflineStrategy struct {
	submitter
}

func NewOfflineStrategy(store strategy.Dispatcher[state.State], payments *payment.ActionCreator) *OfflineStrategy {
	return &OfflineStrategy{submitter{store: store, payments: payments}}
}

func (s *OfflineStrategy) Execute(ctx context.Context, opts strategy.ExecuteOptions) (state.State, error) {
	payload, err := s.preflight(opts)
	if err != nil {
		return s.store.GetState(), err
	}
	payload.CreditCard = nil
	payload.Nonce = ""
	return s.submit(ctx, payload)
}

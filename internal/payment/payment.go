// Package payment holds the payment slice of the checkout state.
package payment

import (
	"context"
	"strings"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/checkout"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/customer"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/interfaces"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/store"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/strategy"
)

const (
	SubmitPaymentRequested store.ActionType = "SUBMIT_PAYMENT_REQUESTED"
	SubmitPaymentSucceeded store.ActionType = "SUBMIT_PAYMENT_SUCCEEDED"
	SubmitPaymentFailed    store.ActionType = "SUBMIT_PAYMENT_FAILED"

	// WalletAuthorized records the nonce handed back by a wallet provider.
	WalletAuthorized store.ActionType = "PAYMENT_WALLET_AUTHORIZED"
)

var SubmitTriad = store.Triad{Requested: SubmitPaymentRequested, Succeeded: SubmitPaymentSucceeded, Failed: SubmitPaymentFailed}

type Statuses struct {
	IsSubmitting bool `json:"is_submitting"`
}

type Errors struct {
	SubmitError error `json:"submit_error"`
}

type State struct {
	Data     models.PaymentInfo `json:"data"`
	Statuses Statuses           `json:"statuses"`
	Errors   Errors             `json:"errors"`
}

func InitialState() State {
	return State{}
}

func Reduce(prev State, action store.Action) State {
	switch action.Type {
	case SubmitPaymentRequested:
		prev.Statuses.IsSubmitting = true
		prev.Errors.SubmitError = nil

	case SubmitPaymentSucceeded:
		if r, ok := action.Payload.(models.PaymentResult); ok {
			prev.Data.OrderID = r.OrderID
			prev.Data.Status = r.Status
		}
		prev.Statuses.IsSubmitting = false
		prev.Errors.SubmitError = nil

	case SubmitPaymentFailed:
		prev.Statuses.IsSubmitting = false
		prev.Errors.SubmitError = action.Error

	case WalletAuthorized:
		if info, ok := action.Payload.(models.PaymentInfo); ok {
			prev.Data = info
		}

	case customer.SignOutRemoteSucceeded:
		prev.Data = models.PaymentInfo{}
	}
	return prev
}

// ProviderID returns the wallet provider holding the shopper's session, if any.
func (s State) ProviderID() string {
	return s.Data.ProviderID
}

type ActionCreator struct {
	sender interfaces.CheckoutRequestSender
}

func NewActionCreator(sender interfaces.CheckoutRequestSender) *ActionCreator {
	return &ActionCreator{sender: sender}
}

func (c *ActionCreator) SubmitPayment(checkoutID string, payload models.PaymentPayload) store.Thunk {
	if strings.TrimSpace(checkoutID) == "" {
		return checkout.Reject(errs.InvalidArgument(`Unable to submit payment because "checkoutId" is not provided.`))
	}
	if strings.TrimSpace(payload.MethodID) == "" {
		return checkout.Reject(errs.InvalidArgument(`Unable to submit payment because "payment.methodId" is not provided.`))
	}
	meta := map[string]string{checkout.MetaCheckoutID: checkoutID, strategy.MetaMethodID: payload.MethodID}
	return SubmitTriad.Run(meta, func(ctx context.Context) (any, error) {
		return c.sender.SubmitPayment(ctx, checkoutID, payload)
	})
}

// AuthorizeWallet returns the action recording a wallet authorization.
func (c *ActionCreator) AuthorizeWallet(info models.PaymentInfo) store.Action {
	return store.NewAction(WalletAuthorized, info).WithMeta(customer.MetaProviderID, info.ProviderID)
}

// Package paymentmethod holds the payment methods available to a checkout.
package paymentmethod

import (
	"context"
	"strings"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/checkout"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/interfaces"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/store"
)

const (
	LoadPaymentMethodsRequested store.ActionType = "LOAD_PAYMENT_METHODS_REQUESTED"
	LoadPaymentMethodsSucceeded store.ActionType = "LOAD_PAYMENT_METHODS_SUCCEEDED"
	LoadPaymentMethodsFailed    store.ActionType = "LOAD_PAYMENT_METHODS_FAILED"
)

var LoadTriad = store.Triad{
	Requested: LoadPaymentMethodsRequested,
	Succeeded: LoadPaymentMethodsSucceeded,
	Failed:    LoadPaymentMethodsFailed,
}

type Statuses struct {
	IsLoading bool `json:"is_loading"`
}

type Errors struct {
	LoadError error `json:"load_error"`
}

type State struct {
	Data     []models.PaymentMethod `json:"data"`
	Statuses Statuses               `json:"statuses"`
	Errors   Errors                 `json:"errors"`
}

func InitialState() State {
	return State{}
}

func Reduce(prev State, action store.Action) State {
	switch action.Type {
	case LoadPaymentMethodsRequested:
		prev.Statuses.IsLoading = true
		prev.Errors.LoadError = nil

	case LoadPaymentMethodsSucceeded:
		if methods, ok := action.Payload.([]models.PaymentMethod); ok {
			prev.Data = append(make([]models.PaymentMethod, 0, len(methods)), methods...)
		}
		prev.Statuses.IsLoading = false
		prev.Errors.LoadError = nil

	case LoadPaymentMethodsFailed:
		prev.Statuses.IsLoading = false
		prev.Errors.LoadError = action.Error
	}
	return prev
}

// Method looks up a loaded payment method by id. A gateway id, when given, must
// match as well.
func (s State) Method(id, gatewayID string) (models.PaymentMethod, bool) {
	for _, m := range s.Data {
		if m.ID == id && (gatewayID == "" || m.GatewayID == gatewayID) {
			return m, true
		}
	}
	return models.PaymentMethod{}, false
}

type ActionCreator struct {
	sender interfaces.CheckoutRequestSender
}

func NewActionCreator(sender interfaces.CheckoutRequestSender) *ActionCreator {
	return &ActionCreator{sender: sender}
}

func (c *ActionCreator) LoadPaymentMethods(checkoutID string) store.Thunk {
	if strings.TrimSpace(checkoutID) == "" {
		return checkout.Reject(errs.InvalidArgument(`Unable to load payment methods because "checkoutId" is not provided.`))
	}
	return LoadTriad.Run(map[string]string{checkout.MetaCheckoutID: checkoutID}, func(ctx context.Context) (any, error) {
		return c.sender.LoadPaymentMethods(ctx, checkoutID)
	})
}

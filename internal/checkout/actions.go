// Package checkout loads the checkout aggregate. Its LoadCheckoutSucceeded action
// seeds the data of several slices at once.
package checkout

import (
	"context"
	"strings"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/interfaces"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/store"
)

const (
	LoadCheckoutRequested store.ActionType = "LOAD_CHECKOUT_REQUESTED"
	LoadCheckoutSucceeded store.ActionType = "LOAD_CHECKOUT_SUCCEEDED"
	LoadCheckoutFailed    store.ActionType = "LOAD_CHECKOUT_FAILED"
)

// MetaCheckoutID is the action metadata key carrying the checkout identifier.
const MetaCheckoutID = "checkout_id"

var LoadTriad = store.Triad{
	Requested: LoadCheckoutRequested,
	Succeeded: LoadCheckoutSucceeded,
	Failed:    LoadCheckoutFailed,
}

type ActionCreator struct {
	sender interfaces.CheckoutRequestSender
}

func NewActionCreator(sender interfaces.CheckoutRequestSender) *ActionCreator {
	return &ActionCreator{sender: sender}
}

// LoadCheckout fetches the checkout and emits it as the LoadCheckoutSucceeded payload.
func (c *ActionCreator) LoadCheckout(checkoutID string) store.Thunk {
	if strings.TrimSpace(checkoutID) == "" {
		return Reject(errs.InvalidArgument(`Unable to load checkout because "checkoutId" is not provided.`))
	}
	return LoadTriad.Run(map[string]string{MetaCheckoutID: checkoutID}, func(ctx context.Context) (any, error) {
		return c.sender.LoadCheckout(ctx, checkoutID)
	})
}

// Reject returns a thunk that fails with err without emitting any action. It is
// used for caller errors detected before an operation starts.
func Reject(err error) store.Thunk {
	return func(context.Context, store.Emitter) error { return err }
}

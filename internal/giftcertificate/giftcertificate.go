// Package giftcertificate holds the gift certificate slice of the checkout state.
package giftcertificate

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
	ApplyGiftCertificateRequested  store.ActionType = "APPLY_GIFT_CERTIFICATE_REQUESTED"
	ApplyGiftCertificateSucceeded  store.ActionType = "APPLY_GIFT_CERTIFICATE_SUCCEEDED"
	ApplyGiftCertificateFailed     store.ActionType = "APPLY_GIFT_CERTIFICATE_FAILED"
	RemoveGiftCertificateRequested store.ActionType = "REMOVE_GIFT_CERTIFICATE_REQUESTED"
	RemoveGiftCertificateSucceeded store.ActionType = "REMOVE_GIFT_CERTIFICATE_SUCCEEDED"
	RemoveGiftCertificateFailed    store.ActionType = "REMOVE_GIFT_CERTIFICATE_FAILED"
)

var (
	ApplyTriad = store.Triad{
		Requested: ApplyGiftCertificateRequested,
		Succeeded: ApplyGiftCertificateSucceeded,
		Failed:    ApplyGiftCertificateFailed,
	}
	RemoveTriad = store.Triad{
		Requested: RemoveGiftCertificateRequested,
		Succeeded: RemoveGiftCertificateSucceeded,
		Failed:    RemoveGiftCertificateFailed,
	}
)

type Statuses struct {
	IsApplyingGiftCertificate bool `json:"is_applying_gift_certificate"`
	IsRemovingGiftCertificate bool `json:"is_removing_gift_certificate"`
}

type Errors struct {
	ApplyGiftCertificateError  error `json:"apply_gift_certificate_error"`
	RemoveGiftCertificateError error `json:"remove_gift_certificate_error"`
}

type State struct {
	Data     []models.GiftCertificate `json:"data"`
	Statuses Statuses                 `json:"statuses"`
	Errors   Errors                   `json:"errors"`
}

func InitialState() State {
	return State{Data: []models.GiftCertificate{}}
}

// Reduce applies action to the slice. Unknown actions return prev unchanged.
func Reduce(prev State, action store.Action) State {
	switch action.Type {
	case ApplyGiftCertificateRequested:
		prev.Statuses.IsApplyingGiftCertificate = true
		prev.Errors.ApplyGiftCertificateError = nil

	case ApplyGiftCertificateSucceeded:
		if c, ok := action.Payload.(models.Checkout); ok {
			prev.Data = clone(c.GiftCertificates)
		}
		prev.Statuses.IsApplyingGiftCertificate = false
		prev.Errors.ApplyGiftCertificateError = nil

	case ApplyGiftCertificateFailed:
		prev.Statuses.IsApplyingGiftCertificate = false
		prev.Errors.ApplyGiftCertificateError = action.Error

	case RemoveGiftCertificateRequested:
		prev.Statuses.IsRemovingGiftCertificate = true
		prev.Errors.RemoveGiftCertificateError = nil

	case RemoveGiftCertificateSucceeded:
		prev.Data = []models.GiftCertificate{}
		prev.Statuses.IsRemovingGiftCertificate = false
		prev.Errors.RemoveGiftCertificateError = nil

	case RemoveGiftCertificateFailed:
		prev.Statuses.IsRemovingGiftCertificate = false
		prev.Errors.RemoveGiftCertificateError = action.Error

	case checkout.LoadCheckoutSucceeded:
		if c, ok := action.Payload.(models.Checkout); ok {
			prev.Data = clone(c.GiftCertificates)
		}
	}
	return prev
}

func clone(in []models.GiftCertificate) []models.GiftCertificate {
	return append(make([]models.GiftCertificate, 0, len(in)), in...)
}

type ActionCreator struct {
	sender interfaces.CheckoutRequestSender
}

func NewActionCreator(sender interfaces.CheckoutRequestSender) *ActionCreator {
	return &ActionCreator{sender: sender}
}

func (c *ActionCreator) ApplyGiftCertificate(checkoutID, code string) store.Thunk {
	if err := validate(checkoutID, code); err != nil {
		return checkout.Reject(err)
	}
	return ApplyTriad.Run(map[string]string{checkout.MetaCheckoutID: checkoutID}, func(ctx context.Context) (any, error) {
		return c.sender.ApplyGiftCertificate(ctx, checkoutID, strings.TrimSpace(code))
	})
}

func (c *ActionCreator) RemoveGiftCertificate(checkoutID, code string) store.Thunk {
	if err := validate(checkoutID, code); err != nil {
		return checkout.Reject(err)
	}
	return RemoveTriad.Run(map[string]string{checkout.MetaCheckoutID: checkoutID}, func(ctx context.Context) (any, error) {
		return c.sender.RemoveGiftCertificate(ctx, checkoutID, strings.TrimSpace(code))
	})
}

func validate(checkoutID, code string) error {
	if strings.TrimSpace(checkoutID) == "" {
		return errs.InvalidArgument(`Unable to proceed because "checkoutId" is not provided.`)
	}
	if strings.TrimSpace(code) == "" {
		return errs.InvalidArgument(`Unable to proceed because "giftCertificate" code is not provided.`)
	}
	return nil
}

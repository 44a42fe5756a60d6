// Package coupon holds the coupon slice of the checkout state.
package coupon

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
	ApplyCouponRequested  store.ActionType = "APPLY_COUPON_REQUESTED"
	ApplyCouponSucceeded  store.ActionType = "APPLY_COUPON_SUCCEEDED"
	ApplyCouponFailed     store.ActionType = "APPLY_COUPON_FAILED"
	RemoveCouponRequested store.ActionType = "REMOVE_COUPON_REQUESTED"
	RemoveCouponSucceeded store.ActionType = "REMOVE_COUPON_SUCCEEDED"
	RemoveCouponFailed    store.ActionType = "REMOVE_COUPON_FAILED"
)

var (
	ApplyTriad  = store.Triad{Requested: ApplyCouponRequested, Succeeded: ApplyCouponSucceeded, Failed: ApplyCouponFailed}
	RemoveTriad = store.Triad{Requested: RemoveCouponRequested, Succeeded: RemoveCouponSucceeded, Failed: RemoveCouponFailed}
)

type Statuses struct {
	IsApplyingCoupon bool `json:"is_applying_coupon"`
	IsRemovingCoupon bool `json:"is_removing_coupon"`
}

type Errors struct {
	ApplyCouponError  error `json:"apply_coupon_error"`
	RemoveCouponError error `json:"remove_coupon_error"`
}

type State struct {
	Data     []models.Coupon `json:"data"`
	Statuses Statuses        `json:"statuses"`
	Errors   Errors          `json:"errors"`
}

func InitialState() State {
	return State{Data: []models.Coupon{}}
}

// Reduce applies action to the slice. Both Succeeded actions carry the updated
// checkout, whose coupon list replaces Data.
func Reduce(prev State, action store.Action) State {
	switch action.Type {
	case ApplyCouponRequested:
		prev.Statuses.IsApplyingCoupon = true
		prev.Errors.ApplyCouponError = nil

	case ApplyCouponSucceeded:
		prev.Data = couponsOf(prev.Data, action.Payload)
		prev.Statuses.IsApplyingCoupon = false
		prev.Errors.ApplyCouponError = nil

	case ApplyCouponFailed:
		prev.Statuses.IsApplyingCoupon = false
		prev.Errors.ApplyCouponError = action.Error

	case RemoveCouponRequested:
		prev.Statuses.IsRemovingCoupon = true
		prev.Errors.RemoveCouponError = nil

	case RemoveCouponSucceeded:
		prev.Data = couponsOf(prev.Data, action.Payload)
		prev.Statuses.IsRemovingCoupon = false
		prev.Errors.RemoveCouponError = nil

	case RemoveCouponFailed:
		prev.Statuses.IsRemovingCoupon = false
		prev.Errors.RemoveCouponError = action.Error

	case checkout.LoadCheckoutSucceeded:
		prev.Data = couponsOf(prev.Data, action.Payload)
	}
	return prev
}

func couponsOf(current []models.Coupon, payload any) []models.Coupon {
	c, ok := payload.(models.Checkout)
	if !ok {
		return current
	}
	return append(make([]models.Coupon, 0, len(c.Coupons)), c.Coupons...)
}

type ActionCreator struct {
	sender interfaces.CheckoutRequestSender
}

func NewActionCreator(sender interfaces.CheckoutRequestSender) *ActionCreator {
	return &ActionCreator{sender: sender}
}

func (c *ActionCreator) ApplyCoupon(checkoutID, code string) store.Thunk {
	if err := validate(checkoutID, code); err != nil {
		return checkout.Reject(err)
	}
	return ApplyTriad.Run(map[string]string{checkout.MetaCheckoutID: checkoutID}, func(ctx context.Context) (any, error) {
		return c.sender.ApplyCoupon(ctx, checkoutID, strings.TrimSpace(code))
	})
}

func (c *ActionCreator) RemoveCoupon(checkoutID, code string) store.Thunk {
	if err := validate(checkoutID, code); err != nil {
		return checkout.Reject(err)
	}
	return RemoveTriad.Run(map[string]string{checkout.MetaCheckoutID: checkoutID}, func(ctx context.Context) (any, error) {
		return c.sender.RemoveCoupon(ctx, checkoutID, strings.TrimSpace(code))
	})
}

func validate(checkoutID, code string) error {
	if strings.TrimSpace(checkoutID) == "" {
		return errs.InvalidArgument(`Unable to proceed because "checkoutId" is not provided.`)
	}
	if strings.TrimSpace(code) == "" {
		return errs.InvalidArgument(`Unable to proceed because "couponCode" is not provided.`)
	}
	return nil
}

// Package state composes the checkout slices into one immutable snapshot.
package state

import (
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/checkout"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/coupon"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/customer"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/giftcertificate"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/journal"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/payment"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/paymentmethod"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/store"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/strategy"
)

type State struct {
	Checkout           checkout.State        `json:"checkout"`
	GiftCertificates   giftcertificate.State `json:"gift_certificates"`
	Coupons            coupon.State          `json:"coupons"`
	Customer           customer.State        `json:"customer"`
	Payment            payment.State         `json:"payment"`
	PaymentMethods     paymentmethod.State   `json:"payment_methods"`
	CustomerStrategies strategy.State        `json:"customer_strategies"`
	PaymentStrategies  strategy.State        `json:"payment_strategies"`
}

type Store = store.Store[State]

func Initial() State {
	return State{
		Checkout:           checkout.InitialState(),
		GiftCertificates:   giftcertificate.InitialState(),
		Coupons:            coupon.InitialState(),
		Customer:           customer.InitialState(),
		Payment:            payment.InitialState(),
		PaymentMethods:     paymentmethod.InitialState(),
		CustomerStrategies: strategy.InitialState(),
		PaymentStrategies:  strategy.InitialState(),
	}
}

var (
	reduceCustomerStrategies = strategy.Reducer(strategy.DomainCustomer)
	reducePaymentStrategies  = strategy.Reducer(strategy.DomainPayment)
)

// Reduce is the root reducer. Every slice sees every action.
func Reduce(prev State, action store.Action) State {
	return State{
		Checkout:           reduceCheckout(prev.Checkout, action),
		GiftCertificates:   giftcertificate.Reduce(prev.GiftCertificates, action),
		Coupons:            coupon.Reduce(prev.Coupons, action),
		Customer:           customer.Reduce(prev.Customer, action),
		Payment:            payment.Reduce(prev.Payment, action),
		PaymentMethods:     paymentmethod.Reduce(prev.PaymentMethods, action),
		CustomerStrategies: reduceCustomerStrategies(prev.CustomerStrategies, action),
		PaymentStrategies:  reducePaymentStrategies(prev.PaymentStrategies, action),
	}
}

// reduceCheckout keeps the checkout slice in step with operations that return an
// updated checkout.
func reduceCheckout(prev checkout.State, action store.Action) checkout.State {
	switch action.Type {
	case giftcertificate.ApplyGiftCertificateRequested, giftcertificate.RemoveGiftCertificateRequested,
		coupon.ApplyCouponRequested, coupon.RemoveCouponRequested:
		return checkout.SetUpdating(prev, true)

	case giftcertificate.ApplyGiftCertificateSucceeded, giftcertificate.RemoveGiftCertificateSucceeded,
		coupon.ApplyCouponSucceeded, coupon.RemoveCouponSucceeded:
		return checkout.SetUpdating(checkout.Replace(prev, action.Payload), false)

	case giftcertificate.ApplyGiftCertificateFailed, giftcertificate.RemoveGiftCertificateFailed,
		coupon.ApplyCouponFailed, coupon.RemoveCouponFailed:
		return checkout.SetUpdating(prev, false)
	}
	return checkout.Reduce(prev, action)
}

// NewStore creates a store seeded with the initial snapshot.
func NewStore(opts ...store.Option) *Store {
	return store.New(Initial(), Reduce, opts...)
}

// RegisterPayloads declares the payload types of every action that carries one.
func RegisterPayloads(c *journal.Codec) {
	journal.Register[models.Checkout](c,
		checkout.LoadCheckoutSucceeded,
		giftcertificate.ApplyGiftCertificateSucceeded,
		giftcertificate.RemoveGiftCertificateSucceeded,
		coupon.ApplyCouponSucceeded,
		coupon.RemoveCouponSucceeded,
	)
	journal.Register[models.Customer](c,
		customer.SignInCustomerSucceeded,
		customer.SignOutCustomerSucceeded,
		customer.SignOutRemoteSucceeded,
	)
	journal.Register[models.PaymentResult](c, payment.SubmitPaymentSucceeded)
	journal.Register[models.PaymentInfo](c, payment.WalletAuthorized)
	journal.Register[[]models.PaymentMethod](c, paymentmethod.LoadPaymentMethodsSucceeded)
}

// CheckoutID returns the id of the loaded checkout, or "" before loading.
func (s State) CheckoutID() string {
	if s.Checkout.Data == nil {
		return ""
	}
	return s.Checkout.Data.ID
}

// Strategies returns the strategy slice of domain.
func (s State) Strategies(domain strategy.Domain) strategy.State {
	if domain == strategy.DomainPayment {
		return s.PaymentStrategies
	}
	return s.CustomerStrategies
}

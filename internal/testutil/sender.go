package testutil

import (
	"context"
	"sync"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
)

// FakeSender is an in-memory CheckoutRequestSender. Unset hooks answer with the
// fixtures of this package.
type FakeSender struct {
	mu    sync.Mutex
	calls map[string]int

	LoadCheckoutFn          func(ctx context.Context, checkoutID string) (models.Checkout, error)
	ApplyGiftCertificateFn  func(ctx context.Context, checkoutID, code string) (models.Checkout, error)
	RemoveGiftCertificateFn func(ctx context.Context, checkoutID, code string) (models.Checkout, error)
	ApplyCouponFn           func(ctx context.Context, checkoutID, code string) (models.Checkout, error)
	RemoveCouponFn          func(ctx context.Context, checkoutID, code string) (models.Checkout, error)
	SignInCustomerFn        func(ctx context.Context, credentials models.Credentials) (models.Customer, error)
	SignOutCustomerFn       func(ctx context.Context) (models.Customer, error)
	SignOutRemoteFn         func(ctx context.Context, providerID string) (models.Customer, error)
	LoadPaymentMethodsFn    func(ctx context.Context, checkoutID string) ([]models.PaymentMethod, error)
	SubmitPaymentFn         func(ctx context.Context, checkoutID string, payload models.PaymentPayload) (models.PaymentResult, error)
}

func (f *FakeSender) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

// Calls returns how many times the named method was invoked.
func (f *FakeSender) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *FakeSender) LoadCheckout(ctx context.Context, checkoutID string) (models.Checkout, error) {
	f.record("LoadCheckout")
	if f.LoadCheckoutFn != nil {
		return f.LoadCheckoutFn(ctx, checkoutID)
	}
	return CheckoutWithGiftCertificates(), nil
}

func (f *FakeSender) ApplyGiftCertificate(ctx context.Context, checkoutID, code string) (models.Checkout, error) {
	f.record("ApplyGiftCertificate")
	if f.ApplyGiftCertificateFn != nil {
		return f.ApplyGiftCertificateFn(ctx, checkoutID, code)
	}
	return CheckoutWithGiftCertificates(), nil
}

func (f *FakeSender) RemoveGiftCertificate(ctx context.Context, checkoutID, code string) (models.Checkout, error) {
	f.record("RemoveGiftCertificate")
	if f.RemoveGiftCertificateFn != nil {
		return f.RemoveGiftCertificateFn(ctx, checkoutID, code)
	}
	return Checkout(), nil
}

func (f *FakeSender) ApplyCoupon(ctx context.Context, checkoutID, code string) (models.Checkout, error) {
	f.record("ApplyCoupon")
	if f.ApplyCouponFn != nil {
		return f.ApplyCouponFn(ctx, checkoutID, code)
	}
	return CheckoutWithCoupons(), nil
}

func (f *FakeSender) RemoveCoupon(ctx context.Context, checkoutID, code string) (models.Checkout, error) {
	f.record("RemoveCoupon")
	if f.RemoveCouponFn != nil {
		return f.RemoveCouponFn(ctx, checkoutID, code)
	}
	return Checkout(), nil
}

func (f *FakeSender) SignInCustomer(ctx context.Context, credentials models.Credentials) (models.Customer, error) {
	f.record("SignInCustomer")
	if f.SignInCustomerFn != nil {
		return f.SignInCustomerFn(ctx, credentials)
	}
	return Customer(), nil
}

func (f *FakeSender) SignOutCustomer(ctx context.Context) (models.Customer, error) {
	f.record("SignOutCustomer")
	if f.SignOutCustomerFn != nil {
		return f.SignOutCustomerFn(ctx)
	}
	return GuestCustomer(), nil
}

func (f *FakeSender) SignOutRemote(ctx context.Context, providerID string) (models.Customer, error) {
	f.record("SignOutRemote")
	if f.SignOutRemoteFn != nil {
		return f.SignOutRemoteFn(ctx, providerID)
	}
	return GuestCustomer(), nil
}

func (f *FakeSender) LoadPaymentMethods(ctx context.Context, checkoutID string) ([]models.PaymentMethod, error) {
	f.record("LoadPaymentMethods")
	if f.LoadPaymentMethodsFn != nil {
		return f.LoadPaymentMethodsFn(ctx, checkoutID)
	}
	return PaymentMethods(), nil
}

func (f *FakeSender) SubmitPayment(ctx context.Context, checkoutID string, payload models.PaymentPayload) (models.PaymentResult, error) {
	f.record("SubmitPayment")
	if f.SubmitPaymentFn != nil {
		return f.SubmitPaymentFn(ctx, checkoutID, payload)
	}
	return models.PaymentResult{OrderID: "295", Status: "ACKNOWLEDGE"}, nil
}

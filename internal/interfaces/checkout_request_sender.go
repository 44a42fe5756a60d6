package interfaces

import (
	"context"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
)

// CheckoutRequestSender defines the contract for calls to the checkout backend.
// Failed calls are reported as errs.KindRequest or errs.KindTimeout errors.
type CheckoutRequestSender interface {
	LoadCheckout(ctx context.Context, checkoutID string) (models.Checkout, error)
	ApplyGiftCertificate(ctx context.Context, checkoutID, code string) (models.Checkout, error)
	RemoveGiftCertificate(ctx context.Context, checkoutID, code string) (models.Checkout, error)
	ApplyCoupon(ctx context.Context, checkoutID, code string) (models.Checkout, error)
	RemoveCoupon(ctx context.Context, checkoutID, code string) (models.Checkout, error)
	SignInCustomer(ctx context.Context, credentials models.Credentials) (models.Customer, error)
	SignOutCustomer(ctx context.Context) (models.Customer, error)
	SignOutRemote(ctx context.Context, providerID string) (models.Customer, error)
	LoadPaymentMethods(ctx context.Context, checkoutID string) ([]models.PaymentMethod, error)
	SubmitPayment(ctx context.Context, checkoutID string, payload models.PaymentPayload) (models.PaymentResult, error)
}

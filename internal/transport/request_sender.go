package transport

import (
	"context"

	"github.com/google/uuid"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
)

const (
	SubjectLoadCheckout          = "checkout.load"
	SubjectApplyGiftCertificate  = "checkout.gift_certificate.apply"
	SubjectRemoveGiftCertificate = "checkout.gift_certificate.remove"
	SubjectApplyCoupon           = "checkout.coupon.apply"
	SubjectRemoveCoupon          = "checkout.coupon.remove"
	SubjectSignIn                = "customer.sign_in"
	SubjectSignOut               = "customer.sign_out"
	SubjectSignOutRemote         = "customer.remote.sign_out"
	SubjectPaymentMethods        = "payment.methods.list"
	SubjectSubmitPayment         = "payment.submit"
)

type checkoutRequest struct {
	CheckoutID string `json:"checkout_id"`
	Code       string `json:"code,omitempty"`
}

type submitRequest struct {
	CheckoutID     string                `json:"checkout_id"`
	IdempotencyKey string                `json:"idempotency_key"`
	Payment        models.PaymentPayload `json:"payment"`
}

type remoteRequest struct {
	ProviderID string `json:"provider_id"`
}

// RequestSender implements interfaces.CheckoutRequestSender over NATS.
type RequestSender struct {
	*client
}

func NewRequestSender(nc Requester, opts ...Option) *RequestSender {
	return &RequestSender{client: newClient(nc, opts...)}
}

func (s *RequestSender) LoadCheckout(ctx context.Context, checkoutID string) (models.Checkout, error) {
	var c models.Checkout
	err := s.query(ctx, SubjectLoadCheckout, checkoutRequest{CheckoutID: checkoutID}, &c)
	return c, err
}

func (s *RequestSender) ApplyGiftCertificate(ctx context.Context, checkoutID, code string) (models.Checkout, error) {
	var c models.Checkout
	err := s.request(ctx, SubjectApplyGiftCertificate, checkoutRequest{CheckoutID: checkoutID, Code: code}, &c)
	return c, err
}

func (s *RequestSender) RemoveGiftCertificate(ctx context.Context, checkoutID, code string) (models.Checkout, error) {
	var c models.Checkout
	err := s.request(ctx, SubjectRemoveGiftCertificate, checkoutRequest{CheckoutID: checkoutID, Code: code}, &c)
	return c, err
}

func (s *RequestSender) ApplyCoupon(ctx context.Context, checkoutID, code string) (models.Checkout, error) {
	var c models.Checkout
	err := s.request(ctx, SubjectApplyCoupon, checkoutRequest{CheckoutID: checkoutID, Code: code}, &c)
	return c, err
}

func (s *RequestSender) RemoveCoupon(ctx context.Context, checkoutID, code string) (models.Checkout, error) {
	var c models.Checkout
	err := s.request(ctx, SubjectRemoveCoupon, checkoutRequest{CheckoutID: checkoutID, Code: code}, &c)
	return c, err
}

func (s *RequestSender) SignInCustomer(ctx context.Context, credentials models.Credentials) (models.Customer, error) {
	var c models.Customer
	err := s.request(ctx, SubjectSignIn, credentials, &c)
	return c, err
}

func (s *RequestSender) SignOutCustomer(ctx context.Context) (models.Customer, error) {
	var c models.Customer
	err := s.request(ctx, SubjectSignOut, struct{}{}, &c)
	return c, err
}

func (s *RequestSender) SignOutRemote(ctx context.Context, providerID string) (models.Customer, error) {
	var c models.Customer
	err := s.request(ctx, SubjectSignOutRemote, remoteRequest{ProviderID: providerID}, &c)
	return c, err
}

func (s *RequestSender) LoadPaymentMethods(ctx context.Context, checkoutID string) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := s.query(ctx, SubjectPaymentMethods, checkoutRequest{CheckoutID: checkoutID}, &methods)
	return methods, err
}

// SubmitPayment sends the payment once per call. The idempotency key is shared
// by every attempt of the call so the backend can drop duplicates.
func (s *RequestSender) SubmitPayment(ctx context.Context, checkoutID string, payload models.PaymentPayload) (models.PaymentResult, error) {
	var r models.PaymentResult
	req := submitRequest{CheckoutID: checkoutID, IdempotencyKey: uuid.NewString(), Payment: payload}
	err := s.request(ctx, SubjectSubmitPayment, req, &r)
	return r, err
}

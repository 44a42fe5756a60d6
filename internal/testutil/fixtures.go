package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
)

const CheckoutID = "b20deef40f9699e48671bbc3fef6ca44dc80e3c7"

func Customer() models.Customer {
	return models.Customer{
		ID:          4,
		Email:       "foo@bar.com",
		FirstName:   "Foo",
		LastName:    "Bar",
		FullName:    "Foo Bar",
		StoreCredit: decimal.Zero,
	}
}

func GuestCustomer() models.Customer {
	return models.Customer{IsGuest: true}
}

func GiftCertificates() []models.GiftCertificate {
	return []models.GiftCertificate{
		{Code: "gc", Balance: decimal.RequireFromString("7"), Used: decimal.RequireFromString("7"), Remain: decimal.Zero},
		{Code: "gc2", Balance: decimal.RequireFromString("2"), Used: decimal.RequireFromString("2"), Remain: decimal.Zero},
	}
}

func Coupons() []models.Coupon {
	return []models.Coupon{
		{ID: "1", Code: "savebig2015", DisplayName: "20% off each item", CouponType: "percentage_discount", DiscountedBy: decimal.RequireFromString("3")},
	}
}

// Checkout returns a checkout without gift certificates or coupons.
func Checkout() models.Checkout {
	return models.Checkout{
		ID:               CheckoutID,
		CartID:           "cart-1",
		Currency:         "USD",
		Customer:         Customer(),
		BillingAddress:   &models.Address{FirstName: "Test", LastName: "Tester", City: "Some City", CountryCode: "US"},
		GiftCertificates: []models.GiftCertificate{},
		Coupons:          []models.Coupon{},
		SubTotal:         decimal.RequireFromString("200"),
		GrandTotal:       decimal.RequireFromString("190"),
		OutstandingTotal: decimal.RequireFromString("190"),
		UpdatedAt:        time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func CheckoutWithGiftCertificates() models.Checkout {
	c := Checkout()
	c.GiftCertificates = GiftCertificates()
	c.OutstandingTotal = decimal.RequireFromString("181")
	return c
}

func CheckoutWithCoupons() models.Checkout {
	c := Checkout()
	c.Coupons = Coupons()
	return c
}

func PaymentMethods() []models.PaymentMethod {
	return []models.PaymentMethod{
		{ID: "googlepay", Method: "googlepay", InitializationData: map[string]string{"merchant_id": "m-1"}},
		{ID: "googlepayadyenv2", GatewayID: "adyenv2", Method: "googlepay"},
		{ID: "creditcard", Method: "credit-card", SupportedCards: []string{"VISA", "MC"}},
		{ID: "cheque", Method: "offline"},
	}
}

func ErrorResponse() *errs.Response {
	return &errs.Response{
		Status:     400,
		StatusText: "Bad Request",
		Body:       map[string]any{"title": "Invalid gift certificate code.", "type": "invalid_gift_certificate"},
	}
}

func RequestError() error {
	return errs.Request(ErrorResponse())
}

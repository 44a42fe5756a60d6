package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Checkout struct {
	ID               string            `json:"id"`
	CartID           string            `json:"cart_id"`
	Currency         string            `json:"currency"`
	Customer         Customer          `json:"customer"`
	BillingAddress   *Address          `json:"billing_address,omitempty"`
	GiftCertificates []GiftCertificate `json:"gift_certificates"`
	Coupons          []Coupon          `json:"coupons"`
	SubTotal         decimal.Decimal   `json:"sub_total"`
	GrandTotal       decimal.Decimal   `json:"grand_total"`
	OutstandingTotal decimal.Decimal   `json:"outstanding_total"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

type GiftCertificate struct {
	Code    string          `json:"code"`
	Balance decimal.Decimal `json:"balance"`
	Used    decimal.Decimal `json:"used"`
	Remain  decimal.Decimal `json:"remaining"`
	Purpose string          `json:"purpose,omitempty"`
}

type Coupon struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	DisplayName  string          `json:"display_name"`
	CouponType   string          `json:"coupon_type"`
	DiscountedBy decimal.Decimal `json:"discounted_by"`
}

type Customer struct {
	ID          int64           `json:"id"`
	Email       string          `json:"email"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	FullName    string          `json:"full_name"`
	IsGuest     bool            `json:"is_guest"`
	StoreCredit decimal.Decimal `json:"store_credit"`
	Addresses   []Address       `json:"addresses,omitempty"`
}

type Address struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email,omitempty"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"`
}

// Credentials are supplied by a shopper signing in with the store account.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DisplayName falls back to the billing address when the customer record is
// incomplete.
func (c Customer) DisplayName(billing *Address) string {
	if c.FullName != "" {
		return c.FullName
	}
	first, last := c.FirstName, c.LastName
	if billing != nil {
		if first == "" {
			first = billing.FirstName
		}
		if last == "" {
			last = billing.LastName
		}
	}
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}

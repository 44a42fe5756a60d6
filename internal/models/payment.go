package models

import "github.com/shopspring/decimal"

type PaymentMethod struct {
	ID                 string            `json:"id"`
	GatewayID          string            `json:"gateway,omitempty"`
	Method             string            `json:"method"`
	SupportedCards     []string          `json:"supported_cards,omitempty"`
	TestMode           bool              `json:"test_mode"`
	ClientToken        string            `json:"client_token,omitempty"`
	InitializationData map[string]string `json:"initialization_data,omitempty"`
}

// PaymentInfo is what the checkout knows about the payment in progress.
type PaymentInfo struct {
	ProviderID string `json:"provider_id,omitempty"`
	GatewayID  string `json:"gateway_id,omitempty"`
	Nonce      string `json:"nonce,omitempty"`
	OrderID    string `json:"order_id,omitempty"`
	Status     string `json:"status,omitempty"`
}

type CreditCardInstrument struct {
	CardholderName string `json:"cardholder_name"`
	Number         string `json:"number"`
	ExpiryMonth    string `json:"expiry_month"`
	ExpiryYear     string `json:"expiry_year"`
	Verification   string `json:"verification_value,omitempty"`
}

// PaymentPayload is submitted to the checkout backend when placing a payment.
type PaymentPayload struct {
	MethodID   string                `json:"method_id"`
	GatewayID  string                `json:"gateway_id,omitempty"`
	Nonce      string                `json:"nonce,omitempty"`
	CreditCard *CreditCardInstrument `json:"credit_card,omitempty"`
	Amount     decimal.Decimal       `json:"amount"`
	Currency   string                `json:"currency"`
}

// PaymentResult is the backend's answer to a submitted payment.
type PaymentResult struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// WalletPaymentData is returned by a wallet sheet once the shopper approves it.
type WalletPaymentData struct {
	Nonce           string   `json:"nonce"`
	CardLastFour    string   `json:"card_last_four,omitempty"`
	Email           string   `json:"email,omitempty"`
	ShippingAddress *Address `json:"shipping_address,omitempty"`
	BillingAddress  *Address `json:"billing_address,omitempty"`
}

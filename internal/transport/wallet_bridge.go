package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/provider"
)

type walletRequest struct {
	MethodID        string                    `json:"method_id"`
	CheckoutID      string                    `json:"checkout_id,omitempty"`
	ButtonID        string                    `json:"button_id,omitempty"`
	Color           string                    `json:"color,omitempty"`
	PaymentData     *models.WalletPaymentData `json:"payment_data,omitempty"`
	ShippingAddress *models.Address           `json:"shipping_address,omitempty"`
}

// WalletBridge implements provider.WalletProcessor by forwarding every call to
// the wallet service responsible for the method, on subjects wallet.<method>.<call>.
type WalletBridge struct {
	*client
	checkoutID string

	mu       sync.Mutex
	methodID string
}

func NewWalletBridge(nc Requester, checkoutID string, opts ...Option) *WalletBridge {
	return &WalletBridge{client: newClient(nc, opts...), checkoutID: checkoutID}
}

func (b *WalletBridge) subject(call string) (string, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.methodID == "" {
		return "", "", fmt.Errorf("wallet bridge used before initialize")
	}
	return fmt.Sprintf("wallet.%s.%s", b.methodID, call), b.methodID, nil
}

func (b *WalletBridge) Initialize(ctx context.Context, methodID string) error {
	b.mu.Lock()
	b.methodID = methodID
	b.mu.Unlock()
	return b.request(ctx, fmt.Sprintf("wallet.%s.initialize", methodID), walletRequest{MethodID: methodID, CheckoutID: b.checkoutID}, nil)
}

func (b *WalletBridge) CreateButton(ctx context.Context, opts provider.ButtonOptions) (*provider.Button, error) {
	subject, methodID, err := b.subject("button")
	if err != nil {
		return nil, err
	}
	id := "wallet-button-" + uuid.NewString()
	if err := b.request(ctx, subject, walletRequest{MethodID: methodID, ButtonID: id, Color: opts.Color}, nil); err != nil {
		return nil, err
	}
	return provider.NewButton(id, opts.OnClick), nil
}

func (b *WalletBridge) DisplayWallet(ctx context.Context) (models.WalletPaymentData, error) {
	var data models.WalletPaymentData
	subject, methodID, err := b.subject("display")
	if err != nil {
		return data, err
	}
	err = b.request(ctx, subject, walletRequest{MethodID: methodID, CheckoutID: b.checkoutID}, &data)
	return data, err
}

func (b *WalletBridge) HandleSuccess(ctx context.Context, data models.WalletPaymentData) error {
	subject, methodID, err := b.subject("success")
	if err != nil {
		return err
	}
	return b.request(ctx, subject, walletRequest{MethodID: methodID, CheckoutID: b.checkoutID, PaymentData: &data}, nil)
}

func (b *WalletBridge) UpdateShippingAddress(ctx context.Context, address *models.Address) error {
	subject, methodID, err := b.subject("shipping")
	if err != nil {
		return err
	}
	return b.request(ctx, subject, walletRequest{MethodID: methodID, CheckoutID: b.checkoutID, ShippingAddress: address}, nil)
}

func (b *WalletBridge) Deinitialize(ctx context.Context) error {
	subject, methodID, err := b.subject("deinitialize")
	if err != nil {
		return nil
	}
	err = b.request(ctx, subject, walletRequest{MethodID: methodID, CheckoutID: b.checkoutID}, nil)
	b.mu.Lock()
	b.methodID = ""
	b.mu.Unlock()
	return err
}

package testutil

import (
	"context"
	"sync"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/provider"
)

// FakeProcessor is an in-memory WalletProcessor that records its calls.
type FakeProcessor struct {
	mu    sync.Mutex
	calls map[string]int

	InitializedWith []string
	LastButton      *provider.Button

	InitializeErr   error
	CreateButtonErr error
	DisplayWalletFn func(ctx context.Context) (models.WalletPaymentData, error)
}

func (p *FakeProcessor) record(name string) {
	if p.calls == nil {
		p.calls = make(map[string]int)
	}
	p.calls[name]++
}

func (p *FakeProcessor) Calls(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[name]
}

func (p *FakeProcessor) Initialize(_ context.Context, methodID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("Initialize")
	p.InitializedWith = append(p.InitializedWith, methodID)
	return p.InitializeErr
}

func (p *FakeProcessor) CreateButton(_ context.Context, opts provider.ButtonOptions) (*provider.Button, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("CreateButton")
	if p.CreateButtonErr != nil {
		return nil, p.CreateButtonErr
	}
	p.LastButton = provider.NewButton("mockButton", opts.OnClick)
	return p.LastButton, nil
}

func (p *FakeProcessor) DisplayWallet(ctx context.Context) (models.WalletPaymentData, error) {
	p.mu.Lock()
	p.record("DisplayWallet")
	fn := p.DisplayWalletFn
	p.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return WalletPaymentData(), nil
}

func (p *FakeProcessor) HandleSuccess(context.Context, models.WalletPaymentData) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("HandleSuccess")
	return nil
}

func (p *FakeProcessor) UpdateShippingAddress(context.Context, *models.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("UpdateShippingAddress")
	return nil
}

func (p *FakeProcessor) Deinitialize(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("Deinitialize")
	return nil
}

func WalletPaymentData() models.WalletPaymentData {
	return models.WalletPaymentData{
		Nonce:           "nonce",
		CardLastFour:    "1111",
		Email:           "foo@bar.com",
		ShippingAddress: &models.Address{FirstName: "Test", LastName: "Tester", City: "Some City", CountryCode: "US"},
	}
}

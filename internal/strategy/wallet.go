package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/provider"
)

// ValidateWalletOptions checks the options of a wallet-button strategy.
func ValidateWalletOptions(opts InitializeOptions) error {
	if strings.TrimSpace(opts.MethodID) == "" {
		return errs.InvalidArgument(`Unable to proceed because "methodId" argument is not provided.`)
	}
	if opts.Wallet == nil {
		return errs.InvalidArgument(fmt.Sprintf(`Unable to proceed because "%s" argument is not provided.`, opts.MethodID))
	}
	if strings.TrimSpace(opts.Wallet.Container) == "" {
		return errs.InvalidArgument(fmt.Sprintf(`Unable to proceed because "%s.container" argument is not provided.`, opts.MethodID))
	}
	return nil
}

// WalletMount owns a wallet button mounted into a container. It is not safe for
// concurrent use; callers run it inside a Lifecycle transition.
type WalletMount struct {
	document  provider.Document
	processor provider.WalletProcessor

	container provider.Container
	button    *provider.Button
}

func NewWalletMount(document provider.Document, processor provider.WalletProcessor) *WalletMount {
	return &WalletMount{document: document, processor: processor}
}

// Container resolves the configured container without touching the processor.
func (w *WalletMount) Container(opts InitializeOptions) (provider.Container, error) {
	if err := ValidateWalletOptions(opts); err != nil {
		return nil, err
	}
	c, ok := w.document.GetElementByID(opts.Wallet.Container)
	if !ok {
		return nil, errs.InvalidArgument(fmt.Sprintf(`Unable to create wallet button without valid container ID %q.`, opts.Wallet.Container))
	}
	return c, nil
}

// Mount initializes the processor and appends its button to container. A
// processor initialized before a failure is deinitialized again.
func (w *WalletMount) Mount(ctx context.Context, container provider.Container, opts InitializeOptions, onClick func(context.Context) error) error {
	if err := w.processor.Initialize(ctx, opts.MethodID); err != nil {
		return err
	}
	button, err := w.processor.CreateButton(ctx, provider.ButtonOptions{
		Color:   opts.Wallet.ButtonColor,
		OnClick: onClick,
	})
	if err == nil && button == nil {
		err = errs.New(errs.KindStandard, "Wallet processor did not create a button.")
	}
	if err != nil {
		_ = w.processor.Deinitialize(ctx)
		return err
	}
	container.AppendChild(button)
	w.container = container
	w.button = button
	return nil
}

// Unmount removes the button and deinitializes the processor.
func (w *WalletMount) Unmount(ctx context.Context) error {
	if w.container != nil && w.button != nil {
		w.container.RemoveChild(w.button)
	}
	w.container = nil
	w.button = nil
	return w.processor.Deinitialize(ctx)
}

func (w *WalletMount) Button() *provider.Button { return w.button }

// Authorize shows the wallet sheet and returns the payment it authorized.
func (w *WalletMount) Authorize(ctx context.Context, opts InitializeOptions) (models.PaymentInfo, error) {
	data, err := w.processor.DisplayWallet(ctx)
	if err != nil {
		return models.PaymentInfo{}, err
	}
	if err := w.processor.HandleSuccess(ctx, data); err != nil {
		return models.PaymentInfo{}, err
	}
	if data.ShippingAddress != nil {
		if err := w.processor.UpdateShippingAddress(ctx, data.ShippingAddress); err != nil {
			return models.PaymentInfo{}, err
		}
	}
	if data.Nonce == "" {
		return models.PaymentInfo{}, errs.MissingData("wallet payment token")
	}
	return models.PaymentInfo{
		ProviderID: opts.MethodID,
		GatewayID:  opts.GatewayID,
		Nonce:      data.Nonce,
	}, nil
}

package strategies

import (
	"context"

	"go.uber.org/zap"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/customer"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/payment"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/provider"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/state"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/strategy"
)

// GooglePayStrategy renders a Google Pay button. Clicking it authorizes a wallet
// payment, which is how the shopper signs in; sign-out ends the provider session.
type GooglePayStrategy struct {
	store     strategy.Dispatcher[state.State]
	customers *customer.ActionCreator
	payments  *payment.ActionCreator
	wallet    *strategy.WalletMount
	logger    *zap.Logger
	lifecycle strategy.Lifecycle
}

func NewGooglePayStrategy(
	store strategy.Dispatcher[state.State],
	customers *customer.ActionCreator,
	payments *payment.ActionCreator,
	processor provider.WalletProcessor,
	document provider.Document,
	logger *zap.Logger,
) *GooglePayStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GooglePayStrategy{
		store:     store,
		customers: customers,
		payments:  payments,
		wallet:    strategy.NewWalletMount(document, processor),
		logger:    logger,
	}
}

func (s *GooglePayStrategy) Initialize(ctx context.Context, opts strategy.InitializeOptions) (state.State, error) {
	if s.lifecycle.Active() {
		return s.store.GetState(), nil
	}
	container, err := s.wallet.Container(opts)
	if err != nil {
		return s.store.GetState(), err
	}
	if _, ok := s.store.GetState().PaymentMethods.Method(opts.MethodID, ""); !ok {
		return s.store.GetState(), errs.MissingData("payment method")
	}

	_, err = s.lifecycle.Initialize(func() error {
		return s.wallet.Mount(ctx, container, opts, s.handleWalletButtonClick(opts))
	})
	return s.store.GetState(), err
}

func (s *GooglePayStrategy) Execute(ctx context.Context, opts strategy.ExecuteOptions) (state.State, error) {
	switch opts.Operation {
	case strategy.OperationSignIn:
		return s.store.GetState(), errs.NotImplemented(
			`In order to sign in via Google Pay, the shopper must click on "Google Pay" button.`)

	case strategy.OperationSignOut:
		providerID := s.store.GetState().Payment.ProviderID()
		if providerID == "" {
			return s.store.GetState(), nil
		}
		return s.store.Dispatch(ctx, s.customers.SignOutRemote(providerID))
	}
	return s.store.GetState(), unsupported(opts.Operation)
}

func (s *GooglePayStrategy) Deinitialize(ctx context.Context) (state.State, error) {
	_, err := s.lifecycle.Deinitialize(func() error {
		return s.wallet.Unmount(ctx)
	})
	return s.store.GetState(), err
}

func (s *GooglePayStrategy) handleWalletButtonClick(opts strategy.InitializeOptions) func(context.Context) error {
	return func(ctx context.Context) error {
		info, err := s.wallet.Authorize(ctx, opts)
		if err == nil {
			_, err = s.store.Dispatch(ctx, s.payments.AuthorizeWallet(info))
		}
		if err != nil {
			s.logger.Warn("Google Pay authorization failed",
				zap.String("method_id", opts.MethodID),
				zap.Error(err),
			)
			if opts.Wallet != nil && opts.Wallet.OnError != nil {
				opts.Wallet.OnError(err)
			}
		}
		return err
	}
}

package strategies

import (
	"context"

	"go.uber.org/zap"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/payment"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/provider"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/state"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/strategy"
)

// GooglePayStrategy renders a Google Pay button and submits the token the wallet
// hands back once the shopper approves the payment sheet.
type GooglePayStrategy struct {
	submitter
	wallet *strategy.WalletMount
	logger *zap.Logger
}

func NewGooglePayStrategy(
	store strategy.Dispatcher[state.State],
	payments *payment.ActionCreator,
	processor provider.WalletProcessor,
	document provider.Document,
	logger *zap.Logger,
) *GooglePayStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GooglePayStrategy{
		submitter: submitter{store: store, payments: payments},
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
	if _, ok := s.store.GetState().PaymentMethods.Method(opts.MethodID, opts.GatewayID); !ok {
		return s.store.GetState(), errs.MissingData("payment method")
	}

	_, err = s.lifecycle.Initialize(func() error {
		return s.wallet.Mount(ctx, container, opts, func(ctx context.Context) error {
			info, err := s.wallet.Authorize(ctx, opts)
			if err == nil {
				_, err = s.store.Dispatch(ctx, s.payments.AuthorizeWallet(info))
			}
			if err != nil {
				s.logger.Warn("Google Pay authorization failed", zap.String("method_id", opts.MethodID), zap.Error(err))
				if opts.Wallet.OnError != nil {
					opts.Wallet.OnError(err)
				}
			}
			return err
		})
	})
	return s.store.GetState(), err
}

func (s *GooglePayStrategy) Execute(ctx context.Context, opts strategy.ExecuteOptions) (state.State, error) {
	payload, err := s.preflight(opts)
	if err != nil {
		return s.store.GetState(), err
	}
	info := s.store.GetState().Payment.Data
	if info.ProviderID != opts.MethodID || info.Nonce == "" {
		return s.store.GetState(), errs.MissingData("Google Pay payment token")
	}
	payload.Nonce = info.Nonce
	payload.GatewayID = info.GatewayID
	payload.CreditCard = nil
	return s.submit(ctx, payload)
}

func (s *GooglePayStrategy) Deinitialize(ctx context.Context) (state.State, error) {
	_, err := s.lifecycle.Deinitialize(func() error {
		return s.wallet.Unmount(ctx)
	})
	return s.store.GetState(), err
}

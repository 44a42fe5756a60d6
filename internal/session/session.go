// Package session owns the per-checkout store together with the strategy
// registries and action creators bound to it.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/checkout"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/config"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/coupon"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/customer"
	customerstrategies "github.com/akylbek/payment-system/checkout-orchestrator/internal/customer/strategies"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/giftcertificate"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/interfaces"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/journal"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/payment"
	paymentstrategies "github.com/akylbek/payment-system/checkout-orchestrator/internal/payment/strategies"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/paymentmethod"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/provider"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/registry"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/state"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/store"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/strategy"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/telemetry"
)

const (
	teardownWorkers = 4
	releaseTimeout  = 5 * time.Second
)

// ProcessorFactory returns the wallet processor a wallet strategy of checkoutID
// talks to.
type ProcessorFactory func(checkoutID, methodID string) provider.WalletProcessor

type strategyRegistry = registry.Registry[strategy.Strategy[state.State]]

// Session is everything that lives as long as one checkout is open.
type Session struct {
	ID       string
	Store    *state.Store
	Document *provider.MemoryDocument

	Checkouts        *checkout.ActionCreator
	GiftCertificates *giftcertificate.ActionCreator
	Coupons          *coupon.ActionCreator
	Customers        *customer.ActionCreator
	Payments         *payment.ActionCreator
	PaymentMethods   *paymentmethod.ActionCreator

	CustomerStrategies *strategy.Runner[state.State]
	PaymentStrategies  *strategy.Runner[state.State]

	customerRegistry *strategyRegistry
	paymentRegistry  *strategyRegistry
	recorder         *journal.Recorder
	logger           *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

type sessionDeps struct {
	sender     interfaces.CheckoutRequestSender
	methods    config.Methods
	processors ProcessorFactory
	codec      *journal.Codec
	sinks      []journal.Sink
	metrics    *telemetry.Metrics
	logger     *zap.Logger
	tracer     trace.Tracer
}

func newSession(checkoutID string, deps sessionDeps) (*Session, error) {
	logger := deps.logger.With(zap.String("checkout_id", checkoutID))
	s := &Session{
		ID:               checkoutID,
		Document:         provider.NewMemoryDocument(deps.methods.Containers...),
		Checkouts:        checkout.NewActionCreator(deps.sender),
		GiftCertificates: giftcertificate.NewActionCreator(deps.sender),
		Coupons:          coupon.NewActionCreator(deps.sender),
		Customers:        customer.NewActionCreator(deps.sender),
		Payments:         payment.NewActionCreator(deps.sender),
		PaymentMethods:   paymentmethod.NewActionCreator(deps.sender),
		logger:           logger,
	}
	s.customerRegistry = registry.New(string(strategy.DomainCustomer), logger, registry.WithReleaser(s.releaseReplaced))
	s.paymentRegistry = registry.New(string(strategy.DomainPayment), logger, registry.WithReleaser(s.releaseReplaced))

	opts := []store.Option{store.WithLogger(logger), store.WithTracer(deps.tracer)}
	runnerOpts := []strategy.RunnerOption{strategy.WithRunnerLogger(logger), strategy.WithRunnerTracer(deps.tracer)}
	if deps.metrics != nil {
		opts = append(opts,
			store.WithMetrics(deps.metrics),
			store.WithObserver(telemetry.ActionObserver[state.State](deps.metrics)),
		)
		runnerOpts = append(runnerOpts, strategy.WithRunnerMetrics(deps.metrics))
	}
	if deps.codec != nil && len(deps.sinks) > 0 {
		s.recorder = journal.NewRecorder(checkoutID, deps.codec, logger, deps.sinks...)
		opts = append(opts, store.WithObserver(journal.Observer[state.State](s.recorder)))
	}
	s.Store = state.NewStore(opts...)
	s.CustomerStrategies = strategy.NewRunner(strategy.DomainCustomer, s.Store, s.customerRegistry, runnerOpts...)
	s.PaymentStrategies = strategy.NewRunner(strategy.DomainPayment, s.Store, s.paymentRegistry, runnerOpts...)

	if err := s.registerStrategies(deps); err != nil {
		s.closeRecorder()
		return nil, err
	}
	return s, nil
}

func (s *Session) registerStrategies(deps sessionDeps) error {
	processor := func(methodID string) (provider.WalletProcessor, error) {
		if deps.processors == nil {
			return nil, fmt.Errorf("no wallet processor configured for %q", methodID)
		}
		return deps.processors(s.ID, methodID), nil
	}
	for _, m := range deps.methods.Customer {
		var factory registry.Factory[strategy.Strategy[state.State]]
		switch m.Kind {
		case config.KindDefault:
			factory = func() (strategy.Strategy[state.State], error) {
				return customerstrategies.NewDefaultStrategy(s.Store, s.Customers), nil
			}
		case config.KindGooglePay:
			factory = func() (strategy.Strategy[state.State], error) {
				wallet, err := processor(m.ID)
				if err != nil {
					return nil, err
				}
				return customerstrategies.NewGooglePayStrategy(s.Store, s.Customers, s.Payments, wallet, s.Document, s.logger), nil
			}
		default:
			return fmt.Errorf("unknown customer strategy kind %q for %q", m.Kind, m.ID)
		}
		if err := s.customerRegistry.Register(m.ID, factory); err != nil {
			return err
		}
	}
	for _, m := range deps.methods.Payment {
		var factory registry.Factory[strategy.Strategy[state.State]]
		switch m.Kind {
		case config.KindCreditCard:
			factory = func() (strategy.Strategy[state.State], error) {
				return paymentstrategies.NewCreditCardStrategy(s.Store, s.Payments), nil
			}
		case config.KindOffline:
			factory = func() (strategy.Strategy[state.State], error) {
				return paymentstrategies.NewOfflineStrategy(s.Store, s.Payments), nil
			}
		case config.KindGooglePay:
			factory = func() (strategy.Strategy[state.State], error) {
				wallet, err := processor(m.ID)
				if err != nil {
					return nil, err
				}
				return paymentstrategies.NewGooglePayStrategy(s.Store, s.Payments, wallet, s.Document, s.logger), nil
			}
		default:
			return fmt.Errorf("unknown payment strategy kind %q for %q", m.Kind, m.ID)
		}
		if err := s.paymentRegistry.Register(m.ID, factory); err != nil {
			return err
		}
	}
	return nil
}

// Runner returns the strategy runner of domain.
func (s *Session) Runner(domain strategy.Domain) (*strategy.Runner[state.State], error) {
	switch domain {
	case strategy.DomainCustomer:
		return s.CustomerStrategies, nil
	case strategy.DomainPayment:
		return s.PaymentStrategies, nil
	}
	return nil, errs.InvalidArgument(fmt.Sprintf("Unknown strategy domain %q.", domain))
}

// Dispatch applies d to the session store.
func (s *Session) Dispatch(ctx context.Context, d store.Dispatchable) (state.State, error) {
	return s.Store.Dispatch(ctx, d)
}

// Close deinitializes every initialized strategy, closes the store and flushes
// the journal. It is safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		p := pool.New().WithErrors().WithMaxGoroutines(teardownWorkers)
		for _, runner := range []*strategy.Runner[state.State]{s.CustomerStrategies, s.PaymentStrategies} {
			reg := s.customerRegistry
			if runner.Domain() == strategy.DomainPayment {
				reg = s.paymentRegistry
			}
			slice := s.Store.GetState().Strategies(runner.Domain())
			for id := range reg.Instances() {
				if !slice.IsInitialized(id) {
					continue
				}
				p.Go(func() error {
					_, err := runner.Deinitialize(ctx, id)
					return err
				})
			}
		}
		s.closeErr = p.Wait()
		if s.closeErr != nil {
			s.logger.Warn("Strategy teardown failed", zap.Error(s.closeErr))
		}
		s.Store.Close()
		s.closeRecorder()
	})
	return s.closeErr
}

// releaseReplaced tears down a strategy instance whose registration was
// overwritten, since the runner can no longer reach it.
func (s *Session) releaseReplaced(methodID string, instance strategy.Strategy[state.State]) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	if _, err := instance.Deinitialize(ctx); err != nil {
		s.logger.Warn("Replaced strategy teardown failed", zap.String("method_id", methodID), zap.Error(err))
	}
}

func (s *Session) closeRecorder() {
	if s.recorder != nil {
		s.recorder.Close()
	}
}

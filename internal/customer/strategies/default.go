// Package strategies implements the customer sign-in strategies.
package strategies

import (
	"context"
	"fmt"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/customer"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/state"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/strategy"
)

// DefaultStrategy signs the shopper in and out with store credentials.
type DefaultStrategy struct {
	store     strategy.Dispatcher[state.State]
	customers *customer.ActionCreator
	lifecycle strategy.Lifecycle
}

func NewDefaultStrategy(store strategy.Dispatcher[state.State], customers *customer.ActionCreator) *DefaultStrategy {
	return &DefaultStrategy{store: store, customers: customers}
}

func (s *DefaultStrategy) Initialize(context.Context, strategy.InitializeOptions) (state.State, error) {
	_, err := s.lifecycle.Initialize(nil)
	return s.store.GetState(), err
}

func (s *DefaultStrategy) Execute(ctx context.Context, opts strategy.ExecuteOptions) (state.State, error) {
	if !s.lifecycle.Active() {
		return s.store.GetState(), errs.NotInitialized("the customer strategy")
	}
	switch opts.Operation {
	case strategy.OperationSignIn:
		return s.store.Dispatch(ctx, s.customers.SignIn(opts.Credentials))
	case strategy.OperationSignOut:
		return s.store.Dispatch(ctx, s.customers.SignOut())
	}
	return s.store.GetState(), unsupported(opts.Operation)
}

func (s *DefaultStrategy) Deinitialize(context.Context) (state.State, error) {
	_, err := s.lifecycle.Deinitialize(nil)
	return s.store.GetState(), err
}

func unsupported(op strategy.Operation) error {
	return errs.InvalidArgument(fmt.Sprintf("Customer strategies do not support the %q operation.", op))
}

package strategies

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/customer"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/payment"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/paymentmethod"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/provider"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/registry"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/state"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/strategy"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/testutil"
)

const (
	methodID    = "googlepayadyenv2"
	containerID = "googlePayCheckoutButton"
)

type fixture struct {
	store     *state.Store
	sender    *testutil.FakeSender
	processor *testutil.FakeProcessor
	document  *provider.MemoryDocument
	strategy  *GooglePayStrategy
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := state.NewStore()
	sender := &testutil.FakeSender{}
	_, err := s.Dispatch(context.Background(), paymentmethod.NewActionCreator(sender).LoadPaymentMethods(testutil.CheckoutID))
	require.NoError(t, err)

	f := &fixture{
		store:     s,
		sender:    sender,
		processor: &testutil.FakeProcessor{},
		document:  provider.NewMemoryDocument(containerID),
	}
	f.strategy = NewGooglePayStrategy(s, customer.NewActionCreator(sender), payment.NewActionCreator(sender), f.processor, f.document, nil)
	return f
}

func initializeOptions() strategy.InitializeOptions {
	return strategy.InitializeOptions{
		MethodID: methodID,
		Wallet:   &strategy.WalletOptions{Container: containerID},
	}
}

func (f *fixture) container(t *testing.T) provider.Container {
	t.Helper()
	c, ok := f.document.GetElementByID(containerID)
	require.True(t, ok)
	return c
}

func TestGooglePayInitializeCreatesButton(t *testing.T) {
	f := newFixture(t)

	_, err := f.strategy.Initialize(context.Background(), initializeOptions())
	require.NoError(t, err)
	require.Equal(t, 1, f.processor.Calls("CreateButton"))
	require.Equal(t, []string{methodID}, f.processor.InitializedWith)
	require.Equal(t, f.processor.LastButton, f.container(t).FirstChild())
}

func TestGooglePayInitializeRejectsInvalidOptions(t *testing.T) {
	cases := map[string]strategy.InitializeOptions{
		"incomplete options": {MethodID: methodID},
		"undefined method":   {Wallet: &strategy.WalletOptions{Container: containerID}},
		"invalid container":  {MethodID: methodID, Wallet: &strategy.WalletOptions{Container: "invalid_container"}},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.strategy.Initialize(context.Background(), opts)
			require.True(t, errs.Is(err, errs.KindInvalidArgument))
			require.Zero(t, f.processor.Calls("Initialize"))
		})
	}
}

func TestGooglePayInitializeRequiresLoadedMethod(t *testing.T) {
	f := newFixture(t)
	opts := initializeOptions()
	opts.MethodID = "applepay"

	_, err := f.strategy.Initialize(context.Background(), opts)
	require.True(t, errs.Is(err, errs.KindMissingData))
	require.Zero(t, f.processor.Calls("Initialize"))
}

func TestGooglePayInitializeTwiceAcquiresOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.strategy.Initialize(ctx, initializeOptions())
	require.NoError(t, err)
	_, err = f.strategy.Initialize(ctx, initializeOptions())
	require.NoError(t, err)

	require.Equal(t, 1, f.processor.Calls("CreateButton"))
	require.Len(t, f.container(t).Children(), 1)
}

func TestGooglePayDeinitializeRemovesButton(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.strategy.Initialize(ctx, initializeOptions())
	require.NoError(t, err)
	_, err = f.strategy.Deinitialize(ctx)
	require.NoError(t, err)

	require.Nil(t, f.container(t).FirstChild())
	require.Equal(t, 1, f.processor.Calls("Deinitialize"))
}

func TestGooglePayDeinitializeBeforeInitializeIsNoop(t *testing.T) {
	f := newFixture(t)

	_, err := f.strategy.Deinitialize(context.Background())
	require.NoError(t, err)
	require.Nil(t, f.container(t).FirstChild())
	require.Zero(t, f.processor.Calls("Deinitialize"))
}

func TestGooglePayReinitializeIsClean(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.strategy.Initialize(ctx, initializeOptions())
	require.NoError(t, err)
	_, err = f.strategy.Deinitialize(ctx)
	require.NoError(t, err)
	_, err = f.strategy.Initialize(ctx, initializeOptions())
	require.NoError(t, err)

	require.Len(t, f.container(t).Children(), 1)
	require.Equal(t, 2, f.processor.Calls("CreateButton"))
}

func TestGooglePaySignInIsNotImplemented(t *testing.T) {
	f := newFixture(t)
	_, err := f.strategy.Initialize(context.Background(), initializeOptions())
	require.NoError(t, err)

	_, err = f.strategy.Execute(context.Background(), strategy.ExecuteOptions{
		Operation:   strategy.OperationSignIn,
		MethodID:    methodID,
		Credentials: models.Credentials{Email: "foo@bar.com", Password: "foobar"},
	})
	require.True(t, errs.Is(err, errs.KindNotImplemented))
	require.Zero(t, f.sender.Calls("SignInCustomer"))
}

func TestGooglePaySignOutWithProvider(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var signedOut string
	f.sender.SignOutRemoteFn = func(_ context.Context, providerID string) (models.Customer, error) {
		signedOut = providerID
		return testutil.GuestCustomer(), nil
	}
	_, err := f.strategy.Initialize(ctx, initializeOptions())
	require.NoError(t, err)
	_, err = f.store.Dispatch(ctx, payment.NewActionCreator(f.sender).AuthorizeWallet(models.PaymentInfo{ProviderID: methodID, Nonce: "n"}))
	require.NoError(t, err)

	st, err := f.strategy.Execute(ctx, strategy.ExecuteOptions{Operation: strategy.OperationSignOut, MethodID: methodID})
	require.NoError(t, err)
	require.Equal(t, methodID, signedOut)
	require.True(t, st.Customer.Data.IsGuest)
	require.Empty(t, st.Payment.ProviderID())
}

func TestGooglePaySignOutWithoutProviderReturnsState(t *testing.T) {
	f := newFixture(t)

	st, err := f.strategy.Execute(context.Background(), strategy.ExecuteOptions{Operation: strategy.OperationSignOut, MethodID: methodID})
	require.NoError(t, err)
	require.Equal(t, f.store.GetState(), st)
	require.Zero(t, f.sender.Calls("SignOutRemote"))
}

func TestGooglePayWalletButtonClickAuthorizes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.Zero(t, f.processor.Calls("Initialize"))

	_, err := f.strategy.Initialize(ctx, initializeOptions())
	require.NoError(t, err)
	require.NoError(t, f.processor.LastButton.Click(ctx))

	require.Equal(t, []string{methodID}, f.processor.InitializedWith)
	require.Equal(t, 1, f.processor.Calls("DisplayWallet"))
	require.Equal(t, methodID, f.store.GetState().Payment.ProviderID())
	require.Equal(t, "nonce", f.store.GetState().Payment.Data.Nonce)
}

func TestGooglePayWalletButtonClickReportsErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cancelled := errors.New("sheet closed")
	f.processor.DisplayWalletFn = func(context.Context) (models.WalletPaymentData, error) {
		return models.WalletPaymentData{}, cancelled
	}
	var reported error
	opts := initializeOptions()
	opts.Wallet.OnError = func(err error) { reported = err }

	_, err := f.strategy.Initialize(ctx, opts)
	require.NoError(t, err)
	require.ErrorIs(t, f.processor.LastButton.Click(ctx), cancelled)
	require.ErrorIs(t, reported, cancelled)
	require.Empty(t, f.store.GetState().Payment.ProviderID())
}

func TestDefaultStrategyRequiresInitialize(t *testing.T) {
	sender := &testutil.FakeSender{}
	s := state.NewStore()
	strat := NewDefaultStrategy(s, customer.NewActionCreator(sender))
	creds := models.Credentials{Email: "foo@bar.com", Password: "foobar"}
	ctx := context.Background()

	_, err := strat.Execute(ctx, strategy.ExecuteOptions{Operation: strategy.OperationSignIn, Credentials: creds})
	require.True(t, errs.Is(err, errs.KindNotInitialized))

	_, err = strat.Initialize(ctx, strategy.InitializeOptions{MethodID: "default"})
	require.NoError(t, err)
	st, err := strat.Execute(ctx, strategy.ExecuteOptions{Operation: strategy.OperationSignIn, Credentials: creds})
	require.NoError(t, err)
	require.Equal(t, testutil.Customer(), st.Customer.Data)

	_, err = strat.Execute(ctx, strategy.ExecuteOptions{Operation: strategy.OperationSubmitPayment})
	require.True(t, errs.Is(err, errs.KindInvalidArgument))
}

func TestRunnerDrivesCustomerStrategies(t *testing.T) {
	f := newFixture(t)
	reg := registry.New[strategy.Strategy[state.State]]("customer", nil)
	require.NoError(t, reg.Register(methodID, func() (strategy.Strategy[state.State], error) { return f.strategy, nil }))
	runner := strategy.NewRunner[state.State](strategy.DomainCustomer, f.store, reg)
	ctx := context.Background()

	st, err := runner.Initialize(ctx, initializeOptions())
	require.NoError(t, err)
	require.True(t, st.CustomerStrategies.IsInitialized(methodID))

	st, err = runner.Execute(ctx, strategy.ExecuteOptions{Operation: strategy.OperationSignIn, MethodID: methodID})
	require.True(t, errs.Is(err, errs.KindNotImplemented))
	require.True(t, errs.Is(st.CustomerStrategies.Errors[methodID].ExecuteError, errs.KindNotImplemented))

	st, err = runner.Deinitialize(ctx, methodID)
	require.NoError(t, err)
	require.False(t, st.CustomerStrategies.IsInitialized(methodID))
	require.Nil(t, f.container(t).FirstChild())
}

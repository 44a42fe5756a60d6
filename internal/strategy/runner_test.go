package strategy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/registry"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeStrategy struct {
	lifecycle Lifecycle
	store     *store.Store[State]
	execErr   error
	executed  int
}

func (f *fakeStrategy) Initialize(_ context.Context, _ InitializeOptions) (State, error) {
	_, err := f.lifecycle.Initialize(nil)
	return f.store.GetState(), err
}

func (f *fakeStrategy) Execute(_ context.Context, _ ExecuteOptions) (State, error) {
	if !f.lifecycle.Active() {
		return f.store.GetState(), errs.NotInitialized("the payment strategy")
	}
	f.executed++
	return f.store.GetState(), f.execErr
}

func (f *fakeStrategy) Deinitialize(context.Context) (State, error) {
	_, err := f.lifecycle.Deinitialize(nil)
	return f.store.GetState(), err
}

type recordingOps struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingOps) ObserveStrategyOperation(_, operation, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, operation+":"+outcome)
}

type runnerFixture struct {
	runner   *Runner[State]
	strategy *fakeStrategy
	types    *[]store.ActionType
	ops      *recordingOps
}

func newRunnerFixture(t *testing.T) runnerFixture {
	t.Helper()
	var types []store.ActionType
	s := store.New(InitialState(), Reducer(DomainPayment), store.WithObserver(store.Observer[State](func(a store.Action, _, _ State) {
		types = append(types, a.Type)
	})))
	fake := &fakeStrategy{store: s}
	reg := registry.New[Strategy[State]]("payment_method", nil)
	require.NoError(t, reg.Register("creditcard", func() (Strategy[State], error) { return fake, nil }))
	ops := &recordingOps{}

	return runnerFixture{
		runner:   NewRunner[State](DomainPayment, s, reg, WithRunnerMetrics(ops)),
		strategy: fake,
		types:    &types,
		ops:      ops,
	}
}

func TestRunnerInitializeDispatchesTriad(t *testing.T) {
	f := newRunnerFixture(t)

	state, err := f.runner.Initialize(context.Background(), InitializeOptions{MethodID: "creditcard"})
	require.NoError(t, err)
	require.True(t, state.IsInitialized("creditcard"))
	require.Equal(t, []store.ActionType{PaymentTypes.Initialize.Requested, PaymentTypes.Initialize.Succeeded}, *f.types)
	require.Equal(t, []string{"initialize:succeeded"}, f.ops.outcomes)
}

func TestRunnerConfigurationErrorsDispatchNothing(t *testing.T) {
	f := newRunnerFixture(t)

	_, err := f.runner.Initialize(context.Background(), InitializeOptions{})
	require.True(t, errs.Is(err, errs.KindInvalidArgument))

	_, err = f.runner.Execute(context.Background(), ExecuteOptions{MethodID: "paypal"})
	require.True(t, errs.Is(err, errs.KindNotRegistrable))
	require.Contains(t, err.Error(), "paypal")

	require.Empty(t, *f.types)
	require.Empty(t, f.ops.outcomes)
}

func TestRunnerExecuteBeforeInitializeFails(t *testing.T) {
	f := newRunnerFixture(t)

	state, err := f.runner.Execute(context.Background(), ExecuteOptions{Operation: OperationSubmitPayment, MethodID: "creditcard"})
	require.True(t, errs.Is(err, errs.KindNotInitialized))
	require.False(t, state.IsExecuting("creditcard"))
	require.True(t, errs.Is(state.Errors["creditcard"].ExecuteError, errs.KindNotInitialized))
	require.Zero(t, f.strategy.executed)
	require.Equal(t, []store.ActionType{PaymentTypes.Execute.Requested, PaymentTypes.Execute.Failed}, *f.types)
}

func TestRunnerExecuteFailureIsRecorded(t *testing.T) {
	f := newRunnerFixture(t)
	f.strategy.execErr = errors.New("declined")
	_, err := f.runner.Initialize(context.Background(), InitializeOptions{MethodID: "creditcard"})
	require.NoError(t, err)

	_, err = f.runner.Execute(context.Background(), ExecuteOptions{Operation: OperationSubmitPayment, MethodID: "creditcard"})
	require.EqualError(t, err, "declined")
	require.Equal(t, []string{"initialize:succeeded", "execute:failed"}, f.ops.outcomes)
}

func TestRunnerDeinitializeThenReinitialize(t *testing.T) {
	f := newRunnerFixture(t)
	ctx := context.Background()

	_, err := f.runner.Deinitialize(ctx, "creditcard")
	require.NoError(t, err)

	_, err = f.runner.Initialize(ctx, InitializeOptions{MethodID: "creditcard"})
	require.NoError(t, err)
	state, err := f.runner.Deinitialize(ctx, "creditcard")
	require.NoError(t, err)
	require.False(t, state.IsInitialized("creditcard"))

	state, err = f.runner.Initialize(ctx, InitializeOptions{MethodID: "creditcard"})
	require.NoError(t, err)
	require.True(t, state.IsInitialized("creditcard"))
	require.True(t, f.strategy.lifecycle.Active())
}

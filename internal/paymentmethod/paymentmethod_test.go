package paymentmethod

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/store"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/testutil"
)

func TestReduceLoadLifecycle(t *testing.T) {
	state := Reduce(InitialState(), store.NewAction(LoadPaymentMethodsRequested, nil))
	require.True(t, state.Statuses.IsLoading)

	state = Reduce(state, store.NewAction(LoadPaymentMethodsSucceeded, testutil.PaymentMethods()))
	require.False(t, state.Statuses.IsLoading)
	require.Len(t, state.Data, 4)

	failure := errors.New("down")
	failed := Reduce(state, store.NewErrorAction(LoadPaymentMethodsFailed, failure))
	require.Equal(t, state.Data, failed.Data)
	require.Equal(t, failure, failed.Errors.LoadError)
}

func TestMethodLookup(t *testing.T) {
	state := Reduce(InitialState(), store.NewAction(LoadPaymentMethodsSucceeded, testutil.PaymentMethods()))

	m, ok := state.Method("googlepayadyenv2", "adyenv2")
	require.True(t, ok)
	require.Equal(t, "googlepay", m.Method)

	_, ok = state.Method("googlepayadyenv2", "stripe")
	require.False(t, ok)

	_, ok = state.Method("missing", "")
	require.False(t, ok)
}

func TestActionCreatorLoad(t *testing.T) {
	sender := &testutil.FakeSender{
		LoadPaymentMethodsFn: func(context.Context, string) ([]models.PaymentMethod, error) {
			return testutil.PaymentMethods()[:1], nil
		},
	}
	var last store.Action

	err := NewActionCreator(sender).LoadPaymentMethods(testutil.CheckoutID).Produce(context.Background(), func(a store.Action) {
		last = a
	})
	require.NoError(t, err)
	require.Equal(t, LoadPaymentMethodsSucceeded, last.Type)
	require.Len(t, last.Payload, 1)
}

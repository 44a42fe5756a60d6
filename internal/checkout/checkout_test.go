package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/store"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/testutil"
)

func TestReduceLoadTriad(t *testing.T) {
	state := Reduce(InitialState(), store.NewAction(LoadCheckoutRequested, nil))
	require.True(t, state.Statuses.IsLoading)
	require.Nil(t, state.Data)

	state = Reduce(state, store.NewAction(LoadCheckoutSucceeded, testutil.Checkout()))
	require.False(t, state.Statuses.IsLoading)
	require.Equal(t, testutil.CheckoutID, state.Data.ID)

	failure := testutil.RequestError()
	state = Reduce(state, store.NewErrorAction(LoadCheckoutFailed, failure))
	require.Equal(t, failure, state.Errors.LoadError)
	require.NotNil(t, state.Data)
}

func TestReplaceIgnoresOtherPayloads(t *testing.T) {
	prev := Replace(InitialState(), testutil.Checkout())

	require.Equal(t, prev, Replace(prev, "not a checkout"))
	require.Equal(t, prev, Replace(prev, nil))
}

func TestReplaceDoesNotAliasPreviousSnapshot(t *testing.T) {
	first := Replace(InitialState(), testutil.Checkout())
	updated := testutil.Checkout()
	updated.Currency = "EUR"

	second := Replace(first, updated)
	require.Equal(t, "USD", first.Data.Currency)
	require.Equal(t, "EUR", second.Data.Currency)
}

func TestLoadCheckoutEmitsTriadWithMeta(t *testing.T) {
	sender := &testutil.FakeSender{}
	var emitted []store.Action

	err := NewActionCreator(sender).LoadCheckout(testutil.CheckoutID).Produce(context.Background(), func(a store.Action) {
		emitted = append(emitted, a)
	})
	require.NoError(t, err)
	require.Len(t, emitted, 2)
	require.Equal(t, LoadCheckoutRequested, emitted[0].Type)
	require.Equal(t, testutil.CheckoutID, emitted[1].Meta[MetaCheckoutID])
	require.IsType(t, models.Checkout{}, emitted[1].Payload)
}

func TestLoadCheckoutRequiresID(t *testing.T) {
	err := NewActionCreator(&testutil.FakeSender{}).LoadCheckout(" ").Produce(context.Background(), func(store.Action) {
		t.Fatal("no action expected")
	})
	require.True(t, errs.Is(err, errs.KindInvalidArgument))
}

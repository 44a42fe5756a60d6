package payment

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/customer"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/store"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/strategy"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/testutil"
)

func walletInfo() models.PaymentInfo {
	return models.PaymentInfo{ProviderID: "googlepay", Nonce: "nonce-1"}
}

func TestReduceWalletAuthorizedStoresInfo(t *testing.T) {
	creator := NewActionCreator(&testutil.FakeSender{})

	state := Reduce(InitialState(), creator.AuthorizeWallet(walletInfo()))
	require.Equal(t, "googlepay", state.ProviderID())
	require.Equal(t, "nonce-1", state.Data.Nonce)
}

func TestReduceSubmitSucceededKeepsProvider(t *testing.T) {
	state := Reduce(InitialState(), store.NewAction(WalletAuthorized, walletInfo()))
	state = Reduce(state, store.NewAction(SubmitPaymentRequested, nil))
	require.True(t, state.Statuses.IsSubmitting)

	state = Reduce(state, store.NewAction(SubmitPaymentSucceeded, models.PaymentResult{OrderID: "295", Status: "ACKNOWLEDGE"}))
	require.False(t, state.Statuses.IsSubmitting)
	require.Equal(t, "295", state.Data.OrderID)
	require.Equal(t, "googlepay", state.Data.ProviderID)
}

func TestReduceSubmitFailed(t *testing.T) {
	failure := testutil.RequestError()
	state := Reduce(InitialState(), store.NewErrorAction(SubmitPaymentFailed, failure))
	require.Equal(t, failure, state.Errors.SubmitError)
	require.Equal(t, models.PaymentInfo{}, state.Data)
}

func TestReduceRemoteSignOutClearsPayment(t *testing.T) {
	state := Reduce(InitialState(), store.NewAction(WalletAuthorized, walletInfo()))

	state = Reduce(state, store.NewAction(customer.SignOutRemoteSucceeded, testutil.GuestCustomer()))
	require.Empty(t, state.ProviderID())
}

func TestActionCreatorSubmitPayment(t *testing.T) {
	sender := &testutil.FakeSender{}
	payload := models.PaymentPayload{MethodID: "cheque", Amount: decimal.RequireFromString("190"), Currency: "USD"}
	var types []store.ActionType
	var methods []string

	err := NewActionCreator(sender).SubmitPayment(testutil.CheckoutID, payload).Produce(context.Background(), func(a store.Action) {
		types = append(types, a.Type)
		methods = append(methods, a.Meta[strategy.MetaMethodID])
	})
	require.NoError(t, err)
	require.Equal(t, []store.ActionType{SubmitPaymentRequested, SubmitPaymentSucceeded}, types)
	require.Equal(t, []string{"cheque", "cheque"}, methods)
}

func TestActionCreatorSubmitRequiresMethod(t *testing.T) {
	sender := &testutil.FakeSender{}

	err := NewActionCreator(sender).SubmitPayment(testutil.CheckoutID, models.PaymentPayload{}).Produce(context.Background(), func(store.Action) {
		t.Fatal("no action expected")
	})
	require.True(t, errs.Is(err, errs.KindInvalidArgument))
	require.Zero(t, sender.Calls("SubmitPayment"))
}

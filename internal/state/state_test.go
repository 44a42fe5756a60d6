package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/checkout"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/giftcertificate"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/journal"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/models"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/store"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLoadCheckoutFansOutWithoutTouchingStatuses(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	sender := &testutil.FakeSender{}

	_, err := s.Dispatch(ctx, store.NewAction(giftcertificate.ApplyGiftCertificateRequested, nil))
	require.NoError(t, err)
	before := s.GetState()

	state, err := s.Dispatch(ctx, checkout.NewActionCreator(sender).LoadCheckout(testutil.CheckoutID))
	require.NoError(t, err)

	require.Equal(t, testutil.GiftCertificates(), state.GiftCertificates.Data)
	require.Equal(t, before.GiftCertificates.Statuses, state.GiftCertificates.Statuses)
	require.Equal(t, before.GiftCertificates.Errors, state.GiftCertificates.Errors)
	require.Equal(t, testutil.Customer(), state.Customer.Data)
	require.Equal(t, before.Customer.Statuses, state.Customer.Statuses)
	require.Equal(t, testutil.CheckoutID, state.CheckoutID())
	require.False(t, state.Checkout.Statuses.IsLoading)
}

func TestApplyGiftCertificateUpdatesCheckout(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	creator := giftcertificate.NewActionCreator(&testutil.FakeSender{})
	var updating []bool
	unsubscribe := s.Subscribe(func(st State) {
		updating = append(updating, st.Checkout.Statuses.IsUpdating)
	}, func(st State) any { return st.Checkout.Statuses.IsUpdating })
	defer unsubscribe()

	state, err := s.Dispatch(ctx, creator.ApplyGiftCertificate(testutil.CheckoutID, "gc"))
	require.NoError(t, err)
	require.Len(t, state.GiftCertificates.Data, 2)
	require.Equal(t, "181", state.Checkout.Data.OutstandingTotal.String())
	require.Equal(t, []bool{false, true, false}, updating)
}

func TestFailedApplyLeavesOtherSlicesAlone(t *testing.T) {
	failure := testutil.RequestError()
	sender := &testutil.FakeSender{
		ApplyGiftCertificateFn: func(context.Context, string, string) (models.Checkout, error) {
			return models.Checkout{}, failure
		},
	}
	s := NewStore()
	initial := s.GetState()

	state, err := s.Dispatch(context.Background(), giftcertificate.NewActionCreator(sender).ApplyGiftCertificate(testutil.CheckoutID, "bad"))
	require.ErrorIs(t, err, failure)
	require.Equal(t, failure, state.GiftCertificates.Errors.ApplyGiftCertificateError)
	require.Equal(t, initial.Coupons, state.Coupons)
	require.Equal(t, initial.Customer, state.Customer)
	require.Nil(t, state.Checkout.Data)
}

func TestReplayFromJournalMatchesLiveState(t *testing.T) {
	codec := journal.NewCodec()
	RegisterPayloads(codec)
	var records []models.ActionRecord
	s := NewStore(store.WithObserver(store.Observer[State](func(a store.Action, _, _ State) {
		rec, err := codec.Encode(testutil.CheckoutID, int64(len(records)+1), a)
		require.NoError(t, err)
		records = append(records, rec)
	})))
	sender := &testutil.FakeSender{}
	ctx := context.Background()

	_, err := s.Dispatch(ctx, checkout.NewActionCreator(sender).LoadCheckout(testutil.CheckoutID))
	require.NoError(t, err)
	_, err = s.Dispatch(ctx, giftcertificate.NewActionCreator(sender).RemoveGiftCertificate(testutil.CheckoutID, "gc"))
	require.NoError(t, err)

	actions := make([]store.Action, 0, len(records))
	for _, rec := range records {
		a, err := codec.Decode(rec)
		require.NoError(t, err)
		actions = append(actions, a)
	}
	replayed := store.Replay(Initial(), Reduce, actions)

	live := s.GetState()
	require.Equal(t, live.GiftCertificates.Data, replayed.GiftCertificates.Data)
	require.Equal(t, live.Customer.Data.Email, replayed.Customer.Data.Email)
	require.Equal(t, live.CheckoutID(), replayed.CheckoutID())
}

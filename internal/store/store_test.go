package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	addRequested ActionType = "ADD_REQUESTED"
	addSucceeded ActionType = "ADD_SUCCEEDED"
	addFailed    ActionType = "ADD_FAILED"
	renamed      ActionType = "RENAMED"
)

var addTriad = Triad{Requested: addRequested, Succeeded: addSucceeded, Failed: addFailed}

type testState struct {
	Items    []int
	Name     string
	IsAdding bool
	AddError error
}

func reduceTest(prev testState, a Action) testState {
	switch a.Type {
	case addRequested:
		prev.IsAdding = true
		prev.AddError = nil
	case addSucceeded:
		items := make([]int, 0, len(prev.Items)+1)
		items = append(items, prev.Items...)
		prev.Items = append(items, a.Payload.(int))
		prev.IsAdding = false
		prev.AddError = nil
	case addFailed:
		prev.IsAdding = false
		prev.AddError = a.Error
	case renamed:
		prev.Name = a.Payload.(string)
	}
	return prev
}

func newTestStore(opts ...Option) *Store[testState] {
	return New(testState{}, reduceTest, opts...)
}

func add(n int, err error) Thunk {
	return addTriad.Run(nil, func(context.Context) (any, error) {
		if err != nil {
			return nil, err
		}
		return n, nil
	})
}

func TestDispatchSingleAction(t *testing.T) {
	s := newTestStore()

	state, err := s.Dispatch(context.Background(), NewAction(renamed, "cart"))
	require.NoError(t, err)
	require.Equal(t, "cart", state.Name)
	require.Equal(t, state, s.GetState())
}

func TestDispatchThunkAppliesActionsInOrder(t *testing.T) {
	s := newTestStore()
	var seen []bool
	unsubscribe := s.Subscribe(func(st testState) { seen = append(seen, st.IsAdding) })
	defer unsubscribe()

	state, err := s.Dispatch(context.Background(), add(7, nil))
	require.NoError(t, err)
	require.Equal(t, []int{7}, state.Items)
	require.False(t, state.IsAdding)
	require.NoError(t, state.AddError)
	require.Equal(t, []bool{false, true, false}, seen)
}

func TestDispatchFailedTerminalActionReturnsError(t *testing.T) {
	s := newTestStore()
	boom := errors.New("boom")

	state, err := s.Dispatch(context.Background(), add(1, boom))
	require.ErrorIs(t, err, boom)
	require.False(t, state.IsAdding)
	require.ErrorIs(t, state.AddError, boom)
	require.Empty(t, state.Items)
}

func TestDispatchReturnsFailureEvenWhenThunkSwallowsIt(t *testing.T) {
	s := newTestStore()
	boom := errors.New("boom")
	thunk := Thunk(func(_ context.Context, emit Emitter) error {
		emit(NewAction(addRequested, nil))
		emit(NewErrorAction(addFailed, boom))
		return nil
	})

	_, err := s.Dispatch(context.Background(), thunk)
	require.ErrorIs(t, err, boom)
}

func TestDispatchWithoutActionsReturnsCurrentState(t *testing.T) {
	s := newTestStore()
	_, _ = s.Dispatch(context.Background(), NewAction(renamed, "before"))

	state, err := s.Dispatch(context.Background(), Thunk(func(context.Context, Emitter) error { return nil }))
	require.NoError(t, err)
	require.Equal(t, "before", state.Name)
}

func TestEmitAfterCompletionIsDropped(t *testing.T) {
	s := newTestStore()
	var late Emitter
	_, err := s.Dispatch(context.Background(), Thunk(func(_ context.Context, emit Emitter) error {
		late = emit
		return nil
	}))
	require.NoError(t, err)

	late(NewAction(renamed, "late"))
	require.Empty(t, s.GetState().Name)
}

func TestPreviousSnapshotsStayIntact(t *testing.T) {
	s := newTestStore()
	first, err := s.Dispatch(context.Background(), add(1, nil))
	require.NoError(t, err)

	second, err := s.Dispatch(context.Background(), add(2, nil))
	require.NoError(t, err)

	require.Equal(t, []int{1}, first.Items)
	require.Equal(t, []int{1, 2}, second.Items)
}

func TestSubscribeWithSelectorSkipsIrrelevantChanges(t *testing.T) {
	s := newTestStore()
	var names []string
	unsubscribe := s.Subscribe(
		func(st testState) { names = append(names, st.Name) },
		func(st testState) any { return st.Name },
	)
	defer unsubscribe()

	_, _ = s.Dispatch(context.Background(), add(1, nil))
	_, _ = s.Dispatch(context.Background(), NewAction(renamed, "a"))
	_, _ = s.Dispatch(context.Background(), NewAction(renamed, "a"))
	_, _ = s.Dispatch(context.Background(), NewAction(renamed, "b"))

	require.Equal(t, []string{"", "a", "b"}, names)
}

func TestSubscribeStructuralComparison(t *testing.T) {
	s := newTestStore()
	calls := 0
	unsubscribe := s.Subscribe(func(testState) { calls++ }, func(st testState) any { return st.Items })
	defer unsubscribe()

	_, _ = s.Dispatch(context.Background(), NewAction(renamed, "x"))
	require.Equal(t, 1, calls)

	_, _ = s.Dispatch(context.Background(), add(3, nil))
	require.Equal(t, 2, calls)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	s := newTestStore()
	calls := 0
	unsubscribe := s.Subscribe(func(testState) { calls++ })

	unsubscribe()
	unsubscribe()
	_, _ = s.Dispatch(context.Background(), NewAction(renamed, "x"))

	require.Equal(t, 1, calls)
}

func TestCloseDropsSubscriptionsAndRejectsDispatch(t *testing.T) {
	s := newTestStore()
	calls := 0
	unsubscribe := s.Subscribe(func(testState) { calls++ })
	defer unsubscribe()
	_, err := s.Dispatch(context.Background(), NewAction(renamed, "open"))
	require.NoError(t, err)

	s.Close()
	s.Close()

	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed")
	}
	snapshot, err := s.Dispatch(context.Background(), NewAction(renamed, "late"))
	require.ErrorIs(t, err, ErrClosed)
	require.Equal(t, "open", snapshot.Name)
	require.Equal(t, 2, calls)

	late := 0
	s.Subscribe(func(testState) { late++ })()
	require.Zero(t, late)
}

func TestCloseDiscardsInFlightEmits(t *testing.T) {
	s := newTestStore()
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := s.Dispatch(context.Background(), addTriad.Run(nil, func(context.Context) (any, error) {
			<-release
			return 7, nil
		}))
		done <- err
	}()

	require.Eventually(t, func() bool { return s.GetState().IsAdding }, time.Second, time.Millisecond)
	s.Close()
	close(release)

	require.NoError(t, <-done)
	require.True(t, s.GetState().IsAdding)
	require.Empty(t, s.GetState().Items)
}

func TestListenerMayDispatch(t *testing.T) {
	s := newTestStore()
	var names []string
	unsubscribe := s.Subscribe(func(st testState) {
		names = append(names, st.Name)
		if st.Name == "first" {
			_, err := s.Dispatch(context.Background(), NewAction(renamed, "second"))
			require.NoError(t, err)
		}
	})
	defer unsubscribe()

	_, err := s.Dispatch(context.Background(), NewAction(renamed, "first"))
	require.NoError(t, err)

	require.Equal(t, []string{"", "first", "second"}, names)
	require.Equal(t, "second", s.GetState().Name)
}

func TestObserverSeesEveryTransition(t *testing.T) {
	var types []ActionType
	var prevItems, nextItems [][]int
	s := newTestStore(WithObserver(Observer[testState](func(a Action, prev, next testState) {
		types = append(types, a.Type)
		prevItems = append(prevItems, prev.Items)
		nextItems = append(nextItems, next.Items)
		require.NotEmpty(t, a.ID)
		require.False(t, a.Timestamp.IsZero())
	})))

	_, err := s.Dispatch(context.Background(), add(5, nil))
	require.NoError(t, err)

	require.Equal(t, []ActionType{addRequested, addSucceeded}, types)
	require.Equal(t, [][]int{nil, nil}, prevItems)
	require.Equal(t, [][]int{nil, {5}}, nextItems)
}

func TestObserverTypeMismatchPanics(t *testing.T) {
	require.Panics(t, func() {
		New(testState{}, reduceTest, WithObserver(Observer[int](func(Action, int, int) {})))
	})
}

type recordingMetrics struct {
	mu   sync.Mutex
	errs []error
}

func (m *recordingMetrics) ObserveDispatch(_ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, err)
}

func TestMetricsObserveEveryDispatch(t *testing.T) {
	m := &recordingMetrics{}
	s := newTestStore(WithMetrics(m))
	boom := errors.New("boom")

	_, _ = s.Dispatch(context.Background(), add(1, nil))
	_, _ = s.Dispatch(context.Background(), add(1, boom))

	require.Len(t, m.errs, 2)
	require.NoError(t, m.errs[0])
	require.ErrorIs(t, m.errs[1], boom)
}

func TestConcurrentDispatchesAllApply(t *testing.T) {
	s := newTestStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := s.Dispatch(context.Background(), add(n, nil))
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	state := s.GetState()
	require.Len(t, state.Items, 50)
	require.False(t, state.IsAdding)
}

func TestReplayRebuildsState(t *testing.T) {
	actions := []Action{
		NewAction(addRequested, nil),
		NewAction(addSucceeded, 4),
		NewAction(renamed, "replayed"),
		NewAction("UNKNOWN", nil),
	}

	state := Replay(testState{}, reduceTest, actions)
	require.Equal(t, testState{Items: []int{4}, Name: "replayed"}, state)
}

func TestActionWithMetaCopies(t *testing.T) {
	original := NewAction(renamed, "x").WithMeta("a", "1")
	derived := original.WithMeta("b", "2")

	require.Equal(t, map[string]string{"a": "1"}, original.Meta)
	require.Equal(t, map[string]string{"a": "1", "b": "2"}, derived.Meta)
}

func TestNewErrorActionAlwaysCarriesError(t *testing.T) {
	a := NewErrorAction(addFailed, nil)
	require.True(t, a.IsFailure())
}

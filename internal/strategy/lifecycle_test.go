package strategy

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLifecycleInitializeOnce(t *testing.T) {
	var l Lifecycle
	acquired := 0

	ran, err := l.Initialize(func() error { acquired++; return nil })
	require.NoError(t, err)
	require.True(t, ran)
	ran, err = l.Initialize(func() error { acquired++; return nil })
	require.NoError(t, err)
	require.False(t, ran)

	require.Equal(t, 1, acquired)
	require.True(t, l.Active())
}

func TestLifecycleFailedAcquireStaysInert(t *testing.T) {
	var l Lifecycle
	boom := errors.New("boom")

	ran, err := l.Initialize(func() error { return boom })
	require.True(t, ran)
	require.ErrorIs(t, err, boom)
	require.Equal(t, PhaseInert, l.Phase())
}

func TestLifecycleDeinitializeWhenInertIsNoop(t *testing.T) {
	var l Lifecycle
	released := 0

	ran, err := l.Deinitialize(func() error { released++; return nil })
	require.NoError(t, err)
	require.False(t, ran)
	require.Zero(t, released)
}

func TestLifecycleReinitializeAfterDeinitialize(t *testing.T) {
	var l Lifecycle
	acquired, released := 0, 0
	acquire := func() error { acquired++; return nil }
	release := func() error { released++; return nil }

	_, _ = l.Initialize(acquire)
	_, _ = l.Deinitialize(release)
	_, _ = l.Initialize(acquire)

	require.Equal(t, 2, acquired)
	require.Equal(t, 1, released)
	require.True(t, l.Active())
}

func TestLifecycleFailedReleaseStillInert(t *testing.T) {
	var l Lifecycle
	_, _ = l.Initialize(nil)

	_, err := l.Deinitialize(func() error { return errors.New("stuck") })
	require.Error(t, err)
	require.Equal(t, PhaseInert, l.Phase())
}

func TestLifecycleConcurrentInitializeAcquiresOnce(t *testing.T) {
	var l Lifecycle
	var acquired atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Initialize(func() error {
				acquired.Add(1)
				return nil
			})
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), acquired.Load())
}

func TestLifecyclePhaseDuringTransition(t *testing.T) {
	var l Lifecycle
	_, _ = l.Initialize(func() error {
		require.Equal(t, PhaseInitializing, l.Phase())
		return nil
	})
	_, _ = l.Deinitialize(func() error {
		require.Equal(t, PhaseDeinitializing, l.Phase())
		return nil
	})
	require.Equal(t, "inert", l.Phase().String())
}

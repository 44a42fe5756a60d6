package strategy

import (
	"sync"
	"sync/atomic"
)

// Phase is the lifecycle position of a strategy.
type Phase int32

const (
	PhaseInert Phase = iota
	PhaseInitializing
	PhaseActive
	PhaseDeinitializing
)

func (p Phase) String() string {
	switch p {
	case PhaseInert:
		return "inert"
	case PhaseInitializing:
		return "initializing"
	case PhaseActive:
		return "active"
	case PhaseDeinitializing:
		return "deinitializing"
	}
	return "unknown"
}

// Lifecycle serializes the transitions of one strategy. Transitions run one at a
// time; a transition that would not change the phase returns without calling its
// function.
type Lifecycle struct {
	mu    sync.Mutex
	phase atomic.Int32
}

// Initialize moves an inert strategy to active by calling acquire. It reports
// whether acquire ran. A failed acquire leaves the strategy inert.
func (l *Lifecycle) Initialize(acquire func() error) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if Phase(l.phase.Load()) == PhaseActive {
		return false, nil
	}
	l.phase.Store(int32(PhaseInitializing))
	if acquire != nil {
		if err := acquire(); err != nil {
			l.phase.Store(int32(PhaseInert))
			return true, err
		}
	}
	l.phase.Store(int32(PhaseActive))
	return true, nil
}

// Deinitialize moves an active strategy back to inert by calling release. It
// reports whether release ran. The strategy is inert afterwards even if release
// fails, so a later Initialize starts clean.
func (l *Lifecycle) Deinitialize(release func() error) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if Phase(l.phase.Load()) != PhaseActive {
		return false, nil
	}
	l.phase.Store(int32(PhaseDeinitializing))
	var err error
	if release != nil {
		err = release()
	}
	l.phase.Store(int32(PhaseInert))
	return true, err
}

func (l *Lifecycle) Phase() Phase {
	return Phase(l.phase.Load())
}

func (l *Lifecycle) Active() bool {
	return l.Phase() == PhaseActive
}

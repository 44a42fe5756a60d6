package store

import (
	"context"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
)

// ActionType tags an action. Each slice owns a closed set of them.
type ActionType string

// Action is a pure data description of a state transition.
type Action struct {
	ID        string
	Type      ActionType
	Payload   any
	Error     error
	Meta      map[string]string
	Timestamp time.Time
}

// NewAction returns a success or request action carrying payload.
func NewAction(typ ActionType, payload any) Action {
	return Action{Type: typ, Payload: payload}
}

// NewErrorAction returns a failure action. A nil err is replaced by a standard error
// so failures always carry an error payload.
func NewErrorAction(typ ActionType, err error) Action {
	if err == nil {
		err = errs.New(errs.KindStandard, "An unexpected error has occurred.")
	}
	return Action{Type: typ, Error: err}
}

// WithMeta returns a copy of the action with key set in its metadata.
func (a Action) WithMeta(key, value string) Action {
	meta := make(map[string]string, len(a.Meta)+1)
	maps.Copy(meta, a.Meta)
	meta[key] = value
	a.Meta = meta
	return a
}

// IsFailure reports whether the action carries an error payload.
func (a Action) IsFailure() bool { return a.Error != nil }

// Produce emits the action itself.
func (a Action) Produce(_ context.Context, emit Emitter) error {
	emit(a)
	return nil
}

func (a Action) stamped() Action {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	return a
}

// Emitter applies one action to the store.
type Emitter func(Action)

// Dispatchable is anything the store can consume: a single action or an
// asynchronous producer of actions.
type Dispatchable interface {
	Produce(ctx context.Context, emit Emitter) error
}

// Thunk produces a sequence of actions over time, typically Requested followed by
// Succeeded or Failed. It returns once its terminal action has been emitted.
type Thunk func(ctx context.Context, emit Emitter) error

// Produce runs the thunk.
func (t Thunk) Produce(ctx context.Context, emit Emitter) error {
	if t == nil {
		return nil
	}
	return t(ctx, emit)
}

// Triad groups the Requested/Succeeded/Failed tags of one asynchronous operation.
type Triad struct {
	Requested ActionType
	Succeeded ActionType
	Failed    ActionType
}

// Run builds the standard thunk for the triad: emit Requested, call fn, then emit
// Succeeded with its result or Failed with its error.
func (t Triad) Run(meta map[string]string, fn func(ctx context.Context) (any, error)) Thunk {
	return func(ctx context.Context, emit Emitter) error {
		emit(withMeta(NewAction(t.Requested, nil), meta))
		payload, err := fn(ctx)
		if err != nil {
			emit(withMeta(NewErrorAction(t.Failed, err), meta))
			return err
		}
		emit(withMeta(NewAction(t.Succeeded, payload), meta))
		return nil
	}
}

func withMeta(a Action, meta map[string]string) Action {
	for k, v := range meta {
		a = a.WithMeta(k, v)
	}
	return a
}

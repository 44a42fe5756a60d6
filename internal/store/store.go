// Package store holds an immutable state snapshot, applies actions through a pure
// reducer and notifies subscribers when selected parts of the snapshot change.
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrClosed is returned by Dispatch once the store has been closed.
var ErrClosed = errors.New("store closed")

// Reducer computes the next snapshot from the previous one. It must be pure and
// return prev unchanged for action types it does not handle.
type Reducer[S any] func(prev S, action Action) S

// Observer is called after every applied action, in application order, while the
// store holds its apply lock. Observers must not dispatch.
type Observer[S any] func(action Action, prev, next S)

// Listener receives snapshots from a subscription.
type Listener[S any] func(S)

// Selector picks the part of a snapshot a subscription cares about.
type Selector[S any] func(S) any

// DispatchMetrics records dispatch outcomes.
type DispatchMetrics interface {
	ObserveDispatch(duration time.Duration, err error)
}

// Option configures a Store.
type Option func(*config)

type config struct {
	logger    *zap.Logger
	tracer    trace.Tracer
	metrics   DispatchMetrics
	observers []any
}

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer sets the tracer used for dispatch spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *config) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithMetrics records the duration and outcome of each dispatch.
func WithMetrics(m DispatchMetrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithObserver registers an observer of applied actions.
func WithObserver[S any](obs Observer[S]) Option {
	return func(c *config) {
		if obs != nil {
			c.observers = append(c.observers, obs)
		}
	}
}

type snapshot[S any] struct {
	state   S
	version uint64
}

type subscription[S any] struct {
	listener    Listener[S]
	selectors   []Selector[S]
	last        []any
	lastVersion uint64
	started     bool
	closed      atomic.Bool
}

// delivery is one queued notification: a broadcast of snap, or the initial call
// of a new subscription when initial is set.
type delivery[S any] struct {
	snap    *snapshot[S]
	initial *subscription[S]
}

// Store is the single source of truth for one checkout.
type Store[S any] struct {
	reducer   Reducer[S]
	logger    *zap.Logger
	tracer    trace.Tracer
	metrics   DispatchMetrics
	observers []Observer[S]

	applyMu sync.Mutex
	current atomic.Pointer[snapshot[S]]

	subMu   sync.RWMutex
	subs    map[uint64]*subscription[S]
	nextSub uint64

	queueMu  sync.Mutex
	pending  []delivery[S]
	draining bool

	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

// New creates a store seeded with initial.
func New[S any](initial S, reducer Reducer[S], opts ...Option) *Store[S] {
	if reducer == nil {
		panic("store reducer required")
	}
	cfg := config{
		logger: zap.NewNop(),
		tracer: otel.Tracer("checkout/store"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	s := &Store[S]{
		reducer: reducer,
		logger:  cfg.logger,
		tracer:  cfg.tracer,
		metrics: cfg.metrics,
		subs:    make(map[uint64]*subscription[S]),
		done:    make(chan struct{}),
	}
	for _, o := range cfg.observers {
		obs, ok := o.(Observer[S])
		if !ok {
			panic(fmt.Sprintf("store observer %T does not match state type", o))
		}
		s.observers = append(s.observers, obs)
	}
	s.current.Store(&snapshot[S]{state: initial})
	return s
}

// GetState returns the latest applied snapshot without blocking.
func (s *Store[S]) GetState() S {
	return s.current.Load().state
}

// Dispatch applies an action, or every action produced by an asynchronous action,
// in emission order. It returns the snapshot produced by the last applied action.
// When that action is a failure its error is returned alongside the snapshot.
func (s *Store[S]) Dispatch(ctx context.Context, d Dispatchable) (S, error) {
	if s.closed.Load() {
		return s.GetState(), ErrClosed
	}
	if d == nil {
		return s.GetState(), nil
	}
	ctx, span := s.tracer.Start(ctx, "store.dispatch")
	defer span.End()
	start := time.Now()

	var (
		mu      sync.Mutex
		closed  bool
		applied int
		last    Action
		result  S
	)
	emit := func(a Action) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			s.logger.Warn("Dropping action emitted after dispatch completed",
				zap.String("action_type", string(a.Type)),
			)
			return
		}
		if s.closed.Load() {
			s.logger.Warn("Dropping action emitted after store closed",
				zap.String("action_type", string(a.Type)),
			)
			return
		}
		a = a.stamped()
		result = s.apply(a)
		last = a
		applied++
	}

	err := d.Produce(ctx, emit)

	mu.Lock()
	closed = true
	mu.Unlock()

	span.SetAttributes(attribute.Int("store.actions_applied", applied))
	if applied > 0 {
		span.SetAttributes(attribute.String("store.terminal_action", string(last.Type)))
	}
	if err == nil && applied > 0 && last.IsFailure() {
		err = last.Error
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.metrics != nil {
		s.metrics.ObserveDispatch(time.Since(start), err)
	}
	if applied == 0 {
		if err == nil && s.closed.Load() {
			err = ErrClosed
		}
		return s.GetState(), err
	}
	return result, err
}

// Close drops every subscription and makes later dispatches fail with
// ErrClosed. Actions still being emitted by in-flight dispatches are discarded.
func (s *Store[S]) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.subMu.Lock()
		for id, sub := range s.subs {
			sub.closed.Store(true)
			delete(s.subs, id)
		}
		s.subMu.Unlock()
		close(s.done)
	})
}

// Done is closed when the store is closed.
func (s *Store[S]) Done() <-chan struct{} {
	return s.done
}

func (s *Store[S]) apply(action Action) S {
	s.applyMu.Lock()
	prev := s.current.Load()
	next := &snapshot[S]{
		state:   s.reducer(prev.state, action),
		version: prev.version + 1,
	}
	s.current.Store(next)
	for _, obs := range s.observers {
		obs(action, prev.state, next.state)
	}
	s.enqueue(delivery[S]{snap: next})
	s.applyMu.Unlock()

	s.drain()
	return next.state
}

func (s *Store[S]) enqueue(d delivery[S]) {
	s.queueMu.Lock()
	s.pending = append(s.pending, d)
	s.queueMu.Unlock()
}

// drain delivers queued notifications in order. Only one goroutine drains at a
// time; a dispatch or subscribe made from inside a listener enqueues and returns.
func (s *Store[S]) drain() {
	s.queueMu.Lock()
	if s.draining {
		s.queueMu.Unlock()
		return
	}
	s.draining = true
	for len(s.pending) > 0 {
		next := s.pending[0]
		s.pending[0] = delivery[S]{}
		s.pending = s.pending[1:]
		s.queueMu.Unlock()
		if next.initial != nil {
			next.initial.start(s.current.Load())
		} else {
			s.notify(next.snap)
		}
		s.queueMu.Lock()
	}
	s.draining = false
	s.queueMu.Unlock()
}

func (s *Store[S]) notify(snap *snapshot[S]) {
	s.subMu.RLock()
	subs := make([]*subscription[S], 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subMu.RUnlock()

	for _, sub := range subs {
		sub.deliver(snap)
	}
}

// Subscribe registers listener and calls it with the current snapshot. Afterwards
// it is called whenever the values picked by selectors change structurally;
// without selectors any structural change of the snapshot counts. The returned
// function removes the subscription. Subscribing to a closed store is a no-op.
func (s *Store[S]) Subscribe(listener Listener[S], selectors ...Selector[S]) func() {
	if listener == nil {
		return func() {}
	}
	sub := &subscription[S]{listener: listener, selectors: selectors}

	s.subMu.Lock()
	if s.closed.Load() {
		s.subMu.Unlock()
		return func() {}
	}
	s.nextSub++
	id := s.nextSub
	s.subs[id] = sub
	s.subMu.Unlock()

	s.enqueue(delivery[S]{initial: sub})
	s.drain()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.closed.Store(true)
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (sub *subscription[S]) pick(state S) []any {
	if len(sub.selectors) == 0 {
		return []any{state}
	}
	values := make([]any, len(sub.selectors))
	for i, sel := range sub.selectors {
		values[i] = sel(state)
	}
	return values
}

func (sub *subscription[S]) start(snap *snapshot[S]) {
	if sub.closed.Load() {
		return
	}
	sub.started = true
	sub.last = sub.pick(snap.state)
	sub.lastVersion = snap.version
	sub.listener(snap.state)
}

func (sub *subscription[S]) deliver(snap *snapshot[S]) {
	if !sub.started || sub.closed.Load() || snap.version <= sub.lastVersion {
		return
	}
	sub.lastVersion = snap.version
	values := sub.pick(snap.state)
	if reflect.DeepEqual(values, sub.last) {
		return
	}
	sub.last = values
	sub.listener(snap.state)
}

// Replay folds actions into initial with reducer.
func Replay[S any](initial S, reducer Reducer[S], actions []Action) S {
	state := initial
	for _, a := range actions {
		state = reducer(state, a)
	}
	return state
}

// Package registry maps identifiers to lazily constructed instances.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
)

// Factory constructs the instance registered under an identifier.
type Factory[T any] func() (T, error)

type entry[T any] struct {
	factory  Factory[T]
	mu       sync.Mutex
	built    bool
	instance T
}

// Registry resolves instances by identifier. Each identifier is built at most once
// per registry, on first lookup, and cached for the registry's lifetime.
type Registry[T any] struct {
	domain  string
	logger  *zap.Logger
	release func(id string, instance T)
	mu      sync.RWMutex
	entries map[string]*entry[T]
}

// Option configures a Registry.
type Option[T any] func(*Registry[T])

// WithReleaser sets the function handed an instance that a later Register call
// replaced. It runs outside the registry locks.
func WithReleaser[T any](release func(id string, instance T)) Option[T] {
	return func(r *Registry[T]) { r.release = release }
}

// New creates an empty registry. domain prefixes the type of NotRegistrable errors.
func New[T any](domain string, logger *zap.Logger, opts ...Option[T]) *Registry[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry[T]{
		domain:  domain,
		logger:  logger,
		entries: make(map[string]*entry[T]),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register stores factory under id. Registering an id twice replaces the earlier
// factory; an instance it already built is passed to the releaser.
func (r *Registry[T]) Register(id string, factory Factory[T]) error {
	id = strings.TrimSpace(id)
	if id == "" || factory == nil {
		return errs.NotRegistrable(r.domain, id)
	}
	r.mu.Lock()
	old, exists := r.entries[id]
	r.entries[id] = &entry[T]{factory: factory}
	r.mu.Unlock()

	if !exists {
		return nil
	}
	r.logger.Warn("Strategy registration overwritten",
		zap.String("domain", r.domain),
		zap.String("method_id", id),
	)
	old.mu.Lock()
	built, instance := old.built, old.instance
	old.mu.Unlock()
	if built {
		r.logger.Info("Releasing replaced strategy instance",
			zap.String("domain", r.domain),
			zap.String("method_id", id),
		)
		if r.release != nil {
			r.release(id, instance)
		}
	}
	return nil
}

// Get returns the instance registered under id, building it on first use.
func (r *Registry[T]) Get(id string) (T, error) {
	var zero T
	r.mu.RLock()
	e, ok := r.entries[strings.TrimSpace(id)]
	r.mu.RUnlock()
	if !ok {
		return zero, errs.NotRegistrable(r.domain, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.built {
		return e.instance, nil
	}
	instance, err := build(e.factory)
	if err != nil {
		r.logger.Error("Strategy factory failed",
			zap.String("domain", r.domain),
			zap.String("method_id", id),
			zap.Error(err),
		)
		return zero, errs.NotRegistrable(r.domain, id, errs.WithCause(err))
	}
	e.instance = instance
	e.built = true
	return instance, nil
}

// IsRegistered reports whether a factory exists for id.
func (r *Registry[T]) IsRegistered(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[strings.TrimSpace(id)]
	return ok
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry[T]) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Instances returns the instances built so far, keyed by identifier.
func (r *Registry[T]) Instances() map[string]T {
	r.mu.RLock()
	entries := make(map[string]*entry[T], len(r.entries))
	for id, e := range r.entries {
		entries[id] = e
	}
	r.mu.RUnlock()

	out := make(map[string]T, len(entries))
	for id, e := range entries {
		e.mu.Lock()
		if e.built {
			out[id] = e.instance
		}
		e.mu.Unlock()
	}
	return out
}

func build[T any](factory Factory[T]) (instance T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("factory panic: %v", rec)
		}
	}()
	instance, err = factory()
	if err == nil && any(instance) == nil {
		err = fmt.Errorf("factory returned nil instance")
	}
	return instance, err
}

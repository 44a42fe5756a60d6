package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/config"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/interfaces"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/journal"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/telemetry"
)

// ErrClosed is returned by Open once the manager has been closed.
var ErrClosed = errors.New("session manager closed")

type Option func(*sessionDeps)

func WithProcessors(f ProcessorFactory) Option {
	return func(d *sessionDeps) { d.processors = f }
}

// WithJournal records every applied action through codec into sinks.
func WithJournal(codec *journal.Codec, sinks ...journal.Sink) Option {
	return func(d *sessionDeps) {
		d.codec = codec
		d.sinks = sinks
	}
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(d *sessionDeps) { d.metrics = m }
}

func WithLogger(logger *zap.Logger) Option {
	return func(d *sessionDeps) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(d *sessionDeps) {
		if tracer != nil {
			d.tracer = tracer
		}
	}
}

// Manager keeps one Session per checkout id.
type Manager struct {
	deps sessionDeps

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

func NewManager(sender interfaces.CheckoutRequestSender, methods config.Methods, opts ...Option) *Manager {
	deps := sessionDeps{
		sender:  sender,
		methods: methods,
		logger:  zap.NewNop(),
		tracer:  otel.Tracer("checkout/session"),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return &Manager{deps: deps, sessions: make(map[string]*Session)}
}

// Open returns the session of checkoutID, creating it on first use.
func (m *Manager) Open(checkoutID string) (*Session, error) {
	checkoutID = strings.TrimSpace(checkoutID)
	if checkoutID == "" {
		return nil, errs.InvalidArgument(`Unable to proceed because "checkoutId" argument is not provided.`)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if s, ok := m.sessions[checkoutID]; ok {
		return s, nil
	}
	s, err := newSession(checkoutID, m.deps)
	if err != nil {
		return nil, err
	}
	m.sessions[checkoutID] = s
	if m.deps.metrics != nil {
		m.deps.metrics.ActiveSessions.Inc()
	}
	m.deps.logger.Info("Checkout session opened", zap.String("checkout_id", checkoutID))
	return s, nil
}

// Get returns the session of checkoutID if one is open.
func (m *Manager) Get(checkoutID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[strings.TrimSpace(checkoutID)]
	return s, ok
}

// Remove closes and forgets the session of checkoutID.
func (m *Manager) Remove(ctx context.Context, checkoutID string) error {
	m.mu.Lock()
	s, ok := m.sessions[strings.TrimSpace(checkoutID)]
	if ok {
		delete(m.sessions, s.ID)
	}
	m.mu.Unlock()
	if !ok {
		return nil
	}
	if m.deps.metrics != nil {
		m.deps.metrics.ActiveSessions.Dec()
	}
	m.deps.logger.Info("Checkout session closed", zap.String("checkout_id", s.ID))
	return s.Close(ctx)
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Ready reports whether the manager still accepts sessions.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Close closes every open session and rejects new ones.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var (
		wg     conc.WaitGroup
		errMu  sync.Mutex
		joined error
	)
	for _, s := range sessions {
		wg.Go(func() {
			err := s.Close(ctx)
			errMu.Lock()
			joined = errors.Join(joined, err)
			errMu.Unlock()
		})
	}
	wg.Wait()
	if m.deps.metrics != nil {
		m.deps.metrics.ActiveSessions.Sub(float64(len(sessions)))
	}
	return joined
}

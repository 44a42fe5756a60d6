package strategy

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/registry"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/store"
)

// Dispatcher is the part of a store a strategy needs.
type Dispatcher[S any] interface {
	Dispatch(ctx context.Context, d store.Dispatchable) (S, error)
	GetState() S
}

// OperationMetrics records the outcome of strategy operations.
type OperationMetrics interface {
	ObserveStrategyOperation(domain, operation, outcome string, duration time.Duration)
}

type RunnerOption func(*runnerConfig)

type runnerConfig struct {
	logger  *zap.Logger
	tracer  trace.Tracer
	metrics OperationMetrics
}

func WithRunnerLogger(logger *zap.Logger) RunnerOption {
	return func(c *runnerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithRunnerTracer(tracer trace.Tracer) RunnerOption {
	return func(c *runnerConfig) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

func WithRunnerMetrics(m OperationMetrics) RunnerOption {
	return func(c *runnerConfig) { c.metrics = m }
}

// Runner resolves strategies from a registry and runs their lifecycle operations
// through a store. Configuration errors (a missing method id or an unregistered
// strategy) are returned before anything is dispatched; otherwise each operation
// dispatches exactly one Requested action followed by Succeeded or Failed.
type Runner[S any] struct {
	domain     Domain
	types      Types
	dispatcher Dispatcher[S]
	registry   *registry.Registry[Strategy[S]]
	logger     *zap.Logger
	tracer     trace.Tracer
	metrics    OperationMetrics
}

func NewRunner[S any](domain Domain, dispatcher Dispatcher[S], reg *registry.Registry[Strategy[S]], opts ...RunnerOption) *Runner[S] {
	cfg := runnerConfig{
		logger: zap.NewNop(),
		tracer: otel.Tracer("checkout/strategy"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Runner[S]{
		domain:     domain,
		types:      TypesFor(domain),
		dispatcher: dispatcher,
		registry:   reg,
		logger:     cfg.logger,
		tracer:     cfg.tracer,
		metrics:    cfg.metrics,
	}
}

func (r *Runner[S]) Domain() Domain { return r.domain }

func (r *Runner[S]) Initialize(ctx context.Context, opts InitializeOptions) (S, error) {
	s, err := r.resolve(opts.MethodID)
	if err != nil {
		return r.dispatcher.GetState(), err
	}
	return r.run(ctx, "initialize", r.types.Initialize, opts.MethodID, func(ctx context.Context) error {
		_, err := s.Initialize(ctx, opts)
		return err
	})
}

func (r *Runner[S]) Execute(ctx context.Context, opts ExecuteOptions) (S, error) {
	s, err := r.resolve(opts.MethodID)
	if err != nil {
		return r.dispatcher.GetState(), err
	}
	return r.run(ctx, "execute", r.types.Execute, opts.MethodID, func(ctx context.Context) error {
		_, err := s.Execute(ctx, opts)
		return err
	})
}

func (r *Runner[S]) Deinitialize(ctx context.Context, methodID string) (S, error) {
	s, err := r.resolve(methodID)
	if err != nil {
		return r.dispatcher.GetState(), err
	}
	return r.run(ctx, "deinitialize", r.types.Deinitialize, methodID, func(ctx context.Context) error {
		_, err := s.Deinitialize(ctx)
		return err
	})
}

func (r *Runner[S]) resolve(methodID string) (Strategy[S], error) {
	if strings.TrimSpace(methodID) == "" {
		return nil, errs.InvalidArgument(`Unable to proceed because "methodId" argument is not provided.`)
	}
	return r.registry.Get(methodID)
}

func (r *Runner[S]) run(ctx context.Context, op string, triad store.Triad, methodID string, fn func(context.Context) error) (S, error) {
	ctx, span := r.tracer.Start(ctx, "strategy."+op, trace.WithAttributes(
		attribute.String("strategy.domain", string(r.domain)),
		attribute.String("strategy.method_id", methodID),
	))
	defer span.End()
	start := time.Now()

	state, err := r.dispatcher.Dispatch(ctx, triad.Run(map[string]string{MetaMethodID: methodID}, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	}))

	outcome := "succeeded"
	if err != nil {
		outcome = "failed"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Warn("Strategy operation failed",
			zap.String("domain", string(r.domain)),
			zap.String("operation", op),
			zap.String("method_id", methodID),
			zap.Error(err),
		)
	}
	if r.metrics != nil {
		r.metrics.ObserveStrategyOperation(string(r.domain), op, outcome, time.Since(start))
	}
	return state, err
}

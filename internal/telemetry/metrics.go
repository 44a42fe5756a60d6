package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/errs"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/store"
)

// Metrics holds the Prometheus collectors of the checkout orchestrator.
type Metrics struct {
	ActionsApplied     *prometheus.CounterVec
	ActionFailures     *prometheus.CounterVec
	DispatchDuration   *prometheus.HistogramVec
	StrategyOperations *prometheus.CounterVec
	StrategyDuration   *prometheus.HistogramVec
	ActiveSessions     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ActionsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_actions_applied_total",
			Help: "Actions applied to checkout stores, by action type.",
		}, []string{"type"}),
		ActionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_action_failures_total",
			Help: "Failure actions applied to checkout stores, by action type and error kind.",
		}, []string{"type", "kind"}),
		DispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "checkout_dispatch_duration_seconds",
			Help:    "Time from dispatch until the terminal action was applied.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		StrategyOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_strategy_operations_total",
			Help: "Strategy lifecycle operations, by domain, operation and outcome.",
		}, []string{"domain", "operation", "outcome"}),
		StrategyDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "checkout_strategy_operation_duration_seconds",
			Help:    "Duration of strategy lifecycle operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"domain", "operation"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "checkout_sessions_active",
			Help: "Checkout sessions currently open.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.ActionsApplied, m.ActionFailures, m.DispatchDuration,
			m.StrategyOperations, m.StrategyDuration, m.ActiveSessions)
	}
	return m
}

func (m *Metrics) ObserveDispatch(duration time.Duration, err error) {
	outcome := "succeeded"
	if err != nil {
		outcome = "failed"
	}
	m.DispatchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *Metrics) RecordAction(a store.Action) {
	m.ActionsApplied.WithLabelValues(string(a.Type)).Inc()
	if a.IsFailure() {
		kind := errs.KindOf(a.Error)
		if kind == "" {
			kind = errs.KindStandard
		}
		m.ActionFailures.WithLabelValues(string(a.Type), string(kind)).Inc()
	}
}

func (m *Metrics) ObserveStrategyOperation(domain, operation, outcome string, duration time.Duration) {
	m.StrategyOperations.WithLabelValues(domain, operation, outcome).Inc()
	m.StrategyDuration.WithLabelValues(domain, operation).Observe(duration.Seconds())
}

// ActionObserver adapts RecordAction to a store observer.
func ActionObserver[S any](m *Metrics) store.Observer[S] {
	return func(a store.Action, _, _ S) {
		m.RecordAction(a)
	}
}

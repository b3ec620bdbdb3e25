// Package metrics holds the Prometheus collectors recorded by the client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is passed explicitly to every component that records metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	rpcCallsTotal   *prometheus.CounterVec
	rpcCallDuration *prometheus.HistogramVec

	historyPagesFetched        prometheus.Counter
	historyTransactionsFetched prometheus.Counter
	historyTransactionsKept    prometheus.Counter
	historyGapChecks           *prometheus.CounterVec

	submissionsTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with registry.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer, namespace string) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		rpcCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rpc_calls_total",
				Help:      "Total number of node RPC calls by method and status",
			},
			[]string{"method", "status"},
		),
		rpcCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rpc_call_duration_seconds",
				Help:      "Duration of node RPC calls in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method"},
		),
		historyPagesFetched: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "history_pages_fetched_total",
				Help:      "Total number of account_tx pages fetched",
			},
		),
		historyTransactionsFetched: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "history_transactions_fetched_total",
				Help:      "Total number of raw transactions received in account_tx pages",
			},
		),
		historyTransactionsKept: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "history_transactions_kept_total",
				Help:      "Total number of transactions that passed validation and filters",
			},
		),
		historyGapChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "history_gap_checks_total",
				Help:      "Total number of ledger range completeness checks by result",
			},
			[]string{"result"},
		),
		submissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submissions_total",
				Help:      "Total number of submitted transactions by engine result class and outcome",
			},
			[]string{"class", "outcome"},
		),
	}
}

// RecordRPCCall records one node RPC call.
func (m *Metrics) RecordRPCCall(method, status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.rpcCallsTotal.WithLabelValues(method, status).Inc()
	m.rpcCallDuration.WithLabelValues(method).Observe(durationSeconds)
}

// RecordPage records one formatted account_tx page.
func (m *Metrics) RecordPage(fetched, kept int) {
	if m == nil {
		return
	}
	m.historyPagesFetched.Inc()
	m.historyTransactionsFetched.Add(float64(fetched))
	m.historyTransactionsKept.Add(float64(kept))
}

// RecordGapCheck records the result of a completeness check: "complete",
// "missing" or "error".
func (m *Metrics) RecordGapCheck(result string) {
	if m == nil {
		return
	}
	m.historyGapChecks.WithLabelValues(result).Inc()
}

// RecordSubmission records a submit call by engine result class
// ("tes", "tem", ...) and outcome ("accepted" or "rejected").
func (m *Metrics) RecordSubmission(class, outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(class, outcome).Inc()
}

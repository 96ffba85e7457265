// Package metrics holds the prometheus collectors exported by the store.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "speaker"

// Transaction outcomes.
const (
	OutcomeCommitted = "committed"
	OutcomeAborted   = "aborted"
	OutcomeFailed    = "failed"
)

// Metrics groups the collectors. The zero value is not usable; use New.
type Metrics struct {
	Transactions *prometheus.CounterVec
	TxDuration   *prometheus.HistogramVec
	LockWait     prometheus.Histogram
	AssetOps     *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered, which is what most tests want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "txn",
			Name:      "transactions_total",
			Help:      "Transactions run by the coordinator, by mode and outcome.",
		}, []string{"mode", "outcome"}),
		TxDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "txn",
			Name:      "duration_seconds",
			Help:      "Transaction wall time including lock waits.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"mode"}),
		LockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "txn",
			Name:      "lock_wait_seconds",
			Help:      "Time read-write transactions spent waiting for collection locks.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		AssetOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assets",
			Name:      "operations_total",
			Help:      "Asset handle allocations and releases, by outcome.",
		}, []string{"op", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.Transactions, m.TxDuration, m.LockWait, m.AssetOps)
	}
	return m
}

// ObserveTx records one finished transaction.
func (m *Metrics) ObserveTx(mode, outcome string, elapsed time.Duration) {
	m.Transactions.WithLabelValues(mode, outcome).Inc()
	m.TxDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// ObserveAsset records one asset operation.
func (m *Metrics) ObserveAsset(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.AssetOps.WithLabelValues(op, outcome).Inc()
}

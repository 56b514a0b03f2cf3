package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transaction metrics
	TransactionsAppended *prometheus.CounterVec
	TransactionsRejected *prometheus.CounterVec
	AccountBalance       *prometheus.GaugeVec

	// Persistence metrics
	SaveDuration prometheus.Histogram
	LoadDuration prometheus.Histogram
	IOErrors     *prometheus.CounterVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransactionsAppended: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txledger_transactions_appended_total",
				Help: "Total number of transactions appended by kind",
			},
			[]string{"kind"},
		),
		TransactionsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txledger_transactions_rejected_total",
				Help: "Total number of rejected transactions by reason",
			},
			[]string{"reason"},
		),
		AccountBalance: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "txledger_account_balance",
				Help: "Current account balance",
			},
			[]string{"owner", "bank"},
		),

		SaveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "txledger_save_duration_seconds",
			Help:    "Duration of ledger save operations",
			Buckets: prometheus.DefBuckets,
		}),
		LoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "txledger_load_duration_seconds",
			Help:    "Duration of ledger load operations",
			Buckets: prometheus.DefBuckets,
		}),
		IOErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txledger_io_errors_total",
				Help: "Total ledger file errors by operation",
			},
			[]string{"operation"},
		),

		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txledger_auth_failures_total",
				Help: "Total authentication failures by operation",
			},
			[]string{"operation"},
		),
	}
}

// Nop returns metrics registered with a throwaway registry.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}

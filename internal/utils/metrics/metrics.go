// internal/utils/metrics/metrics.go
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "token_minter"

func newTransactionCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Total number of transactions submitted by the client",
		},
		[]string{"status", "operation"},
	)
}

func newTransactionDuration() *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transaction_duration_seconds",
			Help:      "Client transaction duration in seconds, including retries",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation"},
	)
}

func newLedgerTransactions() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "transactions_total",
			Help:      "Transactions processed by the local ledger",
		},
		[]string{"status"},
	)
}

func newLedgerDuration() *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "execution_duration_seconds",
			Help:      "Local ledger transaction execution time in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		},
		[]string{"status"},
	)
}

func newInstructionCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "instructions_total",
			Help:      "Instructions executed per program, including cross-program invocations",
		},
		[]string{"program"},
	)
}

func newIssuedCounter() prometheus.Counter {
	return prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issued_base_units_total",
			Help:      "Token base units issued through the client",
		},
	)
}

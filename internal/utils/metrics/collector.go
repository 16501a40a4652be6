// internal/utils/metrics/collector.go
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector держит набор метрик клиента и локального леджера.
// Nil *Collector допустим: все методы записи становятся no-op.
type Collector struct {
	transactions   *prometheus.CounterVec
	txDuration     *prometheus.HistogramVec
	ledgerTx       *prometheus.CounterVec
	ledgerDuration *prometheus.HistogramVec
	instructions   *prometheus.CounterVec
	issued         prometheus.Counter
}

// NewCollector создает коллектор и регистрирует метрики в reg.
// Если reg == nil, используется prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		transactions:   newTransactionCounter(),
		txDuration:     newTransactionDuration(),
		ledgerTx:       newLedgerTransactions(),
		ledgerDuration: newLedgerDuration(),
		instructions:   newInstructionCounter(),
		issued:         newIssuedCounter(),
	}

	for _, m := range []prometheus.Collector{
		c.transactions, c.txDuration, c.ledgerTx, c.ledgerDuration, c.instructions, c.issued,
	} {
		if err := reg.Register(m); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return c, nil
}

// Reset сбрасывает все векторные метрики (полезно для тестирования)
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.transactions.Reset()
	c.txDuration.Reset()
	c.ledgerTx.Reset()
	c.ledgerDuration.Reset()
	c.instructions.Reset()
}

// RecordTransaction records a client-side submission.
func (c *Collector) RecordTransaction(_ context.Context, operation string, duration time.Duration, success bool) {
	if c == nil {
		return
	}
	c.transactions.WithLabelValues(statusLabel(success), operation).Inc()
	c.txDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordLedgerTransaction records one transaction processed by the local ledger.
func (c *Collector) RecordLedgerTransaction(duration time.Duration, success bool) {
	if c == nil {
		return
	}
	status := statusLabel(success)
	c.ledgerTx.WithLabelValues(status).Inc()
	c.ledgerDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordInstruction counts an executed instruction for the named program.
func (c *Collector) RecordInstruction(program string) {
	if c == nil {
		return
	}
	c.instructions.WithLabelValues(program).Inc()
}

// RecordIssued adds minted base units.
func (c *Collector) RecordIssued(amount uint64) {
	if c == nil {
		return
	}
	c.issued.Add(float64(amount))
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.RecordTransaction(context.Background(), "mint_tokens", 10*time.Millisecond, true)
	c.RecordTransaction(context.Background(), "mint_tokens", 10*time.Millisecond, false)
	c.RecordLedgerTransaction(time.Millisecond, true)
	c.RecordInstruction("minter")
	c.RecordInstruction("minter")
	c.RecordIssued(1500)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.transactions.WithLabelValues("success", "mint_tokens")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transactions.WithLabelValues("failure", "mint_tokens")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ledgerTx.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.instructions.WithLabelValues("minter")))
	assert.Equal(t, 1500.0, testutil.ToFloat64(c.issued))

	_, err = NewCollector(reg)
	assert.Error(t, err, "second registration on the same registry must fail")
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordTransaction(context.Background(), "initiate_token", time.Second, true)
		c.RecordLedgerTransaction(time.Second, false)
		c.RecordInstruction("system")
		c.RecordIssued(1)
		c.Reset()
	})
}

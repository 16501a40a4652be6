package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minter.log")
	cfg := DefaultConfig()
	cfg.LogFile = path
	cfg.Compress = false

	l, err := New(cfg)
	require.NoError(t, err)
	l.Info("hello", zap.String("k", "v"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"k":"v"`)
}

func TestWithOperationAddsCorrelationID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	WithOperation(zap.New(core), "mint").Info("done")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "mint", fields["operation"])
	assert.NotEmpty(t, fields["correlation_id"])
}

func TestWithTransactionAddsSignature(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	sig := solana.Signature{1, 2, 3}
	WithTransaction(zap.New(core), sig).Info("sent")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, sig.String(), fields["signature"])
	assert.Contains(t, fields, "tx_time")
}

package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/token-minter/internal/authority"
	"github.com/rovshanmuradov/token-minter/internal/config"
	"github.com/rovshanmuradov/token-minter/internal/minting"
	"github.com/rovshanmuradov/token-minter/internal/programs/minter"
	"github.com/rovshanmuradov/token-minter/internal/wallet"
)

func newTestRunner(t *testing.T, mutate func(*config.Config)) *Runner {
	t.Helper()
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	if mutate != nil {
		mutate(cfg)
	}

	r, err := NewRunner(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close(context.Background()) })
	return r
}

func TestRunnerDemo(t *testing.T) {
	r := newTestRunner(t, nil)
	ctx := context.Background()

	summary, err := r.Demo(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 1500, summary.Token.Supply)
	require.Len(t, summary.Holdings, 1)
	assert.Equal(t, r.Payer(), summary.Holdings[0].Holder)
	assert.EqualValues(t, 1500, summary.Holdings[0].Amount)
	assert.Equal(t, "Coin", summary.Metadata.Data.Name)

	receipts, err := r.Receipts(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, receipts, 3)
	assert.NotZero(t, r.Ledger().Slot())
}

func TestRunnerDerive(t *testing.T) {
	r := newTestRunner(t, nil)

	addrs, err := r.Derive()
	require.NoError(t, err)

	mint, err := minter.MintAddress(minter.DefaultProgramID)
	require.NoError(t, err)
	assert.Equal(t, mint, addrs.Authority.Address)
	assert.Equal(t, r.Service().MetadataAddress(), addrs.Metadata)
	assert.True(t, authority.IsOffCurve(addrs.Authority.Address))
	assert.NoError(t, authority.Verify(addrs.Program, authority.DefaultLabel, addrs.Authority.Bump, mint))
}

func TestRunnerMintUI(t *testing.T) {
	r := newTestRunner(t, nil)
	ctx := context.Background()

	_, err := r.Initiate(ctx, DemoToken)
	require.NoError(t, err)

	holder, err := wallet.NewRandomWallet()
	require.NoError(t, err)

	res, err := r.MintUI(ctx, holder.PublicKey, decimal.RequireFromString("1.5"))
	require.NoError(t, err)
	assert.EqualValues(t, 1_500_000, res.Balance)
	assert.EqualValues(t, 1_500_000, res.Supply)

	_, err = r.MintUI(ctx, holder.PublicKey, decimal.RequireFromString("0.0000001"))
	assert.ErrorIs(t, err, minting.ErrInvalidAmount)
}

func TestRunnerMintUIBeforeInitiate(t *testing.T) {
	r := newTestRunner(t, nil)

	_, err := r.MintUI(context.Background(), r.Payer(), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, minting.ErrNotInitialized)
}

func TestRunnerRPCRequiresKeypair(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.Network = config.NetworkRPC

	_, err = NewRunner(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestRunnerServesMetrics(t *testing.T) {
	r := newTestRunner(t, func(cfg *config.Config) { cfg.MetricsAddr = "127.0.0.1:0" })
	require.NotNil(t, r.MetricsAddr())

	_, err := r.Demo(context.Background())
	require.NoError(t, err)

	url := "http://" + r.MetricsAddr().String() + "/metrics"
	resp, err := http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)

	assert.Contains(t, string(body), `token_minter_transactions_total{operation="mint_tokens",status="success"} 2`)
	assert.Contains(t, string(body), "token_minter_ledger_transactions_total")

	require.NoError(t, r.Close(context.Background()))
	_, err = http.Get(url)
	assert.Error(t, err)
}

func TestShutdownOrder(t *testing.T) {
	sh := NewShutdownHandler(zaptest.NewLogger(t), 0)

	var order []string
	errBoom := errors.New("boom")
	sh.AddFunc("first", func() error { order = append(order, "first"); return nil })
	sh.AddFunc("second", func() error { order = append(order, "second"); return errBoom })
	sh.AddFunc("third", func() error { order = append(order, "third"); return nil })

	err := sh.Shutdown(context.Background())
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, []string{"third", "second", "first"}, order)

	assert.NoError(t, sh.Shutdown(context.Background()))
	assert.Len(t, order, 3)
}

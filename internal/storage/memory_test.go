package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/token-minter/internal/storage/models"
)

func TestMemoryJournal(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryJournal()

	for i, sig := range []string{"sig-1", "sig-2", "sig-3"} {
		mint := "mint-a"
		if i == 1 {
			mint = "mint-b"
		}
		require.NoError(t, j.SaveReceipt(ctx, &models.Receipt{
			Signature: sig,
			Operation: models.OperationMintTokens,
			Mint:      mint,
			Amount:    decimal.NewFromInt(int64(100 * (i + 1))),
			Status:    models.StatusSuccess,
		}))
	}

	err := j.SaveReceipt(ctx, &models.Receipt{Signature: "sig-1"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	got, err := j.GetReceipt(ctx, "sig-2")
	require.NoError(t, err)
	assert.Equal(t, "mint-b", got.Mint)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(200)))
	assert.EqualValues(t, 2, got.ID)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = j.GetReceipt(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := j.ListReceipts(ctx, "mint-a", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "sig-3", list[0].Signature)
	assert.Equal(t, "sig-1", list[1].Signature)

	list, err = j.ListReceipts(ctx, "mint-a", 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMemoryJournalHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	j := NewMemoryJournal()
	assert.ErrorIs(t, j.SaveReceipt(ctx, &models.Receipt{Signature: "x"}), context.Canceled)
}

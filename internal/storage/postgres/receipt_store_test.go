//go:build integration

package postgres

import (
	"context"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/token-minter/internal/storage"
	"github.com/rovshanmuradov/token-minter/internal/storage/models"
)

func TestReceiptStore(t *testing.T) {
	ctx := context.Background()
	store := NewReceiptStore(setupTestDB(t))

	maxSupply := models.Units(math.MaxUint64)
	first := &models.Receipt{
		Signature:   "sig-1",
		Operation:   models.OperationMintTokens,
		ProgramID:   "program",
		Mint:        "mint-a",
		Payer:       "payer",
		Holder:      "holder",
		Destination: "ata",
		Amount:      decimal.NewFromInt(1000),
		Supply:      maxSupply,
		Status:      models.StatusSuccess,
	}
	require.NoError(t, store.SaveReceipt(ctx, first))
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	err := store.SaveReceipt(ctx, &models.Receipt{
		Signature: "sig-1",
		Operation: models.OperationMintTokens,
		Status:    models.StatusSuccess,
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	require.NoError(t, store.SaveReceipt(ctx, &models.Receipt{
		Signature:    "sig-2",
		Operation:    models.OperationInitiateToken,
		ProgramID:    "program",
		Mint:         "mint-a",
		Payer:        "payer",
		Status:       models.StatusFailed,
		ErrorMessage: "mint already initialized",
	}))

	got, err := store.GetReceipt(ctx, "sig-1")
	require.NoError(t, err)
	assert.Equal(t, "holder", got.Holder)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, got.Supply.Equal(maxSupply))

	_, err = store.GetReceipt(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	list, err := store.ListReceipts(ctx, "mint-a", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "sig-2", list[0].Signature)

	list, err = store.ListReceipts(ctx, "mint-a", 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

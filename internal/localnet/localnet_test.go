package localnet

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/token-minter/internal/programs/associatedtoken"
	"github.com/rovshanmuradov/token-minter/internal/programs/computebudget"
	"github.com/rovshanmuradov/token-minter/internal/programs/metadata"
	"github.com/rovshanmuradov/token-minter/internal/programs/minter"
	"github.com/rovshanmuradov/token-minter/internal/programs/spltoken"
	"github.com/rovshanmuradov/token-minter/internal/programs/system"
)

func TestNewRegistersPrograms(t *testing.T) {
	bank := New(zaptest.NewLogger(t), minter.DefaultProgramID)

	for _, id := range []solana.PublicKey{
		system.ProgramID,
		spltoken.ProgramID,
		associatedtoken.ProgramID,
		metadata.ProgramID,
		computebudget.ProgramID,
		minter.DefaultProgramID,
	} {
		acct, err := bank.GetAccountData(context.Background(), id)
		require.NoError(t, err, id.String())
		assert.True(t, acct.Executable, id.String())
	}

	rent, err := bank.GetAccountData(context.Background(), solana.SysVarRentPubkey)
	require.NoError(t, err)
	assert.NotEmpty(t, rent.Data)
}

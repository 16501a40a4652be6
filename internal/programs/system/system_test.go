package system_test

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/token-minter/internal/ledger"
	"github.com/rovshanmuradov/token-minter/internal/programs/system"
)

const sol = 1_000_000_000

func setup(t *testing.T) (*ledger.Bank, solana.PrivateKey) {
	t.Helper()
	bank := ledger.NewBank(zaptest.NewLogger(t))
	bank.RegisterProgram(system.New())
	payer := newKey(t)
	require.NoError(t, bank.Airdrop(payer.PublicKey(), 10*sol))
	return bank, payer
}

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

func send(t *testing.T, bank *ledger.Bank, signers []solana.PrivateKey, ixs ...solana.Instruction) error {
	t.Helper()
	blockhash, err := bank.GetRecentBlockhash(context.Background())
	require.NoError(t, err)
	tx, err := solana.NewTransaction(ixs, blockhash, solana.TransactionPayer(signers[0].PublicKey()))
	require.NoError(t, err)
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for i := range signers {
			if signers[i].PublicKey().Equals(key) {
				return &signers[i]
			}
		}
		return nil
	})
	require.NoError(t, err)
	_, err = bank.SendTransaction(context.Background(), tx)
	return err
}

func TestCreateAccount(t *testing.T) {
	bank, payer := setup(t)
	acct := newKey(t)
	owner := solana.TokenProgramID

	err := send(t, bank, []solana.PrivateKey{payer, acct},
		system.NewCreateAccountInstruction(payer.PublicKey(), acct.PublicKey(), ledger.MinimumBalance(82), 82, owner))
	require.NoError(t, err)

	created, ok := bank.Account(acct.PublicKey())
	require.True(t, ok)
	assert.Equal(t, owner, created.Owner)
	assert.Len(t, created.Data, 82)
	assert.Equal(t, ledger.MinimumBalance(82), created.Lamports)

	// повторное создание того же адреса
	err = send(t, bank, []solana.PrivateKey{payer, acct},
		system.NewCreateAccountInstruction(payer.PublicKey(), acct.PublicKey(), ledger.MinimumBalance(10), 10, owner))
	assert.ErrorIs(t, err, system.ErrAccountAlreadyInUse)
}

func TestCreateAccountRequiresNewAccountSignature(t *testing.T) {
	bank, payer := setup(t)
	acct := newKey(t).PublicKey()

	ix := solana.NewInstruction(system.ProgramID, []*solana.AccountMeta{
		{PublicKey: payer.PublicKey(), IsSigner: true, IsWritable: true},
		{PublicKey: acct, IsSigner: false, IsWritable: true},
	}, mustData(t, system.NewCreateAccountInstruction(payer.PublicKey(), acct, sol, 0, system.ProgramID)))

	err := send(t, bank, []solana.PrivateKey{payer}, ix)
	assert.ErrorIs(t, err, ledger.ErrMissingRequiredSignature)
}

func TestTransferInsufficientFunds(t *testing.T) {
	bank, payer := setup(t)

	err := send(t, bank, []solana.PrivateKey{payer}, system.NewTransferInstruction(payer.PublicKey(), newKey(t).PublicKey(), 11*sol))
	assert.ErrorIs(t, err, system.ErrResultWithNegativeLamports)
}

func TestAllocateAndAssign(t *testing.T) {
	bank, payer := setup(t)
	acct := newKey(t)
	require.NoError(t, bank.Airdrop(acct.PublicKey(), sol))

	err := send(t, bank, []solana.PrivateKey{payer, acct},
		system.NewAllocateInstruction(acct.PublicKey(), 16),
		system.NewAssignInstruction(acct.PublicKey(), solana.TokenProgramID))
	require.NoError(t, err)

	stored, ok := bank.Account(acct.PublicKey())
	require.True(t, ok)
	assert.Len(t, stored.Data, 16)
	assert.Equal(t, solana.TokenProgramID, stored.Owner)

	err = send(t, bank, []solana.PrivateKey{payer, acct}, system.NewAllocateInstruction(acct.PublicKey(), system.MaxPermittedDataLength+1))
	assert.ErrorIs(t, err, system.ErrAccountAlreadyInUse)
}

func TestAllocateTooLarge(t *testing.T) {
	bank, payer := setup(t)
	acct := newKey(t)

	err := send(t, bank, []solana.PrivateKey{payer, acct}, system.NewAllocateInstruction(acct.PublicKey(), system.MaxPermittedDataLength+1))
	assert.ErrorIs(t, err, system.ErrInvalidAccountDataLength)
}

func TestUnknownInstruction(t *testing.T) {
	bank, payer := setup(t)

	err := send(t, bank, []solana.PrivateKey{payer}, solana.NewInstruction(system.ProgramID, []*solana.AccountMeta{}, []byte{99, 0, 0, 0}))
	assert.ErrorIs(t, err, system.ErrInvalidInstructionData)
}

func mustData(t *testing.T, ix solana.Instruction) []byte {
	t.Helper()
	data, err := ix.Data()
	require.NoError(t, err)
	return data
}

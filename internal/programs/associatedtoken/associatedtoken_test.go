package associatedtoken_test

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/token-minter/internal/ledger"
	"github.com/rovshanmuradov/token-minter/internal/programs/associatedtoken"
	"github.com/rovshanmuradov/token-minter/internal/programs/spltoken"
	"github.com/rovshanmuradov/token-minter/internal/programs/system"
)

type env struct {
	t     *testing.T
	bank  *ledger.Bank
	payer solana.PrivateKey
	mint  solana.PublicKey
}

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

func newEnv(t *testing.T) *env {
	t.Helper()
	bank := ledger.NewBank(zaptest.NewLogger(t))
	bank.RegisterProgram(system.New())
	bank.RegisterProgram(spltoken.New())
	bank.RegisterProgram(associatedtoken.New())

	e := &env{t: t, bank: bank, payer: newKey(t)}
	require.NoError(t, bank.Airdrop(e.payer.PublicKey(), 10_000_000_000))

	mint := newKey(t)
	e.mint = mint.PublicKey()
	require.NoError(t, e.send([]solana.PrivateKey{mint},
		system.NewCreateAccountInstruction(e.payer.PublicKey(), e.mint, ledger.MinimumBalance(spltoken.MintSize), spltoken.MintSize, spltoken.ProgramID),
		spltoken.NewInitializeMint2Instruction(e.mint, 0, e.payer.PublicKey(), nil),
	))
	return e
}

func (e *env) send(signers []solana.PrivateKey, ixs ...solana.Instruction) error {
	e.t.Helper()
	blockhash, err := e.bank.GetRecentBlockhash(context.Background())
	require.NoError(e.t, err)
	tx, err := solana.NewTransaction(ixs, blockhash, solana.TransactionPayer(e.payer.PublicKey()))
	require.NoError(e.t, err)
	all := append([]solana.PrivateKey{e.payer}, signers...)
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for i := range all {
			if all[i].PublicKey().Equals(key) {
				return &all[i]
			}
		}
		return nil
	})
	require.NoError(e.t, err)
	_, err = e.bank.SendTransaction(context.Background(), tx)
	return err
}

func (e *env) tokenAccount(wallet solana.PublicKey) (*spltoken.Account, *ledger.Account) {
	e.t.Helper()
	ata, _, err := associatedtoken.Address(wallet, e.mint)
	require.NoError(e.t, err)
	raw, ok := e.bank.Account(ata)
	require.True(e.t, ok, "associated token account must exist")
	decoded, err := spltoken.DecodeAccount(raw.Data)
	require.NoError(e.t, err)
	return decoded, raw
}

func TestAddressMatchesSolanaGo(t *testing.T) {
	wallet, mint := newKey(t).PublicKey(), newKey(t).PublicKey()

	got, bump, err := associatedtoken.Address(wallet, mint)
	require.NoError(t, err)
	want, wantBump, err := solana.FindProgramAddress([][]byte{wallet[:], solana.TokenProgramID[:], mint[:]}, solana.SPLAssociatedTokenAccountProgramID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, wantBump, bump)
}

func TestCreate(t *testing.T) {
	e := newEnv(t)
	wallet := newKey(t).PublicKey()

	ix, err := associatedtoken.NewCreateInstruction(e.payer.PublicKey(), wallet, e.mint)
	require.NoError(t, err)
	require.NoError(t, e.send(nil, ix))

	account, raw := e.tokenAccount(wallet)
	assert.Equal(t, spltoken.ProgramID, raw.Owner)
	assert.Equal(t, ledger.MinimumBalance(spltoken.AccountSize), raw.Lamports)
	assert.Equal(t, wallet, account.Owner)
	assert.Equal(t, e.mint, account.Mint)
	assert.Zero(t, account.Amount)

	// без идемпотентности повтор падает
	again, err := associatedtoken.NewCreateInstruction(e.payer.PublicKey(), wallet, e.mint)
	require.NoError(t, err)
	assert.Error(t, e.send(nil, again, again))
}

func TestCreateIdempotent(t *testing.T) {
	e := newEnv(t)
	wallet := newKey(t).PublicKey()

	ix, err := associatedtoken.NewCreateIdempotentInstruction(e.payer.PublicKey(), wallet, e.mint)
	require.NoError(t, err)
	require.NoError(t, e.send(nil, ix))
	require.NoError(t, e.send(nil, ix, ix))

	account, _ := e.tokenAccount(wallet)
	assert.Equal(t, wallet, account.Owner)
}

func TestCreatePrefundedAddress(t *testing.T) {
	e := newEnv(t)
	wallet := newKey(t).PublicKey()
	ata, _, err := associatedtoken.Address(wallet, e.mint)
	require.NoError(t, err)
	require.NoError(t, e.bank.Airdrop(ata, 1_000_000))

	ix, err := associatedtoken.NewCreateIdempotentInstruction(e.payer.PublicKey(), wallet, e.mint)
	require.NoError(t, err)
	require.NoError(t, e.send(nil, ix))

	account, raw := e.tokenAccount(wallet)
	assert.Equal(t, wallet, account.Owner)
	assert.Equal(t, ledger.MinimumBalance(spltoken.AccountSize), raw.Lamports)
}

func TestCreateRejectsWrongAddress(t *testing.T) {
	e := newEnv(t)
	wallet := newKey(t).PublicKey()

	ix := solana.NewInstruction(associatedtoken.ProgramID, []*solana.AccountMeta{
		{PublicKey: e.payer.PublicKey(), IsSigner: true, IsWritable: true},
		{PublicKey: newKey(t).PublicKey(), IsSigner: false, IsWritable: true},
		{PublicKey: wallet, IsSigner: false, IsWritable: false},
		{PublicKey: e.mint, IsSigner: false, IsWritable: false},
		{PublicKey: system.ProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: spltoken.ProgramID, IsSigner: false, IsWritable: false},
	}, []byte{associatedtoken.InstructionCreateIdempotent})

	assert.ErrorIs(t, e.send(nil, ix), associatedtoken.ErrInvalidSeeds)
}

func TestCreateRejectsForeignMint(t *testing.T) {
	e := newEnv(t)
	wallet := newKey(t).PublicKey()
	notAMint := newKey(t).PublicKey()
	require.NoError(t, e.bank.Airdrop(notAMint, 1_000_000_000))

	ix, err := associatedtoken.NewCreateInstruction(e.payer.PublicKey(), wallet, notAMint)
	require.NoError(t, err)
	assert.ErrorIs(t, e.send(nil, ix), associatedtoken.ErrInvalidProgramOwner)
}

package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/token-minter/internal/authority"
	"github.com/rovshanmuradov/token-minter/internal/ledger"
	"github.com/rovshanmuradov/token-minter/internal/programs/system"
)

const sol = 1_000_000_000

var testProgramID = solana.MustPublicKeyFromBase58("Test111111111111111111111111111111111111111")

// Инструкции тестовой программы.
const (
	opIncrement      = iota // data[0]++ у аккаунта 0
	opWriteForeign          // запись в аккаунт 0 без владения
	opIncrementFail         // инкремент и ошибка
	opRecurse               // рекурсивный вызов самой себя
	opVaultTransfer         // перевод из PDA "vault" по seeds
	opUnsignedTransfer      // перевод из аккаунта 0 без подписи
	opForgedTransfer        // перевод из "vault" с seeds другой метки
)

var errTestFailure = errors.New("test program failure")

// testProgram exercises the host checks.
type testProgram struct{}

func (testProgram) ID() solana.PublicKey { return testProgramID }
func (testProgram) Name() string         { return "test" }

func (testProgram) Process(ic *ledger.InvokeContext) error {
	if len(ic.Data) == 0 {
		return errors.New("empty instruction")
	}
	switch ic.Data[0] {
	case opIncrement, opWriteForeign, opIncrementFail:
		acct, err := ic.Account(0)
		if err != nil {
			return err
		}
		if len(acct.Data) == 0 {
			acct.Data = []byte{0}
		}
		acct.Data[0]++
		ic.Log("counter %d", acct.Data[0])
		if ic.Data[0] == opIncrementFail {
			return errTestFailure
		}
		return nil
	case opRecurse:
		return ic.Invoke(solana.NewInstruction(testProgramID, []*solana.AccountMeta{
			{PublicKey: testProgramID, IsSigner: false, IsWritable: false},
		}, []byte{opRecurse}))
	case opVaultTransfer, opForgedTransfer:
		label := "vault"
		if ic.Data[0] == opForgedTransfer {
			label = "other"
		}
		auth, err := authority.Derive(testProgramID, label)
		if err != nil {
			return err
		}
		vault, _ := authority.Derive(testProgramID, "vault")
		dest, err := ic.Account(1)
		if err != nil {
			return err
		}
		return ic.InvokeSigned(system.NewTransferInstruction(vault.Address, dest.Key, sol), auth.Signer())
	case opUnsignedTransfer:
		from, err := ic.Account(0)
		if err != nil {
			return err
		}
		dest, err := ic.Account(1)
		if err != nil {
			return err
		}
		return ic.Invoke(system.NewTransferInstruction(from.Key, dest.Key, sol))
	default:
		return errors.New("unknown op")
	}
}

func newBank(t *testing.T) *ledger.Bank {
	t.Helper()
	bank := ledger.NewBank(zaptest.NewLogger(t))
	bank.RegisterProgram(system.New())
	bank.RegisterProgram(testProgram{})
	return bank
}

func fundedKey(t *testing.T, bank *ledger.Bank, lamports uint64) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	if lamports > 0 {
		require.NoError(t, bank.Airdrop(key.PublicKey(), lamports))
	}
	return key
}

func newKey(t *testing.T) solana.PublicKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key.PublicKey()
}

func buildTx(t *testing.T, blockhash solana.Hash, signers []solana.PrivateKey, ixs ...solana.Instruction) *solana.Transaction {
	t.Helper()
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
	return tx
}

func send(t *testing.T, bank *ledger.Bank, signers []solana.PrivateKey, ixs ...solana.Instruction) (solana.Signature, error) {
	t.Helper()
	blockhash, err := bank.GetRecentBlockhash(context.Background())
	require.NoError(t, err)
	return bank.SendTransaction(context.Background(), buildTx(t, blockhash, signers, ixs...))
}

func testIx(op byte, metas ...*solana.AccountMeta) solana.Instruction {
	return solana.NewInstruction(testProgramID, metas, []byte{op})
}

func counter(t *testing.T, bank *ledger.Bank) solana.PublicKey {
	t.Helper()
	key := newKey(t)
	bank.StoreAccount(key, &ledger.Account{
		Lamports: ledger.MinimumBalance(1),
		Owner:    testProgramID,
		Data:     []byte{0},
	})
	return key
}

func balance(t *testing.T, bank *ledger.Bank, key solana.PublicKey) uint64 {
	t.Helper()
	b, err := bank.GetBalance(context.Background(), key, "")
	require.NoError(t, err)
	return b
}

// internal/blockchain/types.go
package blockchain

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var (
	// ErrAccountNotFound is returned when an address holds no account.
	ErrAccountNotFound = errors.New("account not found")

	// ErrBlockhashNotFound is returned when a transaction references an expired
	// or unknown blockhash. The transaction was not executed and may be rebuilt.
	ErrBlockhashNotFound = errors.New("BlockhashNotFound: blockhash not found")
)

// AccountData is the raw state of an account as returned by a node.
type AccountData struct {
	Lamports   uint64
	Owner      solana.PublicKey
	Data       []byte
	Executable bool
}

// Client is the node surface the minting service needs. It is implemented by
// the RPC client in solbc and by the in-process ledger.
type Client interface {
	// Получить последний blockhash.
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
	// Отправить транзакцию.
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	// Получить данные аккаунта; ErrAccountNotFound если аккаунта нет.
	GetAccountData(ctx context.Context, pubkey solana.PublicKey) (*AccountData, error)
	// Получить баланс аккаунта в лампортах.
	GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error)
	// Ожидание подтверждения транзакции.
	WaitForTransactionConfirmation(ctx context.Context, signature solana.Signature, commitment rpc.CommitmentType) error
}

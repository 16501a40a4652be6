// internal/ledger/account.go
package ledger

import (
	"math"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/token-minter/internal/blockchain"
	"github.com/rovshanmuradov/token-minter/internal/utils/binary"
)

var (
	// NativeLoaderID owns the accounts of built-in programs.
	NativeLoaderID = solana.MustPublicKeyFromBase58("NativeLoader1111111111111111111111111111111")

	// SysvarOwnerID owns sysvar accounts.
	SysvarOwnerID = solana.MustPublicKeyFromBase58("Sysvar1111111111111111111111111111111111111")
)

// Параметры ренты, как на mainnet.
const (
	accountStorageOverhead  = 128
	lamportsPerByteYear     = 3480
	exemptionThresholdYears = 2
)

// Account is the state stored at an address.
type Account struct {
	Lamports   uint64
	Owner      solana.PublicKey
	Data       []byte
	Executable bool
}

// Clone returns a deep copy.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.Data = append([]byte(nil), a.Data...)
	return &c
}

func (a *Account) equal(b *Account) bool {
	return a.Lamports == b.Lamports &&
		a.Owner.Equals(b.Owner) &&
		a.Executable == b.Executable &&
		string(a.Data) == string(b.Data)
}

func (a *Account) toData() *blockchain.AccountData {
	return &blockchain.AccountData{
		Lamports:   a.Lamports,
		Owner:      a.Owner,
		Data:       append([]byte(nil), a.Data...),
		Executable: a.Executable,
	}
}

// MinimumBalance returns the lamports that make an account with dataLen bytes rent exempt.
func MinimumBalance(dataLen int) uint64 {
	return uint64(accountStorageOverhead+dataLen) * lamportsPerByteYear * exemptionThresholdYears
}

// IsRentExempt reports whether the account holds at least the minimum balance for its size.
func (a *Account) IsRentExempt() bool {
	return a.Lamports >= MinimumBalance(len(a.Data))
}

func rentSysvar() *Account {
	data := binary.NewWriter().
		U64(lamportsPerByteYear).
		U64(math.Float64bits(exemptionThresholdYears)).
		U8(50).
		Bytes()
	return &Account{
		Lamports: MinimumBalance(len(data)),
		Owner:    SysvarOwnerID,
		Data:     data,
	}
}

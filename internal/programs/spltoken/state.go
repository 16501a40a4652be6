// internal/programs/spltoken/state.go
package spltoken

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/token-minter/internal/utils/binary"
)

// Packed sizes of token program accounts.
const (
	MintSize    = 82
	AccountSize = 165
)

// Mint is the supply counter of a token.
type Mint struct {
	MintAuthority   *solana.PublicKey
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority *solana.PublicKey
}

// DecodeMint unpacks an 82 byte mint account.
func DecodeMint(data []byte) (*Mint, error) {
	if len(data) != MintSize {
		return nil, fmt.Errorf("%w: mint is %d bytes, want %d", ErrInvalidAccountData, len(data), MintSize)
	}
	r := binary.NewReader(data)
	m := &Mint{
		MintAuthority:   r.COptionPubKey(),
		Supply:          r.U64(),
		Decimals:        r.U8(),
		IsInitialized:   r.Bool(),
		FreezeAuthority: r.COptionPubKey(),
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccountData, err)
	}
	return m, nil
}

// Encode packs the mint into its account layout.
func (m *Mint) Encode() []byte {
	return binary.NewWriter().
		COptionPubKey(m.MintAuthority).
		U64(m.Supply).
		U8(m.Decimals).
		Bool(m.IsInitialized).
		COptionPubKey(m.FreezeAuthority).
		Bytes()
}

// AccountState is the lifecycle state of a token account.
type AccountState uint8

const (
	AccountUninitialized AccountState = iota
	AccountInitialized
	AccountFrozen
)

// Account is a token balance held by Owner.
type Account struct {
	Mint            solana.PublicKey
	Owner           solana.PublicKey
	Amount          uint64
	Delegate        *solana.PublicKey
	State           AccountState
	IsNative        *uint64
	DelegatedAmount uint64
	CloseAuthority  *solana.PublicKey
}

// DecodeAccount unpacks a 165 byte token account.
func DecodeAccount(data []byte) (*Account, error) {
	if len(data) != AccountSize {
		return nil, fmt.Errorf("%w: token account is %d bytes, want %d", ErrInvalidAccountData, len(data), AccountSize)
	}
	r := binary.NewReader(data)
	a := &Account{
		Mint:            r.PubKey(),
		Owner:           r.PubKey(),
		Amount:          r.U64(),
		Delegate:        r.COptionPubKey(),
		State:           AccountState(r.U8()),
		IsNative:        r.COptionU64(),
		DelegatedAmount: r.U64(),
		CloseAuthority:  r.COptionPubKey(),
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccountData, err)
	}
	if a.State > AccountFrozen {
		return nil, fmt.Errorf("%w: account state %d", ErrInvalidAccountData, a.State)
	}
	return a, nil
}

// Encode packs the account into its layout.
func (a *Account) Encode() []byte {
	return binary.NewWriter().
		PubKey(a.Mint).
		PubKey(a.Owner).
		U64(a.Amount).
		COptionPubKey(a.Delegate).
		U8(uint8(a.State)).
		COptionU64(a.IsNative).
		U64(a.DelegatedAmount).
		COptionPubKey(a.CloseAuthority).
		Bytes()
}

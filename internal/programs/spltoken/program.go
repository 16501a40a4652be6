// internal/programs/spltoken/program.go
package spltoken

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/token-minter/internal/ledger"
	"github.com/rovshanmuradov/token-minter/internal/utils/binary"
)

// Program executes the subset of token instructions used for issuance.
type Program struct{}

// New creates the token program.
func New() *Program {
	return &Program{}
}

func (p *Program) ID() solana.PublicKey { return ProgramID }
func (p *Program) Name() string         { return "spl-token" }

// Process dispatches on the instruction tag.
func (p *Program) Process(ic *ledger.InvokeContext) error {
	r := binary.NewReader(ic.Data)
	tag := r.U8()
	if r.Err() != nil {
		return fmt.Errorf("%w: empty instruction data", ErrInvalidInstruction)
	}

	switch tag {
	case InstructionInitializeMint2:
		decimals := r.U8()
		authority := r.PubKey()
		freeze := r.OptionPubKey()
		if r.Err() != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInstruction, r.Err())
		}
		ic.Log("Instruction: InitializeMint2")
		return initializeMint(ic, decimals, authority, freeze)
	case InstructionMintTo:
		amount := r.U64()
		if r.Err() != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInstruction, r.Err())
		}
		ic.Log("Instruction: MintTo")
		return mintTo(ic, amount)
	case InstructionInitializeAccount3:
		owner := r.PubKey()
		if r.Err() != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInstruction, r.Err())
		}
		ic.Log("Instruction: InitializeAccount3")
		return initializeAccount(ic, owner)
	default:
		return fmt.Errorf("%w: unsupported tag %d", ErrInvalidInstruction, tag)
	}
}

func initializeMint(ic *ledger.InvokeContext, decimals uint8, authority solana.PublicKey, freeze *solana.PublicKey) error {
	acct, err := ownedAccount(ic, 0)
	if err != nil {
		return err
	}
	mint, err := DecodeMint(acct.Data)
	if err != nil {
		return err
	}
	if mint.IsInitialized {
		return fmt.Errorf("%w: mint %s", ErrAlreadyInUse, acct.Key)
	}
	if !acct.IsRentExempt() {
		return fmt.Errorf("%w: mint %s", ErrNotRentExempt, acct.Key)
	}

	mint = &Mint{
		MintAuthority:   &authority,
		Decimals:        decimals,
		IsInitialized:   true,
		FreezeAuthority: freeze,
	}
	copy(acct.Data, mint.Encode())
	return nil
}

func mintTo(ic *ledger.InvokeContext, amount uint64) error {
	mintAcct, err := ownedAccount(ic, 0)
	if err != nil {
		return err
	}
	destAcct, err := ownedAccount(ic, 1)
	if err != nil {
		return err
	}
	authority, err := ic.Account(2)
	if err != nil {
		return err
	}

	dest, err := DecodeAccount(destAcct.Data)
	if err != nil {
		return err
	}
	switch dest.State {
	case AccountUninitialized:
		return fmt.Errorf("%w: %s", ErrUninitializedState, destAcct.Key)
	case AccountFrozen:
		return fmt.Errorf("%w: %s", ErrAccountFrozen, destAcct.Key)
	}
	if !dest.Mint.Equals(mintAcct.Key) {
		return fmt.Errorf("%w: %s holds %s", ErrMintMismatch, destAcct.Key, dest.Mint)
	}

	mint, err := DecodeMint(mintAcct.Data)
	if err != nil {
		return err
	}
	if !mint.IsInitialized {
		return fmt.Errorf("%w: mint %s", ErrUninitializedState, mintAcct.Key)
	}
	if mint.MintAuthority == nil {
		return fmt.Errorf("%w: %s", ErrFixedSupply, mintAcct.Key)
	}
	if !mint.MintAuthority.Equals(authority.Key) {
		return fmt.Errorf("%w: mint authority is %s, got %s", ErrOwnerMismatch, mint.MintAuthority, authority.Key)
	}
	if !authority.Signer {
		return fmt.Errorf("%w: mint authority %s", ledger.ErrMissingRequiredSignature, authority.Key)
	}

	if mint.Supply+amount < mint.Supply {
		return fmt.Errorf("%w: supply %d + %d", ErrOverflow, mint.Supply, amount)
	}
	if dest.Amount+amount < dest.Amount {
		return fmt.Errorf("%w: balance %d + %d", ErrOverflow, dest.Amount, amount)
	}
	mint.Supply += amount
	dest.Amount += amount

	copy(mintAcct.Data, mint.Encode())
	copy(destAcct.Data, dest.Encode())
	return nil
}

func initializeAccount(ic *ledger.InvokeContext, owner solana.PublicKey) error {
	acct, err := ownedAccount(ic, 0)
	if err != nil {
		return err
	}
	mintAcct, err := ownedAccount(ic, 1)
	if err != nil {
		return err
	}

	existing, err := DecodeAccount(acct.Data)
	if err != nil {
		return err
	}
	if existing.State != AccountUninitialized {
		return fmt.Errorf("%w: token account %s", ErrAlreadyInUse, acct.Key)
	}
	if !acct.IsRentExempt() {
		return fmt.Errorf("%w: token account %s", ErrNotRentExempt, acct.Key)
	}

	mint, err := DecodeMint(mintAcct.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMint, err)
	}
	if !mint.IsInitialized {
		return fmt.Errorf("%w: mint %s is not initialized", ErrInvalidMint, mintAcct.Key)
	}

	account := &Account{
		Mint:  mintAcct.Key,
		Owner: owner,
		State: AccountInitialized,
	}
	copy(acct.Data, account.Encode())
	return nil
}

func ownedAccount(ic *ledger.InvokeContext, i int) (*ledger.AccountRef, error) {
	acct, err := ic.Account(i)
	if err != nil {
		return nil, err
	}
	if !acct.Owner.Equals(ProgramID) {
		return nil, fmt.Errorf("%w: %s is owned by %s", ErrIncorrectProgramID, acct.Key, acct.Owner)
	}
	return acct, nil
}

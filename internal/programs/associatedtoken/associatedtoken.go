// internal/programs/associatedtoken/associatedtoken.go
package associatedtoken

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/token-minter/internal/authority"
	"github.com/rovshanmuradov/token-minter/internal/ledger"
	"github.com/rovshanmuradov/token-minter/internal/programs/spltoken"
	"github.com/rovshanmuradov/token-minter/internal/programs/system"
)

// ProgramID is the associated token account program address.
var ProgramID = solana.SPLAssociatedTokenAccountProgramID

// Instruction tags. Empty instruction data means Create.
const (
	InstructionCreate           uint8 = 0
	InstructionCreateIdempotent uint8 = 1
)

var (
	ErrInvalidSeeds        = errors.New("associated address does not match seed derivation")
	ErrIllegalOwner        = errors.New("associated token account owner does not match")
	ErrInvalidInstruction  = errors.New("invalid associated token instruction")
	ErrInvalidProgramOwner = errors.New("mint is not owned by the token program")
)

// Address returns the associated token account of wallet for mint.
func Address(wallet, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindAssociatedTokenAddress(wallet, mint)
}

// NewCreateInstruction creates the associated token account and fails if it exists.
func NewCreateInstruction(payer, wallet, mint solana.PublicKey) (solana.Instruction, error) {
	return newInstruction(InstructionCreate, payer, wallet, mint)
}

// NewCreateIdempotentInstruction creates the associated token account unless it already exists.
func NewCreateIdempotentInstruction(payer, wallet, mint solana.PublicKey) (solana.Instruction, error) {
	return newInstruction(InstructionCreateIdempotent, payer, wallet, mint)
}

func newInstruction(tag uint8, payer, wallet, mint solana.PublicKey) (solana.Instruction, error) {
	ata, _, err := Address(wallet, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to find associated token address: %w", err)
	}
	return solana.NewInstruction(ProgramID, []*solana.AccountMeta{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: ata, IsSigner: false, IsWritable: true},
		{PublicKey: wallet, IsSigner: false, IsWritable: false},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: system.ProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: spltoken.ProgramID, IsSigner: false, IsWritable: false},
	}, []byte{tag}), nil
}

// Program executes associated token account instructions.
type Program struct{}

// New creates the associated token program.
func New() *Program {
	return &Program{}
}

func (p *Program) ID() solana.PublicKey { return ProgramID }
func (p *Program) Name() string         { return "associated-token" }

// Process creates the associated token account, optionally idempotently.
func (p *Program) Process(ic *ledger.InvokeContext) error {
	tag := InstructionCreate
	if len(ic.Data) > 0 {
		tag = ic.Data[0]
	}
	if tag != InstructionCreate && tag != InstructionCreateIdempotent {
		return fmt.Errorf("%w: unsupported tag %d", ErrInvalidInstruction, tag)
	}

	accounts := ic.Accounts()
	if len(accounts) < 6 {
		_, err := ic.Account(5)
		return err
	}
	payer, ata, wallet, mint, tokenProgram := accounts[0], accounts[1], accounts[2], accounts[3], accounts[5]
	if !tokenProgram.Key.Equals(spltoken.ProgramID) {
		return fmt.Errorf("%w: unexpected token program %s", ErrInvalidInstruction, tokenProgram.Key)
	}

	address, bump, err := Address(wallet.Key, mint.Key)
	if err != nil {
		return fmt.Errorf("failed to find associated token address: %w", err)
	}
	if !address.Equals(ata.Key) {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidSeeds, address, ata.Key)
	}

	if tag == InstructionCreateIdempotent && ata.Owner.Equals(spltoken.ProgramID) {
		existing, err := spltoken.DecodeAccount(ata.Data)
		if err != nil {
			return err
		}
		if !existing.Owner.Equals(wallet.Key) || !existing.Mint.Equals(mint.Key) {
			return fmt.Errorf("%w: %s", ErrIllegalOwner, ata.Key)
		}
		return nil
	}

	if !mint.Owner.Equals(spltoken.ProgramID) {
		return fmt.Errorf("%w: %s", ErrInvalidProgramOwner, mint.Key)
	}

	ic.Log("Create")
	signer := authority.NewSignerSeeds(wallet.Key[:], spltoken.ProgramID[:], mint.Key[:], []byte{bump})
	if err := system.CreatePDA(ic, payer.Key, ata, spltoken.AccountSize, spltoken.ProgramID, signer); err != nil {
		return err
	}
	ic.Log("Initialize the associated token account")
	return ic.Invoke(spltoken.NewInitializeAccount3Instruction(ata.Key, mint.Key, wallet.Key))
}

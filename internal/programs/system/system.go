// internal/programs/system/system.go
package system

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/token-minter/internal/ledger"
	"github.com/rovshanmuradov/token-minter/internal/utils/binary"
)

// ProgramID is the system program address.
var ProgramID = solana.SystemProgramID

// Instruction tags (u32 little-endian).
const (
	InstructionCreateAccount uint32 = 0
	InstructionAssign        uint32 = 1
	InstructionTransfer      uint32 = 2
	InstructionAllocate      uint32 = 8
)

// MaxPermittedDataLength is the largest account the system program allocates.
const MaxPermittedDataLength = 10 * 1024 * 1024

var (
	ErrAccountAlreadyInUse        = errors.New("an account with the same address already exists")
	ErrResultWithNegativeLamports = errors.New("account does not have enough lamports to perform the operation")
	ErrInvalidAccountDataLength   = errors.New("cannot allocate account data of this length")
	ErrInvalidInstructionData     = errors.New("invalid system instruction data")
	ErrFromMustNotCarryData       = errors.New("from account must not carry data")
)

// Program executes system instructions on the local ledger.
type Program struct{}

// New creates the system program.
func New() *Program {
	return &Program{}
}

func (p *Program) ID() solana.PublicKey { return ProgramID }
func (p *Program) Name() string         { return "system" }

// Process dispatches on the instruction tag.
func (p *Program) Process(ic *ledger.InvokeContext) error {
	r := binary.NewReader(ic.Data)
	tag := r.U32()
	if r.Err() != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInstructionData, r.Err())
	}

	switch tag {
	case InstructionCreateAccount:
		lamports, space, owner := r.U64(), r.U64(), r.PubKey()
		if r.Err() != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInstructionData, r.Err())
		}
		return createAccount(ic, lamports, space, owner)
	case InstructionAssign:
		owner := r.PubKey()
		if r.Err() != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInstructionData, r.Err())
		}
		return assign(ic, owner)
	case InstructionTransfer:
		lamports := r.U64()
		if r.Err() != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInstructionData, r.Err())
		}
		return transfer(ic, lamports)
	case InstructionAllocate:
		space := r.U64()
		if r.Err() != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInstructionData, r.Err())
		}
		return allocate(ic, space)
	default:
		return fmt.Errorf("%w: unsupported tag %d", ErrInvalidInstructionData, tag)
	}
}

func createAccount(ic *ledger.InvokeContext, lamports, space uint64, owner solana.PublicKey) error {
	from, err := signerAt(ic, 0)
	if err != nil {
		return err
	}
	to, err := signerAt(ic, 1)
	if err != nil {
		return err
	}
	if to.Lamports > 0 {
		return fmt.Errorf("%w: %s already holds %d lamports", ErrAccountAlreadyInUse, to.Key, to.Lamports)
	}
	if err := allocateAndAssign(to, space, owner); err != nil {
		return err
	}
	return move(from, to, lamports)
}

func assign(ic *ledger.InvokeContext, owner solana.PublicKey) error {
	acct, err := signerAt(ic, 0)
	if err != nil {
		return err
	}
	if acct.Owner.Equals(owner) {
		return nil
	}
	if !acct.Owner.Equals(ProgramID) {
		return fmt.Errorf("%w: %s is owned by %s", ErrAccountAlreadyInUse, acct.Key, acct.Owner)
	}
	acct.Owner = owner
	return nil
}

func transfer(ic *ledger.InvokeContext, lamports uint64) error {
	from, err := signerAt(ic, 0)
	if err != nil {
		return err
	}
	to, err := ic.Account(1)
	if err != nil {
		return err
	}
	if len(from.Data) > 0 {
		return fmt.Errorf("%w: %s", ErrFromMustNotCarryData, from.Key)
	}
	return move(from, to, lamports)
}

func allocate(ic *ledger.InvokeContext, space uint64) error {
	acct, err := signerAt(ic, 0)
	if err != nil {
		return err
	}
	return allocateAndAssign(acct, space, ProgramID)
}

func allocateAndAssign(acct *ledger.AccountRef, space uint64, owner solana.PublicKey) error {
	if len(acct.Data) > 0 || !acct.Owner.Equals(ProgramID) {
		return fmt.Errorf("%w: %s", ErrAccountAlreadyInUse, acct.Key)
	}
	if space > MaxPermittedDataLength {
		return fmt.Errorf("%w: %d bytes", ErrInvalidAccountDataLength, space)
	}
	acct.Data = make([]byte, space)
	acct.Owner = owner
	return nil
}

func move(from, to *ledger.AccountRef, lamports uint64) error {
	if from.Lamports < lamports {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrResultWithNegativeLamports, from.Key, from.Lamports, lamports)
	}
	from.Lamports -= lamports
	to.Lamports += lamports
	return nil
}

func signerAt(ic *ledger.InvokeContext, i int) (*ledger.AccountRef, error) {
	acct, err := ic.Account(i)
	if err != nil {
		return nil, err
	}
	if !acct.Signer {
		return nil, fmt.Errorf("%w: %s", ledger.ErrMissingRequiredSignature, acct.Key)
	}
	return acct, nil
}

// internal/ledger/errors.go
package ledger

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/token-minter/internal/blockchain"
)

// Ошибки до исполнения: транзакция не обработана, состояние и слот не меняются.
var (
	ErrBlockhashNotFound       = blockchain.ErrBlockhashNotFound
	ErrAlreadyProcessed        = errors.New("transaction already processed")
	ErrSignatureFailure        = errors.New("transaction signature verification failure")
	ErrInvalidTransaction      = errors.New("invalid transaction")
	ErrInsufficientFundsForFee = errors.New("insufficient funds for fee")
	ErrTransactionNotFound     = errors.New("transaction not found")
)

// Ошибки исполнения: транзакция откатывается целиком.
var (
	ErrProgramNotFound             = errors.New("program not found")
	ErrMissingAccount              = errors.New("account required by the instruction is missing")
	ErrNotEnoughAccountKeys        = errors.New("not enough account keys given to the instruction")
	ErrPrivilegeEscalation         = errors.New("cross-program invocation with unauthorized signer or writable account")
	ErrMissingRequiredSignature    = errors.New("missing required signature for instruction")
	ErrInvalidSeeds                = errors.New("provided seeds do not result in a valid address")
	ErrReadonlyModified            = errors.New("instruction modified data of a read-only account")
	ErrExternalAccountDataModified = errors.New("instruction modified data of an account it does not own")
	ErrExternalLamportSpend        = errors.New("instruction spent from the balance of an account it does not own")
	ErrModifiedProgramID           = errors.New("instruction illegally modified the program id of an account")
	ErrUnbalancedInstruction       = errors.New("sum of account balances before and after instruction do not match")
	ErrCallDepth                   = errors.New("cross-program invocation call depth too deep")
	ErrInsufficientFundsForRent    = errors.New("transaction results in an account with insufficient funds for rent")
)

// TransactionError reports a rejected or failed transaction. Index is the
// failing instruction, or -1 when the failure is not tied to an instruction.
type TransactionError struct {
	Signature solana.Signature
	Index     int
	Err       error
}

func (e *TransactionError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("transaction %s failed: %v", e.Signature, e.Err)
	}
	return fmt.Sprintf("transaction %s failed at instruction %d: %v", e.Signature, e.Index, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

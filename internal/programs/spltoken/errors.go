// internal/programs/spltoken/errors.go
package spltoken

import "errors"

var (
	ErrNotRentExempt      = errors.New("lamport balance below rent-exempt threshold")
	ErrInvalidMint        = errors.New("invalid mint")
	ErrMintMismatch       = errors.New("account not associated with this mint")
	ErrOwnerMismatch      = errors.New("owner does not match")
	ErrFixedSupply        = errors.New("fixed supply: token mint has no mint authority")
	ErrAlreadyInUse       = errors.New("account or token already in use")
	ErrUninitializedState = errors.New("state is uninitialized")
	ErrOverflow           = errors.New("operation overflowed")
	ErrAccountFrozen      = errors.New("account is frozen")
	ErrInvalidInstruction = errors.New("invalid token instruction")
	ErrInvalidAccountData = errors.New("invalid token account data")
	ErrIncorrectProgramID = errors.New("account is not owned by the token program")
)

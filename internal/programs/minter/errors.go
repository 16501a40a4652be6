// internal/programs/minter/errors.go
package minter

import (
	"errors"
	"fmt"

	"github.com/rovshanmuradov/token-minter/internal/authority"
)

var (
	// ErrDerivationExhausted is returned when the mint authority cannot be derived.
	ErrDerivationExhausted = authority.ErrDerivationExhausted

	// ErrAuthorityMismatch is returned when a supplied mint is not the derived
	// authority or records another mint authority.
	ErrAuthorityMismatch = authority.ErrAuthorityMismatch

	// ErrAlreadyInitialized is returned when the mint account already exists.
	ErrAlreadyInitialized = errors.New("mint already initialized")

	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrInvalidArguments   = errors.New("invalid instruction arguments")
	ErrInvalidProgramID   = errors.New("unexpected program or sysvar account")
	ErrInvalidDestination = errors.New("destination is not the associated token account of the holder")
	ErrMintNotInitialized = errors.New("mint is not an initialized token mint")
	ErrMissingPayerSigner = errors.New("payer must sign")
)

// ExternalProgramError wraps a failure returned by a program invoked by the minter.
type ExternalProgramError struct {
	Program     string
	Instruction string
	Err         error
}

func (e *ExternalProgramError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Program, e.Instruction, e.Err)
}

func (e *ExternalProgramError) Unwrap() error {
	return e.Err
}

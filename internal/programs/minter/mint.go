// internal/programs/minter/mint.go
package minter

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/token-minter/internal/ledger"
	"github.com/rovshanmuradov/token-minter/internal/programs/associatedtoken"
	"github.com/rovshanmuradov/token-minter/internal/programs/spltoken"
	"github.com/rovshanmuradov/token-minter/internal/programs/system"
)

// Порядок аккаунтов mint_tokens.
const (
	mintMint = iota
	mintDestination
	mintPayer
	mintHolder
	mintRent
	mintSystemProgram
	mintTokenProgram
	mintAssociatedTokenProgram
	mintAccountCount
)

// mintTokens issues quantity base units to the holder's associated token
// account, creating it first if needed.
func (p *Program) mintTokens(ic *ledger.InvokeContext, quantity uint64) error {
	if _, err := ic.Account(mintAccountCount - 1); err != nil {
		return err
	}
	accounts := ic.Accounts()
	mintAcct, destination, payer, holder := accounts[mintMint], accounts[mintDestination], accounts[mintPayer], accounts[mintHolder]

	for _, check := range []struct {
		i    int
		want solana.PublicKey
		name string
	}{
		{mintRent, solana.SysVarRentPubkey, "rent sysvar"},
		{mintSystemProgram, system.ProgramID, "system program"},
		{mintTokenProgram, spltoken.ProgramID, "token program"},
		{mintAssociatedTokenProgram, associatedtoken.ProgramID, "associated token program"},
	} {
		if err := expectKey(accounts[check.i], check.want, check.name); err != nil {
			return err
		}
	}

	auth, err := p.MintAuthority()
	if err != nil {
		return err
	}
	if err := auth.Check(mintAcct.Key); err != nil {
		return err
	}
	if !mintAcct.Owner.Equals(spltoken.ProgramID) {
		return fmt.Errorf("%w: %s is owned by %s", ErrMintNotInitialized, mintAcct.Key, mintAcct.Owner)
	}
	mint, err := spltoken.DecodeMint(mintAcct.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMintNotInitialized, err)
	}
	if !mint.IsInitialized {
		return fmt.Errorf("%w: %s", ErrMintNotInitialized, mintAcct.Key)
	}
	if mint.MintAuthority == nil {
		return fmt.Errorf("%w: mint %s has no mint authority", ErrAuthorityMismatch, mintAcct.Key)
	}
	if err := auth.Check(*mint.MintAuthority); err != nil {
		return err
	}
	if !payer.Signer {
		return fmt.Errorf("%w: %s", ErrMissingPayerSigner, payer.Key)
	}

	ata, _, err := associatedtoken.Address(holder.Key, mintAcct.Key)
	if err != nil {
		return fmt.Errorf("failed to derive destination: %w", err)
	}
	if !ata.Equals(destination.Key) {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidDestination, ata, destination.Key)
	}

	createIx, err := associatedtoken.NewCreateIdempotentInstruction(payer.Key, holder.Key, mintAcct.Key)
	if err != nil {
		return fmt.Errorf("failed to build associated token instruction: %w", err)
	}
	if err := ic.Invoke(createIx); err != nil {
		return external("associated-token", "CreateIdempotent", err)
	}

	mintToIx := spltoken.NewMintToInstruction(mintAcct.Key, destination.Key, auth.Address, quantity)
	if err := ic.InvokeSigned(mintToIx, auth.Signer()); err != nil {
		return external("spl-token", "MintTo", err)
	}

	ic.Log("Minted %d base units to %s", quantity, destination.Key)
	return nil
}

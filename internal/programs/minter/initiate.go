// internal/programs/minter/initiate.go
package minter

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/token-minter/internal/ledger"
	"github.com/rovshanmuradov/token-minter/internal/programs/metadata"
	"github.com/rovshanmuradov/token-minter/internal/programs/spltoken"
	"github.com/rovshanmuradov/token-minter/internal/programs/system"
)

// Порядок аккаунтов initiate_token.
const (
	initMetadata = iota
	initMint
	initPayer
	initRent
	initSystemProgram
	initTokenProgram
	initMetadataProgram
	initAccountCount
)

// initiateToken creates the mint at the derived address with the derived
// address as its authority, then creates its metadata record.
func (p *Program) initiateToken(ic *ledger.InvokeContext, params InitTokenParams) error {
	if _, err := ic.Account(initAccountCount - 1); err != nil {
		return err
	}
	accounts := ic.Accounts()
	metadataAcct, mintAcct, payer := accounts[initMetadata], accounts[initMint], accounts[initPayer]

	for _, check := range []struct {
		i    int
		want solana.PublicKey
		name string
	}{
		{initRent, solana.SysVarRentPubkey, "rent sysvar"},
		{initSystemProgram, system.ProgramID, "system program"},
		{initTokenProgram, spltoken.ProgramID, "token program"},
		{initMetadataProgram, metadata.ProgramID, "metadata program"},
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
	if !payer.Signer {
		return fmt.Errorf("%w: %s", ErrMissingPayerSigner, payer.Key)
	}
	signer := auth.Signer()

	// Адрес mint мог быть пополнен заранее: CreatePDA тогда делает transfer, allocate и assign.
	if err := system.CreatePDA(ic, payer.Key, mintAcct, spltoken.MintSize, spltoken.ProgramID, signer); err != nil {
		wrapped := external("system", "CreateAccount", err)
		if errors.Is(err, system.ErrAccountAlreadyInUse) {
			return fmt.Errorf("%w: %w", ErrAlreadyInitialized, wrapped)
		}
		return wrapped
	}

	initMintIx := spltoken.NewInitializeMint2Instruction(auth.Address, params.Decimals, auth.Address, nil)
	if err := ic.Invoke(initMintIx); err != nil {
		return external("spl-token", "InitializeMint2", err)
	}

	metadataIx, err := metadata.NewCreateMetadataAccountV3Instruction(
		metadata.CreateMetadataAccountV3Accounts{
			Metadata:        metadataAcct.Key,
			Mint:            auth.Address,
			MintAuthority:   auth.Address,
			Payer:           payer.Key,
			UpdateAuthority: auth.Address,
		},
		metadata.CreateMetadataAccountV3Args{
			Data: metadata.DataV2{
				Name:   params.Name,
				Symbol: params.Symbol,
				URI:    params.URI,
			},
			IsMutable:               true,
			UpdateAuthorityIsSigner: true,
		},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if err := ic.InvokeSigned(metadataIx, signer); err != nil {
		return external("token-metadata", "CreateMetadataAccountV3", err)
	}

	ic.Log("Token mint created successfully!")
	return nil
}

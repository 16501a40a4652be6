// internal/programs/minter/instructions.go
package minter

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/token-minter/internal/authority"
	"github.com/rovshanmuradov/token-minter/internal/programs/associatedtoken"
	"github.com/rovshanmuradov/token-minter/internal/programs/metadata"
	"github.com/rovshanmuradov/token-minter/internal/programs/spltoken"
	"github.com/rovshanmuradov/token-minter/internal/programs/system"
	"github.com/rovshanmuradov/token-minter/internal/utils/binary"
)

// MintAddress returns the mint of the minter deployed at programID.
func MintAddress(programID solana.PublicKey) (solana.PublicKey, error) {
	auth, err := authority.Derive(programID, authority.DefaultLabel)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return auth.Address, nil
}

// InitiateTokenAccounts lists the caller-chosen accounts of initiate_token.
type InitiateTokenAccounts struct {
	Metadata solana.PublicKey
	Mint     solana.PublicKey
	Payer    solana.PublicKey
}

// Build encodes initiate_token with params.
func (a InitiateTokenAccounts) Build(programID solana.PublicKey, params InitTokenParams) (solana.Instruction, error) {
	w := binary.NewWriter().Raw(initiateTokenDiscriminator)
	params.encode(w)
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("failed to encode initiate_token: %w", err)
	}
	return solana.NewInstruction(programID, []*solana.AccountMeta{
		{PublicKey: a.Metadata, IsSigner: false, IsWritable: true},
		{PublicKey: a.Mint, IsSigner: false, IsWritable: true},
		{PublicKey: a.Payer, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
		{PublicKey: system.ProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: spltoken.ProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: metadata.ProgramID, IsSigner: false, IsWritable: false},
	}, w.Bytes()), nil
}

// NewInitiateTokenInstruction builds initiate_token against the derived mint.
func NewInitiateTokenInstruction(programID, payer solana.PublicKey, params InitTokenParams) (solana.Instruction, error) {
	mint, err := MintAddress(programID)
	if err != nil {
		return nil, err
	}
	metadataAddress, _, err := metadata.Address(mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive metadata address: %w", err)
	}
	return InitiateTokenAccounts{Metadata: metadataAddress, Mint: mint, Payer: payer}.Build(programID, params)
}

// MintTokensAccounts lists the caller-chosen accounts of mint_tokens.
type MintTokensAccounts struct {
	Mint        solana.PublicKey
	Destination solana.PublicKey
	Payer       solana.PublicKey
	Holder      solana.PublicKey
}

// Build encodes mint_tokens for quantity base units.
func (a MintTokensAccounts) Build(programID solana.PublicKey, quantity uint64) solana.Instruction {
	data := binary.NewWriter().Raw(mintTokensDiscriminator).U64(quantity).Bytes()
	return solana.NewInstruction(programID, []*solana.AccountMeta{
		{PublicKey: a.Mint, IsSigner: false, IsWritable: true},
		{PublicKey: a.Destination, IsSigner: false, IsWritable: true},
		{PublicKey: a.Payer, IsSigner: true, IsWritable: true},
		{PublicKey: a.Holder, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
		{PublicKey: system.ProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: spltoken.ProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: associatedtoken.ProgramID, IsSigner: false, IsWritable: false},
	}, data)
}

// NewMintTokensInstruction builds mint_tokens to the associated token account of holder.
func NewMintTokensInstruction(programID, payer, holder solana.PublicKey, quantity uint64) (solana.Instruction, error) {
	mint, err := MintAddress(programID)
	if err != nil {
		return nil, err
	}
	destination, _, err := associatedtoken.Address(holder, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive destination: %w", err)
	}
	return MintTokensAccounts{Mint: mint, Destination: destination, Payer: payer, Holder: holder}.Build(programID, quantity), nil
}

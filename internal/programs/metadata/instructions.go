// internal/programs/metadata/instructions.go
package metadata

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/token-minter/internal/programs/system"
	"github.com/rovshanmuradov/token-minter/internal/utils/binary"
)

// ProgramID is the token metadata program address.
var ProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

// InstructionCreateMetadataAccountV3 is the instruction tag of CreateMetadataAccountV3.
const InstructionCreateMetadataAccountV3 uint8 = 33

const (
	seedPrefix  = "metadata"
	seedEdition = "edition"
)

// Address returns the metadata account of mint.
func Address(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(seedPrefix), ProgramID[:], mint[:]}, ProgramID)
}

// EditionAddress returns the edition account of mint.
func EditionAddress(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{[]byte(seedPrefix), ProgramID[:], mint[:], []byte(seedEdition)}, ProgramID)
}

// CreateMetadataAccountV3Accounts lists the accounts of CreateMetadataAccountV3.
type CreateMetadataAccountV3Accounts struct {
	Metadata        solana.PublicKey
	Mint            solana.PublicKey
	MintAuthority   solana.PublicKey
	Payer           solana.PublicKey
	UpdateAuthority solana.PublicKey
}

// CreateMetadataAccountV3Args are the instruction arguments.
type CreateMetadataAccountV3Args struct {
	Data                    DataV2
	IsMutable               bool
	UpdateAuthorityIsSigner bool
}

// NewCreateMetadataAccountV3Instruction builds the instruction. Collection
// details are always None.
func NewCreateMetadataAccountV3Instruction(accounts CreateMetadataAccountV3Accounts, args CreateMetadataAccountV3Args) (solana.Instruction, error) {
	w := binary.NewWriter().
		U8(InstructionCreateMetadataAccountV3).
		String(args.Data.Name).
		String(args.Data.Symbol).
		String(args.Data.URI).
		U16(args.Data.SellerFeeBasisPoints)
	writeCreators(w, args.Data.Creators)
	writeCollection(w, args.Data.Collection)
	writeUses(w, args.Data.Uses)
	w.Bool(args.IsMutable).U8(0)
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("failed to encode metadata instruction: %w", err)
	}

	return solana.NewInstruction(ProgramID, []*solana.AccountMeta{
		{PublicKey: accounts.Metadata, IsSigner: false, IsWritable: true},
		{PublicKey: accounts.Mint, IsSigner: false, IsWritable: false},
		{PublicKey: accounts.MintAuthority, IsSigner: true, IsWritable: false},
		{PublicKey: accounts.Payer, IsSigner: true, IsWritable: true},
		{PublicKey: accounts.UpdateAuthority, IsSigner: args.UpdateAuthorityIsSigner, IsWritable: false},
		{PublicKey: system.ProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
	}, w.Bytes()), nil
}

func decodeCreateArgs(data []byte) (*CreateMetadataAccountV3Args, error) {
	r := binary.NewReader(data)
	if tag := r.U8(); r.Err() == nil && tag != InstructionCreateMetadataAccountV3 {
		return nil, fmt.Errorf("%w: unsupported tag %d", ErrInvalidInstruction, tag)
	}
	args := &CreateMetadataAccountV3Args{}
	args.Data.Name = r.String()
	args.Data.Symbol = r.String()
	args.Data.URI = r.String()
	args.Data.SellerFeeBasisPoints = r.U16()
	args.Data.Creators = readCreators(r)
	args.Data.Collection = readCollection(r)
	args.Data.Uses = readUses(r)
	args.IsMutable = r.Bool()
	collectionDetails := r.U8()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInstruction, err)
	}
	if collectionDetails != 0 {
		return nil, fmt.Errorf("%w: collection details are not supported", ErrInvalidInstruction)
	}
	return args, nil
}

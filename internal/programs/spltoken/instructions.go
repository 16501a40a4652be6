// internal/programs/spltoken/instructions.go
package spltoken

import (
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/token-minter/internal/utils/binary"
)

// ProgramID is the SPL token program address.
var ProgramID = solana.TokenProgramID

// Instruction tags.
const (
	InstructionMintTo             uint8 = 7
	InstructionInitializeAccount3 uint8 = 18
	InstructionInitializeMint2    uint8 = 20
)

// NewInitializeMint2Instruction initializes an allocated mint account. The
// freeze authority is packed as a one-byte tagged option.
func NewInitializeMint2Instruction(mint solana.PublicKey, decimals uint8, mintAuthority solana.PublicKey, freezeAuthority *solana.PublicKey) solana.Instruction {
	data := binary.NewWriter().
		U8(InstructionInitializeMint2).
		U8(decimals).
		PubKey(mintAuthority).
		OptionPubKey(freezeAuthority).
		Bytes()
	return solana.NewInstruction(ProgramID, []*solana.AccountMeta{
		{PublicKey: mint, IsSigner: false, IsWritable: true},
	}, data)
}

// NewMintToInstruction issues amount base units of mint into destination.
func NewMintToInstruction(mint, destination, mintAuthority solana.PublicKey, amount uint64) solana.Instruction {
	data := binary.NewWriter().U8(InstructionMintTo).U64(amount).Bytes()
	return solana.NewInstruction(ProgramID, []*solana.AccountMeta{
		{PublicKey: mint, IsSigner: false, IsWritable: true},
		{PublicKey: destination, IsSigner: false, IsWritable: true},
		{PublicKey: mintAuthority, IsSigner: true, IsWritable: false},
	}, data)
}

// NewInitializeAccount3Instruction initializes an allocated token account for owner.
func NewInitializeAccount3Instruction(account, mint, owner solana.PublicKey) solana.Instruction {
	data := binary.NewWriter().U8(InstructionInitializeAccount3).PubKey(owner).Bytes()
	return solana.NewInstruction(ProgramID, []*solana.AccountMeta{
		{PublicKey: account, IsSigner: false, IsWritable: true},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
	}, data)
}

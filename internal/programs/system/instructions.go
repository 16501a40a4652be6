// internal/programs/system/instructions.go
package system

import (
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/token-minter/internal/utils/binary"
)

// NewCreateAccountInstruction funds to from from and allocates space bytes owned by owner.
// Both accounts must sign.
func NewCreateAccountInstruction(from, to solana.PublicKey, lamports, space uint64, owner solana.PublicKey) solana.Instruction {
	data := binary.NewWriter().U32(InstructionCreateAccount).U64(lamports).U64(space).PubKey(owner).Bytes()
	return solana.NewInstruction(ProgramID, []*solana.AccountMeta{
		{PublicKey: from, IsSigner: true, IsWritable: true},
		{PublicKey: to, IsSigner: true, IsWritable: true},
	}, data)
}

// NewAssignInstruction hands account over to owner.
func NewAssignInstruction(account, owner solana.PublicKey) solana.Instruction {
	data := binary.NewWriter().U32(InstructionAssign).PubKey(owner).Bytes()
	return solana.NewInstruction(ProgramID, []*solana.AccountMeta{
		{PublicKey: account, IsSigner: true, IsWritable: true},
	}, data)
}

// NewTransferInstruction moves lamports between system accounts.
func NewTransferInstruction(from, to solana.PublicKey, lamports uint64) solana.Instruction {
	data := binary.NewWriter().U32(InstructionTransfer).U64(lamports).Bytes()
	return solana.NewInstruction(ProgramID, []*solana.AccountMeta{
		{PublicKey: from, IsSigner: true, IsWritable: true},
		{PublicKey: to, IsSigner: false, IsWritable: true},
	}, data)
}

// NewAllocateInstruction sizes an unallocated account.
func NewAllocateInstruction(account solana.PublicKey, space uint64) solana.Instruction {
	data := binary.NewWriter().U32(InstructionAllocate).U64(space).Bytes()
	return solana.NewInstruction(ProgramID, []*solana.AccountMeta{
		{PublicKey: account, IsSigner: true, IsWritable: true},
	}, data)
}

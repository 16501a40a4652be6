// internal/programs/system/pda.go
package system

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/token-minter/internal/authority"
	"github.com/rovshanmuradov/token-minter/internal/ledger"
)

// CreatePDA creates a rent-exempt account of space bytes owned by owner at a
// derived address, signing for it with signer. An address that already holds
// lamports but no data is topped up, allocated and assigned instead, so a
// transfer to the address beforehand cannot block creation.
// An account with data or a non-system owner fails with ErrAccountAlreadyInUse.
func CreatePDA(ic *ledger.InvokeContext, payer solana.PublicKey, acct *ledger.AccountRef, space uint64, owner solana.PublicKey, signer authority.SignerSeeds) error {
	if len(acct.Data) > 0 || !acct.Owner.Equals(ProgramID) {
		return fmt.Errorf("%w: %s is owned by %s", ErrAccountAlreadyInUse, acct.Key, acct.Owner)
	}

	required := ledger.MinimumBalance(int(space))
	if acct.Lamports == 0 {
		return ic.InvokeSigned(NewCreateAccountInstruction(payer, acct.Key, required, space, owner), signer)
	}

	if acct.Lamports < required {
		if err := ic.Invoke(NewTransferInstruction(payer, acct.Key, required-acct.Lamports)); err != nil {
			return err
		}
	}
	if err := ic.InvokeSigned(NewAllocateInstruction(acct.Key, space), signer); err != nil {
		return err
	}
	return ic.InvokeSigned(NewAssignInstruction(acct.Key, owner), signer)
}

// internal/localnet/localnet.go
package localnet

import (
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-minter/internal/ledger"
	"github.com/rovshanmuradov/token-minter/internal/programs/associatedtoken"
	"github.com/rovshanmuradov/token-minter/internal/programs/computebudget"
	"github.com/rovshanmuradov/token-minter/internal/programs/metadata"
	"github.com/rovshanmuradov/token-minter/internal/programs/minter"
	"github.com/rovshanmuradov/token-minter/internal/programs/spltoken"
	"github.com/rovshanmuradov/token-minter/internal/programs/system"
)

// New returns a ledger with the system, token, associated token, metadata and
// compute budget programs plus the minter deployed at minterID.
func New(logger *zap.Logger, minterID solana.PublicKey, opts ...ledger.Option) *ledger.Bank {
	bank := ledger.NewBank(logger, opts...)
	for _, p := range []ledger.Program{
		system.New(),
		spltoken.New(),
		associatedtoken.New(),
		metadata.New(),
		computebudget.New(),
		minter.New(minterID),
	} {
		bank.RegisterProgram(p)
	}
	return bank
}

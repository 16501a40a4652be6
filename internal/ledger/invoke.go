// internal/ledger/invoke.go
package ledger

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/token-minter/internal/authority"
)

// MaxInvokeDepth is the deepest instruction stack allowed, the top-level instruction included.
const MaxInvokeDepth = 4

// Program is a built-in program the ledger can execute.
type Program interface {
	ID() solana.PublicKey
	Name() string
	Process(ic *InvokeContext) error
}

// AccountRef is an account as seen by an executing instruction. The embedded
// Account points into the transaction working set; programs mutate its fields
// in place and the ledger checks the changes when the instruction returns.
type AccountRef struct {
	Key      solana.PublicKey
	Signer   bool
	Writable bool
	*Account
}

// InvokeContext is handed to a program for one instruction.
type InvokeContext struct {
	ProgramID solana.PublicKey
	Data      []byte

	accounts []*AccountRef
	run      *txRun
	depth    int

	keys     []solana.PublicKey
	writable map[solana.PublicKey]bool
	signer   map[solana.PublicKey]bool
	pre      map[solana.PublicKey]*Account
}

func newInvokeContext(run *txRun, programID solana.PublicKey, data []byte, refs []*AccountRef, depth int) *InvokeContext {
	ic := &InvokeContext{
		ProgramID: programID,
		Data:      data,
		accounts:  refs,
		run:       run,
		depth:     depth,
		writable:  make(map[solana.PublicKey]bool, len(refs)),
		signer:    make(map[solana.PublicKey]bool, len(refs)),
	}
	for _, ref := range refs {
		if _, seen := ic.writable[ref.Key]; !seen {
			ic.keys = append(ic.keys, ref.Key)
		}
		ic.writable[ref.Key] = ic.writable[ref.Key] || ref.Writable
		ic.signer[ref.Key] = ic.signer[ref.Key] || ref.Signer
	}
	ic.snapshot()
	return ic
}

// Accounts returns the instruction accounts in order.
func (ic *InvokeContext) Accounts() []*AccountRef {
	return ic.accounts
}

// Account returns the i-th instruction account.
func (ic *InvokeContext) Account(i int) (*AccountRef, error) {
	if i < 0 || i >= len(ic.accounts) {
		return nil, fmt.Errorf("%w: need account #%d, have %d", ErrNotEnoughAccountKeys, i+1, len(ic.accounts))
	}
	return ic.accounts[i], nil
}

// Depth returns the position of this instruction on the invoke stack, starting at 1.
func (ic *InvokeContext) Depth() int {
	return ic.depth
}

// Log appends a "Program log:" line to the transaction logs.
func (ic *InvokeContext) Log(format string, args ...any) {
	ic.run.log("Program log: "+format, args...)
}

// Invoke calls another program with the privileges of the current instruction.
func (ic *InvokeContext) Invoke(ix solana.Instruction) error {
	return ic.InvokeSigned(ix)
}

// InvokeSigned calls another program. Each seed set is turned into an address
// derived from the calling program id; those addresses count as signers of ix.
func (ic *InvokeContext) InvokeSigned(ix solana.Instruction, signers ...authority.SignerSeeds) error {
	if ic.depth >= MaxInvokeDepth {
		return fmt.Errorf("%w: max %d", ErrCallDepth, MaxInvokeDepth)
	}

	derived := make(map[solana.PublicKey]bool, len(signers))
	for _, s := range signers {
		address, err := solana.CreateProgramAddress(s.Seeds(), ic.ProgramID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSeeds, err)
		}
		derived[address] = true
	}

	calleeID := ix.ProgramID()
	if _, ok := ic.writable[calleeID]; !ok {
		return fmt.Errorf("%w: program %s", ErrMissingAccount, calleeID)
	}

	data, err := ix.Data()
	if err != nil {
		return fmt.Errorf("failed to encode instruction data: %w", err)
	}

	metas := ix.Accounts()
	refs := make([]*AccountRef, 0, len(metas))
	for _, meta := range metas {
		writable, ok := ic.writable[meta.PublicKey]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingAccount, meta.PublicKey)
		}
		if meta.IsSigner && !ic.signer[meta.PublicKey] && !derived[meta.PublicKey] {
			return fmt.Errorf("%w: %s is not a signer", ErrPrivilegeEscalation, meta.PublicKey)
		}
		if meta.IsWritable && !writable {
			return fmt.Errorf("%w: %s is not writable", ErrPrivilegeEscalation, meta.PublicKey)
		}
		refs = append(refs, &AccountRef{
			Key:      meta.PublicKey,
			Signer:   meta.IsSigner,
			Writable: meta.IsWritable,
			Account:  ic.run.load(meta.PublicKey),
		})
	}

	// Изменения вызывающей программы проверяются до передачи управления.
	if err := ic.verify(); err != nil {
		return err
	}
	if err := ic.run.invoke(calleeID, data, refs, ic.depth+1); err != nil {
		return err
	}
	ic.snapshot()
	return nil
}

func (ic *InvokeContext) snapshot() {
	ic.pre = make(map[solana.PublicKey]*Account, len(ic.keys))
	for _, key := range ic.keys {
		ic.pre[key] = ic.run.load(key).Clone()
	}
}

// verify checks the changes made by the current program since the last snapshot.
func (ic *InvokeContext) verify() error {
	var before, after uint64
	for _, key := range ic.keys {
		pre, post := ic.pre[key], ic.run.load(key)
		before += pre.Lamports
		after += post.Lamports

		if pre.equal(post) {
			continue
		}
		owned := pre.Owner.Equals(ic.ProgramID)
		switch {
		case !ic.writable[key]:
			return fmt.Errorf("%w: %s", ErrReadonlyModified, key)
		case pre.Executable != post.Executable:
			return fmt.Errorf("%w: %s", ErrReadonlyModified, key)
		case !pre.Owner.Equals(post.Owner) && !owned:
			return fmt.Errorf("%w: %s", ErrModifiedProgramID, key)
		case string(pre.Data) != string(post.Data) && !owned:
			return fmt.Errorf("%w: %s", ErrExternalAccountDataModified, key)
		case post.Lamports < pre.Lamports && !owned:
			return fmt.Errorf("%w: %s", ErrExternalLamportSpend, key)
		}
	}
	if before != after {
		return fmt.Errorf("%w: %d before, %d after", ErrUnbalancedInstruction, before, after)
	}
	return nil
}

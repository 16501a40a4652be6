// internal/ledger/bank.go
package ledger

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-minter/internal/blockchain"
	"github.com/rovshanmuradov/token-minter/internal/utils/binary"
	"github.com/rovshanmuradov/token-minter/internal/utils/metrics"
)

const (
	// DefaultLamportsPerSignature is the fee charged per transaction signature.
	DefaultLamportsPerSignature = 5000

	// recentBlockhashWindow is how many recent blockhashes a transaction may reference.
	recentBlockhashWindow = 150
)

var _ blockchain.Client = (*Bank)(nil)

// TransactionStatus is the outcome of a processed transaction.
type TransactionStatus struct {
	Signature solana.Signature
	Slot      uint64
	Fee       uint64
	Err       error
	Logs      []string
}

// Bank is an in-process ledger: an account store plus a set of built-in programs.
// Transactions are executed one at a time against a private working set which
// is committed only if every instruction succeeds.
type Bank struct {
	mu      sync.Mutex
	logger  *zap.Logger
	metrics *metrics.Collector

	lamportsPerSignature uint64

	accounts    map[solana.PublicKey]*Account
	programs    map[solana.PublicKey]Program
	statuses    map[solana.Signature]*TransactionStatus
	blockhashes []solana.Hash
	slot        uint64
}

// Option configures a Bank.
type Option func(*Bank)

// WithMetrics records processed transactions and executed instructions.
func WithMetrics(c *metrics.Collector) Option {
	return func(b *Bank) { b.metrics = c }
}

// WithLamportsPerSignature overrides the per-signature fee.
func WithLamportsPerSignature(fee uint64) Option {
	return func(b *Bank) { b.lamportsPerSignature = fee }
}

// NewBank creates an empty ledger holding only the rent sysvar.
func NewBank(logger *zap.Logger, opts ...Option) *Bank {
	b := &Bank{
		logger:               logger.Named("ledger"),
		lamportsPerSignature: DefaultLamportsPerSignature,
		accounts:             make(map[solana.PublicKey]*Account),
		programs:             make(map[solana.PublicKey]Program),
		statuses:             make(map[solana.Signature]*TransactionStatus),
		blockhashes:          []solana.Hash{sha256.Sum256([]byte("token-minter genesis"))},
	}
	for _, opt := range opts {
		opt(b)
	}
	b.accounts[solana.SysVarRentPubkey] = rentSysvar()
	return b
}

// RegisterProgram makes p executable at its id.
func (b *Bank) RegisterProgram(p Program) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.programs[p.ID()] = p
	b.accounts[p.ID()] = &Account{Lamports: 1, Owner: NativeLoaderID, Executable: true}
	b.logger.Debug("Program registered", zap.String("name", p.Name()), zap.Stringer("program_id", p.ID()))
}

// Airdrop credits lamports to an address, creating a system account if needed.
func (b *Bank) Airdrop(to solana.PublicKey, lamports uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	acct, ok := b.accounts[to]
	if !ok {
		acct = &Account{Owner: solana.SystemProgramID}
	}
	if acct.Lamports+lamports < acct.Lamports {
		return fmt.Errorf("airdrop to %s overflows balance", to)
	}
	acct.Lamports += lamports
	b.accounts[to] = acct
	return nil
}

// StoreAccount overwrites the account at key. A nil account or zero lamports removes it.
func (b *Bank) StoreAccount(key solana.PublicKey, acct *Account) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if acct == nil || acct.Lamports == 0 {
		delete(b.accounts, key)
		return
	}
	b.accounts[key] = acct.Clone()
}

// Account returns a copy of the account at key.
func (b *Bank) Account(key solana.PublicKey) (*Account, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acct, ok := b.accounts[key]
	return acct.Clone(), ok
}

// Slot returns the number of transactions executed so far.
func (b *Bank) Slot() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.slot
}

// LamportsPerSignature returns the fee per signature.
func (b *Bank) LamportsPerSignature() uint64 {
	return b.lamportsPerSignature
}

// GetRecentBlockhash returns the newest blockhash.
func (b *Bank) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	if err := ctx.Err(); err != nil {
		return solana.Hash{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.blockhashes[len(b.blockhashes)-1], nil
}

// GetAccountData returns the account at pubkey or blockchain.ErrAccountNotFound.
func (b *Bank) GetAccountData(ctx context.Context, pubkey solana.PublicKey) (*blockchain.AccountData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	acct, ok := b.accounts[pubkey]
	if !ok {
		return nil, fmt.Errorf("%w: %s", blockchain.ErrAccountNotFound, pubkey)
	}
	return acct.toData(), nil
}

// GetBalance returns the lamports at pubkey, zero if there is no account.
// All commitments are equivalent: the bank confirms synchronously.
func (b *Bank) GetBalance(ctx context.Context, pubkey solana.PublicKey, _ rpc.CommitmentType) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if acct, ok := b.accounts[pubkey]; ok {
		return acct.Lamports, nil
	}
	return 0, nil
}

// GetTransaction returns the status of a processed transaction.
func (b *Bank) GetTransaction(sig solana.Signature) (*TransactionStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	status, ok := b.statuses[sig]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, sig)
	}
	c := *status
	c.Logs = append([]string(nil), status.Logs...)
	return &c, nil
}

// WaitForTransactionConfirmation returns the execution error of a processed
// transaction, or ErrTransactionNotFound if it was never processed.
func (b *Bank) WaitForTransactionConfirmation(ctx context.Context, sig solana.Signature, _ rpc.CommitmentType) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	status, err := b.GetTransaction(sig)
	if err != nil {
		return err
	}
	return status.Err
}

// SendTransaction verifies and executes tx. Rejections before execution leave
// no trace and return a zero signature; an executed transaction is recorded, advances the slot and is
// either committed as a whole or not at all. The fee is charged on success.
func (b *Bank) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if err := ctx.Err(); err != nil {
		return solana.Signature{}, err
	}
	if tx == nil || len(tx.Signatures) == 0 {
		return solana.Signature{}, &TransactionError{Index: -1, Err: fmt.Errorf("%w: no signatures", ErrSignatureFailure)}
	}

	sig := tx.Signatures[0]
	reject := func(err error) (solana.Signature, error) {
		return solana.Signature{}, &TransactionError{Signature: sig, Index: -1, Err: err}
	}

	if err := sanitize(tx); err != nil {
		return reject(err)
	}
	if err := tx.VerifySignatures(); err != nil {
		return reject(fmt.Errorf("%w: %v", ErrSignatureFailure, err))
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return solana.Signature{}, err
	}
	if _, ok := b.statuses[sig]; ok {
		return reject(ErrAlreadyProcessed)
	}
	if !b.isRecentBlockhash(tx.Message.RecentBlockhash) {
		return reject(fmt.Errorf("%w: %s", ErrBlockhashNotFound, tx.Message.RecentBlockhash))
	}

	fee := b.lamportsPerSignature * uint64(len(tx.Signatures))
	payer := tx.Message.AccountKeys[0]
	if acct, ok := b.accounts[payer]; !ok || acct.Lamports < fee {
		return reject(fmt.Errorf("%w: payer %s", ErrInsufficientFundsForFee, payer))
	}

	start := time.Now()
	status := b.execute(sig, tx, fee)
	b.metrics.RecordLedgerTransaction(time.Since(start), status.Err == nil)

	b.logger.Debug("Transaction processed",
		zap.Stringer("signature", sig),
		zap.Uint64("slot", status.Slot),
		zap.Strings("logs", status.Logs),
		zap.Error(status.Err),
	)

	if status.Err != nil {
		return sig, status.Err
	}
	return sig, nil
}

func (b *Bank) execute(sig solana.Signature, tx *solana.Transaction, fee uint64) *TransactionStatus {
	run := newTxRun(b)
	msg := &tx.Message

	run.load(msg.AccountKeys[0]).Lamports -= fee

	var txErr error
	for i, ci := range msg.Instructions {
		refs := make([]*AccountRef, len(ci.Accounts))
		for j, idx := range ci.Accounts {
			key := msg.AccountKeys[idx]
			refs[j] = &AccountRef{
				Key:      key,
				Signer:   isSigner(msg.Header, int(idx)),
				Writable: isWritable(msg.Header, len(msg.AccountKeys), int(idx)),
				Account:  run.load(key),
			}
		}
		if err := run.invoke(msg.AccountKeys[ci.ProgramIDIndex], ci.Data, refs, 1); err != nil {
			txErr = &TransactionError{Signature: sig, Index: i, Err: err}
			break
		}
	}
	if txErr == nil {
		if err := run.checkRent(); err != nil {
			txErr = &TransactionError{Signature: sig, Index: -1, Err: err}
		}
	}

	status := &TransactionStatus{Signature: sig, Slot: b.slot, Err: txErr, Logs: run.logs}
	if txErr == nil {
		run.commit()
		status.Fee = fee
	}
	b.statuses[sig] = status
	b.advanceSlot()
	return status
}

func (b *Bank) isRecentBlockhash(h solana.Hash) bool {
	for _, recent := range b.blockhashes {
		if recent == h {
			return true
		}
	}
	return false
}

func (b *Bank) advanceSlot() {
	b.slot++
	prev := b.blockhashes[len(b.blockhashes)-1]
	next := solana.Hash(sha256.Sum256(binary.NewWriter().Raw(prev[:]).U64(b.slot).Bytes()))
	b.blockhashes = append(b.blockhashes, next)
	if len(b.blockhashes) > recentBlockhashWindow {
		b.blockhashes = b.blockhashes[len(b.blockhashes)-recentBlockhashWindow:]
	}
}

func sanitize(tx *solana.Transaction) error {
	msg := &tx.Message
	h := msg.Header
	switch {
	case int(h.NumRequiredSignatures) != len(tx.Signatures):
		return fmt.Errorf("%w: %d signatures for %d required signers", ErrInvalidTransaction, len(tx.Signatures), h.NumRequiredSignatures)
	case h.NumReadonlySignedAccounts >= h.NumRequiredSignatures:
		return fmt.Errorf("%w: fee payer must be writable", ErrInvalidTransaction)
	case int(h.NumRequiredSignatures)+int(h.NumReadonlyUnsignedAccounts) > len(msg.AccountKeys):
		return fmt.Errorf("%w: header exceeds %d account keys", ErrInvalidTransaction, len(msg.AccountKeys))
	}
	for i, ci := range msg.Instructions {
		if int(ci.ProgramIDIndex) >= len(msg.AccountKeys) {
			return fmt.Errorf("%w: instruction %d program index out of range", ErrInvalidTransaction, i)
		}
		for _, idx := range ci.Accounts {
			if int(idx) >= len(msg.AccountKeys) {
				return fmt.Errorf("%w: instruction %d account index out of range", ErrInvalidTransaction, i)
			}
		}
	}
	return nil
}

func isSigner(h solana.MessageHeader, i int) bool {
	return i < int(h.NumRequiredSignatures)
}

func isWritable(h solana.MessageHeader, n, i int) bool {
	if isSigner(h, i) {
		return i < int(h.NumRequiredSignatures)-int(h.NumReadonlySignedAccounts)
	}
	return i < n-int(h.NumReadonlyUnsignedAccounts)
}

// txRun is the working set and log of one transaction.
type txRun struct {
	bank    *Bank
	working map[solana.PublicKey]*Account
	order   []solana.PublicKey
	logs    []string
}

func newTxRun(b *Bank) *txRun {
	return &txRun{bank: b, working: make(map[solana.PublicKey]*Account)}
}

// load returns the working copy of key, creating an empty system account if absent.
func (r *txRun) load(key solana.PublicKey) *Account {
	if acct, ok := r.working[key]; ok {
		return acct
	}
	acct, ok := r.bank.accounts[key]
	if ok {
		acct = acct.Clone()
	} else {
		acct = &Account{Owner: solana.SystemProgramID}
	}
	r.working[key] = acct
	r.order = append(r.order, key)
	return acct
}

func (r *txRun) log(format string, args ...any) {
	r.logs = append(r.logs, fmt.Sprintf(format, args...))
}

func (r *txRun) invoke(programID solana.PublicKey, data []byte, refs []*AccountRef, depth int) error {
	program, ok := r.bank.programs[programID]
	if !ok || !r.load(programID).Executable {
		return fmt.Errorf("%w: %s", ErrProgramNotFound, programID)
	}

	r.log("Program %s invoke [%d]", programID, depth)
	r.bank.metrics.RecordInstruction(program.Name())

	ic := newInvokeContext(r, programID, data, refs, depth)
	err := program.Process(ic)
	if err == nil {
		err = ic.verify()
	}
	if err != nil {
		r.log("Program %s failed: %v", programID, err)
		return err
	}
	r.log("Program %s success", programID)
	return nil
}

func (r *txRun) checkRent() error {
	for _, key := range r.order {
		acct := r.working[key]
		if orig, ok := r.bank.accounts[key]; ok && orig.equal(acct) {
			continue
		}
		if acct.Lamports > 0 && !acct.IsRentExempt() {
			return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientFundsForRent, key, acct.Lamports, MinimumBalance(len(acct.Data)))
		}
	}
	return nil
}

func (r *txRun) commit() {
	for _, key := range r.order {
		acct := r.working[key]
		if acct.Lamports == 0 {
			delete(r.bank.accounts, key)
			continue
		}
		r.bank.accounts[key] = acct
	}
}


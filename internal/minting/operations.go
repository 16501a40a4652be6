// internal/minting/operations.go
package minting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-minter/internal/programs/minter"
	"github.com/rovshanmuradov/token-minter/internal/storage/models"
	"github.com/rovshanmuradov/token-minter/internal/utils/logger"
)

// InitiateResult is the outcome of a successful bootstrap.
type InitiateResult struct {
	Signature solana.Signature
	Mint      solana.PublicKey
	Metadata  solana.PublicKey
}

// MintResult is the outcome of a successful issuance.
type MintResult struct {
	Signature   solana.Signature
	Destination solana.PublicKey
	Balance     uint64
	Supply      uint64
}

// InitiateToken creates the mint and its metadata record.
func (s *Service) InitiateToken(ctx context.Context, params minter.InitTokenParams) (*InitiateResult, error) {
	log := logger.WithOperation(s.logger, models.OperationInitiateToken)
	log.Info("Initiating token",
		zap.Stringer("mint", s.mint),
		zap.String("name", params.Name),
		zap.String("symbol", params.Symbol),
		zap.Uint8("decimals", params.Decimals))

	ix, err := minter.NewInitiateTokenInstruction(s.programID, s.payer.PublicKey, params)
	if err != nil {
		return nil, fmt.Errorf("failed to build initiate_token: %w", err)
	}

	start := time.Now()
	sig, err := s.submit(ctx, log, ix)
	s.metrics.RecordTransaction(ctx, models.OperationInitiateToken, time.Since(start), err == nil)

	receipt := &models.Receipt{
		Signature: sig.String(),
		Operation: models.OperationInitiateToken,
		ProgramID: s.programID.String(),
		Mint:      s.mint.String(),
		Payer:     s.payer.PublicKey.String(),
		Amount:    models.Units(0),
		Supply:    models.Units(0),
	}
	s.record(ctx, log, receipt, sig, err)
	if err != nil {
		log.Error("Failed to initiate token", zap.Error(err))
		return nil, err
	}

	logger.WithTransaction(log, sig).Info("Token mint created")
	return &InitiateResult{Signature: sig, Mint: s.mint, Metadata: s.metadata}, nil
}

// MintTokens issues quantity base units to the associated token account of holder,
// creating it if absent.
func (s *Service) MintTokens(ctx context.Context, holder solana.PublicKey, quantity uint64) (*MintResult, error) {
	log := logger.WithOperation(s.logger, models.OperationMintTokens)

	destination, err := s.destination(holder)
	if err != nil {
		return nil, fmt.Errorf("failed to derive destination: %w", err)
	}
	log.Info("Minting tokens",
		zap.Stringer("holder", holder),
		zap.Stringer("destination", destination),
		zap.Uint64("quantity", quantity))

	ix := minter.MintTokensAccounts{
		Mint:        s.mint,
		Destination: destination,
		Payer:       s.payer.PublicKey,
		Holder:      holder,
	}.Build(s.programID, quantity)

	start := time.Now()
	sig, err := s.submit(ctx, log, ix)
	s.metrics.RecordTransaction(ctx, models.OperationMintTokens, time.Since(start), err == nil)

	result := &MintResult{Signature: sig, Destination: destination}
	if err == nil {
		s.metrics.RecordIssued(quantity)
		result.Balance, result.Supply, err = s.readIssuance(ctx, destination)
		if err != nil {
			// транзакция уже исполнена, ошибку чтения не выдаём за ошибку выпуска
			log.Warn("Failed to read state after issuance", zap.Error(err))
			err = nil
		}
	}

	receipt := &models.Receipt{
		Signature:   sig.String(),
		Operation:   models.OperationMintTokens,
		ProgramID:   s.programID.String(),
		Mint:        s.mint.String(),
		Payer:       s.payer.PublicKey.String(),
		Holder:      holder.String(),
		Destination: destination.String(),
		Amount:      models.Units(quantity),
		Supply:      models.Units(result.Supply),
	}
	s.record(ctx, log, receipt, sig, err)
	if err != nil {
		log.Error("Failed to mint tokens", zap.Error(err))
		return nil, err
	}

	logger.WithTransaction(log, sig).Info("Tokens minted",
		zap.Uint64("balance", result.Balance),
		zap.Uint64("supply", result.Supply))
	return result, nil
}

func (s *Service) readIssuance(ctx context.Context, destination solana.PublicKey) (balance, supply uint64, err error) {
	mint, err := s.Mint(ctx)
	if err != nil {
		return 0, 0, err
	}
	balance, err = s.tokenAmount(ctx, destination)
	if err != nil {
		return 0, mint.Supply, err
	}
	return balance, mint.Supply, nil
}

// record пишет квитанцию в журнал. Отправки, отклонённые до исполнения, не имеют подписи и не журналируются.
func (s *Service) record(ctx context.Context, log *zap.Logger, r *models.Receipt, sig solana.Signature, txErr error) {
	if s.journal == nil || sig == (solana.Signature{}) {
		return
	}
	r.Status = models.StatusSuccess
	if txErr != nil {
		r.Status = models.StatusFailed
		r.ErrorMessage = txErr.Error()
	}
	if err := s.journal.SaveReceipt(ctx, r); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Warn("Failed to journal receipt", zap.String("signature", r.Signature), zap.Error(err))
	}
}

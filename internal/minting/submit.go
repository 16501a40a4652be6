// internal/minting/submit.go
package minting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-minter/internal/blockchain"
	"github.com/rovshanmuradov/token-minter/internal/programs/computebudget"
)

// submit строит, подписывает и отправляет транзакцию. Повторяются только
// отказы до исполнения (просроченный blockhash); каждая попытка берёт свежий blockhash.
// Для исполненной, но упавшей транзакции возвращается её подпись вместе с ошибкой.
func (s *Service) submit(ctx context.Context, log *zap.Logger, ixs ...solana.Instruction) (solana.Signature, error) {
	budget, err := computebudget.BuildInstructions(computebudget.Config{
		Units:     s.opts.ComputeUnits,
		UnitPrice: s.opts.PriorityFee,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build compute budget: %w", err)
	}
	instructions := append(budget, ixs...)

	var executed solana.Signature
	op := func() (solana.Signature, error) {
		tx, err := s.createSignedTransaction(ctx, instructions)
		if err != nil {
			return solana.Signature{}, err
		}

		sig, err := s.client.SendTransaction(ctx, tx)
		if err != nil {
			if errors.Is(err, blockchain.ErrBlockhashNotFound) {
				return solana.Signature{}, err // временная ошибка для retry
			}
			if sig != (solana.Signature{}) {
				executed = sig
			}
			return solana.Signature{}, backoff.Permanent(fmt.Errorf("transaction failed: %w", err))
		}
		executed = sig

		if err := s.client.WaitForTransactionConfirmation(ctx, sig, s.opts.Commitment); err != nil {
			return sig, backoff.Permanent(fmt.Errorf("transaction %s failed: %w", sig, err))
		}
		return sig, nil
	}

	notify := func(err error, d time.Duration) {
		log.Info("Повтор отправки после ошибки", zap.Error(err), zap.Duration("backoff", d))
	}

	retryOpts := []backoff.RetryOption{
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(s.opts.MaxElapsed),
		backoff.WithNotify(notify),
	}
	if s.opts.MaxTries > 0 {
		retryOpts = append(retryOpts, backoff.WithMaxTries(s.opts.MaxTries))
	}

	sig, err := backoff.Retry(ctx, op, retryOpts...)
	if err != nil {
		return executed, err
	}
	return sig, nil
}

func (s *Service) createSignedTransaction(ctx context.Context, instructions []solana.Instruction) (*solana.Transaction, error) {
	blockhash, err := s.client.GetRecentBlockhash(ctx)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to get recent blockhash: %w", err))
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(s.payer.PublicKey))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create transaction: %w", err))
	}

	if err := s.payer.SignTransaction(tx); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to sign transaction: %w", err))
	}
	return tx, nil
}

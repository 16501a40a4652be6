// internal/minting/queries.go
package minting

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/token-minter/internal/blockchain"
	"github.com/rovshanmuradov/token-minter/internal/programs/associatedtoken"
	"github.com/rovshanmuradov/token-minter/internal/programs/metadata"
	"github.com/rovshanmuradov/token-minter/internal/programs/spltoken"
)

// ErrNotInitialized is returned when the mint has not been bootstrapped yet.
var ErrNotInitialized = errors.New("token is not initialized")

// Holding is the token balance of one holder.
type Holding struct {
	Holder      solana.PublicKey
	Destination solana.PublicKey
	Amount      uint64
}

// Summary is a consistent-enough snapshot of the token for display.
type Summary struct {
	Mint     solana.PublicKey
	Token    *spltoken.Mint
	Metadata *metadata.Metadata
	Holdings []Holding
}

// destination returns the associated token account of holder; the payer's is cached by the wallet.
func (s *Service) destination(holder solana.PublicKey) (solana.PublicKey, error) {
	if holder.Equals(s.payer.PublicKey) {
		return s.payer.GetATA(s.mint)
	}
	ata, _, err := associatedtoken.Address(holder, s.mint)
	return ata, err
}

// Mint reads and decodes the mint account.
func (s *Service) Mint(ctx context.Context) (*spltoken.Mint, error) {
	acct, err := s.client.GetAccountData(ctx, s.mint)
	if errors.Is(err, blockchain.ErrAccountNotFound) {
		return nil, fmt.Errorf("%w: mint %s", ErrNotInitialized, s.mint)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mint account: %w", err)
	}
	if !acct.Owner.Equals(spltoken.ProgramID) {
		return nil, fmt.Errorf("%w: mint %s owned by %s", ErrNotInitialized, s.mint, acct.Owner)
	}
	mint, err := spltoken.DecodeMint(acct.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mint: %w", err)
	}
	if !mint.IsInitialized {
		return nil, fmt.Errorf("%w: mint %s", ErrNotInitialized, s.mint)
	}
	return mint, nil
}

// Metadata reads and decodes the metadata record of the mint.
func (s *Service) Metadata(ctx context.Context) (*metadata.Metadata, error) {
	acct, err := s.client.GetAccountData(ctx, s.metadata)
	if errors.Is(err, blockchain.ErrAccountNotFound) {
		return nil, fmt.Errorf("%w: metadata %s", ErrNotInitialized, s.metadata)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata account: %w", err)
	}
	md, err := metadata.DecodeMetadata(acct.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return md, nil
}

// Balance returns the token balance of holder in base units; zero if the
// holder has no associated token account.
func (s *Service) Balance(ctx context.Context, holder solana.PublicKey) (uint64, error) {
	destination, err := s.destination(holder)
	if err != nil {
		return 0, fmt.Errorf("failed to derive destination: %w", err)
	}
	return s.tokenAmount(ctx, destination)
}

func (s *Service) tokenAmount(ctx context.Context, tokenAccount solana.PublicKey) (uint64, error) {
	acct, err := s.client.GetAccountData(ctx, tokenAccount)
	if errors.Is(err, blockchain.ErrAccountNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get token account: %w", err)
	}
	account, err := spltoken.DecodeAccount(acct.Data)
	if err != nil {
		return 0, fmt.Errorf("failed to decode token account: %w", err)
	}
	if !account.Mint.Equals(s.mint) {
		return 0, fmt.Errorf("token account %s holds mint %s", tokenAccount, account.Mint)
	}
	return account.Amount, nil
}

// Describe fetches the mint, its metadata and the balances of holders concurrently.
func (s *Service) Describe(ctx context.Context, holders ...solana.PublicKey) (*Summary, error) {
	summary := &Summary{Mint: s.mint, Holdings: make([]Holding, len(holders))}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		mint, err := s.Mint(gCtx)
		summary.Token = mint
		return err
	})
	g.Go(func() error {
		md, err := s.Metadata(gCtx)
		summary.Metadata = md
		return err
	})
	for i, holder := range holders {
		g.Go(func() error {
			destination, err := s.destination(holder)
			if err != nil {
				return fmt.Errorf("failed to derive destination: %w", err)
			}
			amount, err := s.tokenAmount(gCtx, destination)
			if err != nil {
				return err
			}
			summary.Holdings[i] = Holding{Holder: holder, Destination: destination, Amount: amount}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}

// internal/minting/service.go
package minting

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-minter/internal/blockchain"
	"github.com/rovshanmuradov/token-minter/internal/programs/metadata"
	"github.com/rovshanmuradov/token-minter/internal/programs/minter"
	"github.com/rovshanmuradov/token-minter/internal/storage"
	"github.com/rovshanmuradov/token-minter/internal/utils/metrics"
	"github.com/rovshanmuradov/token-minter/internal/wallet"
)

const defaultMaxElapsed = 15 * time.Second

// Options управляет сборкой и отправкой транзакций.
type Options struct {
	ComputeUnits uint32        // 0 – без SetComputeUnitLimit
	PriorityFee  uint64        // микролампорты за compute unit, 0 – без SetComputeUnitPrice
	MaxElapsed   time.Duration // общий лимит повторов отправки
	MaxTries     uint          // 0 – без ограничения числа попыток
	Commitment   rpc.CommitmentType
}

// Option настраивает Service.
type Option func(*Service)

// WithJournal записывает квитанцию каждой отправленной транзакции.
func WithJournal(j storage.Journal) Option {
	return func(s *Service) { s.journal = j }
}

// WithMetrics записывает длительность и исход отправок.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Service) { s.metrics = c }
}

// Service builds, signs and submits minter transactions for one payer and
// reads back the token state. It is safe for concurrent use.
type Service struct {
	client    blockchain.Client
	payer     *wallet.Wallet
	programID solana.PublicKey
	mint      solana.PublicKey
	metadata  solana.PublicKey
	opts      Options
	journal   storage.Journal
	metrics   *metrics.Collector
	logger    *zap.Logger
}

// NewService создаёт сервис для minter-программы programID.
func NewService(client blockchain.Client, payer *wallet.Wallet, programID solana.PublicKey, opts Options, logger *zap.Logger, options ...Option) (*Service, error) {
	if client == nil || payer == nil {
		return nil, fmt.Errorf("client and payer are required")
	}
	mint, err := minter.MintAddress(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive mint: %w", err)
	}
	metadataAddress, _, err := metadata.Address(mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive metadata address: %w", err)
	}
	if opts.MaxElapsed <= 0 {
		opts.MaxElapsed = defaultMaxElapsed
	}
	if opts.Commitment == "" {
		opts.Commitment = rpc.CommitmentConfirmed
	}

	s := &Service{
		client:    client,
		payer:     payer,
		programID: programID,
		mint:      mint,
		metadata:  metadataAddress,
		opts:      opts,
		logger:    logger.Named("minting"),
	}
	for _, o := range options {
		o(s)
	}
	return s, nil
}

// ProgramID returns the minter program the service talks to.
func (s *Service) ProgramID() solana.PublicKey { return s.programID }

// MintAddress returns the derived mint, which is also the mint authority.
func (s *Service) MintAddress() solana.PublicKey { return s.mint }

// MetadataAddress returns the metadata record address of the mint.
func (s *Service) MetadataAddress() solana.PublicKey { return s.metadata }

// Payer returns the fee payer public key.
func (s *Service) Payer() solana.PublicKey { return s.payer.PublicKey }

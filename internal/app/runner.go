// internal/app/runner.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-minter/internal/authority"
	"github.com/rovshanmuradov/token-minter/internal/blockchain"
	"github.com/rovshanmuradov/token-minter/internal/blockchain/solbc"
	"github.com/rovshanmuradov/token-minter/internal/config"
	"github.com/rovshanmuradov/token-minter/internal/ledger"
	"github.com/rovshanmuradov/token-minter/internal/localnet"
	"github.com/rovshanmuradov/token-minter/internal/minting"
	"github.com/rovshanmuradov/token-minter/internal/programs/metadata"
	"github.com/rovshanmuradov/token-minter/internal/programs/minter"
	"github.com/rovshanmuradov/token-minter/internal/storage"
	"github.com/rovshanmuradov/token-minter/internal/storage/models"
	"github.com/rovshanmuradov/token-minter/internal/storage/postgres"
	"github.com/rovshanmuradov/token-minter/internal/utils/metrics"
	"github.com/rovshanmuradov/token-minter/internal/wallet"
)

// DemoToken is the token the demo command bootstraps.
var DemoToken = minter.InitTokenParams{Name: "Coin", Symbol: "CNN", URI: "https://x/m.json", Decimals: 6}

// Суммы выпуска demo в базовых единицах.
var demoIssuances = []uint64{1000, 500}

// Addresses are the derived accounts of a minter deployment.
type Addresses struct {
	Program   solana.PublicKey
	Authority authority.Authority
	Metadata  solana.PublicKey
}

// Runner собирает клиент, кошелёк, журнал и метрики из конфигурации и
// выполняет команды CLI.
type Runner struct {
	cfg         *config.Config
	logger      *zap.Logger
	client      blockchain.Client
	bank        *ledger.Bank // nil в режиме rpc
	payer       *wallet.Wallet
	journal     storage.Journal
	service     *minting.Service
	registry    *prometheus.Registry
	metricsAddr net.Addr
	shutdown    *ShutdownHandler
}

// NewRunner подключает все зависимости. Close освобождает их.
func NewRunner(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	r := &Runner{
		cfg:      cfg,
		logger:   logger.Named("runner"),
		registry: prometheus.NewRegistry(),
		shutdown: NewShutdownHandler(logger, 0),
	}

	collector, err := metrics.NewCollector(r.registry)
	if err != nil {
		return nil, err
	}

	if err := r.setupWallet(); err != nil {
		return nil, err
	}
	if err := r.setupClient(collector); err != nil {
		return nil, err
	}
	if err := r.setupJournal(ctx); err != nil {
		_ = r.Close(ctx)
		return nil, err
	}
	if err := r.serveMetrics(); err != nil {
		_ = r.Close(ctx)
		return nil, err
	}

	opts := minting.Options{
		ComputeUnits: cfg.ComputeUnits,
		PriorityFee:  cfg.PriorityFee,
		MaxElapsed:   cfg.RetryElapsed(),
		MaxTries:     uint(cfg.Retries) + 1,
		Commitment:   cfg.CommitmentType(),
	}
	r.service, err = minting.NewService(r.client, r.payer, cfg.MinterProgramID(), opts, logger,
		minting.WithJournal(r.journal),
		minting.WithMetrics(collector),
	)
	if err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("failed to create minting service: %w", err)
	}
	return r, nil
}

func (r *Runner) setupWallet() error {
	var err error
	switch {
	case r.cfg.Keypair != "":
		r.payer, err = wallet.Load(r.cfg.Keypair)
	case r.cfg.Network == config.NetworkLocal:
		r.payer, err = wallet.NewRandomWallet()
	default:
		return errors.New("keypair is required for the rpc network")
	}
	if err != nil {
		return fmt.Errorf("failed to load payer: %w", err)
	}
	r.logger.Info("Payer loaded", zap.Stringer("payer", r.payer.PublicKey))
	return nil
}

func (r *Runner) setupClient(collector *metrics.Collector) error {
	if r.cfg.Network == config.NetworkRPC {
		r.client = solbc.NewClient(r.cfg.RPCURL, r.cfg.CommitmentType(), r.logger)
		r.logger.Info("Using RPC node", zap.String("rpc_url", r.cfg.RPCURL))
		return nil
	}

	r.bank = localnet.New(r.logger, r.cfg.MinterProgramID(), ledger.WithMetrics(collector))
	if err := r.bank.Airdrop(r.payer.PublicKey, r.cfg.AirdropLamports); err != nil {
		return fmt.Errorf("failed to fund payer: %w", err)
	}
	r.client = r.bank
	r.logger.Info("Using local ledger",
		zap.Stringer("program_id", r.cfg.MinterProgramID()),
		zap.Uint64("airdrop_lamports", r.cfg.AirdropLamports))
	return nil
}

func (r *Runner) setupJournal(ctx context.Context) error {
	if r.cfg.PostgresURL == "" {
		r.journal = storage.NewMemoryJournal()
		return nil
	}

	pool, err := postgres.NewPool(ctx, r.cfg.PostgresURL, r.logger)
	if err != nil {
		return err
	}
	r.shutdown.AddFunc("postgres", func() error {
		pool.Close()
		return nil
	})
	if err := pool.RunMigrations(ctx); err != nil {
		return err
	}
	r.journal = postgres.NewReceiptStore(pool)
	return nil
}

func (r *Runner) serveMetrics() error {
	if r.cfg.MetricsAddr == "" {
		return nil
	}

	ln, err := net.Listen("tcp", r.cfg.MetricsAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on metrics address: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.logger.Error("Metrics server stopped", zap.Error(err))
		}
	}()
	r.shutdown.AddFunc("metrics", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})

	r.metricsAddr = ln.Addr()
	r.logger.Info("Serving metrics", zap.Stringer("addr", r.metricsAddr))
	return nil
}

// MetricsAddr returns the address the metrics endpoint listens on, or nil.
func (r *Runner) MetricsAddr() net.Addr { return r.metricsAddr }

// Payer returns the fee payer.
func (r *Runner) Payer() solana.PublicKey { return r.payer.PublicKey }

// Ledger returns the in-process ledger, or nil on the rpc network.
func (r *Runner) Ledger() *ledger.Bank { return r.bank }

// Service returns the minting service.
func (r *Runner) Service() *minting.Service { return r.service }

// Derive computes the mint authority and metadata addresses without touching the network.
func (r *Runner) Derive() (*Addresses, error) {
	auth, err := minter.New(r.cfg.MinterProgramID()).MintAuthority()
	if err != nil {
		return nil, err
	}
	metadataAddress, _, err := metadata.Address(auth.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to derive metadata address: %w", err)
	}
	return &Addresses{Program: r.cfg.MinterProgramID(), Authority: auth, Metadata: metadataAddress}, nil
}

// Initiate bootstraps the mint and its metadata.
func (r *Runner) Initiate(ctx context.Context, params minter.InitTokenParams) (*minting.InitiateResult, error) {
	return r.service.InitiateToken(ctx, params)
}

// Mint выпускает quantity базовых единиц holder'у; нулевой holder означает плательщика.
func (r *Runner) Mint(ctx context.Context, holder solana.PublicKey, quantity uint64) (*minting.MintResult, error) {
	if holder.IsZero() {
		holder = r.payer.PublicKey
	}
	return r.service.MintTokens(ctx, holder, quantity)
}

// MintUI переводит сумму в отображаемых единицах по decimals mint'а и выпускает её.
func (r *Runner) MintUI(ctx context.Context, holder solana.PublicKey, amount decimal.Decimal) (*minting.MintResult, error) {
	mint, err := r.service.Mint(ctx)
	if err != nil {
		return nil, err
	}
	quantity, err := minting.ToBaseUnits(amount, mint.Decimals)
	if err != nil {
		return nil, err
	}
	return r.Mint(ctx, holder, quantity)
}

// Show returns the token state and the balances of holders (the payer if none given).
func (r *Runner) Show(ctx context.Context, holders ...solana.PublicKey) (*minting.Summary, error) {
	if len(holders) == 0 {
		holders = []solana.PublicKey{r.payer.PublicKey}
	}
	return r.service.Describe(ctx, holders...)
}

// Receipts returns the latest journaled transactions of the mint.
func (r *Runner) Receipts(ctx context.Context, limit int) ([]*models.Receipt, error) {
	return r.journal.ListReceipts(ctx, r.service.MintAddress().String(), limit)
}

// Demo bootstraps DemoToken and issues 1000 then 500 base units to the payer.
func (r *Runner) Demo(ctx context.Context) (*minting.Summary, error) {
	initiated, err := r.Initiate(ctx, DemoToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initiate token: %w", err)
	}
	r.logger.Info("🪙 Token initiated",
		zap.Stringer("mint", initiated.Mint),
		zap.Stringer("signature", initiated.Signature))

	for _, quantity := range demoIssuances {
		res, err := r.Mint(ctx, solana.PublicKey{}, quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to mint %d: %w", quantity, err)
		}
		r.logger.Info("✅ Tokens minted",
			zap.Uint64("quantity", quantity),
			zap.Uint64("balance", res.Balance),
			zap.Uint64("supply", res.Supply))
	}
	return r.Show(ctx)
}

// Close освобождает ресурсы в обратном порядке регистрации.
func (r *Runner) Close(ctx context.Context) error {
	return r.shutdown.Shutdown(ctx)
}

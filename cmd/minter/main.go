// ====================================
// File: cmd/minter/main.go
// ====================================
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/token-minter/internal/app"
	"github.com/rovshanmuradov/token-minter/internal/config"
	"github.com/rovshanmuradov/token-minter/internal/minting"
	"github.com/rovshanmuradov/token-minter/internal/programs/minter"
	"github.com/rovshanmuradov/token-minter/internal/utils/logger"
)

type command func(ctx context.Context, r *app.Runner, out io.Writer) error

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: minter [-config file] <command> [flags]

Commands:
  derive     print the mint authority and metadata addresses
  init       create the mint and its metadata
  mint       issue tokens to a holder
  show       print supply, metadata and balances
  receipts   print journaled transactions
  demo       run init and two issuances on the local ledger

The local network lives only for one process; use demo there or
switch to network=rpc for separate init and mint runs.
`)
}

func main() {
	configPath := flag.String("config", "", "path to a JSON or YAML config file")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cmd, err := parseCommand(flag.Arg(0), flag.Args()[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("📡 Signal received: " + sig.String())
		cancel()
	}()

	done := log.TrackPerformance(flag.Arg(0))
	err = run(ctx, cfg, log.Logger, cmd)
	done()
	cancel()
	if err != nil {
		log.Error("💥 Command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
	}
	if syncErr := log.Sync(); syncErr != nil {
		fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", syncErr)
	}
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, cmd command) error {
	runner, err := app.NewRunner(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := runner.Close(context.Background()); err != nil {
			log.Warn("Shutdown finished with errors", zap.Error(err))
		}
	}()
	return cmd(ctx, runner, os.Stdout)
}

func parseCommand(name string, args []string) (command, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	switch name {
	case "derive":
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return deriveCommand, nil

	case "init":
		params := minter.InitTokenParams{}
		fs.StringVar(&params.Name, "name", app.DemoToken.Name, "token name")
		fs.StringVar(&params.Symbol, "symbol", app.DemoToken.Symbol, "token symbol")
		fs.StringVar(&params.URI, "uri", app.DemoToken.URI, "metadata JSON URI")
		decimals := fs.Uint("decimals", uint(app.DemoToken.Decimals), "mint decimals")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if *decimals > 255 {
			return nil, fmt.Errorf("decimals must fit in a byte, got %d", *decimals)
		}
		params.Decimals = uint8(*decimals)
		return initCommand(params), nil

	case "mint":
		holderFlag := fs.String("holder", "", "recipient wallet (default: payer)")
		amount := fs.Uint64("amount", 0, "quantity in base units")
		uiAmount := fs.String("ui-amount", "", "quantity in display units, scaled by the mint decimals")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		holder, err := parseHolder(*holderFlag)
		if err != nil {
			return nil, err
		}
		if *uiAmount == "" {
			return mintCommand(holder, *amount), nil
		}
		ui, err := decimal.NewFromString(*uiAmount)
		if err != nil {
			return nil, fmt.Errorf("invalid ui-amount: %w", err)
		}
		return mintUICommand(holder, ui), nil

	case "show":
		holders := fs.String("holders", "", "comma separated wallets (default: payer)")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		keys, err := parseHolders(*holders)
		if err != nil {
			return nil, err
		}
		return showCommand(keys), nil

	case "receipts":
		limit := fs.Int("limit", 20, "maximum number of receipts")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return receiptsCommand(*limit), nil

	case "demo":
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		return demoCommand, nil
	}
	return nil, fmt.Errorf("unknown command %q", name)
}

func parseHolder(s string) (solana.PublicKey, error) {
	if s == "" {
		return solana.PublicKey{}, nil
	}
	key, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid holder %q: %w", s, err)
	}
	return key, nil
}

func parseHolders(s string) ([]solana.PublicKey, error) {
	var keys []solana.PublicKey
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, err := parseHolder(part)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func deriveCommand(_ context.Context, r *app.Runner, out io.Writer) error {
	addrs, err := r.Derive()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "program:         %s\n", addrs.Program)
	fmt.Fprintf(out, "mint authority:  %s (bump %d)\n", addrs.Authority.Address, addrs.Authority.Bump)
	fmt.Fprintf(out, "metadata:        %s\n", addrs.Metadata)
	return nil
}

func initCommand(params minter.InitTokenParams) command {
	return func(ctx context.Context, r *app.Runner, out io.Writer) error {
		res, err := r.Initiate(ctx, params)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "mint:      %s\nmetadata:  %s\nsignature: %s\n", res.Mint, res.Metadata, res.Signature)
		return nil
	}
}

func mintCommand(holder solana.PublicKey, quantity uint64) command {
	return func(ctx context.Context, r *app.Runner, out io.Writer) error {
		res, err := r.Mint(ctx, holder, quantity)
		if err != nil {
			return err
		}
		printMint(out, res)
		return nil
	}
}

func mintUICommand(holder solana.PublicKey, amount decimal.Decimal) command {
	return func(ctx context.Context, r *app.Runner, out io.Writer) error {
		res, err := r.MintUI(ctx, holder, amount)
		if err != nil {
			return err
		}
		printMint(out, res)
		return nil
	}
}

func printMint(out io.Writer, res *minting.MintResult) {
	fmt.Fprintf(out, "destination: %s\nbalance:     %d\nsupply:      %d\nsignature:   %s\n",
		res.Destination, res.Balance, res.Supply, res.Signature)
}

func showCommand(holders []solana.PublicKey) command {
	return func(ctx context.Context, r *app.Runner, out io.Writer) error {
		summary, err := r.Show(ctx, holders...)
		if err != nil {
			return err
		}
		printSummary(out, summary)
		return nil
	}
}

func printSummary(out io.Writer, s *minting.Summary) {
	decimals := s.Token.Decimals
	fmt.Fprintf(out, "mint:     %s\n", s.Mint)
	fmt.Fprintf(out, "supply:   %s (%d base units, %d decimals)\n",
		minting.ToUIAmount(s.Token.Supply, decimals), s.Token.Supply, decimals)
	if s.Metadata != nil {
		fmt.Fprintf(out, "name:     %s\nsymbol:   %s\nuri:      %s\n",
			s.Metadata.Data.Name, s.Metadata.Data.Symbol, s.Metadata.Data.URI)
	}
	for _, h := range s.Holdings {
		fmt.Fprintf(out, "holder %s: %s\n", h.Holder, minting.ToUIAmount(h.Amount, decimals))
	}
}

func receiptsCommand(limit int) command {
	return func(ctx context.Context, r *app.Runner, out io.Writer) error {
		receipts, err := r.Receipts(ctx, limit)
		if err != nil {
			return err
		}
		for _, rc := range receipts {
			line := fmt.Sprintf("%s %-14s %-7s amount=%s supply=%s %s",
				rc.CreatedAt.Format("2006-01-02 15:04:05"), rc.Operation, rc.Status, rc.Amount, rc.Supply, rc.Signature)
			if rc.ErrorMessage != "" {
				line += " error=" + rc.ErrorMessage
			}
			fmt.Fprintln(out, line)
		}
		return nil
	}
}

func demoCommand(ctx context.Context, r *app.Runner, out io.Writer) error {
	if r.Ledger() == nil {
		return errors.New("demo runs on the local network only")
	}
	summary, err := r.Demo(ctx)
	if err != nil {
		return err
	}
	printSummary(out, summary)
	return nil
}

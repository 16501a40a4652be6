// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/token-minter/internal/programs/computebudget"
)

// Режимы работы клиента.
const (
	NetworkLocal = "local" // in-process ledger
	NetworkRPC   = "rpc"   // JSON-RPC node
)

type Config struct {
	Network         string `mapstructure:"network"`
	RPCURL          string `mapstructure:"rpc_url"`
	ProgramID       string `mapstructure:"program_id"`
	Keypair         string `mapstructure:"keypair"`
	Commitment      string `mapstructure:"commitment"`
	Retries         int    `mapstructure:"retries"`
	MaxRetryElapsed int    `mapstructure:"max_retry_elapsed"` // миллисекунды
	ComputeUnits    uint32 `mapstructure:"compute_units"`
	PriorityFee     uint64 `mapstructure:"priority_fee_micro_lamports"`
	DebugLogging    bool   `mapstructure:"debug_logging"`
	LogFile         string `mapstructure:"log_file"`
	PostgresURL     string `mapstructure:"postgres_url"`
	MetricsAddr     string `mapstructure:"metrics_addr"`
	AirdropLamports uint64 `mapstructure:"airdrop_lamports"`
}

const (
	EnvPrefix = "TOKEN_MINTER"

	DefaultNetwork         = NetworkLocal
	DefaultRPCURL          = "http://127.0.0.1:8899"
	DefaultProgramID       = "DaAEZvCbrdJ7WADHrmtPSY2rmW6R4c5iZ43PsfxVabYy"
	DefaultCommitment      = string(rpc.CommitmentConfirmed)
	DefaultRetries         = 3
	DefaultMaxRetryElapsed = 30_000
	DefaultLogFile         = "minter.log"
	DefaultAirdropLamports = 10 * solana.LAMPORTS_PER_SOL
)

// LoadConfig читает конфигурацию из файла (если path не пуст) и переменных
// окружения с префиксом TOKEN_MINTER, например TOKEN_MINTER_RPC_URL.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"network":                     DefaultNetwork,
		"rpc_url":                     DefaultRPCURL,
		"program_id":                  DefaultProgramID,
		"keypair":                     "",
		"commitment":                  DefaultCommitment,
		"retries":                     DefaultRetries,
		"max_retry_elapsed":           DefaultMaxRetryElapsed,
		"compute_units":               0,
		"priority_fee_micro_lamports": 0,
		"debug_logging":               false,
		"log_file":                    DefaultLogFile,
		"postgres_url":                "",
		"metrics_addr":                "",
		"airdrop_lamports":            DefaultAirdropLamports,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	bindEnvironment(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, validateConfig(&cfg)
}

func bindEnvironment(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func validateConfig(cfg *Config) error {
	switch cfg.Network {
	case NetworkLocal:
	case NetworkRPC:
		if err := validateURLWithCache(cfg.RPCURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	default:
		return fmt.Errorf("unknown network %q", cfg.Network)
	}
	if _, err := solana.PublicKeyFromBase58(cfg.ProgramID); err != nil {
		return fmt.Errorf("invalid program_id: %w", err)
	}
	switch rpc.CommitmentType(cfg.Commitment) {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return fmt.Errorf("invalid commitment %q", cfg.Commitment)
	}
	if cfg.PostgresURL != "" {
		if err := validateURLWithCache(cfg.PostgresURL, "postgres"); err != nil {
			return errors.New("postgres_url must use the postgres scheme")
		}
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.MaxRetryElapsed <= 0 {
		return errors.New("invalid max_retry_elapsed")
	}
	if cfg.ComputeUnits > computebudget.MaxUnits {
		return fmt.Errorf("compute_units exceeds %d", computebudget.MaxUnits)
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

// MinterProgramID returns the parsed program id. The config must be validated.
func (c *Config) MinterProgramID() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(c.ProgramID)
}

// CommitmentType returns the commitment used for queries and confirmation.
func (c *Config) CommitmentType() rpc.CommitmentType {
	return rpc.CommitmentType(c.Commitment)
}

// RetryElapsed returns the time budget for resubmitting a transaction.
func (c *Config) RetryElapsed() time.Duration {
	return time.Duration(c.MaxRetryElapsed) * time.Millisecond
}

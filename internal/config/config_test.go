// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
)

var validConfigJSON = `{
    "network": "rpc",
    "rpc_url": "https://api.devnet.solana.com",
    "program_id": "DaAEZvCbrdJ7WADHrmtPSY2rmW6R4c5iZ43PsfxVabYy",
    "keypair": "/home/user/.config/solana/id.json",
    "commitment": "finalized",
    "retries": 5,
    "compute_units": 200000,
    "priority_fee_micro_lamports": 1000,
    "debug_logging": true
}`

var invalidConfigJSON = `{
    "network": "mainnet",
    "retries": -1
}`

func setupTestConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return configPath
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(*Config) bool
	}{
		{
			name:    "Valid config",
			content: validConfigJSON,
			wantErr: false,
			check: func(cfg *Config) bool {
				return cfg.Network == NetworkRPC &&
					cfg.RPCURL == "https://api.devnet.solana.com" &&
					cfg.CommitmentType() == rpc.CommitmentFinalized &&
					cfg.Retries == 5 &&
					cfg.ComputeUnits == 200000 &&
					cfg.PriorityFee == 1000 &&
					cfg.DebugLogging
			},
		},
		{
			name:    "Invalid config - unknown network",
			content: invalidConfigJSON,
			wantErr: true,
		},
		{
			name:    "Invalid JSON syntax",
			content: "{invalid json",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(setupTestConfig(t, tt.content))
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && tt.check != nil && !tt.check(cfg) {
				t.Errorf("LoadConfig() returned invalid configuration: %+v", cfg)
			}
		})
	}
}

func TestLoadConfigWithDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Network != NetworkLocal {
		t.Errorf("Expected default network %q, got %q", NetworkLocal, cfg.Network)
	}
	if cfg.MinterProgramID().String() != DefaultProgramID {
		t.Errorf("Expected default program id, got %s", cfg.MinterProgramID())
	}
	if cfg.Retries != DefaultRetries {
		t.Errorf("Expected default Retries %d, got %d", DefaultRetries, cfg.Retries)
	}
	if cfg.RetryElapsed() != 30*time.Second {
		t.Errorf("Expected default retry budget 30s, got %s", cfg.RetryElapsed())
	}
	if cfg.AirdropLamports != DefaultAirdropLamports {
		t.Errorf("Expected default airdrop %d, got %d", DefaultAirdropLamports, cfg.AirdropLamports)
	}
}

func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("TOKEN_MINTER_NETWORK", "rpc")
	t.Setenv("TOKEN_MINTER_RPC_URL", "https://env-rpc.example.com")
	t.Setenv("TOKEN_MINTER_PRIORITY_FEE_MICRO_LAMPORTS", "2500")

	cfg, err := LoadConfig(setupTestConfig(t, `{"network": "local", "retries": 7}`))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Network != NetworkRPC {
		t.Errorf("Expected network from env var, got %s", cfg.Network)
	}
	if cfg.RPCURL != "https://env-rpc.example.com" {
		t.Errorf("Expected rpc_url from env var, got %s", cfg.RPCURL)
	}
	if cfg.PriorityFee != 2500 {
		t.Errorf("Expected priority fee 2500, got %d", cfg.PriorityFee)
	}
	if cfg.Retries != 7 {
		t.Errorf("Expected Retries from file to be 7, got %d", cfg.Retries)
	}
}

func TestConfigValidationDetails(t *testing.T) {
	base := func() Config {
		return Config{
			Network:         NetworkRPC,
			RPCURL:          "https://test.com",
			ProgramID:       DefaultProgramID,
			Commitment:      DefaultCommitment,
			MaxRetryElapsed: DefaultMaxRetryElapsed,
		}
	}

	tests := []struct {
		name          string
		mutate        func(*Config)
		expectedError string
	}{
		{
			name:          "Invalid RPC URL",
			mutate:        func(c *Config) { c.RPCURL = "invalid-url" },
			expectedError: "invalid RPC URL protocol",
		},
		{
			name:          "Invalid retries",
			mutate:        func(c *Config) { c.Retries = -1 },
			expectedError: "invalid retries count",
		},
		{
			name:          "Invalid commitment",
			mutate:        func(c *Config) { c.Commitment = "eventually" },
			expectedError: `invalid commitment "eventually"`,
		},
		{
			name:          "Invalid postgres URL",
			mutate:        func(c *Config) { c.PostgresURL = "mysql://db" },
			expectedError: "postgres_url must use the postgres scheme",
		},
		{
			name:          "Compute units above limit",
			mutate:        func(c *Config) { c.ComputeUnits = 2_000_000 },
			expectedError: "compute_units exceeds 1400000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := validateConfig(&cfg)
			if err == nil {
				t.Error("Expected error but got nil")
				return
			}
			if err.Error() != tt.expectedError {
				t.Errorf("Expected error '%s', got '%s'", tt.expectedError, err.Error())
			}
		})
	}

	valid := base()
	if err := validateConfig(&valid); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

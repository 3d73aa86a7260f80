package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	// BaseURL is the 1Click aggregator base URL, including the API version
	BaseURL  string
	JWTToken string

	// Quote defaults. SlippageBps is a percentage in basis points
	// (100 = 1%), DeadlineMinutes bounds how long a quote stays valid.
	SlippageBps     int
	DeadlineMinutes int

	// PollIntervalSeconds is the deposit-status polling interval
	PollIntervalSeconds int

	// ListenPort is the port the web UI binds to
	ListenPort int

	Development bool

	Wallet      WalletConfig
	AutoDeposit AutoDepositConfig
}

// WalletConfig holds the identities the local connector can sign in with.
// Any subset may be configured; the first configured identity becomes the
// active account on connect.
type WalletConfig struct {
	NearAccountID    string
	EVMPrivateKey    string
	SolanaPrivateKey string
}

// AutoDepositConfig enables automatic on-chain transfers to deposit addresses
type AutoDepositConfig struct {
	Enabled bool
	EVM     EVMConfig
	Solana  SolanaConfig
}

// EVMConfig configures the EVM deposit sender
type EVMConfig struct {
	Enabled    bool
	RPCUrl     string
	PrivateKey string
	ChainID    int64
	GasLimit   uint64
	GasPrice   int64
}

// SolanaConfig configures the Solana deposit sender
type SolanaConfig struct {
	Enabled       bool
	RPCUrl        string
	PrivateKey    string
	Commitment    string
	SkipPreflight bool
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".intents-swap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("base_url", "https://1click.chaindefuser.com/v0")
	viper.SetDefault("slippage_bps", 100)
	viper.SetDefault("deadline_minutes", 30)
	viper.SetDefault("poll_interval_seconds", 5)
	viper.SetDefault("listen_port", 8080)
	viper.SetDefault("auto_deposit.solana.commitment", "confirmed")

	// Read from environment variables
	viper.SetEnvPrefix("INTENTS_SWAP")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		BaseURL:             viper.GetString("base_url"),
		JWTToken:            viper.GetString("jwt_token"),
		SlippageBps:         viper.GetInt("slippage_bps"),
		DeadlineMinutes:     viper.GetInt("deadline_minutes"),
		PollIntervalSeconds: viper.GetInt("poll_interval_seconds"),
		ListenPort:          viper.GetInt("listen_port"),
		Development:         viper.GetBool("development"),
		Wallet: WalletConfig{
			NearAccountID:    viper.GetString("near_account_id"),
			EVMPrivateKey:    viper.GetString("evm_private_key"),
			SolanaPrivateKey: viper.GetString("solana_private_key"),
		},
		AutoDeposit: AutoDepositConfig{
			Enabled: viper.GetBool("auto_deposit.enabled"),
			EVM: EVMConfig{
				Enabled:    viper.GetBool("auto_deposit.evm.enabled"),
				RPCUrl:     viper.GetString("auto_deposit.evm.rpc_url"),
				PrivateKey: viper.GetString("auto_deposit.evm.private_key"),
				ChainID:    viper.GetInt64("auto_deposit.evm.chain_id"),
				GasLimit:   viper.GetUint64("auto_deposit.evm.gas_limit"),
				GasPrice:   viper.GetInt64("auto_deposit.evm.gas_price"),
			},
			Solana: SolanaConfig{
				Enabled:       viper.GetBool("auto_deposit.solana.enabled"),
				RPCUrl:        viper.GetString("auto_deposit.solana.rpc_url"),
				PrivateKey:    viper.GetString("auto_deposit.solana.private_key"),
				Commitment:    viper.GetString("auto_deposit.solana.commitment"),
				SkipPreflight: viper.GetBool("auto_deposit.solana.skip_preflight"),
			},
		},
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base_url must not be empty. Set INTENTS_SWAP_BASE_URL or create a .intents-swap.yaml config file")
	}

	globalConfig = cfg
	return cfg, nil
}

// PollInterval returns the status polling interval as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// DeadlineWindow returns how far in the future quote deadlines are set
func (c *Config) DeadlineWindow() time.Duration {
	return time.Duration(c.DeadlineMinutes) * time.Minute
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}

// Package config loads and validates the Guardian's configuration, its
// external contract. Layering follows the
// teacher's pattern: defaults in code, overridden by a YAML file,
// overridden again by GUARDIAN_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Network identifies which Solana cluster the gateway talks to.
type Network string

const (
	NetworkMainnet Network = "mainnet-beta"
	NetworkDevnet  Network = "devnet"
	NetworkTestnet Network = "testnet"
)

// Commitment is the chain-side freshness guarantee of a read.
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// Config is the root configuration object for the Guardian.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Chain      ChainConfig      `mapstructure:"chain"`
	Market     MarketConfig     `mapstructure:"market"`
	Swarm      SwarmConfig      `mapstructure:"swarm"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Guardian   GuardianConfig   `mapstructure:"guardian"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Vault      VaultConfig      `mapstructure:"vault"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// AppConfig contains process-level settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development, staging, production
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"` // json or console
}

// ChainConfig configures the RPC Gateway.
type ChainConfig struct {
	Network                  Network       `mapstructure:"network"`
	PrimaryURL               string        `mapstructure:"primary_url"`
	BackupURLs               []string      `mapstructure:"backup_urls"`
	Commitment               Commitment    `mapstructure:"commitment"`
	Timeout                  time.Duration `mapstructure:"timeout"`
	MaxRetries               int           `mapstructure:"max_retries"`
	RequestsPerSecond        float64       `mapstructure:"requests_per_second"`
	PriorityFeeMicroLamports uint64        `mapstructure:"priority_fee_micro_lamports"`
	HealthCheckInterval      time.Duration `mapstructure:"health_check_interval"`
	Simulation               bool          `mapstructure:"simulation"`
	WalletSecretPath         string        `mapstructure:"wallet_secret_path"` // JSON byte-array file
	WalletSecretBase58       string        `mapstructure:"wallet_secret_base58"`
}

// SourceRateLimit is the operations/minute budget for one market data source.
type SourceRateLimit struct {
	Source              string `mapstructure:"source"`
	OperationsPerMinute int    `mapstructure:"operations_per_minute"`
	Priority            int    `mapstructure:"priority"`
}

// MarketConfig configures the Market Data Aggregator.
type MarketConfig struct {
	Sources         []string          `mapstructure:"sources"`
	RateLimits      []SourceRateLimit `mapstructure:"rate_limits"`
	PriceCacheTTL   time.Duration     `mapstructure:"price_cache_ttl"`
	DexCacheTTL     time.Duration     `mapstructure:"dex_cache_ttl"`
	CoinGeckoAPIKey string            `mapstructure:"coingecko_api_key"`
}

// SwarmConfig configures the Swarm Coordinator.
type SwarmConfig struct {
	MinConfidence   float64       `mapstructure:"min_confidence"`
	MinVotes        int           `mapstructure:"min_votes"`
	HighThreshold   float64       `mapstructure:"high_threshold"`
	RejectThreshold float64       `mapstructure:"reject_threshold"`
	Timeout         time.Duration `mapstructure:"timeout"`
	CleanupWindow   time.Duration `mapstructure:"cleanup_window"`
	Roles           []string      `mapstructure:"roles"`
}

// LLMConfig configures the opaque reasoning oracle each Agent Plugin may
// consult. The core never parses provider-specific wire formats; this is
// the collaborator-facing seam between the Guardian and any LLM vendor.
type LLMConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	APIKey      string        `mapstructure:"api_key"`
	MCPCommand  string        `mapstructure:"mcp_command"` // optional: local MCP reasoner server

	// FallbackModel, when set, causes the oracle client to be backed by a
	// circuit-breaker-guarded fallback chain instead of a single model:
	// FallbackEndpoint/FallbackAPIKey default to Endpoint/APIKey when left
	// empty, so a single vendor can serve both a primary and a cheaper/
	// faster secondary model.
	FallbackModel    string `mapstructure:"fallback_model"`
	FallbackEndpoint string `mapstructure:"fallback_endpoint"`
	FallbackAPIKey   string `mapstructure:"fallback_api_key"`
}

// GuardianConfig configures the thin glue loop.
type GuardianConfig struct {
	TickInterval         time.Duration `mapstructure:"tick_interval"`
	EmergencyDropPct     float64       `mapstructure:"emergency_drop_pct"`
	EmergencyRiskCeiling float64       `mapstructure:"emergency_risk_ceiling"`
	OutcomeLogEnabled    bool          `mapstructure:"outcome_log_enabled"`
	TrackedSymbols       []string      `mapstructure:"tracked_symbols"`
	SafeHavenAddress     string        `mapstructure:"safe_haven_address"`
	BypassConsensusOnExit bool         `mapstructure:"bypass_consensus_on_exit"`
}

// RedisConfig configures the optional distributed market data cache.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

// PostgresConfig configures the optional outcome log.
type PostgresConfig struct {
	DSN     string `mapstructure:"dsn"`
	Enabled bool   `mapstructure:"enabled"`
}

// NATSConfig configures the optional cycle-outcome / heartbeat event bus.
type NATSConfig struct {
	URL              string `mapstructure:"url"`
	Enabled          bool   `mapstructure:"enabled"`
	OutcomeSubject   string `mapstructure:"outcome_subject"`
	HeartbeatSubject string `mapstructure:"heartbeat_subject"`
}

// VaultConfig configures the optional HashiCorp Vault secret backend.
type VaultConfig struct {
	Address           string `mapstructure:"address"`
	Token             string `mapstructure:"token"`
	Enabled           bool   `mapstructure:"enabled"`
	KeypairSecretPath string `mapstructure:"keypair_secret_path"`
}

// TelegramConfig configures the emergency-exit notification sink.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
	Enabled  bool   `mapstructure:"enabled"`
}

// MonitoringConfig configures the Prometheus metrics server.
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Load reads configuration from in-code defaults, a config file (if
// present), and environment variables prefixed GUARDIAN_, in that order
// of increasing priority.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("guardian")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("GUARDIAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "solana-guardian")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "console")

	v.SetDefault("chain.network", string(NetworkMainnet))
	v.SetDefault("chain.commitment", string(CommitmentConfirmed))
	v.SetDefault("chain.timeout", "10s")
	v.SetDefault("chain.max_retries", 3)
	v.SetDefault("chain.requests_per_second", 10.0)
	v.SetDefault("chain.health_check_interval", "30s")
	v.SetDefault("chain.simulation", true)

	v.SetDefault("market.sources", []string{"jupiter", "coingecko", "binance"})
	v.SetDefault("market.price_cache_ttl", "30s")
	v.SetDefault("market.dex_cache_ttl", "60s")

	v.SetDefault("swarm.min_confidence", 0.7)
	v.SetDefault("swarm.min_votes", 2)
	v.SetDefault("swarm.high_threshold", 0.85)
	v.SetDefault("swarm.reject_threshold", 0.4)
	v.SetDefault("swarm.timeout", "60s")
	v.SetDefault("swarm.cleanup_window", "1s")
	v.SetDefault("swarm.roles", []string{
		"market_analyzer", "strategy_optimizer", "risk_manager",
		"arbitrage_agent", "yield_farmer", "portfolio_manager", "decision_maker",
	})

	v.SetDefault("llm.endpoint", "http://localhost:8080/v1/chat/completions")
	v.SetDefault("llm.model", "claude-sonnet-4-20250514")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("llm.fallback_model", "")

	v.SetDefault("guardian.tick_interval", "60s")
	v.SetDefault("guardian.emergency_drop_pct", 0.1)
	v.SetDefault("guardian.emergency_risk_ceiling", 0.8)
	v.SetDefault("guardian.outcome_log_enabled", false)
	v.SetDefault("guardian.tracked_symbols", []string{"SOL", "USDC"})
	v.SetDefault("guardian.bypass_consensus_on_exit", false)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.outcome_subject", "guardian.cycle.outcome")
	v.SetDefault("nats.heartbeat_subject", "guardian.agent.heartbeat")
	v.SetDefault("monitoring.enabled", true)
	v.SetDefault("monitoring.port", 9100)
}

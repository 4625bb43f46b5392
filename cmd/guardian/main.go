package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ajitpratap0/solana-guardian/internal/agents"
	"github.com/ajitpratap0/solana-guardian/internal/alerts"
	"github.com/ajitpratap0/solana-guardian/internal/audit"
	"github.com/ajitpratap0/solana-guardian/internal/config"
	"github.com/ajitpratap0/solana-guardian/internal/eventbus"
	"github.com/ajitpratap0/solana-guardian/internal/guardian"
	"github.com/ajitpratap0/solana-guardian/internal/llm"
	"github.com/ajitpratap0/solana-guardian/internal/market"
	"github.com/ajitpratap0/solana-guardian/internal/memory"
	"github.com/ajitpratap0/solana-guardian/internal/metrics"
	"github.com/ajitpratap0/solana-guardian/internal/obslog"
	"github.com/ajitpratap0/solana-guardian/internal/risk"
	"github.com/ajitpratap0/solana-guardian/internal/rpcgateway"
	"github.com/ajitpratap0/solana-guardian/internal/secrets"
	"github.com/ajitpratap0/solana-guardian/internal/swarm"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := obslog.New(obslog.Config{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat})
	log.Info().Str("environment", cfg.App.Environment).Bool("simulation", cfg.Chain.Simulation).Msg("starting solana-guardian")

	metricsSrv := metrics.NewServer(cfg.Monitoring.Port, log)
	if cfg.Monitoring.Enabled {
		if err := metricsSrv.Start(); err != nil {
			log.Fatal().Err(err).Msg("start metrics server")
		}
	}

	keypair, err := loadKeypair(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("load wallet keypair")
	}

	gw := rpcgateway.New(rpcgateway.Config{
		PrimaryURL:          cfg.Chain.PrimaryURL,
		BackupURLs:          cfg.Chain.BackupURLs,
		Commitment:          string(cfg.Chain.Commitment),
		Timeout:             cfg.Chain.Timeout,
		MaxRetries:          cfg.Chain.MaxRetries,
		RequestsPerSecond:   cfg.Chain.RequestsPerSecond,
		PriorityFeeMicro:    cfg.Chain.PriorityFeeMicroLamports,
		HealthCheckInterval: cfg.Chain.HealthCheckInterval,
		Network:             string(cfg.Chain.Network),
	}, keypair, log, metrics.CircuitBreakerStatus)

	aggregator, err := market.New(buildMarketConfig(cfg), log)
	if err != nil {
		log.Fatal().Err(err).Msg("build market data aggregator")
	}

	oracle := llm.NewOracle(buildLLMClient(cfg))

	pool := mustConnectPostgres(cfg, log)
	outcomeLog := memory.NewLog(pool, log)
	auditLogger := audit.NewLogger(pool, cfg.Postgres.Enabled, log)
	if pool != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := outcomeLog.EnsureSchema(ctx); err != nil {
			log.Error().Err(err).Msg("ensure outcome log schema")
		}
		if err := auditLogger.EnsureSchema(ctx); err != nil {
			log.Error().Err(err).Msg("ensure audit log schema")
		}
		cancel()
	}

	alertMgr := buildAlertManager(cfg, log)

	natsURL := cfg.NATS.URL
	if !cfg.NATS.Enabled {
		natsURL = ""
	}
	bus, err := eventbus.Connect(eventbus.Config{URL: natsURL}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect event bus")
	}

	registry := swarm.NewRegistry()
	swarmCfg := swarm.Config{
		SwarmID:       "guardian",
		SelfID:        "guardian-loop",
		MinConfidence: cfg.Swarm.MinConfidence,
		MinVotes:      cfg.Swarm.MinVotes,
		Timeout:       cfg.Swarm.Timeout,
	}
	coordinator := swarm.NewCoordinator(registry, swarmCfg, log)

	plugins := buildSwarmPeers(cfg, oracle, gw, log)
	swarmPeers := make([]swarm.Peer, len(plugins))
	for i, p := range plugins {
		swarmPeers[i] = p
	}
	coordinator.JoinSwarm(loopPeer{id: swarmCfg.SelfID}, swarmPeers...)
	startHeartbeats(cfg, plugins, bus, log)

	gd := guardian.New(guardian.Config{
		TickInterval:          cfg.Guardian.TickInterval,
		TrackedSymbols:        cfg.Guardian.TrackedSymbols,
		Simulation:            cfg.Chain.Simulation,
		SafeHavenAddress:      cfg.Guardian.SafeHavenAddress,
		BypassConsensusOnExit: cfg.Guardian.BypassConsensusOnExit,
		Thresholds: risk.Thresholds{
			DropThreshold: cfg.Guardian.EmergencyDropPct,
			RiskCeiling:   cfg.Guardian.EmergencyRiskCeiling,
		},
	}, gw, aggregator, coordinator, outcomeLog, auditLogger, alertMgr, bus, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go gd.Run(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	cancel()
	bus.Close()
	if pool != nil {
		pool.Close()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown metrics server")
	}

	log.Info().Msg("solana-guardian shutdown complete")
}

// loadKeypair resolves the wallet signing key via Vault first, then the
// inline base58/file sources, falling back to an ephemeral key only in
// simulation mode.
func loadKeypair(cfg *config.Config, log zerolog.Logger) (*secrets.Keypair, error) {
	if cfg.Vault.Enabled {
		vc, err := secrets.NewVaultClient(secrets.VaultConfig{Address: cfg.Vault.Address, Token: cfg.Vault.Token}, log)
		if err != nil {
			return nil, fmt.Errorf("connect vault: %w", err)
		}
		if vc != nil {
			kp, err := vc.LoadKeypair(context.Background(), cfg.Vault.KeypairSecretPath)
			if err != nil {
				return nil, fmt.Errorf("load keypair from vault: %w", err)
			}
			if kp != nil {
				return kp, nil
			}
		}
	}

	return secrets.Load(secrets.LoadOptions{
		Base58Secret: cfg.Chain.WalletSecretBase58,
		FilePath:     cfg.Chain.WalletSecretPath,
		Simulation:   cfg.Chain.Simulation,
	}, log)
}

func buildMarketConfig(cfg *config.Config) market.Config {
	sources := make([]market.Source, 0, len(cfg.Market.Sources))
	for _, s := range cfg.Market.Sources {
		sources = append(sources, market.Source(s))
	}

	rateLimits := make([]market.SourceRateLimit, 0, len(cfg.Market.RateLimits))
	for _, rl := range cfg.Market.RateLimits {
		rateLimits = append(rateLimits, market.SourceRateLimit{
			Source:              market.Source(rl.Source),
			OperationsPerMinute: rl.OperationsPerMinute,
			Priority:            rl.Priority,
		})
	}

	return market.Config{
		Sources:         sources,
		RateLimits:      rateLimits,
		PriceCacheTTL:   cfg.Market.PriceCacheTTL,
		DexCacheTTL:     cfg.Market.DexCacheTTL,
		CoinGeckoAPIKey: cfg.Market.CoinGeckoAPIKey,
	}
}

// buildLLMClient wires the fallback client when a fallback model is
// configured; otherwise a single non-failover client serves every oracle
// query. FallbackEndpoint/FallbackAPIKey default to the primary values
// when left unset, so one vendor can serve both models.
func buildLLMClient(cfg *config.Config) llm.LLMClient {
	primary := llm.ClientConfig{
		Endpoint:    cfg.LLM.Endpoint,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}

	if cfg.LLM.FallbackModel == "" {
		return llm.NewClient(primary)
	}

	fallbackEndpoint := cfg.LLM.FallbackEndpoint
	if fallbackEndpoint == "" {
		fallbackEndpoint = cfg.LLM.Endpoint
	}
	fallbackAPIKey := cfg.LLM.FallbackAPIKey
	if fallbackAPIKey == "" {
		fallbackAPIKey = cfg.LLM.APIKey
	}

	return llm.NewFallbackClient(llm.FallbackConfig{
		PrimaryConfig: primary,
		PrimaryName:   cfg.LLM.Model,
		FallbackConfigs: []llm.ClientConfig{
			{
				Endpoint:    fallbackEndpoint,
				APIKey:      fallbackAPIKey,
				Model:       cfg.LLM.FallbackModel,
				Temperature: cfg.LLM.Temperature,
				MaxTokens:   cfg.LLM.MaxTokens,
				Timeout:     cfg.LLM.Timeout,
			},
		},
		FallbackNames:        []string{cfg.LLM.FallbackModel},
		CircuitBreakerConfig: llm.DefaultCircuitBreakerConfig(),
	})
}

func mustConnectPostgres(cfg *config.Config, log zerolog.Logger) *pgxpool.Pool {
	if !cfg.Postgres.Enabled {
		log.Info().Msg("postgres disabled, outcome log and audit trail run in no-op mode")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping postgres")
	}
	return pool
}

func buildAlertManager(cfg *config.Config, log zerolog.Logger) *alerts.Manager {
	alerters := []alerts.Alerter{alerts.NewLogAlerter(log)}

	if cfg.Telegram.Enabled {
		ta, err := alerts.NewTelegramAlerter(cfg.Telegram.BotToken, []int64{cfg.Telegram.ChatID}, log)
		if err != nil {
			log.Error().Err(err).Msg("telegram alerter disabled, falling back to log-only alerts")
		} else {
			alerters = append(alerters, ta)
		}
	}

	return alerts.NewManager(log, alerters...)
}

// buildSwarmPeers constructs the configured agent roles as live swarm
// peers. Only decision_maker is wired with an Executor, since it is the
// sole role whose vote is expected to carry an action forward.
func buildSwarmPeers(cfg *config.Config, oracle *llm.Oracle, gw *rpcgateway.Gateway, log zerolog.Logger) []*agents.ReasonerPlugin {
	minConfidence := cfg.Swarm.MinConfidence
	peers := make([]*agents.ReasonerPlugin, 0, len(cfg.Swarm.Roles))

	for _, role := range cfg.Swarm.Roles {
		agentLog := obslog.Agent(log, role, role)
		switch agents.Role(role) {
		case agents.RoleMarketAnalyzer:
			peers = append(peers, agents.NewMarketAnalyzer(role, oracle, minConfidence, agentLog))
		case agents.RoleStrategyOptimizer:
			peers = append(peers, agents.NewStrategyOptimizer(role, oracle, minConfidence, agentLog))
		case agents.RoleRiskManager:
			peers = append(peers, agents.NewRiskManager(role, oracle, minConfidence, agentLog))
		case agents.RoleArbitrageAgent:
			peers = append(peers, agents.NewArbitrageAgent(role, oracle, minConfidence, agentLog))
		case agents.RoleYieldFarmer:
			peers = append(peers, agents.NewYieldFarmer(role, oracle, minConfidence, agentLog))
		case agents.RolePortfolioManager:
			peers = append(peers, agents.NewPortfolioManager(role, oracle, minConfidence, agentLog))
		case agents.RoleDecisionMaker:
			peers = append(peers, agents.NewDecisionMaker(role, oracle, minConfidence, executeTransfer(gw), agentLog))
		default:
			log.Warn().Str("role", role).Msg("unknown swarm role configured, skipping")
		}
	}

	return peers
}

// executeTransfer adapts the gateway's native transfer into the generic
// Executor signature the decision-maker role calls on an approved action.
// It reads "destination" and "amount" out of the action's free-form
// parameters, the same shape the coordinator passed into the proposal.
func executeTransfer(gw *rpcgateway.Gateway) agents.Executor {
	return func(ctx context.Context, action agents.Action) (agents.ExecutionResult, error) {
		destination, _ := action.Params["destination"].(string)
		amountStr, _ := action.Params["amount"].(string)
		if destination == "" || amountStr == "" {
			return agents.ExecutionResult{Success: false, Error: "execute transfer: destination and amount are required"}, nil
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return agents.ExecutionResult{Success: false, Error: fmt.Sprintf("execute transfer: invalid amount: %v", err)}, nil
		}

		sig, err := gw.Transfer(ctx, destination, amount)
		if err != nil {
			return agents.ExecutionResult{Success: false, Error: err.Error()}, nil
		}
		return agents.ExecutionResult{Signature: sig, Success: true}, nil
	}
}

// startHeartbeats gives each live agent plugin a periodic heartbeat onto
// the shared event bus's NATS connection, so operator tooling can
// observe swarm membership health without polling every agent. A
// disabled bus (Conn() == nil) starts no publishers and logs nothing.
func startHeartbeats(cfg *config.Config, plugins []*agents.ReasonerPlugin, bus *eventbus.Bus, log zerolog.Logger) {
	conn := bus.Conn()
	if conn == nil {
		return
	}

	hbCfg := agents.DefaultHeartbeatConfig()
	if cfg.NATS.HeartbeatSubject != "" {
		hbCfg.Topic = cfg.NATS.HeartbeatSubject
	}

	for _, p := range plugins {
		publisher := agents.NewHeartbeatPublisher(p.ID(), string(p.Role()), hbCfg, log)
		publisher.SetNATSConn(conn)
		publisher.Start()
	}
}

// loopPeer identifies the guardian's own tick loop within the swarm
// registry so ProposeAction's exclude-self lookup resolves correctly.
// It never votes: the coordinator only dispatches to peers other than
// SelfID, so EvaluateProposal is unreachable in practice.
type loopPeer struct{ id string }

func (p loopPeer) ID() string { return p.id }

func (p loopPeer) EvaluateProposal(ctx context.Context, proposal swarm.Proposal) (swarm.Vote, error) {
	return swarm.Vote{}, fmt.Errorf("guardian loop peer does not evaluate proposals")
}

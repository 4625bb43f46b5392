package rpcgateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ajitpratap0/solana-guardian/internal/ratelimit"
	"github.com/ajitpratap0/solana-guardian/internal/secrets"
)

const lamportsPerSOL = 1_000_000_000

// Config is the gateway's construction contract.
type Config struct {
	PrimaryURL          string
	BackupURLs          []string
	Commitment          string
	Timeout             time.Duration
	MaxRetries          int
	RequestsPerSecond   float64
	PriorityFeeMicro    uint64
	HealthCheckInterval time.Duration
	Network             string
}

// Gateway is the resilient RPC client: one client per configured URL
// (primary first, then backups in order), a shared token bucket, and the
// process's only holder of the signing keypair.
type Gateway struct {
	clients     []*endpointClient
	limiter     *ratelimit.Bucket
	retryConfig RetryConfig
	commitment  string
	network     string
	keypair     *secrets.Keypair
	log         zerolog.Logger

	healthMu       sync.Mutex
	healthInterval time.Duration
	healthAt       time.Time
	healthValue    bool

	requestSeq atomic.Int64
}

// New constructs a Gateway. keypair may be nil only when the caller never
// intends to call transfer/submitSignedTransaction (e.g. read-only use);
// the guardian wiring enforces a fatal-at-startup rule for a missing
// required wallet before reaching here (see internal/secrets.Load).
func New(cfg Config, keypair *secrets.Keypair, log zerolog.Logger, breakerState *prometheus.GaugeVec) *Gateway {
	g := &Gateway{
		limiter:        ratelimit.New(cfg.RequestsPerSecond),
		retryConfig:    RetryConfig{MaxRetries: cfg.MaxRetries, InitialBackoff: 100 * time.Millisecond, MaxBackoff: 5 * time.Second, BackoffFactor: 2.0},
		commitment:     cfg.Commitment,
		network:        cfg.Network,
		keypair:        keypair,
		log:            log,
		healthInterval: cfg.HealthCheckInterval,
	}

	g.clients = append(g.clients, newEndpointClient("primary", cfg.PrimaryURL, cfg.Timeout, newEndpointBreaker("primary", breakerState)))
	for i, url := range cfg.BackupURLs {
		name := fmt.Sprintf("backup-%d", i+1)
		g.clients = append(g.clients, newEndpointClient(name, url, cfg.Timeout, newEndpointBreaker(name, breakerState)))
	}
	return g
}

func (g *Gateway) nextID() int {
	return int(g.requestSeq.Add(1))
}

func (g *Gateway) invoke(ctx context.Context, req rpcRequest) (json.RawMessage, error) {
	return g.invokeWithRetry(ctx, req, g.retryConfig)
}

func (g *Gateway) invokeWithRetry(ctx context.Context, req rpcRequest, retry RetryConfig) (json.RawMessage, error) {
	return g.withFailover(ctx, req, retry, func(ctx context.Context, c *endpointClient) (json.RawMessage, error) {
		return c.call(ctx, g.nextID(), req.Method, req.Params)
	})
}

// GetBalance returns the native SOL balance for address (or the gateway's
// own keypair's address when address is empty), normalized to whole units.
func (g *Gateway) GetBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	if address == "" {
		if g.keypair == nil {
			return decimal.Zero, fmt.Errorf("getBalance: no address given and no keypair configured")
		}
		address = g.keypair.PublicKeyBase58()
	}

	raw, err := g.invoke(ctx, rpcRequest{
		Method:     "getBalance",
		Params:     []any{address, map[string]string{"commitment": g.commitment}},
		Idempotent: true,
	})
	if err != nil {
		return decimal.Zero, err
	}

	// Solana wraps getBalance's numeric value inside {context, value}.
	var withContext struct {
		Value uint64 `json:"value"`
	}
	if err := json.Unmarshal(raw, &withContext); err != nil {
		return decimal.Zero, fmt.Errorf("parse getBalance response: %w", err)
	}

	return decimal.NewFromInt(int64(withContext.Value)).Div(decimal.NewFromInt(lamportsPerSOL)), nil
}

// GetTokenBalance returns the SPL balance of mint held by owner (or the
// gateway's own address when owner is empty).
func (g *Gateway) GetTokenBalance(ctx context.Context, mint, owner string) (decimal.Decimal, error) {
	if owner == "" {
		if g.keypair == nil {
			return decimal.Zero, fmt.Errorf("getTokenBalance: no owner given and no keypair configured")
		}
		owner = g.keypair.PublicKeyBase58()
	}

	raw, err := g.invoke(ctx, rpcRequest{
		Method: "getTokenAccountBalance",
		Params: []any{owner, map[string]string{"mint": mint}, map[string]string{"commitment": g.commitment}},
		Idempotent: true,
	})
	if err != nil {
		return decimal.Zero, err
	}

	var parsed struct {
		Value struct {
			UIAmountString string `json:"uiAmountString"`
		} `json:"value"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return decimal.Zero, fmt.Errorf("parse getTokenAccountBalance response: %w", err)
	}

	amount, err := decimal.NewFromString(parsed.Value.UIAmountString)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse token balance %q: %w", parsed.Value.UIAmountString, err)
	}
	return amount, nil
}

// GetAccountInfo returns nil, nil when the account does not exist: an
// absent value, not an error.
func (g *Gateway) GetAccountInfo(ctx context.Context, address string) (*AccountInfo, error) {
	raw, err := g.invoke(ctx, rpcRequest{
		Method:     "getAccountInfo",
		Params:     []any{address, map[string]any{"commitment": g.commitment, "encoding": "base64"}},
		Idempotent: true,
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Value *struct {
			Executable bool     `json:"executable"`
			Owner      string   `json:"owner"`
			Lamports   uint64   `json:"lamports"`
			RentEpoch  uint64   `json:"rentEpoch"`
			Data       []string `json:"data"`
		} `json:"value"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse getAccountInfo response: %w", err)
	}
	if parsed.Value == nil {
		return nil, nil
	}

	var data []byte
	if len(parsed.Value.Data) > 0 {
		data = []byte(parsed.Value.Data[0])
	}
	return &AccountInfo{
		Executable: parsed.Value.Executable,
		Owner:      parsed.Value.Owner,
		Lamports:   parsed.Value.Lamports,
		RentEpoch:  parsed.Value.RentEpoch,
		Data:       data,
	}, nil
}

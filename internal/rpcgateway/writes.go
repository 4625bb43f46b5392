package rpcgateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transfer sends a native SOL transfer from the gateway's keypair to
// recipient. Non-idempotent: a signed payload must never be retried
// across clients once it has reached the remote, so this builds and
// signs once and submits through submitOnce.
func (g *Gateway) Transfer(ctx context.Context, recipient string, amount decimal.Decimal) (string, error) {
	if g.keypair == nil {
		return "", ErrKeypairRequired
	}

	blockhash, err := g.getLatestBlockhash(ctx)
	if err != nil {
		// Pre-send failure: blockhash fetch may be retried (it is itself
		// an idempotent read going through the normal failover path).
		return "", fmt.Errorf("fetch blockhash for transfer: %w", err)
	}

	tx := buildTransferTransaction(g.keypair.PublicKeyBase58(), recipient, amount, blockhash)
	signed := g.keypair.Sign(tx)

	return g.submitOnce(ctx, tx, signed)
}

// SubmitSignedTransaction submits an already-built, already-signed
// transaction. Non-idempotent.
func (g *Gateway) SubmitSignedTransaction(ctx context.Context, tx []byte, signature []byte) (string, error) {
	return g.submitOnce(ctx, tx, signature)
}

// submitOnce makes at most one sendTransaction call per invocation: it
// goes to the first client in failover order whose breaker is not open,
// and any error from that call is returned without trying another
// client. maxRetries is pinned to 0 at this step.
func (g *Gateway) submitOnce(ctx context.Context, tx []byte, signature []byte) (string, error) {
	encoded := base64.StdEncoding.EncodeToString(tx)

	singleAttempt := g.retryConfig
	singleAttempt.MaxRetries = 0

	raw, err := g.invokeWithRetry(ctx, rpcRequest{
		Method:     "sendTransaction",
		Params:     []any{encoded, map[string]any{"encoding": "base64", "preflightCommitment": g.commitment}},
		Idempotent: false,
	}, singleAttempt)
	if err != nil {
		if isInsufficientFunds(err) {
			return "", ErrInsufficientFunds
		}
		return "", err
	}

	var sig string
	if err := json.Unmarshal(raw, &sig); err != nil {
		return "", fmt.Errorf("parse sendTransaction response: %w", err)
	}
	return sig, nil
}

func (g *Gateway) getLatestBlockhash(ctx context.Context) (string, error) {
	raw, err := g.invoke(ctx, rpcRequest{
		Method:     "getLatestBlockhash",
		Params:     []any{map[string]string{"commitment": g.commitment}},
		Idempotent: true,
	})
	if err != nil {
		return "", err
	}
	var parsed struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse getLatestBlockhash response: %w", err)
	}
	return parsed.Value.Blockhash, nil
}

// buildTransferTransaction is a minimal placeholder wire-builder: wire-level
// transaction construction beyond the gateway's retry/failover contract is
// collaborator territory; callers needing a fully-formed transfer
// instruction supply it through SubmitSignedTransaction instead.
func buildTransferTransaction(from, to string, amount decimal.Decimal, blockhash string) []byte {
	lamports := amount.Mul(decimal.NewFromInt(lamportsPerSOL)).IntPart()
	return []byte(fmt.Sprintf("transfer:%s:%s:%d:%s", from, to, lamports, blockhash))
}

// HealthCheck reports whether the primary endpoint is reachable, cached
// for healthCheckInterval (default 30s).
func (g *Gateway) HealthCheck(ctx context.Context) bool {
	g.healthMu.Lock()
	if time.Since(g.healthAt) < g.healthInterval {
		defer g.healthMu.Unlock()
		return g.healthValue
	}
	g.healthMu.Unlock()

	_, err := g.getSlot(ctx)
	healthy := err == nil

	g.healthMu.Lock()
	g.healthAt = time.Now()
	g.healthValue = healthy
	g.healthMu.Unlock()

	return healthy
}

// Package rpcgateway implements the resilient blockchain RPC client:
// retries, failover across primary/backup endpoints, token-bucket rate
// limiting, and the signing keypair's only consumer.
package rpcgateway

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// AccountInfo mirrors the Solana getAccountInfo response shape.
type AccountInfo struct {
	Executable bool
	Owner      string
	Lamports   uint64
	RentEpoch  uint64
	Data       []byte
}

// NetworkStats aggregates the concurrently-fetched sub-queries behind
// getNetworkStats.
type NetworkStats struct {
	Slot              uint64
	Epoch             uint64
	SlotIndex         uint64
	SlotsInEpoch      uint64
	TPS               float64
	TotalSupply       decimal.Decimal
	CirculatingSupply decimal.Decimal
	Network           string
}

// rpcRequest is the internal shape behind every call: method, params, a
// deadline, and whether repeating it is safe.
type rpcRequest struct {
	Method     string
	Params     []any
	Deadline   time.Time
	Idempotent bool
}

// jsonRPCRequest/jsonRPCResponse are the wire envelopes for Solana's
// JSON-RPC 2.0 surface.
type jsonRPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *jsonRPCError   `json:"error,omitempty"`
}

package rpcgateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// RetryConfig configures the exponential backoff applied between retry
// attempts, one attempt meaning one pass over every client in the pool.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
}

// DefaultRetryConfig returns the gateway's default retry policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		BackoffFactor:  2.0,
	}
}

// isTransportError reports whether err looks like a DNS/TCP/TLS/HTTP-5xx/
// timeout failure, retryable as a Transport-kind error.
func isTransportError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, substr := range []string{
		"connection refused", "connection reset", "timeout",
		"temporary failure", "too many requests", "rate limit",
		"eof", "no such host",
	} {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func isRateLimited(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests
}

// invokeFunc calls a single client for a single attempt. withFailover
// classifies its error: a definitive RPC error on a non-idempotent op
// fails fast across the whole call, not merely the current client.
type invokeFunc func(ctx context.Context, c *endpointClient) (json.RawMessage, error)

// withFailover implements the §4.1 pseudocode: for each attempt, walk the
// client pool in declared order (primary, then backups), acquiring a rate
// limit token before each try.
func (g *Gateway) withFailover(ctx context.Context, req rpcRequest, cfg RetryConfig, invoke invokeFunc) (json.RawMessage, error) {
	backoff := cfg.InitialBackoff
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("rpc gateway call cancelled: %w", ctx.Err())
		default:
		}

		for _, client := range g.clients {
			if !client.breaker.allow() {
				lastErr = fmt.Errorf("endpoint %s circuit open", client.name)
				continue
			}

			if err := g.limiter.Acquire(ctx); err != nil {
				return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
			}

			result, err := invoke(ctx, client)
			if err == nil {
				client.breaker.recordSuccess()
				if attempt > 0 {
					g.log.Info().Int("attempt", attempt+1).Str("endpoint", client.name).Msg("rpc call succeeded after retry")
				}
				return result, nil
			}

			client.breaker.recordFailure()
			lastErr = err

			var re *remoteError
			if errors.As(err, &re) {
				if !req.Idempotent {
					return nil, err
				}
				g.log.Debug().Err(err).Str("endpoint", client.name).Msg("definitive rpc error, trying next endpoint")
				continue
			}

			if !isTransportError(err) {
				return nil, err
			}
			if !req.Idempotent {
				return nil, err
			}
			g.log.Warn().Err(err).Str("endpoint", client.name).Msg("transport error, trying next endpoint")
		}

		if attempt == cfg.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("rpc gateway call cancelled during backoff: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff = time.Duration(float64(backoff) * cfg.BackoffFactor)
		if backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}

	return nil, &ErrAllAttemptsFailed{Attempts: cfg.MaxRetries + 1, LastError: lastErr}
}

package rpcgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// endpointClient is one JSON-RPC endpoint (primary or a backup) plus the
// breaker tracking its recent health.
type endpointClient struct {
	name    string
	url     string
	http    *http.Client
	breaker *endpointBreaker
}

func newEndpointClient(name, url string, timeout time.Duration, breaker *endpointBreaker) *endpointClient {
	return &endpointClient{
		name:    name,
		url:     url,
		http:    &http.Client{Timeout: timeout},
		breaker: breaker,
	}
}

// call performs one JSON-RPC 2.0 round trip. A non-2xx HTTP status or a
// response-level "error" field is reported as the appropriate error
// taxonomy kind.
func (c *endpointClient) call(ctx context.Context, requestID int, method string, params []any) (json.RawMessage, error) {
	body, err := json.Marshal(jsonRPCRequest{
		JSONRPC: "2.0",
		ID:      requestID,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rpc request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rpc request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transport error calling %s: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("endpoint %s rate limited (429)", c.name)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("endpoint %s returned http %d", c.name, resp.StatusCode)
	}

	var decoded jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("parse rpc response from %s: %w", c.name, err)
	}
	if decoded.Error != nil {
		return nil, &remoteError{Code: decoded.Error.Code, Message: decoded.Error.Message}
	}
	return decoded.Result, nil
}

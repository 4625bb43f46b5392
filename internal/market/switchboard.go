package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// switchboardFeeds maps symbols to Switchboard's public on-demand feed
// surface mirror (switchboard is one of the enumerated
// sources but has no single canonical endpoint shape; this follows the same
// GET-by-id pattern as Pyth Hermes).
var switchboardFeeds = map[string]string{
	"SOL": "GvDMxPzN1sCj7L26YDK2HnMRXEQmQ2aemov3JP1oyc19",
}

type switchboardSource struct {
	httpClient *http.Client
	baseURL    string
}

func newSwitchboardSource(timeout time.Duration) *switchboardSource {
	return &switchboardSource{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://api.switchboard.xyz/api/feed",
	}
}

func (s *switchboardSource) Name() Source { return SourceSwitchboard }

func (s *switchboardSource) Fetch(ctx context.Context, symbol string) (*PriceRecord, error) {
	feedID, ok := switchboardFeeds[symbol]
	if !ok {
		return nil, fmt.Errorf("switchboard: no feed configured for symbol %q", symbol)
	}

	reqURL := fmt.Sprintf("%s/%s", s.baseURL, feedID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("switchboard: build request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("switchboard: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("switchboard: status %d", resp.StatusCode)
	}

	var parsed struct {
		Result float64 `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("switchboard: decode response: %w", err)
	}

	return &PriceRecord{
		Symbol:      symbol,
		MintAddress: mintFor(symbol),
		Price:       decimal.NewFromFloat(parsed.Result),
		Change24h:   decimal.Zero,
		Timestamp:   time.Now(),
		Source:      SourceSwitchboard,
		Confidence:  0.85,
	}, nil
}

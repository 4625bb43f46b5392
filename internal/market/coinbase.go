package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// coinbaseSource reads Coinbase's public spot price endpoint.
type coinbaseSource struct {
	httpClient *http.Client
	baseURL    string
}

func newCoinbaseSource(timeout time.Duration) *coinbaseSource {
	return &coinbaseSource{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://api.coinbase.com/v2/prices",
	}
}

func (c *coinbaseSource) Name() Source { return SourceCoinbase }

func (c *coinbaseSource) Fetch(ctx context.Context, symbol string) (*PriceRecord, error) {
	reqURL := fmt.Sprintf("%s/%s-USD/spot", c.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("coinbase: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coinbase: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coinbase: status %d", resp.StatusCode)
	}

	var parsed struct {
		Data struct {
			Amount string `json:"amount"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("coinbase: decode response: %w", err)
	}

	price, err := decimal.NewFromString(parsed.Data.Amount)
	if err != nil {
		return nil, fmt.Errorf("coinbase: parse price %q: %w", parsed.Data.Amount, err)
	}

	return &PriceRecord{
		Symbol:      symbol,
		MintAddress: mintFor(symbol),
		Price:       price,
		Change24h:   decimal.Zero,
		Timestamp:   time.Now(),
		Source:      SourceCoinbase,
		Confidence:  0.9,
	}, nil
}

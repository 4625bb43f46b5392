package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// coinGeckoIDs maps the Guardian's short symbols to CoinGecko's coin ids,
// since the REST API addresses coins by slug rather than ticker.
var coinGeckoIDs = map[string]string{
	"SOL":  "solana",
	"USDC": "usd-coin",
	"USDT": "tether",
	"RAY":  "raydium",
	"ORCA": "orca",
}

// coinGeckoSource wraps the CoinGecko REST API, adapted from the
// teacher's CoinGeckoClient but narrowed to the single `fetch(symbol) →
// PriceRecord` contract every source adapter shares.
type coinGeckoSource struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func newCoinGeckoSource(apiKey string, timeout time.Duration) *coinGeckoSource {
	return &coinGeckoSource{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://api.coingecko.com/api/v3",
		apiKey:     apiKey,
	}
}

func (c *coinGeckoSource) Name() Source { return SourceCoinGecko }

func (c *coinGeckoSource) Fetch(ctx context.Context, symbol string) (*PriceRecord, error) {
	coinID, ok := coinGeckoIDs[symbol]
	if !ok {
		return nil, fmt.Errorf("coingecko: unknown symbol %q", symbol)
	}

	params := url.Values{}
	params.Set("localization", "false")
	params.Set("tickers", "false")
	params.Set("community_data", "false")
	params.Set("developer_data", "false")
	if c.apiKey != "" {
		params.Set("x_cg_pro_api_key", c.apiKey)
	}

	reqURL := fmt.Sprintf("%s/coins/%s?%s", c.baseURL, coinID, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("coingecko: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko: status %d", resp.StatusCode)
	}

	var parsed struct {
		MarketData struct {
			CurrentPrice          map[string]float64 `json:"current_price"`
			TotalVolume           map[string]float64 `json:"total_volume"`
			MarketCap             map[string]float64 `json:"market_cap"`
			PriceChangePercent24h *float64            `json:"price_change_percentage_24h"`
		} `json:"market_data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("coingecko: decode response: %w", err)
	}

	usdPrice, ok := parsed.MarketData.CurrentPrice["usd"]
	if !ok {
		return nil, fmt.Errorf("coingecko: no usd price for %s", symbol)
	}

	change := decimal.Zero
	if parsed.MarketData.PriceChangePercent24h != nil {
		change = decimal.NewFromFloat(*parsed.MarketData.PriceChangePercent24h)
	}

	var marketCap *decimal.Decimal
	if mc, ok := parsed.MarketData.MarketCap["usd"]; ok {
		d := decimal.NewFromFloat(mc)
		marketCap = &d
	}

	return &PriceRecord{
		Symbol:      symbol,
		MintAddress: mintFor(symbol),
		Price:       decimal.NewFromFloat(usdPrice),
		Volume24h:   decimal.NewFromFloat(parsed.MarketData.TotalVolume["usd"]),
		Change24h:   change,
		MarketCap:   marketCap,
		Timestamp:   time.Now(),
		Source:      SourceCoinGecko,
		Confidence:  1.0,
	}, nil
}

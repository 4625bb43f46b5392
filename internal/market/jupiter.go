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

// jupiterSource fetches prices from Jupiter's v3 price API, using the
// per-mint price it reports as-is, and quotes from its swap quote API.
type jupiterSource struct {
	httpClient *http.Client
	priceURL   string
	quoteURL   string
}

func newJupiterSource(timeout time.Duration) *jupiterSource {
	return &jupiterSource{
		httpClient: &http.Client{Timeout: timeout},
		priceURL:   "https://lite-api.jup.ag/price/v3",
		quoteURL:   "https://lite-api.jup.ag/swap/v1/quote",
	}
}

func (j *jupiterSource) Name() Source { return SourceJupiter }

func (j *jupiterSource) Fetch(ctx context.Context, symbol string) (*PriceRecord, error) {
	mint := mintFor(symbol)
	if mint == "" {
		return nil, fmt.Errorf("jupiter: unknown symbol %q", symbol)
	}

	params := url.Values{}
	params.Set("ids", mint)
	reqURL := j.priceURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("jupiter: build request: %w", err)
	}

	resp, err := j.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jupiter: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jupiter: status %d", resp.StatusCode)
	}

	var parsed struct {
		Data map[string]struct {
			Price string `json:"price"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("jupiter: decode response: %w", err)
	}

	entry, ok := parsed.Data[mint]
	if !ok {
		return nil, fmt.Errorf("jupiter: no price entry for mint %s", mint)
	}

	price, err := decimal.NewFromString(entry.Price)
	if err != nil {
		return nil, fmt.Errorf("jupiter: parse price %q: %w", entry.Price, err)
	}

	return &PriceRecord{
		Symbol:      symbol,
		MintAddress: mint,
		Price:       price,
		Change24h:   decimal.Zero,
		Timestamp:   time.Now(),
		Source:      SourceJupiter,
		Confidence:  1.0,
	}, nil
}

// FetchQuote builds a Quote from the swap quote API: ExpectedOut is the
// raw outAmount and MinimumOut is outAmount reduced by slippageBps.
// Amounts stay in the mints' base units; no decimal normalization is
// applied.
func (j *jupiterSource) FetchQuote(ctx context.Context, inputMint, outputMint string, inputAmount decimal.Decimal, slippageBps int) (*Quote, error) {
	params := url.Values{}
	params.Set("inputMint", inputMint)
	params.Set("outputMint", outputMint)
	params.Set("amount", inputAmount.String())
	params.Set("slippageBps", fmt.Sprintf("%d", slippageBps))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.quoteURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("jupiter quote: build request: %w", err)
	}

	resp, err := j.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jupiter quote: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jupiter quote: status %d", resp.StatusCode)
	}

	var parsed struct {
		InAmount       string          `json:"inAmount"`
		OutAmount      string          `json:"outAmount"`
		PriceImpactPct string          `json:"priceImpactPct"`
		RoutePlan      json.RawMessage `json:"routePlan"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("jupiter quote: decode response: %w", err)
	}

	outAmount, err := decimal.NewFromString(parsed.OutAmount)
	if err != nil {
		return nil, fmt.Errorf("jupiter quote: parse outAmount %q: %w", parsed.OutAmount, err)
	}
	impact, err := decimal.NewFromString(parsed.PriceImpactPct)
	if err != nil {
		impact = decimal.Zero
	}

	slippage := decimal.NewFromInt(int64(slippageBps)).Div(decimal.NewFromInt(10000))
	minOut := outAmount.Mul(decimal.NewFromInt(1).Sub(slippage))

	return &Quote{
		InputMint:      inputMint,
		OutputMint:     outputMint,
		InputAmount:    inputAmount,
		ExpectedOut:    outAmount,
		MinimumOut:     minOut,
		PriceImpactPct: impact,
		RoutePlan:      parsed.RoutePlan,
	}, nil
}

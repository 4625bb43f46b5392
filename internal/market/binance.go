package market

import (
	"context"
	"fmt"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
)

// binanceSource reads a CEX reference price off Binance's public ticker
// endpoint, narrowed to an unauthenticated price read — the
// Guardian never places Binance orders, only reads a reference price.
type binanceSource struct {
	client *binance.Client
}

// binanceSymbols maps the Guardian's short symbols to Binance's USDT
// spot pairs.
var binanceSymbols = map[string]string{
	"SOL":  "SOLUSDT",
	"RAY":  "RAYUSDT",
	"ORCA": "ORCAUSDT",
}

func newBinanceSource() *binanceSource {
	return &binanceSource{client: binance.NewClient("", "")}
}

func (b *binanceSource) Name() Source { return SourceBinance }

func (b *binanceSource) Fetch(ctx context.Context, symbol string) (*PriceRecord, error) {
	pair, ok := binanceSymbols[symbol]
	if !ok {
		return nil, fmt.Errorf("binance: unknown symbol %q", symbol)
	}

	tickers, err := b.client.NewListPricesService().Symbol(pair).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance: fetch ticker: %w", err)
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("binance: no ticker returned for %s", pair)
	}

	price, err := decimal.NewFromString(tickers[0].Price)
	if err != nil {
		return nil, fmt.Errorf("binance: parse price %q: %w", tickers[0].Price, err)
	}

	return &PriceRecord{
		Symbol:      symbol,
		MintAddress: mintFor(symbol),
		Price:       price,
		Change24h:   decimal.Zero,
		Timestamp:   time.Now(),
		Source:      SourceBinance,
		Confidence:  0.9,
	}, nil
}

package market

// tokenInfo is the mint/decimals pair of a known symbol, ported from the
// original's SOLANA_TOKENS table. The source adapters use the mint
// (mintFor); decimalsFor exposes the decimals, which no quote path
// applies.
type tokenInfo struct {
	Mint     string
	Decimals int32
}

var solanaTokens = map[string]tokenInfo{
	"SOL":  {Mint: "So11111111111111111111111111111111111111112", Decimals: 9},
	"USDC": {Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Decimals: 6},
	"USDT": {Mint: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Decimals: 6},
	"RAY":  {Mint: "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R", Decimals: 6},
	"ORCA": {Mint: "orcaEKTdK7LKz57vaAYr9QeNsVEPfiu6QeMU1kektZE", Decimals: 6},
}

func mintFor(symbol string) string {
	if info, ok := solanaTokens[symbol]; ok {
		return info.Mint
	}
	return ""
}

func decimalsFor(symbol string) int32 {
	if info, ok := solanaTokens[symbol]; ok {
		return info.Decimals
	}
	return 9
}

// overviewSymbols is the fixed set marketOverview() reports on.
var overviewSymbols = []string{"SOL", "USDC", "RAY", "ORCA"}

// overviewDexes is the fixed set of DEX venues marketOverview() reports on.
var overviewDexes = []string{"orca", "raydium", "jupiter"}

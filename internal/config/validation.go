package config

import (
	"fmt"
	"strings"
)

// ValidationError is one field-level configuration problem.
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors collects every problem found by Validate so a single
// startup failure reports everything wrong at once rather than one field
// per run.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration invalid (%d error(s)):\n", len(ve))
	for i, e := range ve {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, e.Field, e.Message)
	}
	return sb.String()
}

// knownSources is the enumerated set of recognized market data sources.
var knownSources = map[string]bool{
	"jupiter": true, "coingecko": true, "binance": true,
	"coinbase": true, "pyth": true, "switchboard": true,
}

// Validate checks for invalid wallet/network/source configuration,
// fatal at startup.
func (c *Config) Validate() error {
	var errs ValidationErrors

	switch c.Chain.Network {
	case NetworkMainnet, NetworkDevnet, NetworkTestnet:
	default:
		errs = append(errs, ValidationError{"chain.network", fmt.Sprintf("unknown network %q", c.Chain.Network)})
	}

	switch c.Chain.Commitment {
	case CommitmentProcessed, CommitmentConfirmed, CommitmentFinalized:
	default:
		errs = append(errs, ValidationError{"chain.commitment", fmt.Sprintf("unknown commitment %q", c.Chain.Commitment)})
	}

	if c.Chain.PrimaryURL == "" {
		errs = append(errs, ValidationError{"chain.primary_url", "primary RPC URL is required"})
	}

	if c.Chain.MaxRetries < 0 {
		errs = append(errs, ValidationError{"chain.max_retries", "must be >= 0"})
	}

	if c.Chain.RequestsPerSecond <= 0 {
		errs = append(errs, ValidationError{"chain.requests_per_second", "must be > 0"})
	}

	if !c.Chain.Simulation && c.Chain.WalletSecretPath == "" && c.Chain.WalletSecretBase58 == "" {
		errs = append(errs, ValidationError{
			"chain.wallet_secret_path",
			"a wallet secret (file or base58) is required when simulation is disabled",
		})
	}

	if len(c.Market.Sources) == 0 {
		errs = append(errs, ValidationError{"market.sources", "at least one market data source is required"})
	}
	for _, s := range c.Market.Sources {
		if !knownSources[s] {
			errs = append(errs, ValidationError{"market.sources", fmt.Sprintf("unknown source %q", s)})
		}
	}
	if c.Market.PriceCacheTTL <= 0 {
		errs = append(errs, ValidationError{"market.price_cache_ttl", "must be > 0"})
	}

	if c.Swarm.MinConfidence < 0 || c.Swarm.MinConfidence > 1 {
		errs = append(errs, ValidationError{"swarm.min_confidence", "must be within [0,1]"})
	}
	if c.Swarm.MinVotes < 1 {
		errs = append(errs, ValidationError{"swarm.min_votes", "must be >= 1"})
	}
	if c.Swarm.Timeout <= 0 {
		errs = append(errs, ValidationError{"swarm.timeout", "must be > 0"})
	}
	if c.Swarm.RejectThreshold >= c.Swarm.MinConfidence {
		errs = append(errs, ValidationError{"swarm.reject_threshold", "must be below min_confidence"})
	}
	if len(c.Swarm.Roles) == 0 {
		errs = append(errs, ValidationError{"swarm.roles", "at least one agent role is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

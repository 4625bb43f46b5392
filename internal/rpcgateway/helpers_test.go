package rpcgateway

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/solana-guardian/internal/secrets"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func testKeypair(t *testing.T) *secrets.Keypair {
	t.Helper()
	kp, err := secrets.Load(secrets.LoadOptions{Simulation: true}, zerolog.Nop())
	require.NoError(t, err)
	return kp
}

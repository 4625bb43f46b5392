package secrets

import (
	"context"
	"fmt"

	vault "github.com/hashicorp/vault/api"
	"github.com/rs/zerolog"
)

// VaultConfig names the Vault KV backend used for production secrets,
// here adapted to the keypair/API-key retrieval path.
// Optional: when Address is empty, callers fall back to file/env.
type VaultConfig struct {
	Address string
	Token   string
}

// VaultClient wraps the HashiCorp Vault KV v2 API for the handful of
// secrets the Guardian needs: the wallet keypair and third-party API keys.
type VaultClient struct {
	client *vault.Client
	log    zerolog.Logger
}

// NewVaultClient connects to Vault using the given address/token. Returns
// nil, nil when cfg.Address is empty — callers treat that as "Vault not
// configured" and use their next fallback source.
func NewVaultClient(cfg VaultConfig, log zerolog.Logger) (*VaultClient, error) {
	if cfg.Address == "" {
		return nil, nil
	}

	vcfg := vault.DefaultConfig()
	vcfg.Address = cfg.Address

	client, err := vault.NewClient(vcfg)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	return &VaultClient{client: client, log: log.With().Str("secret_source", "vault").Logger()}, nil
}

// GetSecret reads a single key from a KV v2 secret at path, returning its
// raw value. Never logs the retrieved value.
func (v *VaultClient) GetSecret(ctx context.Context, path, key string) (string, error) {
	secret, err := v.client.KVv2("secret").Get(ctx, path)
	if err != nil {
		return "", fmt.Errorf("read vault secret %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("vault secret %s has no data", path)
	}

	raw, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("vault secret %s has no key %q", path, key)
	}
	str, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("vault secret %s key %q is not a string", path, key)
	}
	return str, nil
}

// LoadKeypair attempts to fetch the wallet secret from Vault at path under
// key "secret_base58". Returns nil, nil if the client itself is nil
// (Vault not configured), so callers can chain fallbacks cleanly.
func (v *VaultClient) LoadKeypair(ctx context.Context, path string) (*Keypair, error) {
	if v == nil {
		return nil, nil
	}
	secret, err := v.GetSecret(ctx, path, "secret_base58")
	if err != nil {
		return nil, err
	}
	return fromBase58(secret)
}

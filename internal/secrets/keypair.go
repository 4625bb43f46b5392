// Package secrets loads the Gateway's signing keypair and other sensitive
// material: from a base58-encoded
// secret, from a JSON byte-array file, from an optional Vault-backed KV
// store, or — only in simulation mode — generated ephemerally.
package secrets

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mr-tron/base58"
	"github.com/rs/zerolog"
)

// Keypair is the Solana signing identity the gateway submits writes with.
// Bytes must never be logged; String and MarshalJSON are
// deliberately not implemented on the private portion.
type Keypair struct {
	PublicKey  ed25519.PublicKey
	privateKey ed25519.PrivateKey
}

// Sign signs msg with the keypair's private key.
func (k Keypair) Sign(msg []byte) []byte {
	return ed25519.Sign(k.privateKey, msg)
}

// PublicKeyBase58 returns the base58 address, safe to log.
func (k Keypair) PublicKeyBase58() string {
	return base58.Encode(k.PublicKey)
}

// LoadOptions describes the sources Load will try, in order.
type LoadOptions struct {
	Base58Secret string // non-empty: decode directly
	FilePath     string // non-empty: read a JSON []byte array
	Simulation   bool   // when true and neither source is set, generate ephemeral
}

// Load resolves a Keypair. Fatal at startup (ConfigError)
// when simulation is off and no secret source is configured.
func Load(opts LoadOptions, log zerolog.Logger) (*Keypair, error) {
	switch {
	case opts.Base58Secret != "":
		return fromBase58(opts.Base58Secret)
	case opts.FilePath != "":
		return fromFile(opts.FilePath)
	case opts.Simulation:
		log.Warn().Msg("no wallet secret configured; generating ephemeral keypair for simulation")
		return generateEphemeral()
	default:
		return nil, fmt.Errorf("no wallet secret configured and simulation is disabled: refusing to start")
	}
}

func fromBase58(secret string) (*Keypair, error) {
	raw, err := base58.Decode(secret)
	if err != nil {
		return nil, fmt.Errorf("decode base58 wallet secret: %w", err)
	}
	return fromSeedBytes(raw)
}

func fromFile(path string) (*Keypair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wallet keyfile: %w", err)
	}
	var bytesArr []byte
	if err := json.Unmarshal(data, &bytesArr); err != nil {
		return nil, fmt.Errorf("parse wallet keyfile as JSON byte array: %w", err)
	}
	return fromSeedBytes(bytesArr)
}

func fromSeedBytes(raw []byte) (*Keypair, error) {
	switch len(raw) {
	case ed25519.PrivateKeySize:
		priv := ed25519.PrivateKey(raw)
		pub, ok := priv.Public().(ed25519.PublicKey)
		if !ok {
			return nil, fmt.Errorf("derive public key from private key")
		}
		return &Keypair{PublicKey: pub, privateKey: priv}, nil
	case ed25519.SeedSize:
		priv := ed25519.NewKeyFromSeed(raw)
		pub, ok := priv.Public().(ed25519.PublicKey)
		if !ok {
			return nil, fmt.Errorf("derive public key from seed")
		}
		return &Keypair{PublicKey: pub, privateKey: priv}, nil
	default:
		return nil, fmt.Errorf("wallet secret has unexpected length %d (want %d or %d)", len(raw), ed25519.SeedSize, ed25519.PrivateKeySize)
	}
}

func generateEphemeral() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral keypair: %w", err)
	}
	return &Keypair{PublicKey: pub, privateKey: priv}, nil
}

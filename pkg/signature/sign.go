package signature

import (
	"encoding/hex"
	"fmt"

	"github.com/ChainSafe/gossamer/lib/crypto/sr25519"
	"github.com/rs/zerolog/log"
)

// NewProvider wraps an in-memory keypair; its address is derived from the public key.
func NewProvider(keypair *sr25519.Keypair) (*Provider, error) {
	if keypair == nil {
		return nil, fmt.Errorf("keypair cannot be nil")
	}
	signer := gossamerSigner{keypair}
	return &Provider{
		signer:  signer,
		address: ToSs58Address(signer.Public()),
	}, nil
}

// Sign implements the SignatureProvider interface
func (p *Provider) Sign(message string) (string, error) {
	if p == nil || p.signer == nil {
		return "", fmt.Errorf("private key not initialized")
	}

	signature, err := p.signer.Sign([]byte(message))
	if err != nil {
		log.Error().Err(err).Msg("Failed to sign message")
		return "", fmt.Errorf("failed to sign message: %w", err)
	}

	return "0x" + hex.EncodeToString(signature), nil
}

// SS58Address implements the SignatureProvider interface
func (p *Provider) SS58Address() string {
	if p == nil {
		return ""
	}
	return p.address
}

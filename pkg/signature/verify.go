package signature

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ChainSafe/gossamer/lib/crypto/sr25519"
	"github.com/rs/zerolog/log"
	"github.com/vedhavyas/go-subkey"
)

const signatureLength = 64

// NewVerifier creates a new signature verifier
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify implements the SignatureVerifier interface
func (v *Verifier) Verify(message, signature, ss58Address string) (bool, error) {
	return Verify(message, signature, ss58Address)
}

func decodeSignature(signature string) ([]byte, error) {
	if !strings.HasPrefix(signature, "0x") {
		return nil, fmt.Errorf("signature does not start with '0x'")
	}
	sigBytes, err := hex.DecodeString(signature[2:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature hex: %w", err)
	}
	if len(sigBytes) != signatureLength {
		return nil, fmt.Errorf("invalid signature length: expected %d bytes, got %d", signatureLength, len(sigBytes))
	}
	return sigBytes, nil
}

// Verify checks an sr25519 signature over message against the key encoded in ss58Address.
func Verify(message, signature, ss58Address string) (bool, error) {
	sigBytes, err := decodeSignature(signature)
	if err != nil {
		log.Error().Err(err).Str("ss58_address", ss58Address).Msg("Rejected signature")
		return false, err
	}

	_, pubKeyBytes, err := subkey.SS58Decode(ss58Address)
	if err != nil {
		log.Error().Err(err).Str("ss58_address", ss58Address).Msg("Failed to decode SS58 address")
		return false, fmt.Errorf("failed to decode SS58 address to derive public key: %w", err)
	}

	publicKey, err := sr25519.NewPublicKey(pubKeyBytes)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create public key")
		return false, fmt.Errorf("failed to create public key: %w", err)
	}

	return publicKey.Verify([]byte(message), sigBytes)
}

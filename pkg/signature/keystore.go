package signature

import (
	"encoding/hex"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/ChainSafe/gossamer/lib/crypto/sr25519"
	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ExpandHome resolves a leading ~/ against the current user's home directory.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	usr, err := user.Current()
	if err != nil {
		return "", errors.Wrap(err, "failed to get current user")
	}
	return filepath.Join(usr.HomeDir, path[2:]), nil
}

// KeyPath returns {dir}/{name}.json.
func KeyPath(dir, name string) (string, error) {
	if dir == "" {
		dir = DefaultKeyDir
	}
	dir, err := ExpandHome(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+".json"), nil
}

// LoadKey reads the commune key named name from dir and derives its signing keypair.
func LoadKey(dir, name string) (*Key, error) {
	if name == "" {
		return nil, errors.New("key name is required")
	}

	path, err := KeyPath(dir, name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().
			Err(err).
			Str("path", path).
			Msg("Failed to read key file")
		return nil, errors.Wrap(err, "failed to read key file")
	}

	ck, err := parseCommuneKey(data)
	if err != nil {
		log.Error().
			Err(err).
			Str("path", path).
			Msg("Failed to parse key file")
		return nil, errors.Wrapf(err, "failed to parse key file %s", path)
	}

	provider, err := providerFromKey(ck)
	if err != nil {
		log.Error().
			Err(err).
			Str("path", path).
			Str("ss58_address", ck.SS58Address).
			Msg("Failed to derive keypair")
		return nil, err
	}

	log.Debug().
		Str("key_name", name).
		Str("ss58_address", provider.SS58Address()).
		Msg("Loaded key")

	return &Key{Name: name, Path: path, Provider: provider}, nil
}

func parseCommuneKey(data []byte) (*communeKey, error) {
	var outer communeKeyFile
	if err := sonic.Unmarshal(data, &outer); err != nil {
		return nil, errors.Wrap(err, "outer document")
	}
	if outer.Data == "" {
		return nil, errors.New("missing data field")
	}

	var ck communeKey
	if err := sonic.UnmarshalString(outer.Data, &ck); err != nil {
		return nil, errors.Wrap(err, "embedded key document")
	}
	if ck.SS58Address == "" {
		return nil, errors.New("ss58_address not found in key")
	}
	if ck.PrivateKey == "" && ck.SeedHex == "" && ck.Mnemonic == "" {
		return nil, errors.New("private_key not found in key")
	}
	return &ck, nil
}

const miniSecretLength = 32

// providerFromKey prefers seed_hex, then mnemonic, then private_key.
func providerFromKey(ck *communeKey) (*Provider, error) {
	var (
		signer rawSigner
		source string
	)

	switch {
	case ck.SeedHex != "":
		seed, err := decodeHex(ck.SeedHex)
		if err != nil {
			return nil, errors.Wrap(err, "seed_hex")
		}
		kp, err := sr25519.NewKeypairFromSeed(seed)
		if err != nil {
			return nil, errors.Wrap(err, "keypair from seed")
		}
		signer, source = gossamerSigner{kp}, "seed_hex"
	case ck.Mnemonic != "":
		kp, err := sr25519.NewKeypairFromMnenomic(ck.Mnemonic, "")
		if err != nil {
			return nil, errors.Wrap(err, "keypair from mnemonic")
		}
		signer, source = gossamerSigner{kp}, "mnemonic"
	default:
		raw, err := decodeHex(ck.PrivateKey)
		if err != nil {
			return nil, errors.Wrap(err, "private_key")
		}
		if len(raw) < miniSecretLength {
			return nil, errors.Errorf("private_key too short: %d bytes", len(raw))
		}
		// the leading 32 bytes are the mini-secret, the rest is the nonce
		kp, err := sr25519.NewKeypairFromSeed(raw[:miniSecretLength])
		if err != nil {
			return nil, errors.Wrap(err, "keypair from private_key")
		}
		signer, source = gossamerSigner{kp}, "private_key"
	}

	derived := ToSs58Address(signer.Public())
	if derived != ck.SS58Address {
		log.Warn().
			Str("source", source).
			Str("derived", derived).
			Str("ss58_address", ck.SS58Address).
			Msg("Derived address does not match key file")
	}

	return &Provider{signer: signer, address: ck.SS58Address}, nil
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
}

// gossamerSigner adapts a gossamer keypair to rawSigner.
type gossamerSigner struct {
	kp *sr25519.Keypair
}

func (g gossamerSigner) Sign(msg []byte) ([]byte, error) {
	return g.kp.Sign(msg)
}

func (g gossamerSigner) Public() []byte {
	return g.kp.Public().Encode()
}

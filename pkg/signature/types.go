package signature

const (
	SubstrateNetworkId = 42

	DefaultKeyDir = "~/.commune/key"
)

type SignatureVerifier interface {
	// Verify checks if the provided signature is valid for the given message and SS58 address.
	Verify(message, signature, ss58Address string) (bool, error)
}

// Verifier is a concrete implementation of SignatureVerifier
type Verifier struct{}

type SignatureProvider interface {
	// Sign returns a 0x-prefixed hex sr25519 signature over message.
	Sign(message string) (string, error)
	// SS58Address is the identity the signatures verify against.
	SS58Address() string
}

// rawSigner is satisfied by the gossamer keypair adapter.
type rawSigner interface {
	Sign(msg []byte) ([]byte, error)
	Public() []byte
}

// Provider signs with a key loaded from the keystore.
type Provider struct {
	signer  rawSigner
	address string
}

// communeKeyFile is the outer envelope written by the commune CLI.
type communeKeyFile struct {
	Data string `json:"data"`
}

// communeKey is the JSON document embedded in communeKeyFile.Data.
type communeKey struct {
	CryptoType  int    `json:"crypto_type"`
	SeedHex     string `json:"seed_hex"`
	Mnemonic    string `json:"mnemonic"`
	PrivateKey  string `json:"private_key"`
	PublicKey   string `json:"public_key"`
	SS58Address string `json:"ss58_address"`
	SS58Format  int    `json:"ss58_format"`
}

// Key is an identity loaded from disk.
type Key struct {
	Name     string
	Path     string
	Provider *Provider
}

// SS58Address returns the identity recorded in the key file.
func (k *Key) SS58Address() string {
	return k.Provider.SS58Address()
}

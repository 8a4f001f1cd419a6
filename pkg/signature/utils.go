package signature

import (
	"github.com/vedhavyas/go-subkey"
)

func ToSs58Address(publicKey []byte) string {
	return subkey.SS58Encode(publicKey, SubstrateNetworkId)
}

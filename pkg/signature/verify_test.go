package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignatureVerification(t *testing.T) {
	message := "I solemnly swear that I am up to some good. Hotkey: 5Eq1FDc9oz1tTm4MqGLdH4ajgz9eMgQ5To812axojN121DiQ"
	signature := "0x8ee4ce50165f23b739ec55c2beeafcd273685819c32470df26b0641d15593d3b08b8aef7c391f01e7c2e34c2ee12b80df0c4b615cc0d0966be0dc81192bbc286"
	ss58Address := "5Eq1FDc9oz1tTm4MqGLdH4ajgz9eMgQ5To812axojN121DiQ"

	ok, err := NewVerifier().Verify(message, signature, ss58Address)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestSignatureVerificationFail(t *testing.T) {
	const (
		validSig  = "0x8ee4ce50165f23b739ec55c2beeafcd273685819c32470df26b0641d15593d3b08b8aef7c391f01e7c2e34c2ee12b80df0c4b615cc0d0966be0dc81192bbc286"
		validAddr = "5Eq1FDc9oz1tTm4MqGLdH4ajgz9eMgQ5To812axojN121DiQ"
	)

	cases := []struct {
		name      string
		signature string
		address   string
	}{
		{"missing 0x prefix", validSig[2:], validAddr},
		{"short signature", validSig[:66], validAddr},
		{"non hex signature", "0x" + "zz" + validSig[4:], validAddr},
		{"invalid ss58 address", validSig, "invalid-address"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := Verify("test message", tc.signature, tc.address)
			assert.Error(t, err)
			assert.False(t, ok)
		})
	}
}

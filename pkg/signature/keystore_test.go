package signature

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/ChainSafe/gossamer/lib/crypto/sr25519"
	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedhavyas/go-subkey"
)

func writeKeyFile(t *testing.T, dir, name string, inner map[string]any) {
	t.Helper()
	innerJSON, err := sonic.MarshalString(inner)
	require.NoError(t, err)
	outer, err := sonic.Marshal(map[string]any{"data": innerJSON})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), outer, 0o600))
}

func TestLoadKey_SeedHex(t *testing.T) {
	dir := t.TempDir()

	seed := make([]byte, 32)
	_, err := rand.Read(seed)
	require.NoError(t, err)
	kp, err := sr25519.NewKeypairFromSeed(seed)
	require.NoError(t, err)
	address := ToSs58Address(kp.Public().Encode())

	writeKeyFile(t, dir, "eden.Validator_0", map[string]any{
		"crypto_type":  1,
		"seed_hex":     "0x" + hex.EncodeToString(seed),
		"private_key":  hex.EncodeToString(make([]byte, 64)),
		"ss58_address": address,
	})

	key, err := LoadKey(dir, "eden.Validator_0")
	require.NoError(t, err)
	assert.Equal(t, address, key.SS58Address())
	assert.Equal(t, filepath.Join(dir, "eden.Validator_0.json"), key.Path)

	sig, err := key.Provider.Sign("vote")
	require.NoError(t, err)
	ok, err := Verify("vote", sig, address)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoadKey_PrivateKey(t *testing.T) {
	dir := t.TempDir()

	secret := make([]byte, 32)
	_, err := rand.Read(secret)
	require.NoError(t, err)
	kp, err := sr25519.NewKeypairFromSeed(secret)
	require.NoError(t, err)
	address := ToSs58Address(kp.Public().Encode())

	privateKey := append(append([]byte{}, secret...), make([]byte, 32)...)
	writeKeyFile(t, dir, "eden.Validator_1", map[string]any{
		"private_key":  hex.EncodeToString(privateKey),
		"ss58_address": address,
	})

	key, err := LoadKey(dir, "eden.Validator_1")
	require.NoError(t, err)
	assert.Equal(t, address, key.Provider.SS58Address())

	sig, err := key.Provider.Sign("vote")
	require.NoError(t, err)
	ok, err := Verify("vote", sig, address)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoadKey_PrivateKeyTooShort(t *testing.T) {
	dir := t.TempDir()
	writeKeyFile(t, dir, "short", map[string]any{
		"private_key":  hex.EncodeToString(make([]byte, 16)),
		"ss58_address": "5Eq1FDc9oz1tTm4MqGLdH4ajgz9eMgQ5To812axojN121DiQ",
	})

	_, err := LoadKey(dir, "short")
	assert.Error(t, err)
}

func TestLoadKey_Mnemonic(t *testing.T) {
	dir := t.TempDir()
	kp, err := sr25519.NewKeypairFromMnenomic(subkey.DevPhrase, "")
	require.NoError(t, err)
	address := ToSs58Address(kp.Public().Encode())

	writeKeyFile(t, dir, "miner", map[string]any{
		"mnemonic":     subkey.DevPhrase,
		"ss58_address": address,
	})

	key, err := LoadKey(dir, "miner")
	require.NoError(t, err)
	assert.Equal(t, address, key.SS58Address())
}

func TestLoadKey_AddressMismatchKeepsFileIdentity(t *testing.T) {
	dir := t.TempDir()
	writeKeyFile(t, dir, "miner", map[string]any{
		"mnemonic":     subkey.DevPhrase,
		"ss58_address": "5Eq1FDc9oz1tTm4MqGLdH4ajgz9eMgQ5To812axojN121DiQ",
	})

	key, err := LoadKey(dir, "miner")
	require.NoError(t, err)
	assert.Equal(t, "5Eq1FDc9oz1tTm4MqGLdH4ajgz9eMgQ5To812axojN121DiQ", key.SS58Address())
}

func TestLoadKey_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing name", func(t *testing.T) {
		_, err := LoadKey(dir, "")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadKey(dir, "absent")
		assert.Error(t, err)
	})

	t.Run("malformed outer json", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o600))
		_, err := LoadKey(dir, "broken")
		assert.Error(t, err)
	})

	t.Run("malformed embedded json", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "inner.json"), []byte(`{"data":"{oops"}`), 0o600))
		_, err := LoadKey(dir, "inner")
		assert.Error(t, err)
	})

	t.Run("missing private material", func(t *testing.T) {
		writeKeyFile(t, dir, "empty", map[string]any{"ss58_address": "5Eq1FDc9oz1tTm4MqGLdH4ajgz9eMgQ5To812axojN121DiQ"})
		_, err := LoadKey(dir, "empty")
		assert.Error(t, err)
	})

	t.Run("missing address", func(t *testing.T) {
		writeKeyFile(t, dir, "noaddr", map[string]any{"mnemonic": subkey.DevPhrase})
		_, err := LoadKey(dir, "noaddr")
		assert.Error(t, err)
	})
}

func TestKeyPath(t *testing.T) {
	p, err := KeyPath("/tmp/keys", "eden.Miner_1")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/keys/eden.Miner_1.json", p)

	home, err := ExpandHome("~/.commune/key")
	require.NoError(t, err)
	assert.NotContains(t, home, "~")
}

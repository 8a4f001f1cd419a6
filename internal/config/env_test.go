package config

import (
	"context"
	"flag"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfigFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Netuid)
	assert.Equal(t, "~/.commune/key", cfg.KeyDir)
	assert.Equal(t, "3000", cfg.GatewayPort)
	assert.Equal(t, 50, cfg.PeerConcurrency)
	assert.Equal(t, 30*time.Second, cfg.PeerTimeout)
	assert.InDelta(t, 0.4, cfg.SimilarityCoefficient, 1e-9)
	assert.InDelta(t, 0.35, cfg.PriorCoefficient, 1e-9)
	assert.InDelta(t, 0.25, cfg.StakeCoefficient, 1e-9)
	assert.InDelta(t, 30.0, cfg.DefaultPeerWeight, 1e-9)
	assert.Equal(t, "tokenize", cfg.MinerMode)
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := LoadConfigFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"NETUID":           "3",
		"PEER_TIMEOUT":     "5s",
		"PEER_CONCURRENCY": "8",
		"INFERENCE_URL":    "http://localhost:9000",
		"ENVIRONMENT":      "prod",
	}))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Netuid)
	assert.Equal(t, 5*time.Second, cfg.PeerTimeout)
	assert.Equal(t, 8, cfg.PeerConcurrency)
	assert.Equal(t, "http://localhost:9000", cfg.InferenceURL)
	assert.Equal(t, ProdIntervalConfig, NewIntervalConfig(cfg.Environment))
}

func TestLoadConfig_BadValue(t *testing.T) {
	_, err := LoadConfigFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"NETUID": "ten",
	}))
	require.Error(t, err)
}

func TestIntervalConfig_Cooldown(t *testing.T) {
	ic := NewIntervalConfig("prod")
	for range 100 {
		d := ic.Cooldown()
		assert.GreaterOrEqual(t, d, 60*time.Second)
		assert.LessOrEqual(t, d, 120*time.Second)
	}

	fixed := &IntervalConfig{CooldownMin: time.Second, CooldownMax: time.Second}
	assert.Equal(t, time.Second, fixed.Cooldown())
}

func TestNewIntervalConfig_UnknownFallsBackToDev(t *testing.T) {
	assert.Equal(t, DevIntervalConfig, NewIntervalConfig("staging"))
}

func TestApplyFlags(t *testing.T) {
	cfg, err := LoadConfigFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"KEY_NAME": "from-env",
	}))
	require.NoError(t, err)

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range IdentityFlags() {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse([]string{"--key-name", "eden.validator", "--port", "6000", "--use-testnet"}))

	cfg.ApplyFlags(cli.NewContext(cli.NewApp(), set, nil))

	assert.Equal(t, "eden.validator", cfg.KeyName)
	assert.Equal(t, 6000, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.True(t, cfg.UseTestnet)
	assert.Equal(t, "3001", cfg.GatewayPort)
	assert.Equal(t, "0.0.0.0:6000", cfg.ListenAddress())
}

func TestApplyFlags_ModulePathFallback(t *testing.T) {
	cfg, err := LoadConfigFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range IdentityFlags() {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse([]string{"--module-path", "eden.Miner_0"}))

	cfg.ApplyFlags(cli.NewContext(cli.NewApp(), set, nil))
	assert.Equal(t, "eden.Miner_0", cfg.KeyName)
	assert.Equal(t, "3000", cfg.GatewayPort)
}

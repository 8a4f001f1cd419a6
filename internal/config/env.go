// Package config defines environment configuration structs and loaders.
package config

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type AppConfig struct {
	ChainEnvConfig
	WalletEnvConfig
	GatewayEnvConfig
	InferenceEnvConfig
	ValidatorEnvConfig
	ServerEnvConfig
	MinerEnvConfig
}

// LoadConfig processes the environment into an AppConfig.
func LoadConfig(ctx context.Context) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := envconfig.Process(ctx, cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return cfg, nil
}

// LoadConfigFrom is LoadConfig with an explicit lookuper, used in tests.
func LoadConfigFrom(ctx context.Context, lookuper envconfig.Lookuper) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return cfg, nil
}

// ChainEnvConfig holds chain-specific environment values.
type ChainEnvConfig struct {
	Netuid     int    `env:"NETUID, default=10"`
	SubnetName string `env:"SUBNET_NAME"`
	UseTestnet bool   `env:"USE_TESTNET, default=false"`
}

// WalletEnvConfig points at the local commune key directory.
type WalletEnvConfig struct {
	KeyDir  string `env:"COMMUNE_KEY_DIR, default=~/.commune/key"`
	KeyName string `env:"KEY_NAME"`
}

// GatewayEnvConfig contains the chain sidecar target.
type GatewayEnvConfig struct {
	GatewayHost     string        `env:"CHAIN_GATEWAY_HOST, default=127.0.0.1"`
	GatewayPort     string        `env:"CHAIN_GATEWAY_PORT, default=3000"`
	GatewayRetryMax int           `env:"CHAIN_GATEWAY_RETRY_MAX, default=5"`
	GatewayTimeout  time.Duration `env:"CHAIN_GATEWAY_TIMEOUT, default=30s"`

	// sidecar connected to the testnet, selected by USE_TESTNET / --use-testnet
	GatewayTestnetPort string `env:"CHAIN_GATEWAY_TESTNET_PORT, default=3001"`
}

// InferenceEnvConfig configures the reference generation endpoint.
type InferenceEnvConfig struct {
	InferenceURL     string        `env:"INFERENCE_URL"`
	InferenceModel   string        `env:"INFERENCE_MODEL, default=gpt-4o-mini"`
	InferenceAPIKey  string        `env:"INFERENCE_API_KEY"`
	InferenceTimeout time.Duration `env:"INFERENCE_TIMEOUT, default=60s"`
}

// ValidatorEnvConfig configures validator runtime.
type ValidatorEnvConfig struct {
	Environment        string        `env:"ENVIRONMENT, default=dev"`
	PeerTimeout        time.Duration `env:"PEER_TIMEOUT, default=30s"`
	PeerConcurrency    int           `env:"PEER_CONCURRENCY, default=50"`
	PollingDeadlineMax time.Duration `env:"POLLING_DEADLINE_MAX, default=5m"`
	PeerModel          string        `env:"PEER_MODEL, default=eden"`

	SimilarityCoefficient float64 `env:"SCORE_WEIGHT_SIMILARITY, default=0.4"`
	PriorCoefficient      float64 `env:"SCORE_WEIGHT_PRIOR, default=0.35"`
	StakeCoefficient      float64 `env:"SCORE_WEIGHT_STAKE, default=0.25"`
	DefaultPeerWeight     float64 `env:"DEFAULT_PEER_WEIGHT, default=30"`
}

// ServerEnvConfig configures the fiber servers.
type ServerEnvConfig struct {
	Host             string `env:"SERVER_HOST, default=0.0.0.0"`
	Port             int    `env:"SERVER_PORT, default=50050"`
	BodySizeLimit    int    `env:"SERVER_BODY_LIMIT, default=4194304"`
	RequireSignature bool   `env:"REQUIRE_SIGNATURE, default=false"`
}

// MinerEnvConfig selects how the miner produces content.
type MinerEnvConfig struct {
	MinerMode string `env:"MINER_MODE, default=tokenize"`
}

type IntervalConfig struct {
	CooldownMin time.Duration
	CooldownMax time.Duration
}

var (
	DevIntervalConfig = &IntervalConfig{
		CooldownMin: 5 * time.Second,
		CooldownMax: 10 * time.Second,
	}
	TestIntervalConfig = &IntervalConfig{
		CooldownMin: 60 * time.Second,
		CooldownMax: 120 * time.Second,
	}

	ProdIntervalConfig = &IntervalConfig{
		CooldownMin: 60 * time.Second,
		CooldownMax: 120 * time.Second,
	}
)

func NewIntervalConfig(environment string) *IntervalConfig {
	switch strings.ToLower(environment) {
	case "dev":
		return DevIntervalConfig
	case "test":
		return TestIntervalConfig
	case "prod":
		return ProdIntervalConfig
	}

	return DevIntervalConfig
}

// Cooldown draws a delay uniformly from [CooldownMin, CooldownMax].
func (c *IntervalConfig) Cooldown() time.Duration {
	if c.CooldownMax <= c.CooldownMin {
		return c.CooldownMin
	}
	span := int64(c.CooldownMax - c.CooldownMin)
	return c.CooldownMin + time.Duration(rand.Int64N(span+1))
}

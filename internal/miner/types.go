package miner

import (
	"context"

	"github.com/tensorplex-labs/eden/internal/synapse"
	"github.com/tensorplex-labs/eden/pkg/schnitz"
)

const (
	ModeTokenize = "tokenize"
	ModeProxy    = "proxy"

	errNoMessage = "No message provided"
)

// Generator produces the content returned for a prompt.
type Generator interface {
	Generate(ctx context.Context, messages []synapse.Message) (*synapse.Content, error)
}

type Miner struct {
	server    *schnitz.Server
	generator Generator
}

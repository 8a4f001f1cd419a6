package miner

import (
	"context"
	"fmt"
	"strings"

	"github.com/tensorplex-labs/eden/internal/embedding"
	"github.com/tensorplex-labs/eden/internal/synapse"
)

// TokenGenerator answers with the token vector of the prompt itself.
type TokenGenerator struct {
	encoder embedding.Encoder
}

func NewTokenGenerator(encoder embedding.Encoder) *TokenGenerator {
	return &TokenGenerator{encoder: encoder}
}

func (g *TokenGenerator) Generate(_ context.Context, messages []synapse.Message) (*synapse.Content, error) {
	text := promptText(messages)
	if text == "" {
		return nil, fmt.Errorf("%s", errNoMessage)
	}
	return &synapse.Content{Tokens: g.encoder.Encode(text), IsTokens: true}, nil
}

// NewGenerator picks the generator for MINER_MODE. proxy may be nil unless
// mode is "proxy".
func NewGenerator(mode string, encoder embedding.Encoder, proxy Generator) (Generator, error) {
	switch strings.ToLower(mode) {
	case "", ModeTokenize:
		if encoder == nil {
			return nil, fmt.Errorf("tokenize mode needs an encoder")
		}
		return NewTokenGenerator(encoder), nil
	case ModeProxy:
		if proxy == nil {
			return nil, fmt.Errorf("proxy mode needs an inference client")
		}
		return proxy, nil
	default:
		return nil, fmt.Errorf("unknown miner mode %q", mode)
	}
}

// promptText is the content of the last user turn, or of the last turn when
// no user turn exists.
func promptText(messages []synapse.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == synapse.RoleUser {
			return strings.TrimSpace(messages[i].Content)
		}
	}
	if len(messages) == 0 {
		return ""
	}
	return strings.TrimSpace(messages[len(messages)-1].Content)
}

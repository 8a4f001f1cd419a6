// Package inference calls the reference generation endpoint.
package inference

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/eden/internal/config"
	"github.com/tensorplex-labs/eden/internal/synapse"
)

type InferenceInterface interface {
	Generate(ctx context.Context, messages []synapse.Message) (*synapse.Content, error)
}

type Client struct {
	cfg    *config.InferenceEnvConfig
	client *resty.Client
}

func NewClient(cfg *config.InferenceEnvConfig) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if strings.TrimSpace(cfg.InferenceURL) == "" {
		return nil, fmt.Errorf("INFERENCE_URL is not set")
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.InferenceURL, "/")).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetTimeout(cfg.InferenceTimeout)
	if cfg.InferenceAPIKey != "" {
		client.SetAuthToken(cfg.InferenceAPIKey)
	}

	return &Client{
		cfg:    cfg,
		client: client,
	}, nil
}

// Generate asks the endpoint for a completion and returns the first choice.
func (c *Client) Generate(ctx context.Context, messages []synapse.Message) (*synapse.Content, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages to send")
	}

	var out synapse.GenerateResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(synapse.GenerateRequest{Messages: messages, Model: c.cfg.InferenceModel}).
		SetResult(&out).
		Post(synapse.GeneratePath)
	if err != nil {
		log.Error().Err(err).Msg("inference request failed")
		return nil, fmt.Errorf("inference generate: %w", err)
	}
	if resp.IsError() {
		log.Error().Int("status", resp.StatusCode()).Str("body", resp.String()).Msg("inference non-2xx")
		return nil, fmt.Errorf("inference status %d: %s", resp.StatusCode(), resp.String())
	}
	if out.Error != "" {
		return nil, fmt.Errorf("inference error: %s", out.Error)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("inference returned no choices")
	}

	content := out.Choices[0].Message.Content
	if content.IsEmpty() {
		return nil, fmt.Errorf("inference returned empty content")
	}
	return &content, nil
}

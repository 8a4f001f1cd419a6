package chain

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/eden/internal/config"
)

// NewGateway builds a Gateway for the sidecar described by cfg.
func NewGateway(cfg *config.GatewayEnvConfig) (*Gateway, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	host := cfg.GatewayHost
	if host == "" {
		host = "localhost"
		log.Debug().Str("gateway_host", host).Msg("using default host")
	}

	port := cfg.GatewayPort
	if port == "" {
		port = "3000"
		log.Debug().Str("gateway_port", port).Msg("using default port")
	}

	baseURL := fmt.Sprintf("http://%s:%s", host, port)

	timeout := cfg.GatewayTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.GatewayRetryMax
	client.HTTPClient.Timeout = timeout
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 20 * time.Second

	// silence retryablehttp's default logger, requests are logged below
	client.Logger = nil

	log.Info().
		Str("base_url", baseURL).
		Int("retry_max", client.RetryMax).
		Str("timeout", client.HTTPClient.Timeout.String()).
		Str("retry_wait_min", client.RetryWaitMin.String()).
		Str("retry_wait_max", client.RetryWaitMax.String()).
		Msg("chain gateway client initialized")

	return &Gateway{
		httpClient: client,
		baseURL:    baseURL,
	}, nil
}

// BaseURL returns the sidecar root this gateway talks to.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

func (g *Gateway) doRequest(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	url := g.baseURL + endpoint

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := sonic.Marshal(body)
		if err != nil {
			log.Error().
				Err(err).
				Str("method", method).
				Str("endpoint", endpoint).
				Msg("failed to marshal request body")
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log.Trace().
		Str("method", method).
		Str("url", url).
		Msg("making HTTP request")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error().
			Err(err).
			Str("method", method).
			Str("url", url).
			Msg("HTTP request failed")
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error().
			Err(err).
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Msg("failed to read response body")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().
			Str("method", method).
			Str("url", url).
			Int("status_code", resp.StatusCode).
			Str("body", string(respBody)).
			Msg("gateway returned non-2xx")
		return nil, fmt.Errorf("request returned status %d: %s", resp.StatusCode, string(respBody))
	}

	log.Trace().
		Str("url", url).
		Int("status_code", resp.StatusCode).
		Int("response_body_length", len(respBody)).
		Msg("HTTP request completed successfully")

	return respBody, nil
}

// call performs a request and unwraps the Response envelope.
func call[T any](ctx context.Context, g *Gateway, method, endpoint string, body any) (T, error) {
	var zero T

	respBody, err := g.doRequest(ctx, method, endpoint, body)
	if err != nil {
		return zero, err
	}

	var result Response[T]
	if err := sonic.Unmarshal(respBody, &result); err != nil {
		log.Error().
			Err(err).
			Str("endpoint", endpoint).
			Int("response_size", len(respBody)).
			Msg("failed to parse gateway response")
		return zero, fmt.Errorf("failed to parse response: %w", err)
	}

	if !result.ok() {
		log.Error().
			Str("endpoint", endpoint).
			Int("status_code", result.StatusCode).
			Bool("success", result.Success).
			Interface("error", result.Error).
			Msg("gateway reported failure")
		return zero, fmt.Errorf("%s failed: %v", endpoint, result.Error)
	}

	return result.Data, nil
}

// Package synapse is the validator's HTTP client for peer generate calls.
package synapse

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/eden/pkg/schnitz"
	"github.com/tensorplex-labs/eden/pkg/signature"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultConcurrency = 50
)

// NewClient builds a peer client. signer may be nil, in which case requests
// are sent without identity headers.
func NewClient(cfg Config, signer signature.SignatureProvider) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	cli := resty.New().
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryMax).
		SetHeader("Accept-Encoding", "zstd")
	if cfg.RetryWait > 0 {
		cli.SetRetryWaitTime(cfg.RetryWait).SetRetryMaxWaitTime(cfg.RetryWait * 2)
	}

	return &Client{httpClient: cli, cfg: cfg, signer: signer}
}

// AuthHeaders signs a fresh identity message for the x-hotkey/x-message/x-signature headers.
func (c *Client) AuthHeaders() (map[string]string, error) {
	if c.signer == nil {
		return nil, nil
	}
	hotkey := c.signer.SS58Address()
	message := fmt.Sprintf("I swear that I am the owner of hotkey:%s at:%d", hotkey, time.Now().Unix())
	sig, err := c.signer.Sign(message)
	if err != nil {
		return nil, fmt.Errorf("sign auth message: %w", err)
	}
	return map[string]string{
		schnitz.HotkeyHeader:    hotkey,
		schnitz.MessageHeader:   message,
		schnitz.SignatureHeader: sig,
	}, nil
}

// Generate posts messages to http://{address}/generate. Non-2xx replies,
// timeouts and malformed bodies are returned as errors.
func (c *Client) Generate(ctx context.Context, address string, messages []Message, timeout time.Duration) (*Content, error) {
	headers, err := c.AuthHeaders()
	if err != nil {
		return nil, err
	}
	return c.generate(ctx, address, messages, timeout, headers)
}

func (c *Client) generate(ctx context.Context, address string, messages []Message, timeout time.Duration, headers map[string]string) (*Content, error) {
	if timeout <= 0 {
		timeout = c.cfg.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := "http://" + address + GeneratePath
	body := GenerateRequest{Messages: messages, Model: c.cfg.Model}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeaders(headers).
		SetBody(body).
		Post(url)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode(), truncate(resp.String(), 256))
	}

	data := resp.Body()
	if strings.Contains(strings.ToLower(resp.Header().Get("Content-Encoding")), "zstd") {
		data, err = decompress(data)
		if err != nil {
			return nil, err
		}
	}

	content, err := decodeGenerateBody(data)
	if err != nil {
		log.Trace().Err(err).Str("url", url).Msg("malformed generate response")
		return nil, err
	}
	return content, nil
}

func decompress(data []byte) ([]byte, error) {
	r, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zstd: failed to create reader: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zstd: failed to decompress response: %w", err)
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package synapse

import (
	"fmt"
	"math"
	"strings"

	"github.com/bytedance/sonic"
)

// UnmarshalJSON accepts a string or an array of integral numbers.
func (c *Content) UnmarshalJSON(data []byte) error {
	var raw any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := contentFrom(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.IsTokens {
		tokens := c.Tokens
		if tokens == nil {
			tokens = []int{}
		}
		return sonic.Marshal(tokens)
	}
	return sonic.Marshal(c.Text)
}

func contentFrom(raw any) (Content, error) {
	switch v := raw.(type) {
	case string:
		return Content{Text: v}, nil
	case []any:
		tokens := make([]int, 0, len(v))
		for i, item := range v {
			f, ok := item.(float64)
			if !ok || f != math.Trunc(f) {
				return Content{}, fmt.Errorf("token %d is not an integer: %v", i, item)
			}
			tokens = append(tokens, int(f))
		}
		return Content{Tokens: tokens, IsTokens: true}, nil
	default:
		return Content{}, fmt.Errorf("content must be a string or a vector, got %T", raw)
	}
}

// IsEmpty reports whether the content carries nothing to score.
func (c *Content) IsEmpty() bool {
	if c == nil {
		return true
	}
	if c.IsTokens {
		return len(c.Tokens) == 0
	}
	return strings.TrimSpace(c.Text) == ""
}

// decodeGenerateBody reads the first choice of a generate response. Bare
// string or vector bodies are accepted as the content itself.
func decodeGenerateBody(data []byte) (*Content, error) {
	var raw any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if _, ok := raw.(map[string]any); !ok {
		c, err := contentFrom(raw)
		if err != nil {
			return nil, err
		}
		return &c, nil
	}

	var resp GenerateResponse
	if err := sonic.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("peer error: %s", resp.Error)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("response has no choices")
	}
	c := resp.Choices[0].Message.Content
	return &c, nil
}

package synapse

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tensorplex-labs/eden/pkg/signature"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

const GeneratePath = "/generate"

// Message is one chat turn sent to or returned by a peer.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func (m Message) Validate() error {
	switch m.Role {
	case RoleUser, RoleAssistant, RoleSystem:
	default:
		return fmt.Errorf("invalid role %q", m.Role)
	}
	return nil
}

type GenerateRequest struct {
	Messages []Message `json:"messages"`
	Model    string    `json:"model"`
}

// Content is either generated text or a token vector.
type Content struct {
	Text   string
	Tokens []int
	// IsTokens reports which of the two fields is populated.
	IsTokens bool
}

type ResponseMessage struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}

type Choice struct {
	Message ResponseMessage `json:"message"`
}

type GenerateResponse struct {
	Choices []Choice `json:"choices"`
	Error   string   `json:"error,omitempty"`
}

// Peer is a single addressable participant of the subnet.
type Peer struct {
	UID     int
	Address string
	Key     string
}

// Result is the outcome of one peer call; Content is nil on any failure.
type Result struct {
	Peer    Peer
	Content *Content
	Err     error
	Elapsed time.Duration
}

type Config struct {
	Model       string
	Timeout     time.Duration
	Concurrency int
	RetryMax    int
	RetryWait   time.Duration
}

// Client issues generate calls to peers.
type Client struct {
	httpClient *resty.Client
	cfg        Config
	signer     signature.SignatureProvider
}

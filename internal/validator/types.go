// Package validator drives the sample, poll, score and vote loop against a subnet.
package validator

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/tensorplex-labs/eden/internal/config"
	"github.com/tensorplex-labs/eden/internal/scoring"
	"github.com/tensorplex-labs/eden/internal/synapse"
	"github.com/tensorplex-labs/eden/pkg/chain"
	"github.com/tensorplex-labs/eden/pkg/signature"
)

type Phase string

const (
	PhaseSampling Phase = "sampling"
	PhasePolling  Phase = "polling"
	PhaseScoring  Phase = "scoring"
	PhaseVoting   Phase = "voting"
)

// outcome labels for metrics.CyclesTotal
const (
	outcomeVoted   = "voted"
	outcomeSkipped = "skipped"
	outcomeAborted = "aborted"
)

// ChainGateway is the subset of the ledger the validator reads and writes.
type ChainGateway interface {
	QueryPeerAddresses(ctx context.Context, netuid int) (map[int]string, error)
	QueryPeerKeys(ctx context.Context, netuid int) (map[int]string, error)
	QueryWeights(ctx context.Context, netuid int) (map[int]float64, error)
	QueryStakeTo(ctx context.Context, netuid int) (map[string][]chain.StakeEntry, error)
	SubmitVote(ctx context.Context, signer signature.SignatureProvider, netuid int, uids, weights []int) error
}

type PeerClient interface {
	GenerateAll(ctx context.Context, peers []synapse.Peer, messages []synapse.Message) []synapse.Result
}

type ReferenceGenerator interface {
	Generate(ctx context.Context, messages []synapse.Message) (*synapse.Content, error)
}

type Embedder interface {
	Encode(text string) []int
	Similarity(a, b []int) float64
}

// Deps are the collaborators a Validator is built from.
type Deps struct {
	Chain     ChainGateway
	Peers     PeerClient
	Reference ReferenceGenerator
	Embedder  Embedder
	Engine    *scoring.Engine
	Signer    signature.SignatureProvider
}

// Validator runs one cycle at a time until stopped.
type Validator struct {
	Deps

	Netuid int
	// SelfAddress is matched against the address directory when the signing
	// key is not registered under any uid.
	SelfAddress string

	IntervalConfig  *config.IntervalConfig
	ValidatorConfig *config.ValidatorEnvConfig

	Ctx    context.Context
	Cancel context.CancelFunc
	Wg     sync.WaitGroup

	cycleRunning atomic.Bool
	cycles       atomic.Int64
	topics       []string
}

// cycle carries the value objects built during one iteration.
type cycle struct {
	id        string
	messages  []synapse.Message
	reference []int
	selfUID   int
	peers     []synapse.Peer
	keys      map[int]string
	similar   map[int]float64
	scores    scoring.ScoreRecord
}

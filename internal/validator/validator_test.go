package validator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ChainSafe/gossamer/lib/crypto/sr25519"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/eden/internal/config"
	"github.com/tensorplex-labs/eden/internal/embedding"
	"github.com/tensorplex-labs/eden/internal/scoring"
	"github.com/tensorplex-labs/eden/internal/synapse"
	"github.com/tensorplex-labs/eden/pkg/chain"
	"github.com/tensorplex-labs/eden/pkg/signature"
)

const referenceText = "the river remembers every stone it carried"

type vote struct {
	uids    []int
	weights []int
}

type fakeChain struct {
	addresses map[int]string
	keys      map[int]string
	weights   map[int]float64
	stakeTo   map[string][]chain.StakeEntry

	addressErr error
	voteErr    error

	addressCalls atomic.Int32

	mu    sync.Mutex
	votes []vote
}

func (f *fakeChain) QueryPeerAddresses(context.Context, int) (map[int]string, error) {
	f.addressCalls.Add(1)
	if f.addressErr != nil {
		return nil, f.addressErr
	}
	return f.addresses, nil
}

func (f *fakeChain) QueryPeerKeys(context.Context, int) (map[int]string, error) {
	return f.keys, nil
}

func (f *fakeChain) QueryWeights(context.Context, int) (map[int]float64, error) {
	return f.weights, nil
}

func (f *fakeChain) QueryStakeTo(context.Context, int) (map[string][]chain.StakeEntry, error) {
	return f.stakeTo, nil
}

func (f *fakeChain) SubmitVote(_ context.Context, signer signature.SignatureProvider, _ int, uids, weights []int) error {
	if signer == nil {
		return errors.New("no signer")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.votes = append(f.votes, vote{uids: uids, weights: weights})
	return f.voteErr
}

func (f *fakeChain) recorded() []vote {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]vote(nil), f.votes...)
}

type fakeReference struct {
	text string
	err  error
}

func (f fakeReference) Generate(context.Context, []synapse.Message) (*synapse.Content, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &synapse.Content{Text: f.text}, nil
}

// echoPeers answers every peer with the same text and records who was asked.
type echoPeers struct {
	text  string
	mu    sync.Mutex
	asked []int
	// set when the poll context carries a logger
	ctxLogger bool
}

func (e *echoPeers) GenerateAll(ctx context.Context, peers []synapse.Peer, _ []synapse.Message) []synapse.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctxLogger = zerolog.Ctx(ctx).GetLevel() != zerolog.Disabled
	out := make([]synapse.Result, len(peers))
	for i, p := range peers {
		e.asked = append(e.asked, p.UID)
		out[i] = synapse.Result{Peer: p, Content: &synapse.Content{Text: e.text}}
	}
	return out
}

type runeEncoder struct{}

func (runeEncoder) Encode(text string) []int {
	out := make([]int, 0, len(text))
	for _, r := range text {
		out = append(out, int(r))
	}
	return out
}

func newSigner(t *testing.T) *signature.Provider {
	t.Helper()
	kp, err := sr25519.GenerateKeypair()
	require.NoError(t, err)
	p, err := signature.NewProvider(kp)
	require.NoError(t, err)
	return p
}

func testConfig() *config.ValidatorEnvConfig {
	return &config.ValidatorEnvConfig{
		Environment:        "test",
		PeerTimeout:        150 * time.Millisecond,
		PeerConcurrency:    50,
		PollingDeadlineMax: 5 * time.Second,
		DefaultPeerWeight:  30,
	}
}

func newTestValidator(t *testing.T, fc *fakeChain, peers PeerClient, ref ReferenceGenerator, signer *signature.Provider, opts ...Option) *Validator {
	t.Helper()
	opts = append([]Option{
		WithIntervalConfig(&config.IntervalConfig{CooldownMin: time.Millisecond, CooldownMax: 2 * time.Millisecond}),
		WithTopics([]string{"rivers"}),
	}, opts...)

	v, err := NewValidator(testConfig(), 10, Deps{
		Chain:     fc,
		Peers:     peers,
		Reference: ref,
		Embedder:  embedding.NewService(runeEncoder{}),
		Engine:    scoring.NewEngine(),
		Signer:    signer,
	}, opts...)
	require.NoError(t, err)
	t.Cleanup(v.Stop)
	return v
}

func peerServer(t *testing.T, h http.HandlerFunc) string {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return strings.TrimPrefix(ts.URL, "http://")
}

func textReply(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"` + text + `"}}]}`))
	}
}

func TestRunCycle_IdenticalPeerWinsAndTimeoutIsExcluded(t *testing.T) {
	signer := newSigner(t)

	identical := peerServer(t, textReply(referenceText))
	unrelated := peerServer(t, textReply("zzzz zzzz zzzz"))
	slow := peerServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(600 * time.Millisecond)
		textReply(referenceText)(w, r)
	})
	selfAddr := peerServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("validator polled itself")
	})

	fc := &fakeChain{
		addresses: map[int]string{0: "127.0.0.1:1", 1: identical, 2: unrelated, 3: slow, 4: selfAddr},
		keys:      map[int]string{0: "5Root", 1: "5A", 2: "5B", 3: "5C", 4: signer.SS58Address()},
		weights:   map[int]float64{1: 30, 2: 30, 3: 30},
		stakeTo: map[string][]chain.StakeEntry{
			"5A": {{Key: "5X", Amount: 100}},
			"5B": {{Key: "5X", Amount: 100}},
		},
	}

	client := synapse.NewClient(synapse.Config{Timeout: 150 * time.Millisecond, Concurrency: 50}, signer)
	v := newTestValidator(t, fc, client, fakeReference{text: referenceText}, signer)

	v.RunCycle(context.Background())

	votes := fc.recorded()
	require.Len(t, votes, 1)
	assert.Equal(t, []int{1, 2}, votes[0].uids)
	require.Len(t, votes[0].weights, 2)
	assert.Equal(t, 65535, votes[0].weights[0])
	assert.Greater(t, votes[0].weights[0], votes[0].weights[1])
	assert.Positive(t, votes[0].weights[1])
}

func TestRunCycle_SelfNeverVotedWhenResolvedByAddress(t *testing.T) {
	signer := newSigner(t)
	peers := &echoPeers{text: referenceText}

	fc := &fakeChain{
		addresses: map[int]string{1: "10.0.0.1:8000", 2: "10.0.0.2:8000", 3: "http://10.0.0.3:8000/"},
		keys:      map[int]string{1: "5A", 2: "5B", 3: "5C"},
		weights:   map[int]float64{1: 10, 2: 20, 3: 30},
	}
	v := newTestValidator(t, fc, peers, fakeReference{text: referenceText}, signer, WithSelfAddress("10.0.0.3:8000"))

	v.RunCycle(context.Background())

	assert.ElementsMatch(t, []int{1, 2}, peers.asked)
	assert.True(t, peers.ctxLogger)
	votes := fc.recorded()
	require.Len(t, votes, 1)
	assert.NotContains(t, votes[0].uids, 3)
}

func TestRunCycle_EmptyDirectorySkipsVote(t *testing.T) {
	signer := newSigner(t)
	peers := &echoPeers{text: referenceText}
	fc := &fakeChain{
		addresses: map[int]string{0: "10.0.0.1:8000", 5: "not an address"},
		keys:      map[int]string{},
	}
	v := newTestValidator(t, fc, peers, fakeReference{text: referenceText}, signer)

	v.RunCycle(context.Background())

	assert.Empty(t, peers.asked)
	assert.Empty(t, fc.recorded())
	assert.EqualValues(t, 1, v.Cycles())
}

func TestRunCycle_NoRespondersSkipsVote(t *testing.T) {
	signer := newSigner(t)
	fc := &fakeChain{
		addresses: map[int]string{1: "10.0.0.1:8000"},
		keys:      map[int]string{1: "5A"},
	}
	v := newTestValidator(t, fc, &echoPeers{text: "   "}, fakeReference{text: referenceText}, signer)

	v.RunCycle(context.Background())
	assert.Empty(t, fc.recorded())
}

func TestRunCycle_ReferenceFailureAbortsBeforePolling(t *testing.T) {
	signer := newSigner(t)
	fc := &fakeChain{addresses: map[int]string{1: "10.0.0.1:8000"}}
	v := newTestValidator(t, fc, &echoPeers{}, fakeReference{err: errors.New("inference down")}, signer)

	v.RunCycle(context.Background())

	assert.Zero(t, fc.addressCalls.Load())
	assert.Empty(t, fc.recorded())
}

func TestRunCycle_VoteFailureIsContained(t *testing.T) {
	signer := newSigner(t)
	fc := &fakeChain{
		addresses: map[int]string{1: "10.0.0.1:8000"},
		keys:      map[int]string{1: "5A"},
		voteErr:   errors.New("rejected"),
	}
	v := newTestValidator(t, fc, &echoPeers{text: referenceText}, fakeReference{text: referenceText}, signer)

	assert.NotPanics(t, func() { v.RunCycle(context.Background()) })
	assert.Len(t, fc.recorded(), 1)
	assert.EqualValues(t, 1, v.Cycles())
}

func TestLoop_AddressFailureAbortsCycleAndLoopContinues(t *testing.T) {
	signer := newSigner(t)
	fc := &fakeChain{addressErr: errors.New("connection refused")}
	v := newTestValidator(t, fc, &echoPeers{}, fakeReference{text: referenceText}, signer)

	v.Start()
	require.Eventually(t, func() bool { return fc.addressCalls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	v.Stop()

	assert.Empty(t, fc.recorded())
	assert.GreaterOrEqual(t, v.Cycles(), int64(2))
}

func TestNewValidator_RequiresDeps(t *testing.T) {
	_, err := NewValidator(nil, 10, Deps{})
	assert.Error(t, err)

	_, err = NewValidator(testConfig(), 10, Deps{Chain: &fakeChain{}})
	assert.Error(t, err)
}

func TestPollingDeadline(t *testing.T) {
	v := &Validator{ValidatorConfig: &config.ValidatorEnvConfig{
		PeerTimeout:        30 * time.Second,
		PeerConcurrency:    50,
		PollingDeadlineMax: 5 * time.Minute,
	}}

	assert.Equal(t, 60*time.Second, v.pollingDeadline(1))
	assert.Equal(t, 60*time.Second, v.pollingDeadline(50))
	assert.Equal(t, 120*time.Second, v.pollingDeadline(120))
	assert.Equal(t, 5*time.Minute, v.pollingDeadline(1000))
}

func TestResolveSelfUID(t *testing.T) {
	keys := map[int]string{1: "5A", 2: "5Self"}
	addresses := map[int]string{1: "10.0.0.1:1", 2: "10.0.0.2:2", 3: "10.0.0.3:3"}

	assert.Equal(t, 2, resolveSelfUID("5Self", "", keys, addresses))
	assert.Equal(t, 3, resolveSelfUID("5Other", "10.0.0.3:3", keys, addresses))
	assert.Equal(t, -1, resolveSelfUID("5Other", "", keys, addresses))
}

func TestResolveSelfUID_WildcardListenHost(t *testing.T) {
	keys := map[int]string{1: "5A"}
	addresses := map[int]string{1: "10.0.0.1:1", 3: "0.0.0.0:50050"}

	assert.Equal(t, -1, resolveSelfUID("5Other", "0.0.0.0:50050", keys, addresses))
	assert.Equal(t, -1, resolveSelfUID("5Other", "[::]:50050", keys, addresses))
	assert.Equal(t, -1, resolveSelfUID("5Other", "localhost:50050", keys, addresses))
	assert.Equal(t, 1, resolveSelfUID("5Other", "10.0.0.1:1", keys, addresses))
}

func TestBuildDirectory(t *testing.T) {
	addresses := map[int]string{
		0: "10.0.0.1:1",
		1: "10.0.0.2:80",
		2: "256.0.0.1:80",
		3: "10.0.0.3:65536",
		4: "tcp://10.0.0.4:9000",
		7: "10.0.0.7:7",
	}
	keys := map[int]string{1: "5A", 4: "5D"}

	peers := buildDirectory(addresses, keys, 7, zerolog.Nop())
	require.Len(t, peers, 2)
	assert.Equal(t, synapse.Peer{UID: 1, Address: "10.0.0.2:80", Key: "5A"}, peers[0])
	assert.Equal(t, synapse.Peer{UID: 4, Address: "10.0.0.4:9000", Key: "5D"}, peers[1])
}

func TestPriorWeights_DefaultsMissingPeers(t *testing.T) {
	peers := []synapse.Peer{{UID: 1}, {UID: 2}, {UID: 3}}
	got := priorWeights(map[int]float64{1: 60, 9: 5}, peers, 3, 30)
	assert.Equal(t, map[int]float64{1: 60, 2: 30}, got)
}

func TestBuildPrompt(t *testing.T) {
	msgs := buildPrompt("tides")
	require.Len(t, msgs, 1)
	assert.Equal(t, synapse.RoleUser, msgs[0].Role)
	assert.Equal(t, "please write a short alegory about the following topic: tides", msgs[0].Content)
	assert.Contains(t, defaultTopics, sampleTopic(defaultTopics))
}

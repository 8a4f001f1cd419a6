package validator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/eden/internal/metrics"
	"github.com/tensorplex-labs/eden/internal/scoring"
	"github.com/tensorplex-labs/eden/internal/synapse"
	chainutils "github.com/tensorplex-labs/eden/internal/utils/chain_utils"
	"github.com/tensorplex-labs/eden/pkg/chain"
)

func recordOutcome(outcome string) {
	metrics.CyclesTotal.WithLabelValues(outcome).Inc()
}

func observePhase(phase Phase, start time.Time) {
	metrics.PhaseDuration.WithLabelValues(string(phase)).Observe(time.Since(start).Seconds())
}

func (v *Validator) runCycle(ctx context.Context) string {
	c := &cycle{id: uuid.NewString(), selfUID: -1}
	lg := log.With().Str("cycle_id", c.id).Logger()

	steps := []struct {
		phase Phase
		run   func(context.Context, *cycle, zerolog.Logger) (bool, error)
	}{
		{PhaseSampling, v.sample},
		{PhasePolling, v.poll},
		{PhaseScoring, v.score},
		{PhaseVoting, v.vote},
	}

	for _, step := range steps {
		if ctx.Err() != nil {
			return outcomeAborted
		}
		plg := lg.With().Str("phase", string(step.phase)).Logger()

		start := time.Now()
		proceed, err := step.run(ctx, c, plg)
		observePhase(step.phase, start)

		if err != nil {
			plg.Error().Err(err).Msg("cycle aborted")
			return outcomeAborted
		}
		if !proceed {
			return outcomeSkipped
		}
	}
	return outcomeVoted
}

// sample picks a topic and obtains the reference vector.
func (v *Validator) sample(ctx context.Context, c *cycle, lg zerolog.Logger) (bool, error) {
	topic := sampleTopic(v.topics)
	c.messages = buildPrompt(topic)

	content, err := v.Reference.Generate(ctx, c.messages)
	if err != nil {
		return false, fmt.Errorf("reference generation: %w", err)
	}

	c.reference = v.vectorOf(content)
	if len(c.reference) == 0 {
		return false, fmt.Errorf("reference generation returned no content")
	}

	lg.Info().Str("topic", topic).Int("reference_len", len(c.reference)).Msg("sampled reference")
	return true, nil
}

// poll loads the peer directory and fans the prompt out to every peer.
func (v *Validator) poll(ctx context.Context, c *cycle, lg zerolog.Logger) (bool, error) {
	addresses, err := v.Chain.QueryPeerAddresses(ctx, v.Netuid)
	if err != nil {
		return false, fmt.Errorf("query peer addresses: %w", err)
	}
	keys, err := v.Chain.QueryPeerKeys(ctx, v.Netuid)
	if err != nil {
		return false, fmt.Errorf("query peer keys: %w", err)
	}
	c.keys = keys

	c.selfUID = resolveSelfUID(v.Signer.SS58Address(), v.SelfAddress, keys, addresses)
	if c.selfUID < 0 {
		lg.Warn().Str("hotkey", v.Signer.SS58Address()).Msg("validator key is not registered on the subnet")
	}

	c.peers = buildDirectory(addresses, keys, c.selfUID, lg)
	if len(c.peers) == 0 {
		lg.Info().Int("addresses", len(addresses)).Msg("peer directory is empty, skipping vote")
		return false, nil
	}

	pollCtx, cancel := context.WithTimeout(ctx, v.pollingDeadline(len(c.peers)))
	defer cancel()

	results := v.Peers.GenerateAll(lg.WithContext(pollCtx), c.peers, c.messages)

	c.similar = make(map[int]float64, len(results))
	for _, r := range results {
		if r.Content == nil {
			continue
		}
		vec := v.vectorOf(r.Content)
		if len(vec) == 0 {
			continue
		}
		c.similar[r.Peer.UID] = v.Embedder.Similarity(c.reference, vec)
	}

	lg.Info().
		Int("peers", len(c.peers)).
		Int("responders", len(c.similar)).
		Int("self_uid", c.selfUID).
		Msg("polled peers")

	if len(c.similar) == 0 {
		lg.Info().Msg("no peer responded, skipping vote")
		return false, nil
	}
	return true, nil
}

// score gathers prior weights and stake and combines them with similarity.
func (v *Validator) score(ctx context.Context, c *cycle, lg zerolog.Logger) (bool, error) {
	weights, err := v.Chain.QueryWeights(ctx, v.Netuid)
	if err != nil {
		return false, fmt.Errorf("query weights: %w", err)
	}
	stakeTo, err := v.Chain.QueryStakeTo(ctx, v.Netuid)
	if err != nil {
		return false, fmt.Errorf("query stake: %w", err)
	}

	peerKeys := make(map[int]string, len(c.peers))
	for _, p := range c.peers {
		peerKeys[p.UID] = p.Key
	}

	in := scoring.Inputs{
		Weights:      priorWeights(weights, c.peers, c.selfUID, v.ValidatorConfig.DefaultPeerWeight),
		Stake:        chainutils.AggregateStake(stakeTo, func(e chain.StakeEntry) float64 { return e.Amount }, peerKeys),
		Similarities: c.similar,
	}
	c.scores = v.Engine.Score(in)
	metrics.PeersScored.Set(float64(len(c.scores)))

	lg.Debug().Interface("scores", c.scores).Msg("scored peers")
	return len(c.scores) > 0, nil
}

// vote converts the scores to integer weights and submits them.
func (v *Validator) vote(ctx context.Context, c *cycle, lg zerolog.Logger) (bool, error) {
	uids, weights, err := chainutils.ConvertScoresForVote(c.scores, c.selfUID)
	if err != nil {
		return false, fmt.Errorf("convert scores: %w", err)
	}
	if len(uids) == 0 {
		lg.Info().Msg("total score is zero, skipping vote")
		return false, nil
	}

	if err := v.Chain.SubmitVote(ctx, v.Signer, v.Netuid, uids, weights); err != nil {
		metrics.VotesTotal.WithLabelValues("failed").Inc()
		return false, fmt.Errorf("submit vote: %w", err)
	}

	metrics.VotesTotal.WithLabelValues("ok").Inc()
	lg.Info().Ints("uids", uids).Ints("weights", weights).Msg("vote submitted")
	return true, nil
}

func (v *Validator) vectorOf(content *synapse.Content) []int {
	if content.IsEmpty() {
		return nil
	}
	if content.IsTokens {
		return content.Tokens
	}
	return v.Embedder.Encode(content.Text)
}

// pollingDeadline bounds the whole fan-out: one timeout per batch of
// PEER_CONCURRENCY calls plus one timeout of slack, capped by
// POLLING_DEADLINE_MAX.
func (v *Validator) pollingDeadline(peers int) time.Duration {
	cfg := v.ValidatorConfig
	conc := max(cfg.PeerConcurrency, 1)
	batches := int(math.Ceil(float64(peers) / float64(conc)))

	d := time.Duration(batches+1) * cfg.PeerTimeout
	if cfg.PollingDeadlineMax > 0 && d > cfg.PollingDeadlineMax {
		d = cfg.PollingDeadlineMax
	}
	return d
}

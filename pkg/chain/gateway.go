package chain

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/eden/pkg/signature"
)

// QueryPeerAddresses returns uid -> "host:port" as registered on chain.
func (g *Gateway) QueryPeerAddresses(ctx context.Context, netuid int) (map[int]string, error) {
	raw, err := call[map[string]string](ctx, g, http.MethodGet, fmt.Sprintf("/chain/module-addresses/%d", netuid), nil)
	if err != nil {
		return nil, fmt.Errorf("query addresses: %w", err)
	}
	return uidKeyed(raw)
}

// QueryPeerKeys returns uid -> ss58 key.
func (g *Gateway) QueryPeerKeys(ctx context.Context, netuid int) (map[int]string, error) {
	raw, err := call[map[string]string](ctx, g, http.MethodGet, fmt.Sprintf("/chain/module-keys/%d", netuid), nil)
	if err != nil {
		return nil, fmt.Errorf("query keys: %w", err)
	}
	return uidKeyed(raw)
}

// QueryWeights returns the aggregated weight each uid has received.
func (g *Gateway) QueryWeights(ctx context.Context, netuid int) (map[int]float64, error) {
	raw, err := call[map[string]float64](ctx, g, http.MethodGet, fmt.Sprintf("/chain/module-weights/%d", netuid), nil)
	if err != nil {
		return nil, fmt.Errorf("query weights: %w", err)
	}
	return uidKeyed(raw)
}

// QueryStakeTo returns, per staker key, the list of keys it stakes to.
func (g *Gateway) QueryStakeTo(ctx context.Context, netuid int) (map[string][]StakeEntry, error) {
	out, err := call[map[string][]StakeEntry](ctx, g, http.MethodGet, fmt.Sprintf("/chain/stake-to/%d", netuid), nil)
	if err != nil {
		return nil, fmt.Errorf("query stake-to: %w", err)
	}
	return out, nil
}

// QuerySubnetNames returns netuid -> subnet name.
func (g *Gateway) QuerySubnetNames(ctx context.Context) (map[int]string, error) {
	raw, err := call[map[string]string](ctx, g, http.MethodGet, "/chain/subnet-names", nil)
	if err != nil {
		return nil, fmt.Errorf("query subnet names: %w", err)
	}
	return uidKeyed(raw)
}

// ResolveNetuid finds the netuid registered under name.
func (g *Gateway) ResolveNetuid(ctx context.Context, name string) (int, error) {
	names, err := g.QuerySubnetNames(ctx)
	if err != nil {
		return 0, err
	}
	for netuid, n := range names {
		if n == name {
			log.Info().Int("netuid", netuid).Str("subnet", name).Msg("resolved subnet")
			return netuid, nil
		}
	}
	return 0, fmt.Errorf("subnet %s not found", name)
}

// SubmitVote signs the vote with signer and submits it through the sidecar.
func (g *Gateway) SubmitVote(ctx context.Context, signer signature.SignatureProvider, netuid int, uids, weights []int) error {
	if len(uids) != len(weights) {
		return fmt.Errorf("uids and weights must have the same length, got %d and %d", len(uids), len(weights))
	}
	if signer == nil {
		return fmt.Errorf("signer cannot be nil")
	}

	message, err := sonic.MarshalString(VotePayload{
		Netuid:    netuid,
		Uids:      uids,
		Weights:   weights,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal vote payload: %w", err)
	}

	sig, err := signer.Sign(message)
	if err != nil {
		return fmt.Errorf("sign vote: %w", err)
	}

	req := VoteRequest{
		Netuid:    netuid,
		Uids:      uids,
		Weights:   weights,
		Key:       signer.SS58Address(),
		Message:   message,
		Signature: sig,
	}

	txHash, err := call[string](ctx, g, http.MethodPost, "/chain/vote", req)
	if err != nil {
		return fmt.Errorf("submit vote: %w", err)
	}

	log.Info().
		Int("netuid", netuid).
		Int("num_uids", len(uids)).
		Str("tx", txHash).
		Msg("vote submitted")
	return nil
}

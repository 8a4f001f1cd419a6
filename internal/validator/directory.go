package validator

import (
	"net"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tensorplex-labs/eden/internal/synapse"
	chainutils "github.com/tensorplex-labs/eden/internal/utils/chain_utils"
)

// resolveSelfUID finds the validator's uid by key, then by address. -1 when
// neither matches. A wildcard listen host never matches a registered address.
func resolveSelfUID(hotkey, selfAddress string, keys, addresses map[int]string) int {
	self := -1
	for uid, key := range keys {
		if key == hotkey && (self < 0 || uid < self) {
			self = uid
		}
	}
	if self >= 0 || !matchableAddress(selfAddress) {
		return self
	}

	for uid, raw := range addresses {
		if addr, ok := chainutils.ExtractAddress(raw); ok && addr == selfAddress && (self < 0 || uid < self) {
			self = uid
		}
	}
	return self
}

func matchableAddress(addr string) bool {
	host, _, err := chainutils.SplitAddress(addr)
	if err != nil {
		return false
	}
	ip := net.ParseIP(host)
	return ip != nil && !ip.IsUnspecified()
}

// buildDirectory turns the address map into pollable peers ordered by uid.
// uid 0, self and entries without a valid ip:port are dropped.
func buildDirectory(addresses, keys map[int]string, selfUID int, lg zerolog.Logger) []synapse.Peer {
	peers := make([]synapse.Peer, 0, len(addresses))
	for uid, raw := range addresses {
		if uid == 0 || uid == selfUID {
			continue
		}
		addr, ok := chainutils.ExtractAddress(raw)
		if !ok {
			lg.Trace().Int("uid", uid).Str("address", raw).Msg("skipping peer without a valid address")
			continue
		}
		peers = append(peers, synapse.Peer{UID: uid, Address: addr, Key: keys[uid]})
	}

	sort.Slice(peers, func(i, j int) bool { return peers[i].UID < peers[j].UID })
	return peers
}

// priorWeights reads the on-chain weight of every polled peer, falling back
// to def for peers the weights map does not mention.
func priorWeights(weights map[int]float64, peers []synapse.Peer, selfUID int, def float64) map[int]float64 {
	out := make(map[int]float64, len(peers))
	for _, p := range peers {
		if p.UID == selfUID {
			continue
		}
		w, ok := weights[p.UID]
		if !ok || w < 0 {
			w = def
		}
		out[p.UID] = w
	}
	return out
}

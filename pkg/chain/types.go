// Package chain talks to the commune chain sidecar that fronts the ledger RPC.
package chain

import (
	"math/big"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
)

// Response is the envelope every sidecar endpoint returns.
type Response[T any] struct {
	StatusCode int  `json:"statusCode"`
	Success    bool `json:"success"`
	Data       T    `json:"data"`
	Error      any  `json:"error"`
}

func (r Response[T]) ok() bool {
	return r.Success && r.Error == nil && (r.StatusCode == 0 || r.StatusCode == http.StatusOK)
}

// Amount decodes numbers, decimal strings and 0x-prefixed hex strings.
type Amount struct {
	Value *big.Int
}

// StakeEntry is one (target key, amount) pair of a stake-to listing.
type StakeEntry struct {
	Key    string
	Amount float64
}

// VotePayload is the canonical message signed by the voter.
type VotePayload struct {
	Netuid    int   `json:"netuid"`
	Uids      []int `json:"uids"`
	Weights   []int `json:"weights"`
	Timestamp int64 `json:"timestamp"`
}

// VoteRequest is the body of POST /chain/vote.
type VoteRequest struct {
	Netuid    int    `json:"netuid"`
	Uids      []int  `json:"uids"`
	Weights   []int  `json:"weights"`
	Key       string `json:"key"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

// Gateway is a sidecar-backed implementation of the ledger queries and vote submission.
type Gateway struct {
	httpClient *retryablehttp.Client
	baseURL    string
}

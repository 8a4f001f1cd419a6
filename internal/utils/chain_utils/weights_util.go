// Package chainutils holds helpers shared by the validator and the chain gateway.
package chainutils

import (
	"fmt"
	"math"
	"sort"
)

const (
	U16MAX = 65535
)

// ConvertScoresForVote turns a uid -> score map into positionally paired
// integer vote vectors, ordered by uid, with selfUID removed.
// The largest score maps to U16MAX. Positive scores never round to zero.
func ConvertScoresForVote(scores map[int]float64, selfUID int) ([]int, []int, error) {
	uids := make([]int, 0, len(scores))
	for uid := range scores {
		if uid == selfUID {
			continue
		}
		uids = append(uids, uid)
	}
	sort.Ints(uids)

	maxScore := 0.0
	for _, uid := range uids {
		s := scores[uid]
		if s < 0 || math.IsNaN(s) {
			return nil, nil, fmt.Errorf("score for uid %d is invalid: %v", uid, s)
		}
		if uid < 0 {
			return nil, nil, fmt.Errorf("uids cannot be negative: %d", uid)
		}
		if s > maxScore {
			maxScore = s
		}
	}

	if maxScore == 0 {
		return []int{}, []int{}, nil
	}

	voteUids := make([]int, 0, len(uids))
	voteWeights := make([]int, 0, len(uids))
	for _, uid := range uids {
		s := scores[uid]
		if s == 0 {
			continue
		}
		w := int(math.Round((s / maxScore) * U16MAX))
		if w == 0 {
			w = 1
		}
		voteUids = append(voteUids, uid)
		voteWeights = append(voteWeights, w)
	}

	return voteUids, voteWeights, nil
}

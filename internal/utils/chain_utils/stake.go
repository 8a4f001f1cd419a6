package chainutils

// AggregateStake sums every stake-to entry per staker key and maps the totals
// onto uids through keys (uid -> ss58). Uids without stake are reported as 0.
func AggregateStake[E any](stakeTo map[string][]E, amount func(E) float64, keys map[int]string) map[int]float64 {
	totals := make(map[string]float64, len(stakeTo))
	for key, entries := range stakeTo {
		var sum float64
		for _, e := range entries {
			sum += amount(e)
		}
		totals[key] = sum
	}

	out := make(map[int]float64, len(keys))
	for uid, key := range keys {
		out[uid] = totals[key]
	}
	return out
}

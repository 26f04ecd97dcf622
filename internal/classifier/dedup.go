package classifier

import "github-achievement-miner/internal/domain"

// Deduplicate drops achievements that record the same underlying fact
// (same type + repo + PR-or-issue number), keeping the first occurrence
// and preserving relative order. Later duplicates are discarded outright,
// never merged. Running it on its own output is a no-op.
func Deduplicate(in []*domain.Achievement) []*domain.Achievement {
	seen := make(map[string]struct{}, len(in))
	out := make([]*domain.Achievement, 0, len(in))
	for _, a := range in {
		key := a.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

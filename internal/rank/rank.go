// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank orders scored papers for the report.
package rank

import (
	"sort"

	"github.com/pdiddy/paper-curator/pkg/types"
)

// Rank filters papers below the threshold and sorts the rest into a total
// order: score descending, then more recent publication first, then
// smallest identifier. The order is deterministic for any input
// permutation. No side effects on the input slice.
func Rank(scored []types.ScoredPaper, threshold float64) []types.ScoredPaper {
	kept := make([]types.ScoredPaper, 0, len(scored))
	for _, sp := range scored {
		if sp.Score >= threshold {
			kept = append(kept, sp)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.Identifier < b.Identifier
	})

	return kept
}

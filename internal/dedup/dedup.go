// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup collapses papers that refer to the same work across
// sources into clusters, each with one deterministic representative.
package dedup

import (
	"sort"
	"strings"
	"unicode"

	"github.com/pdiddy/paper-curator/pkg/types"
)

// Cluster is a set of papers judged to be the same underlying work.
type Cluster struct {
	// Representative is the member the rest of the pipeline operates on.
	Representative types.Paper

	// Members holds every paper in the cluster, representative included.
	Members []types.Paper
}

// Dedupe groups papers into clusters and returns them with the number of
// papers collapsed into an existing cluster. Two papers match when their
// NormIDs are equal, or when their normalized titles are equal and their
// publication dates fall within cfg.TitleDateTolerance. Matching is closed
// transitively via union-find, so the result does not depend on input
// order. Keys are hashed, so no all-pairs comparison happens.
func Dedupe(papers []types.Paper, cfg types.DedupConfig) ([]Cluster, int) {
	uf := newUnionFind(len(papers))

	// Identifier keys: exact NormID matches across sources.
	byID := make(map[string]int)
	for i, p := range papers {
		if p.NormID == "" {
			continue
		}
		if j, ok := byID[p.NormID]; ok {
			uf.union(i, j)
		} else {
			byID[p.NormID] = i
		}
	}

	// Title keys: same normalized title within the date tolerance. Within a
	// title bucket, members are sorted by date and adjacent pairs within
	// tolerance are unioned; chains of close announcements merge.
	byTitle := make(map[string][]int)
	for i, p := range papers {
		key := NormalizeTitle(p.Title)
		if key == "" {
			continue
		}
		byTitle[key] = append(byTitle[key], i)
	}
	for _, idxs := range byTitle {
		if len(idxs) < 2 {
			continue
		}
		sort.Slice(idxs, func(a, b int) bool {
			return papers[idxs[a]].PublishedAt.Before(papers[idxs[b]].PublishedAt)
		})
		for k := 1; k < len(idxs); k++ {
			prev, cur := papers[idxs[k-1]], papers[idxs[k]]
			if cur.PublishedAt.Sub(prev.PublishedAt) <= cfg.TitleDateTolerance {
				uf.union(idxs[k-1], idxs[k])
			}
		}
	}

	// Gather members by root.
	byRoot := make(map[int][]types.Paper)
	for i, p := range papers {
		root := uf.find(i)
		byRoot[root] = append(byRoot[root], p)
	}

	clusters := make([]Cluster, 0, len(byRoot))
	for _, members := range byRoot {
		sortMembers(members, cfg.SourcePriority)
		clusters = append(clusters, Cluster{
			Representative: members[0],
			Members:        members,
		})
	}

	// Deterministic cluster order regardless of map iteration.
	sort.Slice(clusters, func(i, j int) bool {
		a, b := clusters[i].Representative, clusters[j].Representative
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.Identifier < b.Identifier
	})

	return clusters, len(papers) - len(clusters)
}

// Representatives returns each cluster's representative in cluster order.
func Representatives(clusters []Cluster) []types.Paper {
	reps := make([]types.Paper, len(clusters))
	for i, c := range clusters {
		reps[i] = c.Representative
	}
	return reps
}

// sortMembers orders cluster members so the representative is first:
// best source priority, then earliest publication, then smallest identifier.
func sortMembers(members []types.Paper, priority []types.Source) {
	rank := func(s types.Source) int {
		for i, p := range priority {
			if p == s {
				return i
			}
		}
		return len(priority)
	}
	sort.Slice(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if ra, rb := rank(a.Source), rank(b.Source); ra != rb {
			return ra < rb
		}
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.Before(b.PublishedAt)
		}
		return a.Identifier < b.Identifier
	})
}

// NormalizeTitle returns the case-folded, punctuation-stripped,
// whitespace-collapsed form of a title used as the dedup key.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// unionFind is a standard disjoint-set forest with path compression and
// union by size.
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		size:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}

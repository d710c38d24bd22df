package dedup

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/pdiddy/paper-curator/pkg/types"
)

func testDedupCfg() types.DedupConfig {
	return types.DedupConfig{
		TitleDateTolerance: 72 * time.Hour,
		SourcePriority:     []types.Source{types.SourceArxiv, types.SourceHuggingFace, types.SourceRSS},
	}
}

func day(d int) time.Time {
	return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC)
}

func TestDedupeByIdentifier(t *testing.T) {
	papers := []types.Paper{
		{Identifier: "2608.11111", NormID: "2608.11111", Title: "Paper A", Source: types.SourceArxiv, PublishedAt: day(26)},
		{Identifier: "2608.11111v1", NormID: "2608.11111", Title: "Paper A (HF)", Source: types.SourceHuggingFace, PublishedAt: day(27)},
		{Identifier: "2608.22222", NormID: "2608.22222", Title: "Paper B", Source: types.SourceArxiv, PublishedAt: day(26)},
	}

	clusters, removed := Dedupe(papers, testDedupCfg())
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if len(clusters) != 2 {
		t.Fatalf("len(clusters) = %d, want 2", len(clusters))
	}
}

func TestDedupeCrossSourceTitleMatch(t *testing.T) {
	// Same normalized title, announced one day apart on different sources.
	papers := []types.Paper{
		{Identifier: "https://example.org/p/1", Title: "Sparse Attention, at Scale!", Source: types.SourceRSS, PublishedAt: day(27)},
		{Identifier: "2608.11111", NormID: "2608.11111", Title: "sparse attention at scale", Source: types.SourceArxiv, PublishedAt: day(26)},
	}

	clusters, removed := Dedupe(papers, testDedupCfg())
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if len(clusters) != 1 {
		t.Fatalf("len(clusters) = %d, want 1", len(clusters))
	}

	// Representative follows source priority: arXiv beats the feed.
	rep := clusters[0].Representative
	if rep.Source != types.SourceArxiv {
		t.Errorf("representative source = %q, want arxiv", rep.Source)
	}
	if len(clusters[0].Members) != 2 {
		t.Errorf("len(members) = %d, want 2", len(clusters[0].Members))
	}
}

func TestDedupeTitleOutsideTolerance(t *testing.T) {
	papers := []types.Paper{
		{Identifier: "a", Title: "Sparse Attention at Scale", Source: types.SourceRSS, PublishedAt: day(1)},
		{Identifier: "b", Title: "Sparse Attention at Scale", Source: types.SourceRSS, PublishedAt: day(20)},
	}

	clusters, removed := Dedupe(papers, testDedupCfg())
	if removed != 0 || len(clusters) != 2 {
		t.Errorf("removed = %d, clusters = %d; papers 19 days apart must not merge", removed, len(clusters))
	}
}

func TestDedupeTransitiveClosure(t *testing.T) {
	// A~B by title+date, B~C by identifier: all three form one cluster.
	papers := []types.Paper{
		{Identifier: "feed-1", Title: "Sparse Attention at Scale", Source: types.SourceRSS, PublishedAt: day(25)},
		{Identifier: "2608.11111v1", NormID: "2608.11111", Title: "Sparse Attention at Scale", Source: types.SourceHuggingFace, PublishedAt: day(27)},
		{Identifier: "2608.11111", NormID: "2608.11111", Title: "Sparse Attention at Scale (v2 with appendix)", Source: types.SourceArxiv, PublishedAt: day(28)},
	}

	clusters, removed := Dedupe(papers, testDedupCfg())
	if len(clusters) != 1 {
		t.Fatalf("len(clusters) = %d, want 1 (transitive closure)", len(clusters))
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if clusters[0].Representative.Source != types.SourceArxiv {
		t.Errorf("representative source = %q, want arxiv", clusters[0].Representative.Source)
	}
}

func TestDedupeRepresentativeTieBreaks(t *testing.T) {
	// Same source priority: earliest publication wins, then smallest identifier.
	papers := []types.Paper{
		{Identifier: "2608.22222", NormID: "x", Title: "T", Source: types.SourceArxiv, PublishedAt: day(27)},
		{Identifier: "2608.11111", NormID: "x", Title: "T", Source: types.SourceArxiv, PublishedAt: day(26)},
		{Identifier: "2608.00001", NormID: "x", Title: "T", Source: types.SourceArxiv, PublishedAt: day(26)},
	}

	clusters, _ := Dedupe(papers, testDedupCfg())
	if len(clusters) != 1 {
		t.Fatalf("len(clusters) = %d, want 1", len(clusters))
	}
	if got := clusters[0].Representative.Identifier; got != "2608.00001" {
		t.Errorf("representative = %q, want earliest date then smallest identifier", got)
	}
}

func TestDedupeIdempotent(t *testing.T) {
	papers := []types.Paper{
		{Identifier: "2608.11111", NormID: "2608.11111", Title: "Paper A", Source: types.SourceArxiv, PublishedAt: day(26)},
		{Identifier: "2608.11111v1", NormID: "2608.11111", Title: "Paper A", Source: types.SourceHuggingFace, PublishedAt: day(27)},
		{Identifier: "2608.22222", NormID: "2608.22222", Title: "Paper B", Source: types.SourceArxiv, PublishedAt: day(25)},
	}

	first, _ := Dedupe(papers, testDedupCfg())
	second, removed := Dedupe(Representatives(first), testDedupCfg())

	if removed != 0 {
		t.Errorf("second pass removed = %d, want 0", removed)
	}
	if !reflect.DeepEqual(Representatives(first), Representatives(second)) {
		t.Errorf("second pass changed representatives")
	}
}

func TestDedupeOrderIndependent(t *testing.T) {
	papers := []types.Paper{
		{Identifier: "2608.11111", NormID: "2608.11111", Title: "Paper A", Source: types.SourceArxiv, PublishedAt: day(26)},
		{Identifier: "2608.11111v1", NormID: "2608.11111", Title: "Paper A", Source: types.SourceHuggingFace, PublishedAt: day(27)},
		{Identifier: "feed-1", Title: "Paper A", Source: types.SourceRSS, PublishedAt: day(25)},
		{Identifier: "2608.22222", NormID: "2608.22222", Title: "Paper B", Source: types.SourceArxiv, PublishedAt: day(25)},
		{Identifier: "feed-2", Title: "Paper C", Source: types.SourceRSS, PublishedAt: day(24)},
	}

	want, _ := Dedupe(papers, testDedupCfg())

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffled := append([]types.Paper(nil), papers...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, _ := Dedupe(shuffled, testDedupCfg())
		if !reflect.DeepEqual(clusterKeys(want), clusterKeys(got)) {
			t.Fatalf("trial %d: clusters differ for permuted input", trial)
		}
		if !reflect.DeepEqual(Representatives(want), Representatives(got)) {
			t.Fatalf("trial %d: representatives differ for permuted input", trial)
		}
	}
}

// clusterKeys renders each cluster as its sorted member identifiers.
func clusterKeys(clusters []Cluster) [][]string {
	keys := make([][]string, len(clusters))
	for i, c := range clusters {
		for _, m := range c.Members {
			keys[i] = append(keys[i], m.Identifier)
		}
		sort.Strings(keys[i])
	}
	return keys
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Attention Is All You Need", "attention is all you need"},
		{"attention is all you need!", "attention is all you need"},
		{"  Sparse\tAttention,  at Scale. ", "sparse attention at scale"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

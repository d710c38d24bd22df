package report

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/paper-curator/pkg/types"
)

func testRanked() []types.ScoredPaper {
	return []types.ScoredPaper{
		{
			Paper: types.Paper{
				Identifier:  "2608.11111",
				Title:       "Sparse Attention at Scale",
				Abstract:    "We study sparse attention.",
				Authors:     []string{"Ada Lovelace", "Alan Turing"},
				Source:      types.SourceArxiv,
				PublishedAt: time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC),
				URL:         "https://arxiv.org/abs/2608.11111",
			},
			Score:         0.91,
			Justification: "Directly about sparse attention.",
		},
		{
			Paper: types.Paper{
				Identifier:  "2608.22222",
				Title:       "Efficient Inference",
				Abstract:    "Inference tricks.",
				Source:      types.SourceHuggingFace,
				PublishedAt: time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC),
				URL:         "https://huggingface.co/papers/2608.22222",
			},
			Score: 0.62,
		},
	}
}

func testStats() types.RunStats {
	return types.RunStats{
		WindowFrom:        time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		WindowTo:          time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		Fetched:           12,
		Malformed:         1,
		DuplicatesRemoved: 3,
		ScoringFailed:     2,
		BelowThreshold:    4,
		Sources: []types.SourceStat{
			{Source: types.SourceArxiv, Fetched: 10, Skipped: 1},
			{Source: types.SourceRSS, Error: "connection refused"},
		},
	}
}

func TestBuild(t *testing.T) {
	ranked := testRanked()
	r := Build(ranked, testStats(), "claude-sonnet-4-5-20250929")

	if r.Stats.Kept != 2 {
		t.Errorf("kept = %d, want 2", r.Stats.Kept)
	}
	if r.Model != "claude-sonnet-4-5-20250929" {
		t.Errorf("model = %q", r.Model)
	}
	if !reflect.DeepEqual(r.Papers, ranked) {
		t.Error("Build must preserve the ranked order verbatim")
	}
	if r.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not set")
	}
}

func TestFormatText(t *testing.T) {
	r := Build(testRanked(), testStats(), "claude-sonnet-4-5-20250929")

	var sb strings.Builder
	FormatText(r, &sb)
	out := sb.String()

	for _, want := range []string{
		"2026-08-25 to 2026-08-28",
		"12 fetched, 1 malformed, 3 duplicates removed, 2 scoring failures, 4 below threshold, 2 kept",
		"source arxiv: 10 fetched, 1 skipped",
		"source rss: FAILED (connection refused)",
		"1. Sparse Attention at Scale",
		"Authors: Ada Lovelace, Alan Turing",
		"Score: 0.91",
		"Remarks: Directly about sparse attention.",
		"2. Efficient Inference",
		"https://arxiv.org/abs/2608.11111",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatTextEmpty(t *testing.T) {
	r := Build(nil, testStats(), "m")

	var sb strings.Builder
	FormatText(r, &sb)
	if !strings.Contains(sb.String(), "No papers above the relevance threshold.") {
		t.Errorf("empty report output:\n%s", sb.String())
	}
}

func TestFormatJSON(t *testing.T) {
	r := Build(testRanked(), testStats(), "m")

	var sb strings.Builder
	if err := FormatJSON(r, &sb); err != nil {
		t.Fatalf("FormatJSON failed: %v", err)
	}
	for _, want := range []string{`"identifier": "2608.11111"`, `"score": 0.91`, `"duplicates_removed": 3`} {
		if !strings.Contains(sb.String(), want) {
			t.Errorf("JSON output missing %s", want)
		}
	}
}

func TestReportFileRoundTrip(t *testing.T) {
	r := Build(testRanked(), testStats(), "claude-sonnet-4-5-20250929")
	path := filepath.Join(t.TempDir(), "report.yaml")

	if err := WriteReportFile(path, r); err != nil {
		t.Fatalf("WriteReportFile failed: %v", err)
	}
	got, err := ReadReportFile(path)
	if err != nil {
		t.Fatalf("ReadReportFile failed: %v", err)
	}

	if got.Model != r.Model || len(got.Papers) != len(r.Papers) {
		t.Fatalf("round trip lost data: %+v", got)
	}
	if got.Papers[0].Identifier != "2608.11111" || got.Papers[0].Score != 0.91 {
		t.Errorf("papers[0] = %+v", got.Papers[0])
	}
	if got.Stats.DuplicatesRemoved != 3 || got.Stats.Sources[1].Error != "connection refused" {
		t.Errorf("stats = %+v", got.Stats)
	}
}

func TestFormatAuthors(t *testing.T) {
	many := []string{"A", "B", "C", "D", "E", "F", "G"}
	if got := formatAuthors(many); got != "A, B, C, D, E et al." {
		t.Errorf("formatAuthors = %q", got)
	}
	if got := formatAuthors([]string{"A", "B"}); got != "A, B" {
		t.Errorf("formatAuthors = %q", got)
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report assembles and renders the final curation report. Build is
// a pure transformation; the renderers write to a caller-supplied sink and
// preserve the ordering they receive verbatim.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/paper-curator/pkg/types"
)

// Build assembles the Report from ranked papers and run statistics. The
// paper order is preserved exactly.
func Build(ranked []types.ScoredPaper, stats types.RunStats, model string) types.Report {
	stats.Kept = len(ranked)
	return types.Report{
		GeneratedAt: time.Now().UTC(),
		Model:       model,
		Papers:      ranked,
		Stats:       stats,
	}
}

// FormatText writes the human-readable report: a run summary header
// followed by one section per paper.
func FormatText(r types.Report, w io.Writer) {
	fmt.Fprintf(w, "Curated papers — %s to %s\n",
		r.Stats.WindowFrom.Format("2006-01-02"), r.Stats.WindowTo.Format("2006-01-02"))
	fmt.Fprintf(w, "Generated %s with %s\n\n",
		r.GeneratedAt.Format(time.RFC3339), r.Model)

	fmt.Fprintf(w, "Run summary: %d fetched, %d malformed, %d duplicates removed, %d scoring failures, %d below threshold, %d kept\n",
		r.Stats.Fetched, r.Stats.Malformed, r.Stats.DuplicatesRemoved,
		r.Stats.ScoringFailed, r.Stats.BelowThreshold, r.Stats.Kept)
	for _, src := range r.Stats.Sources {
		if src.Error != "" {
			fmt.Fprintf(w, "  source %s: FAILED (%s)\n", src.Source, src.Error)
			continue
		}
		fmt.Fprintf(w, "  source %s: %d fetched, %d skipped\n", src.Source, src.Fetched, src.Skipped)
	}
	fmt.Fprintln(w)

	if len(r.Papers) == 0 {
		fmt.Fprintln(w, "No papers above the relevance threshold.")
		return
	}

	for i, p := range r.Papers {
		fmt.Fprintf(w, "%d. %s\n", i+1, p.Title)
		if len(p.Authors) > 0 {
			fmt.Fprintf(w, "   Authors: %s\n", formatAuthors(p.Authors))
		}
		fmt.Fprintf(w, "   Source: %s (%s)  Score: %.2f\n",
			p.Source, p.PublishedAt.Format("2006-01-02"), p.Score)
		if p.Justification != "" {
			fmt.Fprintf(w, "   Remarks: %s\n", p.Justification)
		}
		fmt.Fprintf(w, "   %s\n\n", p.URL)
	}
}

// FormatJSON writes the report as indented JSON.
func FormatJSON(r types.Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// formatAuthors joins up to five author names and elides the rest.
func formatAuthors(authors []string) string {
	if len(authors) <= 5 {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:5], ", ") + " et al."
}

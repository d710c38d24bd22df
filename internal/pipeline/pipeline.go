// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences the curation stages: concurrent source
// fetches, normalization, cross-source dedup, batched LLM scoring,
// ranking, and report assembly. Per-record and per-batch failures degrade
// the run and show up in the stats; the pipeline fails only when no source
// delivers anything to work with.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-curator/internal/dedup"
	"github.com/pdiddy/paper-curator/internal/normalize"
	"github.com/pdiddy/paper-curator/internal/rank"
	"github.com/pdiddy/paper-curator/internal/report"
	"github.com/pdiddy/paper-curator/internal/score"
	"github.com/pdiddy/paper-curator/internal/source"
	"github.com/pdiddy/paper-curator/pkg/types"
)

// Run executes one full curation pass over the window and returns the
// report. It returns an error only when no clients are configured or
// every source fails; any partial failure is recorded in the report's
// stats instead. Progress lines go to w.
func Run(ctx context.Context, cfg types.PipelineConfig, clients []source.Client, scorer *score.Scorer, profile types.UserProfile, window source.Window, w io.Writer) (types.Report, error) {
	if len(clients) == 0 {
		return types.Report{}, fmt.Errorf("no sources configured")
	}

	stats := types.RunStats{
		WindowFrom: window.From,
		WindowTo:   window.To,
	}

	records, sourceStats := fetchAll(ctx, clients, window, cfg.Sources, w)
	stats.Sources = sourceStats
	stats.Fetched = len(records)

	succeeded := len(clients) - stats.FailedSources()
	if succeeded == 0 {
		return types.Report{}, fmt.Errorf("all %d sources failed", len(clients))
	}
	fmt.Fprintf(w, "fetched %d records from %d/%d sources\n", len(records), succeeded, len(clients))

	// Normalize, skipping and counting malformed records.
	var papers []types.Paper
	for _, rec := range records {
		p, err := normalize.Normalize(rec)
		if err != nil {
			fmt.Fprintf(w, "warning: dropping malformed record: %v\n", err)
			stats.Malformed++
			continue
		}
		// Clients filter to the window, but a timestamp their parser could
		// not read bypasses that check; re-check on the parsed time.
		if !window.Contains(p.PublishedAt) {
			continue
		}
		papers = append(papers, p)
	}

	clusters, removed := dedup.Dedupe(papers, cfg.Dedup)
	stats.DuplicatesRemoved = removed
	if removed > 0 {
		fmt.Fprintf(w, "collapsed %d duplicates into %d papers\n", removed, len(clusters))
	}

	scored, failures := scorer.Score(ctx, dedup.Representatives(clusters), profile, w)
	stats.ScoringFailed = len(failures)
	for _, f := range failures {
		fmt.Fprintf(w, "warning: scoring dropped %q: %v\n", f.Paper.Title, f.Err)
	}

	ranked := rank.Rank(scored, cfg.Rank.Threshold)
	stats.BelowThreshold = len(scored) - len(ranked)
	if cfg.Rank.MaxResults > 0 && len(ranked) > cfg.Rank.MaxResults {
		ranked = ranked[:cfg.Rank.MaxResults]
	}

	return report.Build(ranked, stats, cfg.Scoring.Model), nil
}

// fetchAll fans out to all clients concurrently and merges their output at
// the join point. Each goroutine appends under the mutex; a client error
// marks that source failed and the run continues.
func fetchAll(ctx context.Context, clients []source.Client, window source.Window, cfg types.SourcesConfig, w io.Writer) ([]types.RawRecord, []types.SourceStat) {
	var (
		mu      sync.Mutex
		records []types.RawRecord
		stats   []types.SourceStat
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(len(clients))

	for _, client := range clients {
		client := client
		g.Go(func() error {
			out, err := client.Fetch(ctx, window, cfg)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fmt.Fprintf(w, "warning: source %s failed: %v\n", client.Name(), err)
				stats = append(stats, types.SourceStat{Source: client.Name(), Error: err.Error()})
				return nil // source failures never fail the batch
			}
			records = append(records, out.Records...)
			stats = append(stats, types.SourceStat{
				Source:  client.Name(),
				Fetched: len(out.Records),
				Skipped: out.Skipped,
			})
			return nil
		})
	}
	g.Wait()

	// Deterministic stat order regardless of completion order.
	sort.Slice(stats, func(i, j int) bool { return stats[i].Source < stats[j].Source })

	return records, stats
}

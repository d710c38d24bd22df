// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source fetches candidate papers from public listings. Each
// client implements the Client interface per the Strategy pattern; adding
// a source means adding a variant, not branching elsewhere.
package source

import (
	"context"
	"time"

	"github.com/pdiddy/paper-curator/pkg/types"
)

// Window is the half-open publication interval [From, To) a fetch covers.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls within the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// Days returns the calendar days (UTC) the window touches, in order.
func (w Window) Days() []time.Time {
	var days []time.Time
	day := time.Date(w.From.Year(), w.From.Month(), w.From.Day(), 0, 0, 0, 0, time.UTC)
	for day.Before(w.To) {
		days = append(days, day)
		day = day.AddDate(0, 0, 1)
	}
	return days
}

// FetchOutput holds the records a client produced plus the count of
// malformed records it skipped.
type FetchOutput struct {
	Records []types.RawRecord
	Skipped int
}

// Client fetches candidate papers published within a time window. A
// returned error means the whole source is unavailable for this run;
// individually malformed records are skipped and counted in
// FetchOutput.Skipped, never fatal.
type Client interface {
	Name() types.Source
	Fetch(ctx context.Context, window Window, cfg types.SourcesConfig) (FetchOutput, error)
}

// Enabled returns the clients selected by cfg, in priority order.
func Enabled(cfg types.SourcesConfig) []Client {
	var clients []Client
	if cfg.EnableArxiv {
		clients = append(clients, &ArxivClient{})
	}
	if cfg.EnableHuggingFace {
		clients = append(clients, &HFPapersClient{})
	}
	if len(cfg.FeedURLs) > 0 {
		clients = append(clients, &FeedClient{})
	}
	return clients
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-curator pipeline.
package types

import "time"

// Source identifies which client discovered a record.
type Source string

const (
	SourceArxiv       Source = "arxiv"
	SourceHuggingFace Source = "huggingface"
	SourceRSS         Source = "rss"
)

// RawRecord is the per-source representation of a candidate paper before
// normalization. Timestamps are kept as the source's original string; the
// normalizer parses them.
type RawRecord struct {
	// Source tags which client produced the record.
	Source Source `json:"source" yaml:"source"`

	// Identifier is the source-native ID (arXiv ID, feed GUID, ...).
	Identifier string `json:"identifier" yaml:"identifier"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Summary is the abstract or summary text.
	Summary string `json:"summary" yaml:"summary"`

	// Authors lists author names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Published is the publication timestamp string as emitted by the source.
	Published string `json:"published" yaml:"published"`

	// URL is the canonical link to the paper.
	URL string `json:"url" yaml:"url"`

	// ArxivID carries a cross-referenced arXiv identifier when the source
	// exposes one (e.g. Hugging Face daily papers), for cross-source dedup.
	ArxivID string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`
}

// Paper is the normalized, source-agnostic representation. Immutable once
// produced by the normalizer.
type Paper struct {
	// Identifier is unique within its source.
	Identifier string `json:"identifier" yaml:"identifier"`

	// NormID is the canonicalized identifier used for cross-source matching:
	// lower-cased, arXiv version suffix stripped. Empty when the source
	// identifier has no cross-source meaning.
	NormID string `json:"norm_id,omitempty" yaml:"norm_id,omitempty"`

	Title    string   `json:"title" yaml:"title"`
	Abstract string   `json:"abstract" yaml:"abstract"`
	Authors  []string `json:"authors" yaml:"authors"`

	Source      Source    `json:"source" yaml:"source"`
	PublishedAt time.Time `json:"published_at" yaml:"published_at"`
	URL         string    `json:"url" yaml:"url"`
}

// UserProfile holds the user's curation interests. Loaded from the
// preferences file; read-only input to the scorer.
type UserProfile struct {
	// Interests are free-text interest lines, in file order.
	Interests []string `json:"interests" yaml:"interests"`

	// Exclusions are topics the user explicitly does not want.
	Exclusions []string `json:"exclusions,omitempty" yaml:"exclusions,omitempty"`

	// Raw is the original file text, passed verbatim to the model prompt.
	Raw string `json:"-" yaml:"-"`
}

// ScoredPaper is a cluster representative annotated with the model's
// relevance judgement.
type ScoredPaper struct {
	Paper `yaml:",inline"`

	// Score is the model's relevance score in [0, 1].
	Score float64 `json:"score" yaml:"score"`

	// Justification is the model's short remark on the paper.
	Justification string `json:"justification" yaml:"justification"`
}

// SourceStat records the per-source outcome of the fetch stage.
type SourceStat struct {
	Source  Source `json:"source" yaml:"source"`
	Fetched int    `json:"fetched" yaml:"fetched"`
	Skipped int    `json:"skipped" yaml:"skipped"`

	// Error is set when the whole source failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunStats summarizes one pipeline run so degraded runs are visible in the
// report rather than silent.
type RunStats struct {
	WindowFrom time.Time `json:"window_from" yaml:"window_from"`
	WindowTo   time.Time `json:"window_to" yaml:"window_to"`

	Sources []SourceStat `json:"sources" yaml:"sources"`

	// Fetched is the total record count across successful sources.
	Fetched int `json:"fetched" yaml:"fetched"`

	// Malformed counts records dropped during normalization.
	Malformed int `json:"malformed" yaml:"malformed"`

	// DuplicatesRemoved counts papers collapsed into an existing cluster.
	DuplicatesRemoved int `json:"duplicates_removed" yaml:"duplicates_removed"`

	// ScoringFailed counts papers dropped because scoring failed after retries.
	ScoringFailed int `json:"scoring_failed" yaml:"scoring_failed"`

	// BelowThreshold counts scored papers filtered out by the ranker.
	BelowThreshold int `json:"below_threshold" yaml:"below_threshold"`

	// Kept is the number of papers in the final report.
	Kept int `json:"kept" yaml:"kept"`
}

// FailedSources returns how many sources failed entirely.
func (s RunStats) FailedSources() int {
	n := 0
	for _, src := range s.Sources {
		if src.Error != "" {
			n++
		}
	}
	return n
}

// Report is the final artifact of one run: the kept papers in rank order
// plus the run statistics. Written once, never persisted across runs.
type Report struct {
	GeneratedAt time.Time     `json:"generated_at" yaml:"generated_at"`
	Model       string        `json:"model" yaml:"model"`
	Papers      []ScoredPaper `json:"papers" yaml:"papers"`
	Stats       RunStats      `json:"stats" yaml:"stats"`
}

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-curator/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourcesConfig holds settings for the fetch stage.
type SourcesConfig struct {
	HTTPConfig `yaml:",inline"`

	// EnableArxiv controls whether the arXiv client is used.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv"`

	// ArxivCategories restricts the arXiv listing (e.g. "cs.LG", "cs.CL").
	ArxivCategories []string `json:"arxiv_categories" yaml:"arxiv_categories"`

	// MaxPerSource caps how many records one client may return (default 200).
	MaxPerSource int `json:"max_per_source" yaml:"max_per_source"`

	// EnableHuggingFace controls whether the Hugging Face client is used.
	EnableHuggingFace bool `json:"enable_huggingface" yaml:"enable_huggingface"`

	// HuggingFaceToken is an optional bearer token for higher rate limits.
	HuggingFaceToken string `json:"huggingface_token,omitempty" yaml:"huggingface_token,omitempty"`

	// FeedURLs lists RSS/Atom feeds for the generic feed client. The client
	// is enabled when the list is non-empty.
	FeedURLs []string `json:"feed_urls,omitempty" yaml:"feed_urls,omitempty"`
}

// DedupConfig holds tolerances for cross-source duplicate detection.
type DedupConfig struct {
	// TitleDateTolerance is the maximum publication-date gap for two papers
	// with matching normalized titles to count as the same work (default 72h),
	// since the same paper surfaces on different sources on different days.
	TitleDateTolerance time.Duration `json:"title_date_tolerance" yaml:"title_date_tolerance"`

	// SourcePriority orders sources for representative selection, most
	// preferred first (default arxiv, huggingface, rss).
	SourcePriority []Source `json:"source_priority" yaml:"source_priority"`
}

// ScoringConfig holds settings for the LLM relevance-scoring stage.
type ScoringConfig struct {
	// Model is the model identifier (e.g. "claude-sonnet-4-5-20250929",
	// "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// Provider is an optional OpenAI-compatible base URL. When set, the
	// OpenAI-style backend is used against it instead of the Anthropic API.
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`

	// APIKey is the authentication key for the model API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BatchSize is the number of papers per model request (default 8).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// Concurrency bounds how many batches are in flight at once (default 2).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// MaxRetries is the number of retry attempts per batch (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Timeout is the per-request timeout for model calls.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// RankConfig holds settings for ranking and report assembly.
type RankConfig struct {
	// Threshold is the minimum relevance score a paper needs to be kept
	// (default 0.5).
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// MaxResults caps the report length; 0 means unlimited.
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations for one run.
type PipelineConfig struct {
	Sources SourcesConfig `json:"sources" yaml:"sources"`
	Dedup   DedupConfig   `json:"dedup" yaml:"dedup"`
	Scoring ScoringConfig `json:"scoring" yaml:"scoring"`
	Rank    RankConfig    `json:"rank" yaml:"rank"`
}

// WithDefaults fills zero-valued fields with the documented defaults.
func (c PipelineConfig) WithDefaults() PipelineConfig {
	if c.Sources.Timeout == 0 {
		c.Sources.Timeout = 30 * time.Second
	}
	if c.Sources.UserAgent == "" {
		c.Sources.UserAgent = "paper-curator/0.1"
	}
	if c.Sources.MaxPerSource == 0 {
		c.Sources.MaxPerSource = 200
	}
	if c.Dedup.TitleDateTolerance == 0 {
		c.Dedup.TitleDateTolerance = 72 * time.Hour
	}
	if len(c.Dedup.SourcePriority) == 0 {
		c.Dedup.SourcePriority = []Source{SourceArxiv, SourceHuggingFace, SourceRSS}
	}
	if c.Scoring.BatchSize == 0 {
		c.Scoring.BatchSize = 8
	}
	if c.Scoring.Concurrency == 0 {
		c.Scoring.Concurrency = 2
	}
	if c.Scoring.MaxRetries == 0 {
		c.Scoring.MaxRetries = 3
	}
	if c.Scoring.Timeout == 0 {
		c.Scoring.Timeout = 60 * time.Second
	}
	if c.Rank.Threshold == 0 {
		c.Rank.Threshold = 0.5
	}
	return c
}

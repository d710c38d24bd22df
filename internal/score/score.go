// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score judges paper relevance against the user profile through an
// LLM. Papers travel in batches; one model request covers one batch, and
// batch failures drop papers but never abort the run.
package score

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"text/template"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-curator/pkg/types"
)

// Failure records one paper dropped from scoring, with the reason.
type Failure struct {
	Paper types.Paper
	Err   error
}

// RetryPolicy decides how batch transport failures are retried. It is a
// plain value so tests can exercise it with a fake backend.
type RetryPolicy struct {
	// MaxRetries is the number of retry attempts after the first call.
	MaxRetries int

	// BaseDelay is the first backoff duration; it doubles per attempt.
	BaseDelay time.Duration

	// Retryable reports whether an error is worth retrying. Nil means
	// DefaultRetryable.
	Retryable func(error) bool
}

// DefaultRetryable retries transport-level failures (timeouts, network
// errors) and transient API statuses (429, 5xx). Other API errors are
// permanent.
func DefaultRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == 429 || apiErr.Status >= 500
	}
	return true
}

// backoffBase is the default retry base delay. Tests override the policy
// instead, but the zero-valued policy falls back to this.
var backoffBase = time.Second

// Scorer submits batches of cluster representatives to a model backend and
// parses relevance verdicts.
type Scorer struct {
	Backend Backend
	Policy  RetryPolicy

	// BatchSize is the number of papers per model request.
	BatchSize int

	// Concurrency bounds how many batches are in flight at once.
	Concurrency int
}

// New builds a Scorer from the scoring configuration.
func New(backend Backend, cfg types.ScoringConfig) *Scorer {
	return &Scorer{
		Backend: backend,
		Policy: RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  backoffBase,
			Retryable:  DefaultRetryable,
		},
		BatchSize:   cfg.BatchSize,
		Concurrency: cfg.Concurrency,
	}
}

// Score evaluates papers against the profile. Every input paper ends up in
// exactly one of the two return slices: scored (with a model verdict) or
// failed (dropped, with the reason). Batches run concurrently up to the
// configured bound; results keep batch order regardless of completion
// order. Progress lines go to w.
func (s *Scorer) Score(ctx context.Context, papers []types.Paper, profile types.UserProfile, w io.Writer) ([]types.ScoredPaper, []Failure) {
	if len(papers) == 0 {
		return nil, nil
	}

	batchSize := s.BatchSize
	if batchSize <= 0 {
		batchSize = 8
	}
	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	var batches [][]types.Paper
	for start := 0; start < len(papers); start += batchSize {
		end := start + batchSize
		if end > len(papers) {
			end = len(papers)
		}
		batches = append(batches, papers[start:end])
	}

	// One result slot per batch; each goroutine writes only its own slot
	// and slots are merged after the join.
	scoredByBatch := make([][]types.ScoredPaper, len(batches))
	failedByBatch := make([][]Failure, len(batches))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			scored, failed := s.scoreBatch(ctx, batch, profile)
			scoredByBatch[i] = scored
			failedByBatch[i] = failed
			return nil
		})
	}
	g.Wait()

	// Progress is reported after the join; w need not be safe for
	// concurrent writes.
	var scored []types.ScoredPaper
	var failed []Failure
	for i := range batches {
		fmt.Fprintf(w, "scored batch %d/%d: %d ok, %d failed\n",
			i+1, len(batches), len(scoredByBatch[i]), len(failedByBatch[i]))
		scored = append(scored, scoredByBatch[i]...)
		failed = append(failed, failedByBatch[i]...)
	}
	return scored, failed
}

// scoreBatch submits one batch with retry and maps the verdicts back onto
// the batch papers. A batch that exhausts retries drops all its papers.
func (s *Scorer) scoreBatch(ctx context.Context, batch []types.Paper, profile types.UserProfile) ([]types.ScoredPaper, []Failure) {
	prompt, err := buildPrompt(profile, batch)
	if err != nil {
		return nil, failAll(batch, fmt.Errorf("rendering prompt: %w", err))
	}

	text, err := s.completeWithRetry(ctx, prompt)
	if err != nil {
		return nil, failAll(batch, err)
	}

	return parseVerdicts(text, batch)
}

// completeWithRetry calls the backend with exponential backoff per the
// retry policy.
func (s *Scorer) completeWithRetry(ctx context.Context, prompt string) (string, error) {
	maxRetries := s.Policy.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	baseDelay := s.Policy.BaseDelay
	if baseDelay <= 0 {
		baseDelay = backoffBase
	}
	retryable := s.Policy.Retryable
	if retryable == nil {
		retryable = DefaultRetryable
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * baseDelay
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := s.Backend.Complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// failAll produces one Failure per batch paper for a batch-level error.
func failAll(batch []types.Paper, err error) []Failure {
	failures := make([]Failure, len(batch))
	for i, p := range batch {
		failures[i] = Failure{Paper: p, Err: err}
	}
	return failures
}

// verdict is one element of the model's response array.
type verdict struct {
	Index   int     `json:"index"`
	Score   float64 `json:"score"`
	Remarks string  `json:"remarks"`
}

// parseVerdicts maps the model's JSON array back onto the batch. Papers
// the response omits, duplicates, or scores out of range are dropped with
// a Failure; a response that does not parse drops the whole batch.
func parseVerdicts(text string, batch []types.Paper) ([]types.ScoredPaper, []Failure) {
	var verdicts []verdict
	if err := json.Unmarshal([]byte(extractJSON(text)), &verdicts); err != nil {
		return nil, failAll(batch, fmt.Errorf("parsing model response: %w", err))
	}

	byIndex := make(map[int]verdict, len(verdicts))
	dupes := make(map[int]bool)
	for _, v := range verdicts {
		if _, seen := byIndex[v.Index]; seen {
			dupes[v.Index] = true
			continue
		}
		byIndex[v.Index] = v
	}

	var scored []types.ScoredPaper
	var failed []Failure
	for i, p := range batch {
		v, ok := byIndex[i]
		switch {
		case !ok:
			failed = append(failed, Failure{Paper: p, Err: fmt.Errorf("model response omitted paper %d", i)})
		case dupes[i]:
			failed = append(failed, Failure{Paper: p, Err: fmt.Errorf("model response repeated paper %d", i)})
		case v.Score < 0.0 || v.Score > 1.0:
			failed = append(failed, Failure{Paper: p, Err: fmt.Errorf("score %g out of range [0,1]", v.Score)})
		default:
			scored = append(scored, types.ScoredPaper{
				Paper:         p,
				Score:         v.Score,
				Justification: strings.TrimSpace(v.Remarks),
			})
		}
	}
	return scored, failed
}

// extractJSON strips a Markdown code fence around the response, if any,
// and trims to the outermost JSON array.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

// scoringPromptTmpl is the prompt sent to the model for each batch. The
// model must echo each paper's index so verdicts map back unambiguously.
var scoringPromptTmpl = template.Must(template.New("scoring").Parse(`You are a research paper curation assistant. Evaluate each paper below against the user's interests and decide how relevant it is.

User interests:
{{.Profile}}
{{if .Exclusions}}
The user explicitly does NOT want papers about:
{{range .Exclusions}}- {{.}}
{{end}}{{end}}
Papers:
{{range .Papers}}
[{{.Index}}] Title: {{.Title}}
Abstract: {{.Abstract}}
{{end}}
Respond with a JSON array only, one element per paper, covering every index exactly once:
[{"index": 0, "score": 0.85, "remarks": "one or two sentences on why this matches or misses the interests"}]

The score is a float between 0.0 (irrelevant) and 1.0 (exactly on topic). Do not include any text outside the JSON array.`))

// promptPaper is one paper as rendered into the prompt.
type promptPaper struct {
	Index    int
	Title    string
	Abstract string
}

// buildPrompt renders the scoring prompt for one batch.
func buildPrompt(profile types.UserProfile, batch []types.Paper) (string, error) {
	papers := make([]promptPaper, len(batch))
	for i, p := range batch {
		papers[i] = promptPaper{Index: i, Title: p.Title, Abstract: p.Abstract}
	}

	profileText := strings.TrimSpace(profile.Raw)
	if profileText == "" {
		profileText = strings.Join(profile.Interests, "\n")
	}

	var buf bytes.Buffer
	err := scoringPromptTmpl.Execute(&buf, struct {
		Profile    string
		Exclusions []string
		Papers     []promptPaper
	}{
		Profile:    profileText,
		Exclusions: profile.Exclusions,
		Papers:     papers,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

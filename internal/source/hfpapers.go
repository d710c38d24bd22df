// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/paper-curator/internal/httputil"
	"github.com/pdiddy/paper-curator/pkg/types"
)

// hfAPIBase is the Hugging Face daily-papers endpoint. Declared as a var
// so tests can substitute an httptest server.
var hfAPIBase = "https://huggingface.co/api/daily_papers"

// HFPapersClient lists the Hugging Face daily papers. The API is keyed by
// calendar day, so one request is issued per day in the window.
type HFPapersClient struct {
	Client *http.Client
}

// Name returns the source identifier.
func (c *HFPapersClient) Name() types.Source { return types.SourceHuggingFace }

// Fetch retrieves the daily-papers listing for each day in the window.
// Days without a listing yield 404 and are treated as empty. Entries
// missing an identifier or title are skipped and counted.
func (c *HFPapersClient) Fetch(ctx context.Context, window Window, cfg types.SourcesConfig) (FetchOutput, error) {
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	var out FetchOutput
	for _, day := range window.Days() {
		entries, err := c.fetchDay(ctx, client, day.Format("2006-01-02"), cfg)
		if err != nil {
			return FetchOutput{}, fmt.Errorf("Hugging Face daily papers for %s: %w", day.Format("2006-01-02"), err)
		}

		for _, e := range entries {
			p := e.Paper
			if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Title) == "" {
				out.Skipped++
				continue
			}

			published := p.PublishedAt
			if published == "" {
				published = e.PublishedAt
			}

			rec := types.RawRecord{
				Source:     types.SourceHuggingFace,
				Identifier: p.ID,
				Title:      p.Title,
				Summary:    p.Summary,
				Published:  published,
				URL:        "https://huggingface.co/papers/" + p.ID,
				// HF daily-papers IDs are arXiv IDs; carry the cross-reference.
				ArxivID: StripArxivVersion(p.ID),
			}
			for _, a := range p.Authors {
				rec.Authors = append(rec.Authors, strings.TrimSpace(a.Name))
			}

			out.Records = append(out.Records, rec)
		}
	}
	return out, nil
}

// fetchDay issues one daily-papers request and decodes the listing.
func (c *HFPapersClient) fetchDay(ctx context.Context, client *http.Client, date string, cfg types.SourcesConfig) ([]hfEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hfAPIBase+"?date="+date, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if cfg.HuggingFaceToken != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.HuggingFaceToken)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var entries []hfEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return entries, nil
}

// Hugging Face daily-papers JSON structures.
type hfEntry struct {
	Paper       hfPaper `json:"paper"`
	PublishedAt string  `json:"publishedAt"`
}

type hfPaper struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	PublishedAt string     `json:"publishedAt"`
	Authors     []hfAuthor `json:"authors"`
	Upvotes     int        `json:"upvotes"`
}

type hfAuthor struct {
	Name string `json:"name"`
}

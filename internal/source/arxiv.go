// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/paper-curator/internal/httputil"
	"github.com/pdiddy/paper-curator/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// arxivDateFmt is the timestamp format arXiv expects in submittedDate ranges.
const arxivDateFmt = "200601021504"

// ArxivClient lists recent submissions from the arXiv API.
type ArxivClient struct {
	Client *http.Client
}

// Name returns the source identifier.
func (c *ArxivClient) Name() types.Source { return types.SourceArxiv }

// Fetch queries arXiv for papers submitted within the window, newest first.
// Entries missing an identifier or title are skipped and counted.
func (c *ArxivClient) Fetch(ctx context.Context, window Window, cfg types.SourcesConfig) (FetchOutput, error) {
	maxResults := cfg.MaxPerSource
	if maxResults <= 0 {
		maxResults = 200
	}

	url := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=submittedDate&sortOrder=descending",
		arxivAPIBase, buildArxivQuery(window, cfg.ArxivCategories), maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return FetchOutput{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return FetchOutput{}, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return FetchOutput{}, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return FetchOutput{}, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var out FetchOutput
	for _, entry := range feed.Entries {
		arxivID := ExtractArxivID(entry.ID)
		if arxivID == "" || strings.TrimSpace(entry.Title) == "" {
			out.Skipped++
			continue
		}

		// arXiv over-returns around the range boundary; re-check the window
		// when the timestamp parses. Unparsable timestamps pass through for
		// the normalizer to reject and count.
		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil && !window.Contains(t) {
			continue
		}

		rec := types.RawRecord{
			Source:     types.SourceArxiv,
			Identifier: arxivID,
			Title:      entry.Title,
			Summary:    entry.Summary,
			Published:  entry.Published,
			URL:        "https://arxiv.org/abs/" + arxivID,
			ArxivID:    arxivID,
		}
		for _, a := range entry.Authors {
			rec.Authors = append(rec.Authors, strings.TrimSpace(a.Name))
		}

		out.Records = append(out.Records, rec)
	}
	return out, nil
}

// buildArxivQuery constructs the search_query parameter: an OR over the
// configured categories, restricted to the submission window.
func buildArxivQuery(window Window, categories []string) string {
	dateRange := fmt.Sprintf("submittedDate:[%s+TO+%s]",
		window.From.UTC().Format(arxivDateFmt), window.To.UTC().Format(arxivDateFmt))

	if len(categories) == 0 {
		return dateRange
	}

	var cats []string
	for _, c := range categories {
		cats = append(cats, "cat:"+c)
	}
	return "%28" + strings.Join(cats, "+OR+") + "%29+AND+" + dateRange
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// ExtractArxivID pulls the arXiv ID from an abs URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041"). The version
// suffix is stripped so the same paper matches across announcements.
func ExtractArxivID(idURL string) string {
	const prefix = "/abs/"
	id := idURL
	if idx := strings.Index(idURL, prefix); idx >= 0 {
		id = idURL[idx+len(prefix):]
	} else if strings.Contains(idURL, "/") {
		return ""
	}
	return StripArxivVersion(id)
}

// StripArxivVersion removes a trailing version suffix ("v1", "v2") from an
// arXiv ID.
func StripArxivVersion(id string) string {
	vIdx := strings.LastIndex(id, "v")
	if vIdx <= 0 || vIdx == len(id)-1 {
		return id
	}
	for _, r := range id[vIdx+1:] {
		if r < '0' || r > '9' {
			return id
		}
	}
	return id[:vIdx]
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/paper-curator/pkg/types"
)

// FeedClient pulls papers from configured RSS/Atom feeds (journal and lab
// feeds). It is the catch-all variant for sources without a dedicated API.
type FeedClient struct {
	Client *http.Client
}

// Name returns the source identifier.
func (c *FeedClient) Name() types.Source { return types.SourceRSS }

// Fetch parses every configured feed and keeps items published within the
// window. A single failing feed is skipped with its error noted; the
// client reports unavailable only when every feed fails.
func (c *FeedClient) Fetch(ctx context.Context, window Window, cfg types.SourcesConfig) (FetchOutput, error) {
	if len(cfg.FeedURLs) == 0 {
		return FetchOutput{}, fmt.Errorf("no feed URLs configured")
	}

	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = cfg.UserAgent

	var out FetchOutput
	var feedErrs []string
	failed := 0

	for _, feedURL := range cfg.FeedURLs {
		feed, err := parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			failed++
			feedErrs = append(feedErrs, fmt.Sprintf("%s: %v", feedURL, err))
			continue
		}

		for _, item := range feed.Items {
			if item == nil || strings.TrimSpace(item.Title) == "" || strings.TrimSpace(item.Link) == "" {
				out.Skipped++
				continue
			}

			published, parsed := itemPublished(item)
			if parsed != nil && !window.Contains(*parsed) {
				continue
			}

			identifier := item.GUID
			if identifier == "" {
				identifier = item.Link
			}

			rec := types.RawRecord{
				Source:     types.SourceRSS,
				Identifier: identifier,
				Title:      item.Title,
				Summary:    itemSummary(item),
				Published:  published,
				URL:        item.Link,
			}
			for _, a := range item.Authors {
				if a != nil && a.Name != "" {
					rec.Authors = append(rec.Authors, a.Name)
				}
			}

			out.Records = append(out.Records, rec)
		}
	}

	if failed == len(cfg.FeedURLs) {
		return FetchOutput{}, fmt.Errorf("all %d feeds failed: %s", failed, strings.Join(feedErrs, "; "))
	}
	return out, nil
}

// itemPublished returns the item's publication timestamp string and, when
// gofeed already parsed it, the parsed time.
func itemPublished(item *gofeed.Item) (string, *time.Time) {
	if item.Published != "" {
		return item.Published, item.PublishedParsed
	}
	return item.Updated, item.UpdatedParsed
}

// itemSummary prefers the description and falls back to content.
func itemSummary(item *gofeed.Item) string {
	if strings.TrimSpace(item.Description) != "" {
		return item.Description
	}
	return item.Content
}

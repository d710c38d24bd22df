// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize maps source-specific records into the common Paper
// representation. Normalize is a pure function; records that fail it are
// counted as malformed by the caller and never abort a run.
package normalize

import (
	"fmt"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/pdiddy/paper-curator/internal/source"
	"github.com/pdiddy/paper-curator/pkg/types"
)

// Normalize converts a RawRecord into a Paper. It fails when a required
// field is absent or the publication timestamp does not parse. Text is
// trimmed but author-supplied casing in title and abstract is preserved;
// only the matching key (NormID) is canonicalized.
func Normalize(rec types.RawRecord) (types.Paper, error) {
	identifier := strings.TrimSpace(rec.Identifier)
	if identifier == "" {
		return types.Paper{}, fmt.Errorf("%s record: missing identifier", rec.Source)
	}

	title := collapseSpace(rec.Title)
	if title == "" {
		return types.Paper{}, fmt.Errorf("%s record %s: missing title", rec.Source, identifier)
	}

	abstract := strings.TrimSpace(rec.Summary)
	if abstract == "" {
		return types.Paper{}, fmt.Errorf("%s record %s: missing abstract", rec.Source, identifier)
	}

	url := strings.TrimSpace(rec.URL)
	if url == "" {
		return types.Paper{}, fmt.Errorf("%s record %s: missing URL", rec.Source, identifier)
	}

	if strings.TrimSpace(rec.Published) == "" {
		return types.Paper{}, fmt.Errorf("%s record %s: missing publication timestamp", rec.Source, identifier)
	}
	publishedAt, err := dateparse.ParseAny(strings.TrimSpace(rec.Published))
	if err != nil {
		return types.Paper{}, fmt.Errorf("%s record %s: unparsable timestamp %q: %w",
			rec.Source, identifier, rec.Published, err)
	}

	var authors []string
	for _, a := range rec.Authors {
		if name := collapseSpace(a); name != "" {
			authors = append(authors, name)
		}
	}

	return types.Paper{
		Identifier:  identifier,
		NormID:      normID(rec, identifier),
		Title:       title,
		Abstract:    abstract,
		Authors:     authors,
		Source:      rec.Source,
		PublishedAt: publishedAt.UTC(),
		URL:         url,
	}, nil
}

// normID derives the cross-source matching key. An arXiv cross-reference
// wins over the source-native identifier; feed GUIDs carry no cross-source
// meaning and produce no key.
func normID(rec types.RawRecord, identifier string) string {
	if rec.ArxivID != "" {
		return source.StripArxivVersion(strings.ToLower(strings.TrimSpace(rec.ArxivID)))
	}
	if rec.Source == types.SourceRSS {
		return ""
	}
	return source.StripArxivVersion(strings.ToLower(identifier))
}

// collapseSpace trims and collapses internal whitespace runs. arXiv titles
// arrive with embedded newlines and indentation.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/paper-curator/pkg/types"
)

func testSourcesCfg() types.SourcesConfig {
	return types.SourcesConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "test/0.1",
		},
		MaxPerSource: 50,
	}
}

func testWindow() Window {
	to := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	return Window{From: to.AddDate(0, 0, -3), To: to}
}

const arxivFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2608.11111v1</id>
    <title>Sparse Attention  at Scale</title>
    <summary>We study sparse attention.</summary>
    <published>2026-08-26T10:00:00Z</published>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
  </entry>
  <entry>
    <id></id>
    <title>Broken entry without identifier</title>
    <summary>No ID.</summary>
    <published>2026-08-26T11:00:00Z</published>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2601.00001v2</id>
    <title>Too old for the window</title>
    <summary>Published outside the window.</summary>
    <published>2026-01-01T00:00:00Z</published>
  </entry>
</feed>`

func TestArxivFetch(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, arxivFeedXML)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	client := &ArxivClient{Client: ts.Client()}
	out, err := client.Fetch(context.Background(), testWindow(), testSourcesCfg())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(out.Records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(out.Records))
	}
	if out.Skipped != 1 {
		t.Errorf("skipped = %d, want 1 (entry without identifier)", out.Skipped)
	}

	rec := out.Records[0]
	if rec.Identifier != "2608.11111" {
		t.Errorf("identifier = %q, want version suffix stripped", rec.Identifier)
	}
	if rec.Source != types.SourceArxiv {
		t.Errorf("source = %q, want arxiv", rec.Source)
	}
	if rec.ArxivID != "2608.11111" {
		t.Errorf("arxiv cross-ref = %q, want 2608.11111", rec.ArxivID)
	}
	if len(rec.Authors) != 2 || rec.Authors[0] != "Ada Lovelace" {
		t.Errorf("authors = %v", rec.Authors)
	}
	if rec.URL != "https://arxiv.org/abs/2608.11111" {
		t.Errorf("url = %q", rec.URL)
	}

	if !strings.Contains(gotQuery, "submittedDate") {
		t.Errorf("query %q should restrict the submission window", gotQuery)
	}
	if !strings.Contains(gotQuery, "sortBy=submittedDate") {
		t.Errorf("query %q should sort by submission date", gotQuery)
	}
}

func TestArxivFetchServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	client := &ArxivClient{Client: ts.Client()}
	_, err := client.Fetch(context.Background(), testWindow(), testSourcesCfg())
	if err == nil {
		t.Fatal("expected error for HTTP 400")
	}
}

func TestBuildArxivQuery(t *testing.T) {
	w := testWindow()

	q := buildArxivQuery(w, nil)
	if !strings.HasPrefix(q, "submittedDate:[") {
		t.Errorf("query without categories = %q", q)
	}

	q = buildArxivQuery(w, []string{"cs.LG", "cs.CL"})
	if !strings.Contains(q, "cat:cs.LG+OR+cat:cs.CL") {
		t.Errorf("query = %q, want category disjunction", q)
	}
	if !strings.Contains(q, "+AND+submittedDate:[") {
		t.Errorf("query = %q, want date conjunction", q)
	}
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"http://arxiv.org/abs/2301.07041", "2301.07041"},
		{"2301.07041v12", "2301.07041"},
		{"2301.07041", "2301.07041"},
		{"http://example.com/nothing", ""},
	}
	for _, tt := range tests {
		if got := ExtractArxivID(tt.in); got != tt.want {
			t.Errorf("ExtractArxivID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripArxivVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2301.07041v1", "2301.07041"},
		{"2301.07041v10", "2301.07041"},
		{"2301.07041", "2301.07041"},
		{"v1", "v1"},
		{"cond-mat/9901001v2", "cond-mat/9901001"},
	}
	for _, tt := range tests {
		if got := StripArxivVersion(tt.in); got != tt.want {
			t.Errorf("StripArxivVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWindowDays(t *testing.T) {
	w := Window{
		From: time.Date(2026, 8, 25, 14, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
	}
	days := w.Days()
	if len(days) != 3 {
		t.Fatalf("len(days) = %d, want 3", len(days))
	}
	if days[0].Format("2006-01-02") != "2026-08-25" || days[2].Format("2006-01-02") != "2026-08-27" {
		t.Errorf("days = %v", days)
	}
}

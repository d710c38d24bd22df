// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-curator/internal/pipeline"
	"github.com/pdiddy/paper-curator/internal/profile"
	"github.com/pdiddy/paper-curator/internal/report"
	"github.com/pdiddy/paper-curator/internal/score"
	"github.com/pdiddy/paper-curator/internal/secrets"
	"github.com/pdiddy/paper-curator/internal/source"
	"github.com/pdiddy/paper-curator/pkg/types"
)

// decodeByYAMLTag makes viper.Unmarshal match config keys against the
// structs' yaml tags (enable_arxiv, batch_size, ...).
func decodeByYAMLTag(dc *mapstructure.DecoderConfig) {
	dc.TagName = "yaml"
}

var curateCmd = &cobra.Command{
	Use:   "curate",
	Short: "Fetch, dedupe, score, and rank recent papers into a report",
	Long: `Curate runs the full pipeline: it fetches papers published within the
lookback window from the enabled sources, collapses cross-source duplicates,
scores the remaining papers against the preferences file with the configured
model, and writes the ranked report.

The command exits zero whenever a report was produced, even if some sources
or scoring batches failed; those failures appear in the report's run summary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()

		cfg, err := buildConfig(cmd)
		if err != nil {
			return err
		}

		prefsPath, _ := flags.GetString("prefs")
		prof, err := profile.Load(prefsPath)
		if err != nil {
			return err
		}

		backend, err := score.NewBackend(cfg.Scoring)
		if err != nil {
			return err
		}

		days, _ := flags.GetInt("days")
		now := time.Now().UTC()
		window := source.Window{From: now.AddDate(0, 0, -days), To: now}

		timeout, _ := flags.GetDuration("timeout")
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		rep, err := pipeline.Run(ctx, cfg, source.Enabled(cfg.Sources), score.New(backend, cfg.Scoring), prof, window, os.Stderr)
		if err != nil {
			return err
		}

		outputPath, _ := flags.GetString("output")
		asJSON, _ := flags.GetBool("json")
		if err := writeReport(rep, outputPath, asJSON); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report written to %s (%d papers kept)\n", outputPath, rep.Stats.Kept)

		if savePath, _ := flags.GetString("save"); savePath != "" {
			if err := report.WriteReportFile(savePath, rep); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Saved run to %s\n", savePath)
		}
		return nil
	},
}

// buildConfig assembles the pipeline configuration: config-file values
// first, flags override, defaults fill the rest. Credential and source
// selection problems surface here, before any fetching starts.
func buildConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	flags := cmd.Flags()

	var cfg types.PipelineConfig
	// Config-file values; flags below override them. Decode by yaml tag so
	// the config file shares the report file's field names.
	if err := viper.Unmarshal(&cfg, decodeByYAMLTag); err != nil {
		return types.PipelineConfig{}, fmt.Errorf("reading config: %w", err)
	}

	// An explicit --sources wins; otherwise a sources section in the config
	// file is authoritative and the flag default applies only when the
	// config selects nothing.
	if flags.Changed("sources") || !viper.IsSet("sources") {
		sourcesFlag, _ := flags.GetString("sources")
		cfg.Sources.EnableArxiv = false
		cfg.Sources.EnableHuggingFace = false
		for _, name := range strings.Split(sourcesFlag, ",") {
			switch types.Source(strings.TrimSpace(name)) {
			case types.SourceArxiv:
				cfg.Sources.EnableArxiv = true
			case types.SourceHuggingFace:
				cfg.Sources.EnableHuggingFace = true
			case types.SourceRSS:
				// Enabled by configuring feed URLs.
			case "":
			default:
				return types.PipelineConfig{}, fmt.Errorf("unknown source %q (have: arxiv, huggingface, rss)", name)
			}
		}
	}
	if cats, _ := flags.GetStringSlice("categories"); flags.Changed("categories") || len(cfg.Sources.ArxivCategories) == 0 {
		cfg.Sources.ArxivCategories = cats
	}
	if feeds, _ := flags.GetStringSlice("feeds"); len(feeds) > 0 {
		cfg.Sources.FeedURLs = feeds
	}
	cfg.Sources.HuggingFaceToken = secretDefault(secrets.KeyHuggingFace, cfg.Sources.HuggingFaceToken)

	if model, _ := flags.GetString("model"); flags.Changed("model") || cfg.Scoring.Model == "" {
		cfg.Scoring.Model = model
	}
	if provider, _ := flags.GetString("provider"); provider != "" {
		cfg.Scoring.Provider = provider
	}
	cfg.Scoring.APIKey = secretDefault(apiKeyName(cfg.Scoring), cfg.Scoring.APIKey)

	if threshold, _ := flags.GetFloat64("threshold"); flags.Changed("threshold") {
		cfg.Rank.Threshold = threshold
	}
	if maxResults, _ := flags.GetInt("max-results"); maxResults > 0 {
		cfg.Rank.MaxResults = maxResults
	}

	return cfg.WithDefaults(), nil
}

// apiKeyName picks the secrets key for the configured backend.
func apiKeyName(cfg types.ScoringConfig) string {
	if cfg.Provider == "" && strings.HasPrefix(cfg.Model, "claude") {
		return secrets.KeyAnthropic
	}
	return secrets.KeyOpenAI
}

// writeReport renders the report to the output file, text by default.
func writeReport(rep types.Report, path string, asJSON bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if asJSON {
		return report.FormatJSON(rep, f)
	}
	report.FormatText(rep, f)
	return nil
}

// addCurateFlags registers the curate flag set on cmd.
func addCurateFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("model", "m", "claude-sonnet-4-5-20250929", "model identifier for relevance scoring")
	cmd.Flags().StringP("provider", "p", "", "custom OpenAI-compatible provider base URL")
	cmd.Flags().StringP("prefs", "i", "./userprefs.txt", "user preferences file")
	cmd.Flags().StringP("output", "o", "./report.txt", "output report file")
	cmd.Flags().Int("days", 3, "lookback window in days")
	cmd.Flags().Float64("threshold", 0.5, "minimum relevance score to keep a paper")
	cmd.Flags().String("sources", "arxiv,huggingface", "comma-separated sources to query")
	cmd.Flags().StringSlice("categories", []string{"cs.LG", "cs.CL", "cs.AI"}, "arXiv categories to list")
	cmd.Flags().StringSlice("feeds", nil, "RSS/Atom feed URLs for the feed source")
	cmd.Flags().Int("max-results", 0, "cap the report length (0 = unlimited)")
	cmd.Flags().Bool("json", false, "write the report as JSON instead of text")
	cmd.Flags().String("save", "", "also save the full run as a YAML report file")
	cmd.Flags().Duration("timeout", 10*time.Minute, "overall run timeout")
}

func init() {
	addCurateFlags(curateCmd)
	rootCmd.AddCommand(curateCmd)
}

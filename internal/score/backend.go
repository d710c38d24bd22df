// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/paper-curator/pkg/types"
)

// Backend submits one prompt to a model API and returns the raw response
// text. Each provider (Anthropic, OpenAI-compatible) implements this
// interface per the Strategy pattern; the scorer owns batching, retry,
// and response parsing.
type Backend interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// APIError is a non-OK response from a model API. The status code decides
// whether the retry policy considers it transient.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("model API returned %d: %s", e.Status, body)
}

// NewBackend selects a backend from the scoring configuration: a custom
// provider endpoint always gets the OpenAI-compatible client, otherwise
// the model name decides.
func NewBackend(cfg types.ScoringConfig) (Backend, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("no model configured")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for model %q", cfg.Model)
	}

	if cfg.Provider != "" {
		return NewOpenAIBackend(cfg.Provider, cfg.APIKey, cfg.Model, cfg.Timeout), nil
	}
	if strings.HasPrefix(cfg.Model, "claude") {
		return NewClaudeBackend(cfg.APIKey, cfg.Model, cfg.Timeout), nil
	}
	return NewOpenAIBackend("", cfg.APIKey, cfg.Model, cfg.Timeout), nil
}

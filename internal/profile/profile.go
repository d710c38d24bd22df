// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package profile loads the user's interest profile from the preferences
// file: one free-text interest per line, "!"-prefixed lines as exclusions,
// "#" comments and blank lines ignored.
package profile

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/paper-curator/pkg/types"
)

// Load reads and parses the preferences file. Line order is preserved and
// the raw text is retained for the model prompt. A file with no interest
// lines is a configuration error.
func Load(path string) (types.UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.UserProfile{}, fmt.Errorf("reading preferences file: %w", err)
	}
	return Parse(string(data))
}

// Parse builds a UserProfile from preferences text.
func Parse(text string) (types.UserProfile, error) {
	p := types.UserProfile{Raw: strings.TrimSpace(text)}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if excl, ok := strings.CutPrefix(line, "!"); ok {
			if excl = strings.TrimSpace(excl); excl != "" {
				p.Exclusions = append(p.Exclusions, excl)
			}
			continue
		}
		p.Interests = append(p.Interests, line)
	}

	if len(p.Interests) == 0 {
		return types.UserProfile{}, fmt.Errorf("preferences contain no interest lines")
	}
	return p, nil
}

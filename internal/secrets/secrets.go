// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value. Only the keys this project reads are loaded;
// other files are ignored with a warning.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Key names read from the secrets directory.
const (
	// KeyAnthropic authenticates the Claude scoring backend.
	KeyAnthropic = "anthropic-api-key"

	// KeyOpenAI authenticates OpenAI-compatible scoring backends.
	KeyOpenAI = "openai-api-key"

	// KeyHuggingFace raises the Hugging Face daily-papers rate limit.
	KeyHuggingFace = "hf-token"
)

// Known reports whether name is a secret key this project reads.
func Known(name string) bool {
	switch name {
	case KeyAnthropic, KeyOpenAI, KeyHuggingFace:
		return true
	}
	return false
}

// Load reads the known key files in dir and returns a map of filename to
// trimmed contents. A missing directory or missing files are not errors;
// Load returns an empty map. Unreadable or unrecognized files produce a
// warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !Known(name) {
			fmt.Fprintf(os.Stderr, "warning: ignoring unrecognized secret file %s\n", name)
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

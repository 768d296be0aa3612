// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files. Each
// file holds one secret: the file name is the key and the trimmed contents
// are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// Key files read by the pipeline.
const (
	MAGSubscriptionKey = "mag-subscription-key"
	GooglePlacesKey    = "google-places-api-key"
)

// Set maps key names to secret values.
type Set map[string]string

// Load reads every file in dir. A missing directory yields an empty set.
// Dotfiles, subdirectories and empty files are skipped; an unreadable file
// is logged and skipped.
func Load(dir string, logger zerolog.Logger) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	set := make(Set)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn().Err(err).Str("secret", name).Msg("could not read secret")
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			set[name] = value
		}
	}
	return set, nil
}

// Resolve returns configured when it is set, and the secret stored under
// key otherwise.
func (s Set) Resolve(key, configured string) string {
	if configured != "" {
		return configured
	}
	return s[key]
}

// Keys returns the loaded key names in sorted order.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

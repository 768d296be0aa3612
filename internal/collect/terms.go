// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/nestauk/ai-research/pkg/types"
)

// TermsFile is the YAML layout of a terms file:
//
//	terms:
//	  - deep learning
//	  - machine learning
type TermsFile struct {
	Terms []string `yaml:"terms"`
}

// LoadTerms reads the terms listed in a YAML terms file. Blank entries are
// dropped; a file without terms is an error.
func LoadTerms(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading terms file: %w", err)
	}
	var tf TermsFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing terms file %s: %w", path, err)
	}

	var terms []string
	for _, t := range tf.Terms {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("terms file %s lists no terms", path)
	}
	return terms, nil
}

// ResolveTerms returns the terms of cfg: the terms file when one is set,
// the inline list otherwise.
func ResolveTerms(cfg types.MAGConfig) ([]string, error) {
	if cfg.TermsFile != "" {
		return LoadTerms(cfg.TermsFile)
	}
	if len(cfg.Terms) == 0 {
		return nil, fmt.Errorf("no terms configured: set mag.terms or mag.terms_file")
	}
	return cfg.Terms, nil
}

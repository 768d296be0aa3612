// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

// Job is one (year, date window) slice of the paper collection. Window is
// the index into the configured windows.
type Job struct {
	Year   int `yaml:"year"`
	Window int `yaml:"window"`
}

// ManifestEntry records a job whose pages were all fetched and dumped.
type ManifestEntry struct {
	Job         `yaml:",inline"`
	Exprs       []string  `yaml:"exprs"`
	Pages       int       `yaml:"pages"`
	Entities    int       `yaml:"entities"`
	CompletedAt time.Time `yaml:"completed_at"`
}

// Manifest is the on-disk record of completed collection jobs. Rerunning a
// collection skips every job listed here.
type Manifest struct {
	Completed []ManifestEntry `yaml:"completed"`
}

// LoadManifest reads the manifest at path. A missing file is an empty
// manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

// Jobs returns the completed jobs.
func (m *Manifest) Jobs() []Job {
	jobs := make([]Job, len(m.Completed))
	for i, e := range m.Completed {
		jobs[i] = e.Job
	}
	return jobs
}

// Add records a completed job.
func (m *Manifest) Add(e ManifestEntry) {
	m.Completed = append(m.Completed, e)
}

// Save writes the manifest to path atomically.
func (m *Manifest) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	return writeFileAtomic(path, data)
}

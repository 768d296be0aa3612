// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/nestauk/ai-research/internal/mag"
)

// DumpDir stores fetched pages as JSON files, one per page, so that a crash
// mid-collection loses at most the page in flight. Files are named
// <prefix>_<year>_<window>_<batch>_<offset>.json.
type DumpDir struct {
	Dir    string
	Prefix string
}

// PagePath returns the file a page of a collection job batch is written to.
func (d DumpDir) PagePath(job Job, batch, offset int) string {
	return filepath.Join(d.Dir, fmt.Sprintf("%s_%d_%d_%d_%d.json", d.Prefix, job.Year, job.Window, batch, offset))
}

// ManifestPath returns the collection manifest file.
func (d DumpDir) ManifestPath() string {
	return filepath.Join(d.Dir, d.Prefix+"_manifest.yaml")
}

// WritePage writes page to its dump file. The write goes through a temp
// file renamed into place, so readers never see a partial page.
func (d DumpDir) WritePage(job Job, batch int, page mag.Page) (string, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating dump directory: %w", err)
	}
	data, err := json.Marshal(page)
	if err != nil {
		return "", fmt.Errorf("marshaling page: %w", err)
	}
	path := d.PagePath(job, batch, page.Offset)
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// Files lists the page dumps of d.Prefix in lexical order. Files of another
// prefix that happens to start with d.Prefix are not listed. Dumps named
// without a batch index are still listed.
func (d DumpDir) Files() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(d.Dir, d.Prefix+"_*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing dumps: %w", err)
	}
	name := regexp.MustCompile(`^` + regexp.QuoteMeta(d.Prefix) + `_\d+_\d+(_\d+)?_\d+\.json$`)
	var files []string
	for _, m := range matches {
		if name.MatchString(filepath.Base(m)) {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// ReadPage reads one page dump.
func ReadPage(path string) (mag.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return mag.Page{}, err
	}
	var page mag.Page
	if err := json.Unmarshal(data, &page); err != nil {
		return mag.Page{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return page, nil
}

// writeFileAtomic writes data to a temp file in the destination directory
// and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".collect-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", path, closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}

// Package export persists analysis results as JSON documents, one file per
// run, for later auditing or spreadsheet import.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
)

// Exporter writes analysis results into a target directory.
type Exporter struct {
	dir string
}

// New creates an exporter rooted at dir. The directory is created on the
// first export.
func New(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// Export writes the result as an indented JSON file and returns its path.
// Not-computable estimates keep their markers and reasons in the output;
// they are never rewritten as zeros.
func (e *Exporter) Export(result *models.AnalysisResult) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir %s: %w", e.dir, err)
	}

	stamp := result.GeneratedAt
	if stamp.IsZero() {
		stamp = time.Now().UTC()
	}
	name := fmt.Sprintf("%s_%s.json", result.Ticker, stamp.Format("20060102_150405"))
	path := filepath.Join(e.dir, name)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal analysis for %s: %w", result.Ticker, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

package lifecycle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultArtifactDir is the root directory for run artifacts.
const DefaultArtifactDir = "target"

// ArtifactWriter handles writing failure artifacts and run summaries
type ArtifactWriter struct {
	outputDir string
}

// NewArtifactWriter creates a new artifact writer rooted at outputDir
func NewArtifactWriter(outputDir string) *ArtifactWriter {
	if outputDir == "" {
		outputDir = DefaultArtifactDir
	}
	return &ArtifactWriter{
		outputDir: outputDir,
	}
}

// Dir returns the artifact root.
func (w *ArtifactWriter) Dir() string {
	return w.outputDir
}

// ScreenshotDir holds failure screenshots.
func (w *ArtifactWriter) ScreenshotDir() string {
	return filepath.Join(w.outputDir, "screenshots")
}

// TraceDir holds trace archives of failed scenarios.
func (w *ArtifactWriter) TraceDir() string {
	return filepath.Join(w.outputDir, "traces")
}

// Prepare creates the artifact directories.
func (w *ArtifactWriter) Prepare() error {
	for _, dir := range []string{w.outputDir, w.ScreenshotDir(), w.TraceDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
		}
	}
	return nil
}

// ScreenshotPath returns <screenshots>/<sanitized>_<HHMMSS>.png.
func (w *ArtifactWriter) ScreenshotPath(scenario string, at time.Time) string {
	return filepath.Join(w.ScreenshotDir(), Sanitize(scenario)+"_"+timestamp(at)+".png")
}

// TracePath returns <traces>/<sanitized>.zip.
func (w *ArtifactWriter) TracePath(scenario string) string {
	return filepath.Join(w.TraceDir(), Sanitize(scenario)+".zip")
}

// WriteAll writes the JSON and markdown summaries
func (w *ArtifactWriter) WriteAll(summary *Summary) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := w.WriteSummaryJSON(summary); err != nil {
		return fmt.Errorf("failed to write summary JSON: %w", err)
	}

	if err := w.WriteSummaryMarkdown(summary); err != nil {
		return fmt.Errorf("failed to write summary markdown: %w", err)
	}

	return nil
}

// WriteSummaryJSON writes the full run summary as summary.json
func (w *ArtifactWriter) WriteSummaryJSON(summary *Summary) error {
	path := filepath.Join(w.outputDir, "summary.json")

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if writeErr := os.WriteFile(path, data, 0600); writeErr != nil {
		return fmt.Errorf("failed to write summary JSON: %w", writeErr)
	}

	return nil
}

// WriteSummaryMarkdown writes a human-readable summary.md
func (w *ArtifactWriter) WriteSummaryMarkdown(summary *Summary) error {
	path := filepath.Join(w.outputDir, "summary.md")

	var md strings.Builder

	md.WriteString("# UI Acceptance Run Summary\n\n")
	md.WriteString(fmt.Sprintf("**Environment:** %s\n\n", summary.Env))
	md.WriteString(fmt.Sprintf("**Browser:** %s\n\n", summary.Browser))
	md.WriteString(fmt.Sprintf("**Started:** %s\n\n", summary.StartTime.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Duration:** %s\n\n", FormatDuration(summary.Duration)))
	md.WriteString(fmt.Sprintf("**Pass Rate:** %d%%\n\n", summary.PassRate))

	md.WriteString("## Scenarios\n\n")
	for _, result := range summary.Results {
		status := "✅"
		switch result.Status {
		case StatusFailed:
			status = "❌"
		case StatusSkipped:
			status = "⏭"
		}
		md.WriteString(fmt.Sprintf("%s **%s** (%s)\n", status, result.Name, FormatDuration(result.Duration)))
		if result.Error != "" {
			md.WriteString(fmt.Sprintf("   Error: %s\n", strings.ReplaceAll(result.Error, "\n", " ")))
		}
		if result.Screenshot != "" {
			md.WriteString(fmt.Sprintf("   Screenshot: `%s`\n", result.Screenshot))
		}
		if result.Trace != "" {
			md.WriteString(fmt.Sprintf("   Trace: `%s`\n", result.Trace))
		}
	}
	md.WriteString("\n")

	if writeErr := os.WriteFile(path, []byte(md.String()), 0600); writeErr != nil {
		return fmt.Errorf("failed to write summary markdown: %w", writeErr)
	}

	return nil
}

// Status is the outcome of one scenario.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result records the outcome of one scenario
type Result struct {
	Name       string        `json:"name"`
	Tags       []string      `json:"tags,omitempty"`
	Status     Status        `json:"status"`
	Duration   time.Duration `json:"duration"`
	Error      string        `json:"error,omitempty"`
	URL        string        `json:"url,omitempty"`
	Screenshot string        `json:"screenshot,omitempty"`
	Trace      string        `json:"trace,omitempty"`

	// Err is the failure cause; ScreenshotData is the PNG attached to a
	// failed scenario.
	Err            error  `json:"-"`
	ScreenshotData []byte `json:"-"`
}

// Summary contains the totals of a suite run
type Summary struct {
	Env       string        `json:"env"`
	Browser   string        `json:"browser"`
	Total     int           `json:"total"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	PassRate  int           `json:"pass_rate"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Results   []Result      `json:"results"`
}

// Succeeded reports whether no scenario failed.
func (s *Summary) Succeeded() bool {
	return s.Failed == 0
}

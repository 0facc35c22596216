package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/manash/imgedit/internal/workflow"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown export format %q: use json or text", s)
	}
}

// Timestamp renders the filename timestamp shared by exports and
// archives.
func Timestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// Exporter writes aggregated results to a file in the user's Desktop
// directory, falling back to the scratch directory when unavailable.
type Exporter struct {
	outputDir string
	now       func() time.Time
}

func NewExporter() *Exporter {
	return &Exporter{
		outputDir: resolveOutputDir(),
		now:       time.Now,
	}
}

func resolveOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	desktop := filepath.Join(home, "Desktop")
	if info, err := os.Stat(desktop); err == nil && info.IsDir() {
		return desktop
	}
	return os.TempDir()
}

// Export serializes the ordered record list and returns the written
// file's path.
func (e *Exporter) Export(records []workflow.Record, format Format) (string, error) {
	timestamp := Timestamp(e.now())

	var path string
	var data []byte

	switch format {
	case FormatJSON:
		path = filepath.Join(e.outputDir, fmt.Sprintf("image_analysis_%s.json", timestamp))
		encoded, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode results: %w", err)
		}
		data = encoded
	case FormatText:
		path = filepath.Join(e.outputDir, fmt.Sprintf("image_analysis_%s.txt", timestamp))
		data = []byte(renderText(records))
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// renderText produces the fixed block layout: path line, dashed rule,
// response, blank line, double rule.
func renderText(records []workflow.Record) string {
	var b strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&b, "Image: %s\n", rec.ImagePath)
		b.WriteString(strings.Repeat("-", 50) + "\n")
		fmt.Fprintf(&b, "%s\n\n", rec.Response)
		b.WriteString(strings.Repeat("=", 70) + "\n\n")
	}
	return b.String()
}

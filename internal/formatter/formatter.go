// package formatter reads track lists and renders conversion results as text, JSON, CSV, or Markdown
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/traxyt/internal/models"
	"github.com/desertthunder/traxyt/internal/services"
	"github.com/desertthunder/traxyt/internal/shared"
)

// Format names an export rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts a format name or its common alias (txt, md).
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (text, json, csv, markdown)", shared.ErrInvalidArgument, name)
	}
}

// Export renders result in the given format.
func Export(result *models.ConversionResult, format Format) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: nil result", shared.ErrInvalidInput)
	}

	switch format {
	case FormatText:
		return ExportToText(result)
	case FormatJSON:
		return shared.MarshalJSON(result, true)
	case FormatCSV:
		return ExportToCSV(result)
	case FormatMarkdown:
		return ExportToMarkdown(result, time.Time{})
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// ExportToCSV converts a result to CSV with columns: Index, Status, Query, VideoID, VideoTitle, VideoDuration, DurationDiff, URL
func ExportToCSV(result *models.ConversionResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Index", "Status", "Query", "VideoID", "VideoTitle", "VideoDuration", "DurationDiff", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, outcome := range result.Results {
		var duration, url string
		if outcome.VideoID != "" {
			duration = shared.FormatDuration(outcome.VideoDuration)
			url = services.WatchURL(outcome.VideoID)
		}

		record := []string{
			strconv.Itoa(outcome.Index + 1),
			string(outcome.Status),
			outcome.Query,
			outcome.VideoID,
			outcome.VideoTitle,
			duration,
			strconv.Itoa(outcome.DurationDiff),
			url,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a result to Markdown. A non-zero createdAt is printed under the heading.
func ExportToMarkdown(result *models.ConversionResult, createdAt time.Time) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Chart Playlist\n\n")
	if !createdAt.IsZero() {
		buf.WriteString(fmt.Sprintf("_Converted %s_\n\n", createdAt.Local().Format(time.DateTime)))
	}

	buf.WriteString(fmt.Sprintf("**Found**: %d of %d\n", result.Found, result.Total))
	if url := result.URL(); url != "" {
		buf.WriteString(fmt.Sprintf("**Playlist**: [Open on YouTube](%s)\n\n", url))
	} else {
		buf.WriteString("**Playlist**: none\n\n")
	}

	buf.WriteString("## Tracks\n\n")
	for _, outcome := range result.Results {
		n := outcome.Index + 1
		switch outcome.Status {
		case models.StatusFound:
			buf.WriteString(fmt.Sprintf("%d. [%s](%s) [%s]\n", n, escapeMarkdown(outcome.VideoTitle), services.WatchURL(outcome.VideoID), shared.FormatDuration(outcome.VideoDuration)))
		case models.StatusSkipped:
			buf.WriteString(fmt.Sprintf("%d. _skipped (%s)_\n", n, outcome.Reason))
		default:
			buf.WriteString(fmt.Sprintf("%d. ~~%s~~ not found\n", n, escapeMarkdown(outcome.Query)))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a result to plain text
func ExportToText(result *models.ConversionResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Found: %d/%d\n", result.Found, result.Total))
	if url := result.URL(); url != "" {
		buf.WriteString(fmt.Sprintf("Playlist: %s\n", url))
	}
	buf.WriteString("\n")

	for _, outcome := range result.Results {
		n := outcome.Index + 1
		switch outcome.Status {
		case models.StatusFound:
			line := fmt.Sprintf("%d. [found] %s (%s)", n, outcome.VideoTitle, outcome.VideoID)
			if outcome.DurationDiff > 0 {
				line += fmt.Sprintf(" ±%ds", outcome.DurationDiff)
			}
			buf.WriteString(line + "\n")
		case models.StatusSkipped:
			buf.WriteString(fmt.Sprintf("%d. [skipped] %s\n", n, outcome.Reason))
		default:
			buf.WriteString(fmt.Sprintf("%d. [not found] %s\n", n, outcome.Query))
		}
	}

	return buf.Bytes(), nil
}

// WriteExport renders result in format and writes it to path.
//
// Defaults to traxyt_{epoch}.{ext} when path is empty. Returns the path written.
func WriteExport(result *models.ConversionResult, format Format, path string) (string, error) {
	data, err := Export(result, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = fmt.Sprintf("traxyt_%d.%s", time.Now().Unix(), format.Extension())
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// Extension returns the file extension used for f.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	case FormatMarkdown:
		return "md"
	default:
		return "txt"
	}
}

func escapeMarkdown(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`, "*", `\*`, "_", `\_`).Replace(s)
}

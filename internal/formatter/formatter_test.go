package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/traxyt/internal/models"
	"github.com/desertthunder/traxyt/internal/shared"
	th "github.com/desertthunder/traxyt/internal/testing"
)

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(th.SampleResult())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) != 4 {
			t.Fatalf("expected header and 3 rows, got %d lines", len(lines))
		}

		if !strings.Contains(lines[0], "Index,Status,Query,VideoID,VideoTitle,VideoDuration,DurationDiff,URL") {
			t.Errorf("CSV missing headers, got: %s", lines[0])
		}
		if !strings.Contains(lines[1], "https://www.youtube.com/watch?v=aaa") {
			t.Errorf("CSV missing watch url, got: %s", lines[1])
		}
		if !strings.Contains(lines[1], "3:30") {
			t.Errorf("CSV missing formatted duration, got: %s", lines[1])
		}
		if !strings.HasPrefix(lines[2], "2,skipped") {
			t.Errorf("CSV missing skipped row, got: %s", lines[2])
		}
		if !strings.HasPrefix(lines[3], "3,not_found,Artist C - Three") {
			t.Errorf("CSV missing not found row, got: %s", lines[3])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		data, err := ExportToMarkdown(th.SampleResult(), created)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Chart Playlist",
			"_Converted ",
			"**Found**: 1 of 3",
			"[Open on YouTube](https://youtube.com/watch_videos?video_ids=aaa)",
			"1. [Artist A - One](https://www.youtube.com/watch?v=aaa) [3:30]",
			"2. _skipped (no query)_",
			"3. ~~Artist C - Three~~ not found",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown without playlist", func(t *testing.T) {
		data, err := ExportToMarkdown(&models.ConversionResult{Total: 1}, time.Time{})
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		if strings.Contains(string(data), "_Converted") {
			t.Error("expected no timestamp line for zero time")
		}
		if !strings.Contains(string(data), "**Playlist**: none") {
			t.Errorf("expected no playlist line, got:\n%s", data)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(th.SampleResult())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"Found: 1/3",
			"Playlist: https://youtube.com/watch_videos?video_ids=aaa",
			"1. [found] Artist A - One (aaa) ±10s",
			"2. [skipped] no query",
			"3. [not found] Artist C - Three",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("text missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("Export JSON", func(t *testing.T) {
		data, err := Export(th.SampleResult(), FormatJSON)
		if err != nil {
			t.Fatalf("Export failed: %v", err)
		}

		var decoded models.ConversionResult
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("expected valid JSON, got %v", err)
		}
		if decoded.URL() != th.SampleResult().URL() || len(decoded.Results) != 3 {
			t.Errorf("unexpected decoded result %+v", decoded)
		}
		if !strings.Contains(string(data), `"playlistUrl"`) {
			t.Error("expected camelCase keys")
		}
	})

	t.Run("Export errors", func(t *testing.T) {
		if _, err := Export(nil, FormatText); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if _, err := Export(th.SampleResult(), Format("yaml")); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"txt", FormatText, false},
		{"JSON", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWriters(t *testing.T) {
	t.Run("WriteExport", func(t *testing.T) {
		t.Run("With Path", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.md")
			written, err := WriteExport(th.SampleResult(), FormatMarkdown, path)
			if err != nil {
				t.Fatalf("WriteExport failed: %v", err)
			}
			if written != path {
				t.Errorf("expected %s, got %s", path, written)
			}
			th.AssertFileExists(t, path)
			if content := th.MustReadFile(t, path); !strings.Contains(content, "# Chart Playlist") {
				t.Errorf("unexpected content:\n%s", content)
			}
		})

		t.Run("Default Path", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			written, err := WriteExport(th.SampleResult(), FormatCSV, "")
			if err != nil {
				t.Fatalf("WriteExport failed: %v", err)
			}
			if !strings.HasPrefix(written, "traxyt_") || !strings.HasSuffix(written, ".csv") {
				t.Errorf("unexpected default path %s", written)
			}
			th.AssertFileExists(t, written)
		})

		t.Run("Unwritable Path", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing", "out.txt")
			if _, err := WriteExport(th.SampleResult(), FormatText, path); err == nil {
				t.Error("expected error writing into a missing directory")
			}
		})
	})
}

// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertthunder/traxyt/internal/models"
	"github.com/desertthunder/traxyt/internal/shared"
)

// MockResolver is a test double for [tasks.Resolver] and the search half of [services.Searcher].
//
// Videos are looked up by exact query; unknown queries resolve to nil.
type MockResolver struct {
	mu     sync.Mutex
	Videos map[string]*models.VideoCandidate
	Calls  []string
}

func (m *MockResolver) Resolve(ctx context.Context, query string, target int) *models.VideoCandidate {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, query)
	return m.Videos[query]
}

func (m *MockResolver) Candidates(ctx context.Context, query string) ([]models.VideoCandidate, error) {
	if v := m.Resolve(ctx, query, 0); v != nil {
		return []models.VideoCandidate{*v}, nil
	}
	return nil, shared.ErrNoCandidates
}

func (m *MockResolver) Name() string { return "mock" }

// SampleTracks returns three chart tracks; the second has no searchable fields.
func SampleTracks() []models.Track {
	return []models.Track{
		{Position: "1", Artists: "Artist A", Title: "One", Version: "Original Mix", DurationSeconds: 200},
		{Position: "2"},
		{Position: "3", Artists: "Artist C", Title: "Three", DurationSeconds: 300},
	}
}

// SampleVideos resolves the searchable queries of [SampleTracks].
func SampleVideos() map[string]*models.VideoCandidate {
	return map[string]*models.VideoCandidate{
		"Artist A - One - Original Mix": {ID: "aaa", Title: "Artist A - One", Duration: 210, DurationText: "3:30"},
		"Artist C - Three":              {ID: "ccc", Title: "Artist C - Three", Duration: 300, DurationText: "5:00"},
	}
}

// SampleResult is a finished conversion with one found, one skipped and one missing track.
func SampleResult() *models.ConversionResult {
	url := "https://youtube.com/watch_videos?video_ids=aaa"
	return &models.ConversionResult{
		PlaylistURL: &url,
		Found:       1,
		Total:       3,
		Results: []models.TrackOutcome{
			{Index: 0, Status: models.StatusFound, Query: "Artist A - One", VideoID: "aaa", VideoTitle: "Artist A - One", VideoDuration: 210, DurationDiff: 10},
			{Index: 1, Status: models.StatusSkipped, Reason: "no query"},
			{Index: 2, Status: models.StatusNotFound, Query: "Artist C - Three"},
		},
	}
}

// MustWriteFile writes content to name inside dir and returns the full path.
func MustWriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/traxyt/internal/shared"
)

// Track is one chart entry. It carries no identity beyond its position in the input list.
type Track struct {
	ID              string `json:"id,omitempty"`
	Position        string `json:"position"`
	Title           string `json:"title"`
	Version         string `json:"version"`
	DurationSeconds int    `json:"durationSeconds"`
	Artists         string `json:"artists"`
	Label           string `json:"label"`
	Genre           string `json:"genre"`
}

// Query joins the non-empty artists, title, and version with " - ".
//
// An empty query means the track is never searched.
func (t Track) Query() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{t.Artists, t.Title, t.Version} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " - ")
}

// DurationText formats the track duration as "m:ss".
func (t Track) DurationText() string {
	return shared.FormatDuration(t.DurationSeconds)
}

// Candidate duration bounds, in seconds. Clips and long mixes fall outside.
const (
	MinCandidateDuration = 60
	MaxCandidateDuration = 900
)

// VideoCandidate is one admissible video from a search results page.
type VideoCandidate struct {
	ID           string `json:"videoId"`
	Title        string `json:"title"`
	Duration     int    `json:"duration"`
	DurationText string `json:"durationText"`
	Channel      string `json:"channel"`
	ViewCount    string `json:"viewCount"`
}

// Status classifies a track during and after a run.
type Status string

const (
	StatusSearching Status = "searching"
	StatusSkipped   Status = "skipped"
	StatusFound     Status = "found"
	StatusNotFound  Status = "not_found"
)

// TrackOutcome is produced exactly once per input track, in input order.
type TrackOutcome struct {
	Index         int    `json:"index"`
	Status        Status `json:"status"`
	Reason        string `json:"reason,omitempty"`
	Query         string `json:"query,omitempty"`
	VideoID       string `json:"videoId,omitempty"`
	VideoTitle    string `json:"videoTitle,omitempty"`
	VideoDuration int    `json:"videoDuration,omitempty"`
	DurationDiff  int    `json:"durationDiff"`
}

// ConversionResult aggregates a finished run. PlaylistURL is nil iff Found is zero.
type ConversionResult struct {
	PlaylistURL *string        `json:"playlistUrl"`
	Found       int            `json:"found"`
	Total       int            `json:"total"`
	Results     []TrackOutcome `json:"results"`
}

// URL returns the playlist link or "" when nothing was found.
func (r *ConversionResult) URL() string {
	if r == nil || r.PlaylistURL == nil {
		return ""
	}
	return *r.PlaylistURL
}

// Count returns the number of outcomes with the given status.
func (r *ConversionResult) Count(status Status) int {
	n := 0
	for _, o := range r.Results {
		if o.Status == status {
			n++
		}
	}
	return n
}

// ProgressEvent is emitted once per status change of a track.
type ProgressEvent struct {
	Current      int    `json:"current"`
	Total        int    `json:"total"`
	Track        Track  `json:"track"`
	Status       Status `json:"status"`
	Query        string `json:"query,omitempty"`
	VideoID      string `json:"videoId,omitempty"`
	VideoTitle   string `json:"videoTitle,omitempty"`
	DurationDiff int    `json:"durationDiff"`
}

// RunPhase is the lifecycle position of the conversion slot.
type RunPhase int

const (
	PhaseIdle RunPhase = iota
	PhaseRunning
	PhaseCompleted
	PhaseFailed
)

func (p RunPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	default:
		return ""
	}
}

// MarshalText encodes the phase by name.
func (p RunPhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name written by [RunPhase.MarshalText].
func (p *RunPhase) UnmarshalText(text []byte) error {
	for _, phase := range []RunPhase{PhaseIdle, PhaseRunning, PhaseCompleted, PhaseFailed} {
		if phase.String() == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown run phase %q", text)
}

// ConversionState is a snapshot of the conversion slot.
type ConversionState struct {
	Phase        RunPhase          `json:"phase"`
	IsRunning    bool              `json:"isRunning"`
	RunID        string            `json:"runId,omitempty"`
	Current      int               `json:"current"`
	Total        int               `json:"total"`
	LastProgress *ProgressEvent    `json:"lastProgress"`
	Result       *ConversionResult `json:"result"`
	Error        string            `json:"error,omitempty"`
}

// StoredResult is a persisted [ConversionResult] and the time it was saved.
type StoredResult struct {
	ID        string           `json:"id"`
	Sequence  int              `json:"sequence"`
	RunID     string           `json:"runId"`
	Result    ConversionResult `json:"result"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Timestamp returns the creation time in Unix milliseconds.
func (s *StoredResult) Timestamp() int64 {
	return s.CreatedAt.UnixMilli()
}

// SearchLogEntry records the lookup made for one track of a stored run.
type SearchLogEntry struct {
	Position     int    `json:"position"`
	Query        string `json:"query"`
	Status       Status `json:"status"`
	VideoID      string `json:"videoId,omitempty"`
	DurationDiff int    `json:"durationDiff"`
}

// EventType names an outbound UI message.
type EventType string

const (
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Event is pushed to UI listeners. Exactly one payload field is set, matching Type.
type Event struct {
	Type     EventType         `json:"type"`
	RunID    string            `json:"runId,omitempty"`
	Progress *ProgressEvent    `json:"progress,omitempty"`
	Result   *ConversionResult `json:"result,omitempty"`
	Message  string            `json:"message,omitempty"`
}

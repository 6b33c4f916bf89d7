package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTrack_Query(t *testing.T) {
	tests := []struct {
		name  string
		track Track
		want  string
	}{
		{
			name:  "all parts",
			track: Track{Artists: "Kerri Chandler", Title: "Rain", Version: "Original Mix"},
			want:  "Kerri Chandler - Rain - Original Mix",
		},
		{
			name:  "missing version",
			track: Track{Artists: "Kerri Chandler", Title: "Rain"},
			want:  "Kerri Chandler - Rain",
		},
		{
			name:  "title only",
			track: Track{Title: "Rain"},
			want:  "Rain",
		},
		{
			name:  "empty",
			track: Track{Position: "2", Label: "Madhouse", DurationSeconds: 300},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.track.Query(); got != tt.want {
				t.Errorf("Query() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConversionResult(t *testing.T) {
	t.Run("nil playlist URL encodes as null", func(t *testing.T) {
		data, err := json.Marshal(ConversionResult{Total: 2, Results: []TrackOutcome{}})
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if !strings.Contains(string(data), `"playlistUrl":null`) {
			t.Errorf("expected null playlistUrl, got %s", data)
		}
	})

	t.Run("exact match keeps durationDiff", func(t *testing.T) {
		outcome, err := json.Marshal(TrackOutcome{Index: 0, Status: StatusFound, VideoID: "a"})
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if !strings.Contains(string(outcome), `"durationDiff":0`) {
			t.Errorf("expected durationDiff on outcome, got %s", outcome)
		}

		event, err := json.Marshal(ProgressEvent{Current: 1, Total: 1, Status: StatusFound, VideoID: "a"})
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if !strings.Contains(string(event), `"durationDiff":0`) {
			t.Errorf("expected durationDiff on progress event, got %s", event)
		}
	})

	t.Run("URL and Count", func(t *testing.T) {
		url := "https://youtube.com/watch_videos?video_ids=a"
		r := &ConversionResult{
			PlaylistURL: &url,
			Results: []TrackOutcome{
				{Index: 0, Status: StatusFound},
				{Index: 1, Status: StatusSkipped},
				{Index: 2, Status: StatusFound},
			},
		}
		if r.URL() != url {
			t.Errorf("URL() = %q", r.URL())
		}
		if r.Count(StatusFound) != 2 || r.Count(StatusSkipped) != 1 || r.Count(StatusNotFound) != 0 {
			t.Errorf("unexpected counts")
		}

		var empty *ConversionResult
		if empty.URL() != "" {
			t.Error("nil result should have empty URL")
		}
	})
}

func TestRunPhase(t *testing.T) {
	data, err := json.Marshal(ConversionState{Phase: PhaseRunning, IsRunning: true})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"phase":"running"`) {
		t.Errorf("expected phase by name, got %s", data)
	}
	if RunPhase(42).String() != "" {
		t.Error("unknown phase should have empty name")
	}

	var decoded ConversionState
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Phase != PhaseRunning {
		t.Errorf("expected running after round trip, got %v", decoded.Phase)
	}

	var p RunPhase
	if err := p.UnmarshalText([]byte("paused")); err == nil {
		t.Error("expected error for unknown phase name")
	}
}

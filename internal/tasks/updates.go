package tasks

import (
	"fmt"

	"github.com/desertthunder/traxyt/internal/models"
)

func skippedUpdate(current, total int, track models.Track) models.ProgressEvent {
	return models.ProgressEvent{
		Current: current,
		Total:   total,
		Track:   track,
		Status:  models.StatusSkipped,
	}
}

func searchingUpdate(current, total int, track models.Track, query string) models.ProgressEvent {
	return models.ProgressEvent{
		Current: current,
		Total:   total,
		Track:   track,
		Status:  models.StatusSearching,
		Query:   query,
	}
}

func foundUpdate(current, total int, track models.Track, query string, video *models.VideoCandidate, diff int) models.ProgressEvent {
	return models.ProgressEvent{
		Current:      current,
		Total:        total,
		Track:        track,
		Status:       models.StatusFound,
		Query:        query,
		VideoID:      video.ID,
		VideoTitle:   video.Title,
		DurationDiff: diff,
	}
}

func notFoundUpdate(current, total int, track models.Track, query string) models.ProgressEvent {
	return models.ProgressEvent{
		Current: current,
		Total:   total,
		Track:   track,
		Status:  models.StatusNotFound,
		Query:   query,
	}
}

func progressEvent(runID string, update models.ProgressEvent) models.Event {
	return models.Event{Type: models.EventProgress, RunID: runID, Progress: &update}
}

func completeEvent(runID string, result *models.ConversionResult) models.Event {
	return models.Event{Type: models.EventComplete, RunID: runID, Result: result}
}

func errorEvent(runID string, err error) models.Event {
	return models.Event{Type: models.EventError, RunID: runID, Message: err.Error()}
}

// Describe renders a progress event as a single human-readable line.
func Describe(p models.ProgressEvent) string {
	prefix := fmt.Sprintf("[%d/%d]", p.Current, p.Total)
	switch p.Status {
	case models.StatusSkipped:
		return fmt.Sprintf("%s skipped track %q: no query", prefix, p.Track.Position)
	case models.StatusSearching:
		return fmt.Sprintf("%s searching %s...", prefix, p.Query)
	case models.StatusFound:
		if p.DurationDiff > 0 {
			return fmt.Sprintf("%s found %s (off by %ds)", prefix, p.VideoTitle, p.DurationDiff)
		}
		return fmt.Sprintf("%s found %s", prefix, p.VideoTitle)
	case models.StatusNotFound:
		return fmt.Sprintf("%s no match for %s", prefix, p.Query)
	default:
		return prefix
	}
}

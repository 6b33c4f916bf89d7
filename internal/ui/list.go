package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/traxyt/internal/models"
)

var (
	_ list.Item = trackItem{}
	_ list.Item = outcomeItem{}
)

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	index int
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Query() }
func (i trackItem) Title() string {
	label := i.track.Query()
	if label == "" {
		label = "(nothing to search)"
	}
	return fmt.Sprintf("%d. %s", i.index+1, label)
}
func (i trackItem) Description() string {
	parts := []string{}
	if i.track.DurationSeconds > 0 {
		parts = append(parts, i.track.DurationText())
	}
	if i.track.Label != "" {
		parts = append(parts, i.track.Label)
	}
	if i.track.Genre != "" {
		parts = append(parts, i.track.Genre)
	}
	return strings.Join(parts, " • ")
}

// outcomeItem wraps [models.TrackOutcome] to implement [list.Item].
type outcomeItem struct {
	outcome models.TrackOutcome
}

func (i outcomeItem) FilterValue() string { return i.outcome.Query }
func (i outcomeItem) Title() string {
	switch i.outcome.Status {
	case models.StatusFound:
		return styles.ok.Render("✓ ") + i.outcome.VideoTitle
	case models.StatusSkipped:
		return styles.warn.Render("- ") + fmt.Sprintf("track %d skipped", i.outcome.Index+1)
	default:
		return styles.err.Render("✗ ") + i.outcome.Query
	}
}
func (i outcomeItem) Description() string {
	switch i.outcome.Status {
	case models.StatusFound:
		return fmt.Sprintf("%s • off by %ds", i.outcome.VideoID, i.outcome.DurationDiff)
	case models.StatusSkipped:
		return i.outcome.Reason
	default:
		return "no match"
	}
}

func trackItems(tracks []models.Track) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, track := range tracks {
		items[i] = trackItem{index: i, track: track}
	}
	return items
}

func outcomeItems(result *models.ConversionResult) []list.Item {
	if result == nil {
		return nil
	}
	items := make([]list.Item, len(result.Results))
	for i, outcome := range result.Results {
		items[i] = outcomeItem{outcome: outcome}
	}
	return items
}

package services

import (
	"github.com/desertthunder/traxyt/internal/models"
	"github.com/desertthunder/traxyt/internal/shared"
)

// maxCandidates caps the candidates kept from one results page.
const maxCandidates = 10

// sectionsPath leads from the ytInitialData root to the list of result sections.
var sectionsPath = []any{
	"contents", "twoColumnSearchResultsRenderer", "primaryContents", "sectionListRenderer", "contents",
}

// ExtractCandidates walks a decoded ytInitialData payload and returns up to ten
// admissible videos in page order.
//
// Only videos lasting between one and fifteen minutes are kept. Any missing or
// mistyped field along the way yields an empty list; this function never panics.
func ExtractCandidates(payload any) (candidates []models.VideoCandidate) {
	defer func() {
		if r := recover(); r != nil {
			candidates = nil
		}
	}()

	sections, ok := dig(payload, sectionsPath...).([]any)
	if !ok {
		return nil
	}

	for _, section := range sections {
		items, ok := dig(section, "itemSectionRenderer", "contents").([]any)
		if !ok {
			continue
		}

		for _, item := range items {
			video, ok := dig(item, "videoRenderer").(map[string]any)
			if !ok {
				continue
			}

			c, ok := candidateFromRenderer(video)
			if !ok {
				continue
			}
			candidates = append(candidates, c)
			if len(candidates) == maxCandidates {
				return candidates
			}
		}
	}
	return candidates
}

func candidateFromRenderer(video map[string]any) (models.VideoCandidate, bool) {
	durationText := digString(video, "lengthText", "simpleText")
	if durationText == "" {
		durationText = "0:00"
	}

	duration := shared.ParseDuration(durationText)
	if duration < models.MinCandidateDuration || duration > models.MaxCandidateDuration {
		return models.VideoCandidate{}, false
	}

	return models.VideoCandidate{
		ID:           digString(video, "videoId"),
		Title:        langText(video["title"]),
		Duration:     duration,
		DurationText: durationText,
		Channel:      langText(video["ownerText"]),
		ViewCount:    digString(video, "viewCountText", "simpleText"),
	}, true
}

// langText reads a text node that is either {"runs":[{"text":...}]} or {"simpleText":...},
// preferring the first run.
func langText(node any) string {
	if text := digString(node, "runs", 0, "text"); text != "" {
		return text
	}
	return digString(node, "simpleText")
}

// dig follows path through decoded JSON. String steps index objects and int steps index
// arrays. Returns nil as soon as a step does not apply.
func dig(v any, path ...any) any {
	cur := v
	for _, step := range path {
		switch key := step.(type) {
		case string:
			obj, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			cur = obj[key]
		case int:
			arr, ok := cur.([]any)
			if !ok || key < 0 || key >= len(arr) {
				return nil
			}
			cur = arr[key]
		default:
			return nil
		}
	}
	return cur
}

// digString is [dig] narrowed to strings; anything else reads as "".
func digString(v any, path ...any) string {
	s, _ := dig(v, path...).(string)
	return s
}

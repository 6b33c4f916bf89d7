package services

import (
	"encoding/json"
	"fmt"
)

func videoItem(id, title, length string) map[string]any {
	return map[string]any{
		"videoRenderer": map[string]any{
			"videoId":       id,
			"title":         map[string]any{"runs": []any{map[string]any{"text": title}}},
			"lengthText":    map[string]any{"simpleText": length},
			"ownerText":     map[string]any{"runs": []any{map[string]any{"text": "Channel " + id}}},
			"viewCountText": map[string]any{"simpleText": "1,234 views"},
		},
	}
}

func section(items ...any) map[string]any {
	return map[string]any{"itemSectionRenderer": map[string]any{"contents": items}}
}

func initialData(sections ...any) map[string]any {
	return map[string]any{
		"contents": map[string]any{
			"twoColumnSearchResultsRenderer": map[string]any{
				"primaryContents": map[string]any{
					"sectionListRenderer": map[string]any{"contents": sections},
				},
			},
		},
	}
}

// decode round-trips v through JSON so tests see the same shapes as a real page.
func decode(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return out
}

func resultsPage(payload any) string {
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf(`<!DOCTYPE html><html><head><script nonce="x">var ytInitialData = %s;</script>
<script>var other = {"a": 1};</script></head><body></body></html>`, raw)
}

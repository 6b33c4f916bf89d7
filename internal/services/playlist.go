package services

import "strings"

// DefaultPlaylistBaseURL hosts the batch playback endpoint.
const DefaultPlaylistBaseURL = "https://youtube.com"

// PlaylistURL joins ids into an anonymous batch playlist link on [DefaultPlaylistBaseURL].
//
// Returns "" when there are no ids.
func PlaylistURL(ids []string) string {
	return BuildPlaylistURL(DefaultPlaylistBaseURL, ids)
}

// BuildPlaylistURL is [PlaylistURL] against another base. The ids are comma-joined as-is, in order.
func BuildPlaylistURL(baseURL string, ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/watch_videos?video_ids=" + strings.Join(ids, ",")
}

// WatchURL links a single video.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dhowden/tag"

	"github.com/desertthunder/traxyt/internal/models"
	"github.com/desertthunder/traxyt/internal/shared"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".m4a":  true,
	".mp4":  true,
	".ogg":  true,
	".oga":  true,
}

// ReadTracks loads the tracks to convert from path.
//
// A directory is read as audio files ([ReadAudioTracks]); otherwise the extension picks
// the parser: .csv for [ParseTracksCSV], anything else for [ParseTracksJSON].
func ReadTracks(path string) ([]models.Track, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tracks: %w", err)
	}
	if info.IsDir() {
		return ReadAudioTracks(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tracks: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ParseTracksCSV(bytes.NewReader(data))
	}
	return ParseTracksJSON(data)
}

// ParseTracksJSON decodes a JSON array of tracks or an object with a "tracks" array.
func ParseTracksJSON(data []byte) ([]models.Track, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty track list", shared.ErrInvalidInput)
	}

	var tracks []models.Track
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &tracks); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
	case '{':
		var wrapper struct {
			Tracks []models.Track `json:"tracks"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		tracks = wrapper.Tracks
	default:
		return nil, fmt.Errorf("%w: expected a JSON array or object", shared.ErrInvalidInput)
	}
	return tracks, nil
}

// ParseTracksCSV reads tracks from CSV with a header row. Column names are matched case-insensitively;
// unknown columns are ignored. duration accepts "m:ss" or plain seconds.
func ParseTracksCSV(r io.Reader) ([]models.Track, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty CSV", shared.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[normalizeColumn(name)] = i
	}
	if _, ok := columns["title"]; !ok {
		return nil, fmt.Errorf("%w: CSV has no title column", shared.ErrInvalidInput)
	}

	var tracks []models.Track
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}

		field := func(names ...string) string {
			for _, name := range names {
				if i, ok := columns[name]; ok && i < len(record) {
					return strings.TrimSpace(record[i])
				}
			}
			return ""
		}

		tracks = append(tracks, models.Track{
			ID:              field("id"),
			Position:        field("position", "pos", "#"),
			Title:           field("title"),
			Version:         field("version", "mix"),
			DurationSeconds: parseSeconds(field("durationseconds", "duration")),
			Artists:         field("artists", "artist"),
			Label:           field("label"),
			Genre:           field("genre"),
		})
	}
	return tracks, nil
}

// ReadAudioTracks builds tracks from the tags of the audio files directly inside dir, in name order.
//
// Files without readable tags fall back to an "Artist - Title" file name. The tags carry no
// length, so DurationSeconds is left at zero.
func ReadAudioTracks(dir string) ([]models.Track, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !audioExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no audio files in %s", shared.ErrInvalidInput, dir)
	}

	tracks := make([]models.Track, 0, len(names))
	for i, name := range names {
		track := trackFromFileName(name)
		track.Position = strconv.Itoa(i + 1)

		if meta, err := readTags(filepath.Join(dir, name)); err == nil {
			if meta.Title() != "" {
				track.Title = meta.Title()
			}
			if meta.Artist() != "" {
				track.Artists = meta.Artist()
			}
			track.Genre = meta.Genre()
			if n, _ := meta.Track(); n > 0 {
				track.Position = strconv.Itoa(n)
			}
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

func readTags(path string) (tag.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tag.ReadFrom(f)
}

func trackFromFileName(name string) models.Track {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if artist, title, ok := strings.Cut(base, " - "); ok {
		return models.Track{Artists: strings.TrimSpace(artist), Title: strings.TrimSpace(title)}
	}
	return models.Track{Title: strings.TrimSpace(base)}
}

func normalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(name)
}

func parseSeconds(value string) int {
	if value == "" {
		return 0
	}
	if n, err := strconv.Atoi(value); err == nil && n >= 0 {
		return n
	}
	return shared.ParseDuration(value)
}

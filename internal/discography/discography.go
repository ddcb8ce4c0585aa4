// Package discography models the music catalog: loading discography.json
// and building it by scanning a local audio directory for tagged masters.
package discography

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
)

// Track is one release entry, with JSON field names matching the site's
// discography.json.
type Track struct {
	Name        string `json:"name"`
	Album       string `json:"album"`
	ReleaseDate string `json:"releaseDate"`
	Type        string `json:"type"`
	Duration    string `json:"duration"`
	URL         string `json:"url"`
}

// audioExts are the file types the scanner considers audio masters.
var audioExts = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
	".wav":  true,
}

// Load parses a discography document: a JSON array of tracks.
func Load(data []byte) ([]Track, error) {
	var tracks []Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, fmt.Errorf("failed to parse discography: %w", err)
	}
	return tracks, nil
}

// Scan walks an audio directory and builds a track per audio file, reading
// embedded tags where possible and falling back to filename and mtime.
// Tracks come back sorted newest first.
func Scan(root, baseURL string) ([]Track, error) {
	var tracks []Track

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !audioExts[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		tracks = append(tracks, scanFile(path, filepath.ToSlash(rel), baseURL))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan audio directory: %w", err)
	}

	sort.SliceStable(tracks, func(i, j int) bool {
		if tracks[i].ReleaseDate != tracks[j].ReleaseDate {
			return tracks[i].ReleaseDate > tracks[j].ReleaseDate
		}
		return tracks[i].Name < tracks[j].Name
	})

	return tracks, nil
}

func scanFile(path, rel, baseURL string) Track {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	ext := strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), "."))

	t := Track{
		Name: name,
		Type: ext,
		URL:  baseURL + rel,
	}

	if info, err := os.Stat(path); err == nil {
		t.ReleaseDate = info.ModTime().UTC().Format("2006-01-02")
	}

	f, err := os.Open(path)
	if err != nil {
		slog.Warn("Skipping tag read", "path", path, "err", err)
		return t
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		// Untagged masters (plain WAVs mostly) keep the filename fallback.
		slog.Debug("No readable tags", "path", path, "err", err)
		return t
	}

	if title := m.Title(); title != "" {
		t.Name = title
	}
	t.Album = m.Album()
	if year := m.Year(); year > 0 {
		t.ReleaseDate = strconv.Itoa(year)
	}
	if ft := string(m.FileType()); ft != "" {
		t.Type = ft
	}

	return t
}

// WriteJSON writes the track list as the site's discography.json.
func WriteJSON(tracks []Track, path string) error {
	data, err := json.MarshalIndent(tracks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode discography: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write discography: %w", err)
	}
	return nil
}

// Package playlistfile reads and writes the two plain-text playlist
// interchange formats: the extended list format (one directive line with
// duration and label, one path line per track) and the key-indexed format
// (File{n}=path entries with a count/version trailer).
package playlistfile

import (
	"fmt"
	"strings"

	"github.com/rvallade/maha/internal/catalog"
	"github.com/rvallade/maha/internal/playlists"
)

const (
	extendedHeader = "#EXTM3U"
	indexedHeader  = "[playlist]"
)

// ExportExtended renders a playlist in the extended list format. Entries
// whose path is not in the catalog are omitted.
func ExportExtended(pl playlists.Playlist, tracks []catalog.Track) string {
	byPath := indexCatalog(tracks)

	lines := []string{extendedHeader}
	for _, path := range pl.Tracks {
		t, ok := byPath[path]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("#EXTINF:%d,%s", int(t.Duration.Seconds()), label(t)))
		lines = append(lines, t.Path)
	}
	return strings.Join(lines, "\n")
}

// ExportIndexed renders a playlist in the key-indexed format. Entries
// whose path is not in the catalog are omitted, but the trailer count
// reflects the playlist's full length, matching common writers.
func ExportIndexed(pl playlists.Playlist, tracks []catalog.Track) string {
	byPath := indexCatalog(tracks)

	lines := []string{indexedHeader}
	n := 0
	for _, path := range pl.Tracks {
		t, ok := byPath[path]
		if !ok {
			continue
		}
		n++
		lines = append(lines, fmt.Sprintf("File%d=%s", n, t.Path))
		lines = append(lines, fmt.Sprintf("Title%d=%s", n, label(t)))
		lines = append(lines, fmt.Sprintf("Length%d=%d", n, int(t.Duration.Seconds())))
	}
	lines = append(lines, fmt.Sprintf("NumberOfEntries=%d", len(pl.Tracks)))
	lines = append(lines, "Version=2")
	return strings.Join(lines, "\n")
}

// Import parses either format back into an ordered list of file paths,
// detecting the format from the content.
func Import(content string) []string {
	if isIndexed(content) {
		return ImportIndexed(content)
	}
	return ImportExtended(content)
}

// ImportExtended extracts file paths from the extended list format,
// ignoring directive, comment and header lines.
func ImportExtended(content string) []string {
	var paths []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "[") {
			continue
		}
		paths = append(paths, line)
	}
	return paths
}

// ImportIndexed extracts File{n} paths from the key-indexed format,
// ignoring titles, lengths, the header and the trailer.
func ImportIndexed(content string) []string {
	var paths []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "File") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found || value == "" {
			continue
		}
		// Require File{digits} so "Filename=" style keys are not picked up.
		if !isFileKey(key) {
			continue
		}
		paths = append(paths, value)
	}
	return paths
}

func isIndexed(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return strings.EqualFold(line, indexedHeader)
	}
	return false
}

func isFileKey(key string) bool {
	rest := strings.TrimPrefix(key, "File")
	if rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func label(t catalog.Track) string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Artist + " - " + t.Title
}

func indexCatalog(tracks []catalog.Track) map[string]catalog.Track {
	byPath := make(map[string]catalog.Track, len(tracks))
	for _, t := range tracks {
		byPath[t.Path] = t
	}
	return byPath
}

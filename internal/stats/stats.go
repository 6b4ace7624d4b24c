// Package stats aggregates play statistics over the track catalog.
package stats

import (
	"sort"
	"time"

	"github.com/rvallade/maha/internal/catalog"
	"github.com/rvallade/maha/internal/store"
)

const (
	topTracksLimit  = 20
	topArtistsLimit = 20
	topGenresLimit  = 10
	recentLimit     = 50
)

// TrackPlays pairs a track with its play count.
type TrackPlays struct {
	Track     catalog.Track
	PlayCount int
}

// ArtistPlays is an artist's total play count.
type ArtistPlays struct {
	Artist    string
	PlayCount int
}

// GenrePlays is a genre's total play count.
type GenrePlays struct {
	Genre     string
	PlayCount int
}

// HistoryItem is a history entry joined back to its live track record.
type HistoryItem struct {
	Track    catalog.Track
	PlayedAt time.Time
}

// Summary is the aggregate statistics view.
type Summary struct {
	TotalTracks    int
	TotalPlayTime  time.Duration
	TopTracks      []TrackPlays
	TopArtists     []ArtistPlays
	TopGenres      []GenrePlays
	RecentlyPlayed []HistoryItem
}

// Provider supplies raw counters and history, normally the store.
type Provider interface {
	PlayCounts() (map[string]store.PlayCount, error)
	History(limit int) ([]store.HistoryEntry, error)
}

// Summarize joins play counters and history onto the catalog and computes
// top tracks, artists and genres by play count plus the recent-play list.
// History entries whose track left the catalog are dropped.
func Summarize(p Provider, tracks []catalog.Track) (Summary, error) {
	counts, err := p.PlayCounts()
	if err != nil {
		return Summary{}, err
	}
	history, err := p.History(recentLimit)
	if err != nil {
		return Summary{}, err
	}

	byPath := make(map[string]catalog.Track, len(tracks))
	summary := Summary{TotalTracks: len(tracks)}

	artistCounts := make(map[string]int)
	genreCounts := make(map[string]int)

	for _, t := range tracks {
		pc := counts[t.Path]
		t.PlayCount = pc.Count
		t.LastPlayedAt = pc.LastPlayed
		byPath[t.Path] = t

		if pc.Count == 0 {
			continue
		}
		summary.TotalPlayTime += t.Duration * time.Duration(pc.Count)
		summary.TopTracks = append(summary.TopTracks, TrackPlays{Track: t, PlayCount: pc.Count})
		artistCounts[t.Artist] += pc.Count
		if t.Genre != "" {
			genreCounts[t.Genre] += pc.Count
		}
	}

	sort.SliceStable(summary.TopTracks, func(i, j int) bool {
		return summary.TopTracks[i].PlayCount > summary.TopTracks[j].PlayCount
	})
	if len(summary.TopTracks) > topTracksLimit {
		summary.TopTracks = summary.TopTracks[:topTracksLimit]
	}

	for artist, count := range artistCounts {
		summary.TopArtists = append(summary.TopArtists, ArtistPlays{Artist: artist, PlayCount: count})
	}
	sort.SliceStable(summary.TopArtists, func(i, j int) bool {
		if summary.TopArtists[i].PlayCount != summary.TopArtists[j].PlayCount {
			return summary.TopArtists[i].PlayCount > summary.TopArtists[j].PlayCount
		}
		return summary.TopArtists[i].Artist < summary.TopArtists[j].Artist
	})
	if len(summary.TopArtists) > topArtistsLimit {
		summary.TopArtists = summary.TopArtists[:topArtistsLimit]
	}

	for genre, count := range genreCounts {
		summary.TopGenres = append(summary.TopGenres, GenrePlays{Genre: genre, PlayCount: count})
	}
	sort.SliceStable(summary.TopGenres, func(i, j int) bool {
		if summary.TopGenres[i].PlayCount != summary.TopGenres[j].PlayCount {
			return summary.TopGenres[i].PlayCount > summary.TopGenres[j].PlayCount
		}
		return summary.TopGenres[i].Genre < summary.TopGenres[j].Genre
	})
	if len(summary.TopGenres) > topGenresLimit {
		summary.TopGenres = summary.TopGenres[:topGenresLimit]
	}

	for _, h := range history {
		t, ok := byPath[h.Path]
		if !ok {
			continue
		}
		summary.RecentlyPlayed = append(summary.RecentlyPlayed, HistoryItem{Track: t, PlayedAt: h.PlayedAt})
	}

	return summary, nil
}

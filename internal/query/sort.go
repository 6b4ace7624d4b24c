package query

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/rvallade/maha/internal/catalog"
)

// SortField identifies a sortable track attribute.
type SortField string

const (
	SortTitle      SortField = "title"
	SortArtist     SortField = "artist"
	SortAlbum      SortField = "album"
	SortGenre      SortField = "genre"
	SortYear       SortField = "year"
	SortDuration   SortField = "duration"
	SortPlayCount  SortField = "playcount"
	SortRating     SortField = "rating"
	SortLastPlayed SortField = "lastplayed"
	SortDateAdded  SortField = "dateadded"
)

// SortDirection is the order of a sort.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

// Sort returns a stably sorted copy of tracks. String fields compare with
// locale-aware collation; numeric fields compare numerically. A track
// missing the sort field always sorts to the end, regardless of direction.
func Sort(tracks []catalog.Track, field SortField, dir SortDirection) []catalog.Track {
	sorted := make([]catalog.Track, len(tracks))
	copy(sorted, tracks)

	// collate.Collator is not safe for concurrent use; build one per call.
	c := collate.New(language.Und, collate.Loose)

	sort.SliceStable(sorted, func(i, j int) bool {
		return less(c, sorted[i], sorted[j], field, dir)
	})
	return sorted
}

func less(c *collate.Collator, a, b catalog.Track, field SortField, dir SortDirection) bool {
	if isStringField(field) {
		av, bv := stringValue(a, field), stringValue(b, field)
		// Empty string means the field is missing: push to the end.
		if (av == "") != (bv == "") {
			return bv == ""
		}
		cmp := c.CompareString(av, bv)
		if dir == Ascending {
			return cmp < 0
		}
		return cmp > 0
	}

	av, aok := numericValue(a, field)
	bv, bok := numericValue(b, field)
	if aok != bok {
		return !bok
	}
	if dir == Ascending {
		return av < bv
	}
	return av > bv
}

func isStringField(field SortField) bool {
	switch field {
	case SortTitle, SortArtist, SortAlbum, SortGenre:
		return true
	default:
		return false
	}
}

func stringValue(t catalog.Track, field SortField) string {
	switch field {
	case SortTitle:
		return t.Title
	case SortArtist:
		return t.Artist
	case SortAlbum:
		return t.Album
	case SortGenre:
		return t.Genre
	default:
		return ""
	}
}

// numericValue returns the track's value for a numeric field and whether it
// is present. A play count of zero is a real value; a zero year, rating,
// duration or timestamp means the field was never set.
func numericValue(t catalog.Track, field SortField) (float64, bool) {
	switch field {
	case SortYear:
		return float64(t.Year), t.Year != 0
	case SortDuration:
		return t.Duration.Seconds(), t.Duration != 0
	case SortPlayCount:
		return float64(t.PlayCount), true
	case SortRating:
		return float64(t.Rating), t.Rating != 0
	case SortLastPlayed:
		return float64(t.LastPlayedAt.Unix()), !t.LastPlayedAt.IsZero()
	case SortDateAdded:
		return float64(t.DateAddedAt.Unix()), !t.DateAddedAt.IsZero()
	default:
		return 0, false
	}
}

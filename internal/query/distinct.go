package query

import (
	"sort"
	"strconv"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/rvallade/maha/internal/catalog"
)

// DistinctField identifies an attribute usable for filter choice lists.
type DistinctField string

const (
	DistinctArtist DistinctField = "artist"
	DistinctAlbum  DistinctField = "album"
	DistinctGenre  DistinctField = "genre"
	DistinctYear   DistinctField = "year"
)

// DistinctValues returns the sorted set of non-empty values for the field
// across all tracks. Used to populate filter choice lists.
func DistinctValues(tracks []catalog.Track, field DistinctField) []string {
	seen := make(map[string]struct{})
	for _, t := range tracks {
		var v string
		switch field {
		case DistinctArtist:
			v = t.Artist
		case DistinctAlbum:
			v = t.Album
		case DistinctGenre:
			v = t.Genre
		case DistinctYear:
			if t.Year != 0 {
				v = strconv.Itoa(t.Year)
			}
		}
		if v != "" {
			seen[v] = struct{}{}
		}
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}

	c := collate.New(language.Und, collate.Loose)
	sort.Slice(values, func(i, j int) bool {
		return c.CompareString(values[i], values[j]) < 0
	})
	return values
}

// Package query implements pure functions over a track catalog: text
// search, multi-field filtering, sorting, and smart-playlist criteria
// evaluation. None of these functions hold state or fail on well-formed
// input; an empty result is a valid outcome.
package query

import (
	"strings"

	"github.com/samber/lo"

	"github.com/rvallade/maha/internal/catalog"
)

// Search returns the tracks matching the query text and filters.
// A non-empty query (after trimming) keeps tracks with a case-insensitive
// substring match in title, artist, album or genre. Filters are applied
// afterwards as an AND of independent predicates; a nil Filters applies none.
func Search(tracks []catalog.Track, queryText string, filters *Filters) []catalog.Track {
	results := tracks

	q := strings.ToLower(strings.TrimSpace(queryText))
	if q != "" {
		results = lo.Filter(results, func(t catalog.Track, _ int) bool {
			return strings.Contains(strings.ToLower(t.Title), q) ||
				strings.Contains(strings.ToLower(t.Artist), q) ||
				strings.Contains(strings.ToLower(t.Album), q) ||
				(t.Genre != "" && strings.Contains(strings.ToLower(t.Genre), q))
		})
	}

	if filters != nil {
		results = applyFilters(results, *filters)
	}

	// Always hand back a fresh slice so callers can reorder freely.
	out := make([]catalog.Track, len(results))
	copy(out, results)
	return out
}

func applyFilters(tracks []catalog.Track, f Filters) []catalog.Track {
	results := tracks

	if len(f.Genres) > 0 {
		results = lo.Filter(results, func(t catalog.Track, _ int) bool {
			return t.Genre != "" && lo.Contains(f.Genres, t.Genre)
		})
	}
	if len(f.Artists) > 0 {
		results = lo.Filter(results, func(t catalog.Track, _ int) bool {
			return lo.Contains(f.Artists, t.Artist)
		})
	}
	if len(f.Albums) > 0 {
		results = lo.Filter(results, func(t catalog.Track, _ int) bool {
			return lo.Contains(f.Albums, t.Album)
		})
	}
	if len(f.Years) > 0 {
		results = lo.Filter(results, func(t catalog.Track, _ int) bool {
			return t.Year != 0 && lo.Contains(f.Years, t.Year)
		})
	}
	if f.MinDuration > 0 {
		results = lo.Filter(results, func(t catalog.Track, _ int) bool {
			return t.Duration >= f.MinDuration
		})
	}
	if f.MaxDuration > 0 {
		results = lo.Filter(results, func(t catalog.Track, _ int) bool {
			return t.Duration <= f.MaxDuration
		})
	}

	return results
}

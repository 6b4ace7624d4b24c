package query

import (
	"github.com/samber/lo"

	"github.com/rvallade/maha/internal/catalog"
)

// MatchSmart returns the tracks satisfying all set criteria, in catalog
// order. The limit, if any, truncates last, after every filter has been
// applied. Malformed criteria match nothing.
func MatchSmart(tracks []catalog.Track, c SmartCriteria) []catalog.Track {
	if err := c.Validate(); err != nil {
		return nil
	}

	results := tracks

	if len(c.Genres) > 0 {
		results = lo.Filter(results, func(t catalog.Track, _ int) bool {
			return t.Genre != "" && lo.Contains(c.Genres, t.Genre)
		})
	}
	if len(c.Artists) > 0 {
		results = lo.Filter(results, func(t catalog.Track, _ int) bool {
			return lo.Contains(c.Artists, t.Artist)
		})
	}
	if c.MinPlayCount != nil {
		results = lo.Filter(results, func(t catalog.Track, _ int) bool {
			return t.PlayCount >= *c.MinPlayCount
		})
	}
	if c.MaxPlayCount != nil {
		results = lo.Filter(results, func(t catalog.Track, _ int) bool {
			return t.PlayCount <= *c.MaxPlayCount
		})
	}
	if c.MinRating != nil {
		results = lo.Filter(results, func(t catalog.Track, _ int) bool {
			return t.Rating >= *c.MinRating
		})
	}
	if len(c.Years) > 0 {
		results = lo.Filter(results, func(t catalog.Track, _ int) bool {
			return t.Year != 0 && lo.Contains(c.Years, t.Year)
		})
	}
	if !c.AddedAfter.IsZero() {
		results = lo.Filter(results, func(t catalog.Track, _ int) bool {
			return !t.DateAddedAt.Before(c.AddedAfter)
		})
	}

	if c.Limit > 0 && len(results) > c.Limit {
		results = results[:c.Limit]
	}

	out := make([]catalog.Track, len(results))
	copy(out, results)
	return out
}

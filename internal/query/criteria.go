package query

import (
	"fmt"
	"time"
)

// Filters narrows search results. All set fields must match (AND);
// zero-value fields impose no constraint.
type Filters struct {
	Genres      []string
	Artists     []string
	Albums      []string
	Years       []int
	MinDuration time.Duration
	MaxDuration time.Duration
}

// SmartCriteria describes the membership rules of a smart playlist.
// Pointer fields distinguish "unset" from a legitimate zero value.
type SmartCriteria struct {
	Genres       []string  `json:"genres,omitempty"`
	Artists      []string  `json:"artists,omitempty"`
	MinPlayCount *int      `json:"min_play_count,omitempty"`
	MaxPlayCount *int      `json:"max_play_count,omitempty"`
	MinRating    *int      `json:"min_rating,omitempty"`
	Years        []int     `json:"years,omitempty"`
	AddedAfter   time.Time `json:"added_after,omitempty"`
	Limit        int       `json:"limit,omitempty"`
}

// Validate checks the criteria for internal consistency.
func (c SmartCriteria) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", c.Limit)
	}
	if c.MinPlayCount != nil && *c.MinPlayCount < 0 {
		return fmt.Errorf("min play count must not be negative, got %d", *c.MinPlayCount)
	}
	if c.MaxPlayCount != nil && *c.MaxPlayCount < 0 {
		return fmt.Errorf("max play count must not be negative, got %d", *c.MaxPlayCount)
	}
	if c.MinPlayCount != nil && c.MaxPlayCount != nil && *c.MinPlayCount > *c.MaxPlayCount {
		return fmt.Errorf("min play count %d exceeds max %d", *c.MinPlayCount, *c.MaxPlayCount)
	}
	if c.MinRating != nil && (*c.MinRating < 0 || *c.MinRating > 5) {
		return fmt.Errorf("min rating must be between 0 and 5, got %d", *c.MinRating)
	}
	return nil
}

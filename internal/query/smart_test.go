package query

import (
	"testing"
	"time"

	"github.com/rvallade/maha/internal/catalog"
)

func intp(n int) *int { return &n }

func TestMatchSmart(t *testing.T) {
	tracks := []catalog.Track{
		{Path: "/a", Genre: "Jazz", PlayCount: 12, Rating: 5},
		{Path: "/b", Genre: "Jazz", PlayCount: 7, Rating: 3},
		{Path: "/c", Genre: "Jazz", PlayCount: 5, Rating: 4},
		{Path: "/d", Genre: "Rock", PlayCount: 30, Rating: 5},
		{Path: "/e", Genre: "Jazz", PlayCount: 2, Rating: 5},
	}

	got := MatchSmart(tracks, SmartCriteria{
		Genres:       []string{"Jazz"},
		MinPlayCount: intp(5),
	})
	if want := []string{"/a", "/b", "/c"}; !samePaths(got, want) {
		t.Errorf("MatchSmart = %v, want %v", pathsOf(got), want)
	}
}

func TestMatchSmart_LimitTruncatesLast(t *testing.T) {
	tracks := []catalog.Track{
		{Path: "/a", Genre: "Jazz", PlayCount: 12},
		{Path: "/b", Genre: "Rock", PlayCount: 50},
		{Path: "/c", Genre: "Jazz", PlayCount: 7},
		{Path: "/d", Genre: "Jazz", PlayCount: 9},
	}

	got := MatchSmart(tracks, SmartCriteria{
		Genres:       []string{"Jazz"},
		MinPlayCount: intp(5),
		Limit:        2,
	})

	// Filters apply first, then the limit truncates in catalog order.
	if want := []string{"/a", "/c"}; !samePaths(got, want) {
		t.Errorf("MatchSmart = %v, want %v", pathsOf(got), want)
	}
}

func TestMatchSmart_AddedAfter(t *testing.T) {
	cutoff := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tracks := []catalog.Track{
		{Path: "/old", DateAddedAt: cutoff.AddDate(0, -1, 0)},
		{Path: "/exact", DateAddedAt: cutoff},
		{Path: "/new", DateAddedAt: cutoff.AddDate(0, 1, 0)},
	}

	got := MatchSmart(tracks, SmartCriteria{AddedAfter: cutoff})
	if want := []string{"/exact", "/new"}; !samePaths(got, want) {
		t.Errorf("MatchSmart = %v, want %v", pathsOf(got), want)
	}
}

func TestMatchSmart_InvalidCriteria(t *testing.T) {
	tracks := []catalog.Track{{Path: "/a"}}

	if got := MatchSmart(tracks, SmartCriteria{Limit: -1}); got != nil {
		t.Errorf("negative limit should match nothing, got %v", pathsOf(got))
	}
	if got := MatchSmart(tracks, SmartCriteria{MinPlayCount: intp(9), MaxPlayCount: intp(3)}); got != nil {
		t.Errorf("min > max should match nothing, got %v", pathsOf(got))
	}
	if got := MatchSmart(tracks, SmartCriteria{MinRating: intp(6)}); got != nil {
		t.Errorf("rating out of range should match nothing, got %v", pathsOf(got))
	}
}

func TestSmartCriteria_Validate(t *testing.T) {
	if err := (SmartCriteria{}).Validate(); err != nil {
		t.Errorf("empty criteria should be valid: %v", err)
	}
	if err := (SmartCriteria{MinPlayCount: intp(0), MaxPlayCount: intp(0)}).Validate(); err != nil {
		t.Errorf("zero bounds should be valid: %v", err)
	}
	if err := (SmartCriteria{MinPlayCount: intp(-1)}).Validate(); err == nil {
		t.Error("negative min play count should be invalid")
	}
}

func samePaths(tracks []catalog.Track, want []string) bool {
	if len(tracks) != len(want) {
		return false
	}
	for i := range tracks {
		if tracks[i].Path != want[i] {
			return false
		}
	}
	return true
}

package catalog

import "time"

// Track represents a single playable audio item. Identity is the file path;
// every other field is mutable metadata. Play-statistics fields (PlayCount,
// LastPlayedAt) are written by the statistics store and only read here.
type Track struct {
	Path     string // identity
	Title    string
	Artist   string
	Album    string
	Genre    string
	Year     int // 0 if unknown
	Rating   int // 0 = unrated, 1-5
	Duration time.Duration
	CoverArt string // path to extracted cover art, empty if none

	PlayCount    int
	LastPlayedAt time.Time
	DateAddedAt  time.Time
}

// SameIdentity reports whether two tracks refer to the same file.
func (t Track) SameIdentity(other Track) bool {
	return t.Path == other.Path
}

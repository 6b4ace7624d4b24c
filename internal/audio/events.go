package audio

import (
	"time"

	"github.com/rvallade/maha/internal/catalog"
	"github.com/rvallade/maha/internal/session"
)

// State represents the controller's playback state.
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// StateChange is emitted when the playback state changes.
type StateChange struct {
	Previous State
	Current  State
}

// TrackChange is emitted when a different track is loaded for playback.
type TrackChange struct {
	Previous      *catalog.Track
	Current       *catalog.Track
	PreviousIndex int
	Index         int
}

// PositionChange is emitted by the position poll loop while playing, and
// after an explicit seek.
type PositionChange struct {
	Position time.Duration
	Duration time.Duration
}

// QueueChange is emitted when the queue contents change.
type QueueChange struct {
	Tracks []catalog.Track
	Index  int
}

// ModeChange is emitted when repeat, shuffle or rate changes.
type ModeChange struct {
	Repeat  session.RepeatMode
	Shuffle bool
	Rate    float64
}

// ErrorEvent is emitted when an operation fails. Load and play failures
// leave the session on the errored track; a stuck track is never silently
// skipped.
type ErrorEvent struct {
	Op   string // e.g. "load", "play", "persist"
	Path string // track path if applicable
	Err  error
}

// Package audio drives an external single-track audio renderer through a
// narrow command/event contract and keeps it synchronized with the playback
// session.
package audio

import "time"

// EventKind identifies an asynchronous adapter event.
type EventKind int

const (
	// EventReady means the resource is loaded and can be played.
	EventReady EventKind = iota
	// EventPlaying means audible playback started or resumed.
	EventPlaying
	// EventPaused means playback paused.
	EventPaused
	// EventEnded means the track played to completion.
	EventEnded
	// EventLoadError means the resource could not be loaded.
	EventLoadError
	// EventPlayError means playback failed after loading.
	EventPlayError
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventPlaying:
		return "playing"
	case EventPaused:
		return "paused"
	case EventEnded:
		return "ended"
	case EventLoadError:
		return "load error"
	case EventPlayError:
		return "play error"
	default:
		return "unknown"
	}
}

// Event is delivered asynchronously by a resource. Ordering relative to
// commands is not guaranteed.
type Event struct {
	Kind EventKind
	Err  error // set for the error kinds
}

// Resource is a single loaded audio stream. At most one resource is alive
// at a time; the controller closes the previous one before opening the next.
type Resource interface {
	Play()
	Pause()
	Seek(pos time.Duration)
	SetVolume(v float64) // 0.0 to 1.0
	SetRate(r float64)   // playback speed multiplier, > 0
	Position() time.Duration
	Duration() time.Duration
	// Events returns the resource's event channel. It is closed by Close.
	Events() <-chan Event
	Close()
}

// Adapter opens playback resources for track files.
type Adapter interface {
	Open(path string) (Resource, error)
	Close() error
}

// Package session implements the playback session engine: the live queue,
// current position, shuffle/repeat modes and playback rate, with
// write-through persistence on every mutation.
package session

import (
	"math/rand"
	"time"

	"github.com/rvallade/maha/internal/catalog"
)

// RepeatMode defines how the queue advances at its boundaries.
type RepeatMode int

const (
	RepeatNone RepeatMode = iota
	RepeatOne
	RepeatAll
)

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatNone:
		return "none"
	case RepeatOne:
		return "one"
	case RepeatAll:
		return "all"
	default:
		return "unknown"
	}
}

// Advance is the verdict of a Next call.
type Advance int

const (
	// AdvanceMoved means the current index changed (including a wrap).
	AdvanceMoved Advance = iota
	// AdvanceRestart means repeat-one kept the index; the caller should
	// restart playback of the same track.
	AdvanceRestart
	// AdvanceEnd means the queue end was reached with repeat off; playback
	// must stop. The index is left unchanged.
	AdvanceEnd
)

// Snapshot is the persisted form of a session.
type Snapshot struct {
	Live         []catalog.Track
	Original     []catalog.Track
	CurrentIndex int
	Shuffle      bool
	Repeat       RepeatMode
	PlaybackRate float64
}

// Store persists session snapshots. Saves are synchronous: a mutation does
// not return until its snapshot has been written.
type Store interface {
	SaveSession(Snapshot) error
}

// Session is the playback session state machine. It is not safe for
// concurrent use; all mutations happen on the owner's event loop.
type Session struct {
	live     []catalog.Track
	original []catalog.Track
	current  int // -1 when empty or nothing selected
	shuffle  bool
	repeat   RepeatMode
	rate     float64

	store Store
	rng   *rand.Rand
}

// Option configures a Session.
type Option func(*Session)

// WithRand injects the random source used for shuffle permutations.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

// New creates an empty session persisting through store. A nil store
// disables persistence.
func New(store Store, opts ...Option) *Session {
	s := &Session{
		current: -1,
		rate:    1.0,
		store:   store,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore rehydrates the session from a snapshot without persisting.
// A snapshot that violates the session invariants resets to empty.
func (s *Session) Restore(snap Snapshot) {
	if snap.CurrentIndex < -1 || snap.CurrentIndex >= len(snap.Live) {
		snap = Snapshot{CurrentIndex: -1, PlaybackRate: 1.0}
	}
	s.live = copyTracks(snap.Live)
	s.original = copyTracks(snap.Original)
	s.current = snap.CurrentIndex
	s.shuffle = snap.Shuffle
	s.repeat = snap.Repeat
	s.rate = snap.PlaybackRate
	if s.rate <= 0 {
		s.rate = 1.0
	}
	if len(s.live) == 0 {
		s.current = -1
	}
}

// SetQueue replaces the whole queue with tracks. With shuffle off the live
// queue keeps the given order and startIndex becomes current; with shuffle
// on a fresh permutation is computed and the first entry becomes current.
func (s *Session) SetQueue(tracks []catalog.Track, startIndex int) error {
	s.original = copyTracks(tracks)
	if s.shuffle {
		s.live = shuffled(s.rng, s.original)
		s.current = 0
	} else {
		s.live = copyTracks(tracks)
		s.current = startIndex
		if s.current < 0 || s.current >= len(s.live) {
			s.current = 0
		}
	}
	if len(s.live) == 0 {
		s.current = -1
	}
	return s.persist()
}

// Append adds tracks to the end of both the live queue and the original
// order without touching the current index.
func (s *Session) Append(tracks ...catalog.Track) error {
	if len(tracks) == 0 {
		return nil
	}
	s.live = append(s.live, tracks...)
	s.original = append(s.original, tracks...)
	return s.persist()
}

// InsertAfterCurrent inserts tracks immediately after the current index in
// both lists ("play next"). With nothing selected they go to the front.
func (s *Session) InsertAfterCurrent(tracks ...catalog.Track) error {
	if len(tracks) == 0 {
		return nil
	}
	s.live = insertAt(s.live, s.current+1, tracks)
	s.original = insertAt(s.original, minInt(s.current+1, len(s.original)), tracks)
	return s.persist()
}

// RemoveAt deletes the live queue entry at index. Removing an entry before
// the current one shifts the index down; removing the current entry leaves
// the index in place so the next track slides into the slot (the caller is
// expected to reload playback). Returns false for an out-of-range index.
func (s *Session) RemoveAt(index int) (bool, error) {
	if index < 0 || index >= len(s.live) {
		return false, nil
	}
	s.live = append(s.live[:index], s.live[index+1:]...)
	if !s.shuffle && index < len(s.original) {
		// Live and original are identical while shuffle is off; mirror by
		// position so duplicate identities stay aligned.
		s.original = append(s.original[:index], s.original[index+1:]...)
	}

	switch {
	case len(s.live) == 0:
		s.current = -1
	case index < s.current:
		s.current--
	case index == s.current && s.current >= len(s.live):
		// Removed the tail while it was current: clamp back into range.
		s.current = len(s.live) - 1
	}
	return true, s.persist()
}

// Reorder moves the live entry at fromIndex to toIndex, adjusting the
// current index so it keeps pointing at the same track.
func (s *Session) Reorder(fromIndex, toIndex int) (bool, error) {
	if fromIndex < 0 || fromIndex >= len(s.live) || toIndex < 0 || toIndex >= len(s.live) {
		return false, nil
	}
	if fromIndex == toIndex {
		return true, nil
	}

	track := s.live[fromIndex]
	s.live = append(s.live[:fromIndex], s.live[fromIndex+1:]...)
	s.live = insertAt(s.live, toIndex, []catalog.Track{track})
	if !s.shuffle {
		s.original = copyTracks(s.live)
	}

	switch {
	case fromIndex == s.current:
		s.current = toIndex
	case fromIndex < s.current && s.current <= toIndex:
		s.current--
	case toIndex <= s.current && s.current < fromIndex:
		s.current++
	}
	return true, s.persist()
}

// Clear empties the queue entirely. This is the only operation that
// destroys the session; navigation never does.
func (s *Session) Clear() error {
	s.live = nil
	s.original = nil
	s.current = -1
	return s.persist()
}

// SelectTrack makes the given track current. If its identity already exists
// in the live queue that position is selected; otherwise the track is
// appended to both lists and selected, so "play this track" always succeeds.
// Returns the selected index.
func (s *Session) SelectTrack(t catalog.Track) (int, error) {
	for i, existing := range s.live {
		if existing.SameIdentity(t) {
			s.current = i
			return i, s.persist()
		}
	}
	s.live = append(s.live, t)
	s.original = append(s.original, t)
	s.current = len(s.live) - 1
	return s.current, s.persist()
}

// SelectIndex jumps directly to a queue position. Out-of-range indices are
// a no-op.
func (s *Session) SelectIndex(index int) error {
	if index < 0 || index >= len(s.live) {
		return nil
	}
	s.current = index
	return s.persist()
}

// Next advances the queue position according to the repeat mode. At the end
// of the queue with repeat off the index stays put and AdvanceEnd tells the
// caller to stop playback explicitly.
func (s *Session) Next() (Advance, error) {
	if s.repeat == RepeatOne {
		return AdvanceRestart, nil
	}
	switch {
	// With nothing selected (-1) this moves onto the first track.
	case s.current < len(s.live)-1:
		s.current++
	case s.repeat == RepeatAll && len(s.live) > 0:
		s.current = 0
	default:
		return AdvanceEnd, nil
	}
	return AdvanceMoved, s.persist()
}

// Previous moves back one position, wrapping to the last track under
// repeat-all. At the start without repeat-all the index stays put.
func (s *Session) Previous() error {
	switch {
	case s.current > 0:
		s.current--
	case s.repeat == RepeatAll && len(s.live) > 0:
		s.current = len(s.live) - 1
	default:
		return nil
	}
	return s.persist()
}

// ToggleShuffle flips shuffle mode. Turning it on keeps the current track
// at the head and permutes the rest; turning it off restores the original
// order and relocates the current track by identity (the position is not
// preserved numerically, only the track is). Returns the new shuffle state.
func (s *Session) ToggleShuffle() (bool, error) {
	if !s.shuffle {
		s.shuffle = true
		if s.current >= 0 && s.current < len(s.live) {
			head := s.live[s.current]
			rest := make([]catalog.Track, 0, len(s.live)-1)
			rest = append(rest, s.live[:s.current]...)
			rest = append(rest, s.live[s.current+1:]...)
			s.live = append([]catalog.Track{head}, shuffled(s.rng, rest)...)
			s.current = 0
		} else {
			s.live = shuffled(s.rng, s.live)
			s.current = -1
		}
		return true, s.persist()
	}

	var prev *catalog.Track
	if s.current >= 0 && s.current < len(s.live) {
		t := s.live[s.current]
		prev = &t
	}
	s.shuffle = false
	s.live = copyTracks(s.original)
	if prev != nil {
		s.current = 0
		for i, t := range s.live {
			if t.SameIdentity(*prev) {
				s.current = i
				break
			}
		}
	} else {
		s.current = -1
	}
	return false, s.persist()
}

// SetRepeatMode changes the repeat mode. Takes effect without reloading the
// audio resource.
func (s *Session) SetRepeatMode(mode RepeatMode) error {
	s.repeat = mode
	return s.persist()
}

// SetPlaybackRate changes the playback speed. Non-positive rates are
// ignored.
func (s *Session) SetPlaybackRate(rate float64) error {
	if rate <= 0 {
		return nil
	}
	s.rate = rate
	return s.persist()
}

// Current returns a copy of the current track, or nil if none is selected.
func (s *Session) Current() *catalog.Track {
	if s.current < 0 || s.current >= len(s.live) {
		return nil
	}
	t := s.live[s.current]
	return &t
}

// CurrentIndex returns the current queue position (-1 if none).
func (s *Session) CurrentIndex() int { return s.current }

// Tracks returns a copy of the live queue.
func (s *Session) Tracks() []catalog.Track { return copyTracks(s.live) }

// OriginalTracks returns a copy of the pre-shuffle reference ordering.
func (s *Session) OriginalTracks() []catalog.Track { return copyTracks(s.original) }

// Len returns the number of tracks in the live queue.
func (s *Session) Len() int { return len(s.live) }

// IsEmpty reports whether the queue has no tracks.
func (s *Session) IsEmpty() bool { return len(s.live) == 0 }

// Shuffle reports whether shuffle is enabled.
func (s *Session) Shuffle() bool { return s.shuffle }

// Repeat returns the repeat mode.
func (s *Session) Repeat() RepeatMode { return s.repeat }

// PlaybackRate returns the playback speed multiplier.
func (s *Session) PlaybackRate() float64 { return s.rate }

// Snapshot returns a deep copy of the full session state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Live:         copyTracks(s.live),
		Original:     copyTracks(s.original),
		CurrentIndex: s.current,
		Shuffle:      s.shuffle,
		Repeat:       s.repeat,
		PlaybackRate: s.rate,
	}
}

func (s *Session) persist() error {
	if s.store == nil {
		return nil
	}
	return s.store.SaveSession(s.Snapshot())
}

func copyTracks(tracks []catalog.Track) []catalog.Track {
	if tracks == nil {
		return nil
	}
	out := make([]catalog.Track, len(tracks))
	copy(out, tracks)
	return out
}

func insertAt(tracks []catalog.Track, pos int, toInsert []catalog.Track) []catalog.Track {
	if pos < 0 {
		pos = 0
	}
	if pos > len(tracks) {
		pos = len(tracks)
	}
	out := make([]catalog.Track, 0, len(tracks)+len(toInsert))
	out = append(out, tracks[:pos]...)
	out = append(out, toInsert...)
	out = append(out, tracks[pos:]...)
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

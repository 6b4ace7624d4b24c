package store

import (
	"testing"
	"time"

	"github.com/rvallade/maha/internal/catalog"
	"github.com/rvallade/maha/internal/session"
)

func openTestStore(t *testing.T) *Manager {
	t.Helper()
	m, err := OpenAt(":memory:", nil)
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func sampleTracks() []catalog.Track {
	return []catalog.Track{
		{Path: "/music/a.mp3", Title: "Alpha", Artist: "Artist One", Album: "First", Genre: "Jazz", Year: 1999, Duration: 3 * time.Minute, DateAddedAt: time.Unix(1700000000, 0)},
		{Path: "/music/b.flac", Title: "Beta", Artist: "Artist Two", Album: "Second", Genre: "Rock", Year: 2005, Duration: 4 * time.Minute},
		{Path: "/music/c.ogg", Title: "Gamma"},
	}
}

func TestManager_SessionRoundTrip(t *testing.T) {
	m := openTestStore(t)

	in := session.Snapshot{
		Live:         sampleTracks(),
		Original:     sampleTracks(),
		CurrentIndex: 1,
		Shuffle:      true,
		Repeat:       session.RepeatAll,
		PlaybackRate: 1.25,
	}
	if err := m.SaveSession(in); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	out, err := m.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}

	if len(out.Live) != 3 || len(out.Original) != 3 {
		t.Fatalf("loaded %d/%d tracks, want 3/3", len(out.Live), len(out.Original))
	}
	if out.CurrentIndex != 1 || !out.Shuffle || out.Repeat != session.RepeatAll || out.PlaybackRate != 1.25 {
		t.Errorf("loaded state = %+v, want index 1, shuffle, repeat all, rate 1.25", out)
	}

	got := out.Live[0]
	want := sampleTracks()[0]
	if got.Path != want.Path || got.Title != want.Title || got.Artist != want.Artist ||
		got.Genre != want.Genre || got.Year != want.Year || got.Duration != want.Duration {
		t.Errorf("track = %+v, want %+v", got, want)
	}
	if !got.DateAddedAt.Equal(want.DateAddedAt) {
		t.Errorf("DateAddedAt = %v, want %v", got.DateAddedAt, want.DateAddedAt)
	}
}

func TestManager_SaveSessionOverwrites(t *testing.T) {
	m := openTestStore(t)

	if err := m.SaveSession(session.Snapshot{Live: sampleTracks(), Original: sampleTracks(), CurrentIndex: 0, PlaybackRate: 1}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if err := m.SaveSession(session.Snapshot{CurrentIndex: -1, PlaybackRate: 1}); err != nil {
		t.Fatalf("second SaveSession: %v", err)
	}

	out, err := m.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if len(out.Live) != 0 || out.CurrentIndex != -1 {
		t.Errorf("loaded = %+v, want empty snapshot", out)
	}
}

func TestManager_LoadSession_Empty(t *testing.T) {
	m := openTestStore(t)

	out, err := m.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if out.CurrentIndex != -1 || out.PlaybackRate != 1.0 || len(out.Live) != 0 {
		t.Errorf("fresh store should load the empty session, got %+v", out)
	}
}

func TestManager_LoadSession_MalformedState(t *testing.T) {
	m := openTestStore(t)

	// An index pointing beyond the queue must degrade to the empty session,
	// never fail the boot.
	_, err := m.DB().Exec(`
		INSERT INTO session_state (id, current_index, shuffle, repeat_mode, playback_rate)
		VALUES (1, 42, 0, 0, 1.0)
	`)
	if err != nil {
		t.Fatalf("seeding bad state: %v", err)
	}

	out, err := m.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if out.CurrentIndex != -1 || len(out.Live) != 0 {
		t.Errorf("malformed state should load as empty, got %+v", out)
	}
}

func TestManager_CatalogRoundTrip(t *testing.T) {
	m := openTestStore(t)

	if err := m.ReplaceCatalog(sampleTracks()); err != nil {
		t.Fatalf("ReplaceCatalog: %v", err)
	}

	tracks, err := m.Catalog()
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if len(tracks) != 3 {
		t.Fatalf("len = %d, want 3", len(tracks))
	}

	count, err := m.TrackCount()
	if err != nil || count != 3 {
		t.Errorf("TrackCount = (%d, %v), want 3", count, err)
	}

	// Replacing again drops the old rows.
	if err := m.ReplaceCatalog(sampleTracks()[:1]); err != nil {
		t.Fatalf("ReplaceCatalog: %v", err)
	}
	count, _ = m.TrackCount()
	if count != 1 {
		t.Errorf("TrackCount = %d, want 1", count)
	}
}

func TestManager_CatalogJoinsPlayStats(t *testing.T) {
	m := openTestStore(t)
	if err := m.ReplaceCatalog(sampleTracks()); err != nil {
		t.Fatalf("ReplaceCatalog: %v", err)
	}

	when := time.Unix(1720000000, 0)
	for i := 0; i < 3; i++ {
		if err := m.RecordPlay("/music/a.mp3", when); err != nil {
			t.Fatalf("RecordPlay: %v", err)
		}
	}

	tracks, err := m.Catalog()
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	var played *catalog.Track
	for i := range tracks {
		if tracks[i].Path == "/music/a.mp3" {
			played = &tracks[i]
		} else if tracks[i].PlayCount != 0 {
			t.Errorf("%s has PlayCount %d, want 0", tracks[i].Path, tracks[i].PlayCount)
		}
	}
	if played == nil {
		t.Fatal("played track missing from catalog")
	}
	if played.PlayCount != 3 {
		t.Errorf("PlayCount = %d, want 3", played.PlayCount)
	}
	if !played.LastPlayedAt.Equal(when) {
		t.Errorf("LastPlayedAt = %v, want %v", played.LastPlayedAt, when)
	}
}

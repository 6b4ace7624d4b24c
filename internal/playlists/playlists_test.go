package playlists

import (
	"testing"
	"time"

	"github.com/rvallade/maha/internal/catalog"
	"github.com/rvallade/maha/internal/query"
	"github.com/rvallade/maha/internal/store"
)

func openTestPlaylists(t *testing.T) *Playlists {
	t.Helper()
	m, err := store.OpenAt(":memory:", nil)
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return New(m.DB())
}

func intp(n int) *int { return &n }

func TestPlaylists_CreateAndGet(t *testing.T) {
	p := openTestPlaylists(t)

	created, err := p.Create("Road Trip", "for long drives")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Create should assign an ID")
	}

	got, err := p.Get(created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Road Trip" || got.Description != "for long drives" {
		t.Errorf("Get = %+v, want name and description preserved", got)
	}
	if got.IsSmart {
		t.Error("manual playlist should not be smart")
	}
	if len(got.Tracks) != 0 {
		t.Errorf("Tracks = %v, want empty", got.Tracks)
	}
}

func TestPlaylists_Get_Missing(t *testing.T) {
	p := openTestPlaylists(t)

	if _, err := p.Get("nope"); err == nil {
		t.Error("Get of a missing playlist should fail")
	}
}

func TestPlaylists_All(t *testing.T) {
	p := openTestPlaylists(t)
	_, _ = p.Create("B side", "")
	_, _ = p.Create("A side", "")

	all, err := p.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}
}

func TestPlaylists_Rename(t *testing.T) {
	p := openTestPlaylists(t)
	pl, _ := p.Create("old", "")

	if err := p.Rename(pl.ID, "new"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	got, _ := p.Get(pl.ID)
	if got.Name != "new" {
		t.Errorf("Name = %q, want new", got.Name)
	}

	if err := p.Rename("missing", "x"); err == nil {
		t.Error("Rename of a missing playlist should fail")
	}
}

func TestPlaylists_Delete(t *testing.T) {
	p := openTestPlaylists(t)
	pl, _ := p.Create("gone", "")
	_ = p.AddTracks(pl.ID, []string{"/a", "/b"})

	if err := p.Delete(pl.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := p.Get(pl.ID); err == nil {
		t.Error("deleted playlist should not load")
	}
}

func TestPlaylists_AddTracks_Dedupes(t *testing.T) {
	p := openTestPlaylists(t)
	pl, _ := p.Create("mix", "")

	if err := p.AddTracks(pl.ID, []string{"/a", "/b"}); err != nil {
		t.Fatalf("AddTracks: %v", err)
	}
	if err := p.AddTracks(pl.ID, []string{"/b", "/c", "/a"}); err != nil {
		t.Fatalf("AddTracks: %v", err)
	}

	got, _ := p.Get(pl.ID)
	want := []string{"/a", "/b", "/c"}
	if len(got.Tracks) != 3 {
		t.Fatalf("Tracks = %v, want %v", got.Tracks, want)
	}
	for i := range want {
		if got.Tracks[i] != want[i] {
			t.Errorf("Tracks[%d] = %q, want %q", i, got.Tracks[i], want[i])
		}
	}
}

func TestPlaylists_RemoveTrack(t *testing.T) {
	p := openTestPlaylists(t)
	pl, _ := p.Create("mix", "")
	_ = p.AddTracks(pl.ID, []string{"/a", "/b", "/c"})

	if err := p.RemoveTrack(pl.ID, "/b"); err != nil {
		t.Fatalf("RemoveTrack: %v", err)
	}
	got, _ := p.Get(pl.ID)
	if len(got.Tracks) != 2 || got.Tracks[0] != "/a" || got.Tracks[1] != "/c" {
		t.Errorf("Tracks = %v, want [/a /c]", got.Tracks)
	}
}

func TestPlaylists_Reorder(t *testing.T) {
	p := openTestPlaylists(t)
	pl, _ := p.Create("mix", "")
	_ = p.AddTracks(pl.ID, []string{"/a", "/b", "/c"})

	if err := p.Reorder(pl.ID, 0, 2); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	got, _ := p.Get(pl.ID)
	if got.Tracks[0] != "/b" || got.Tracks[2] != "/a" {
		t.Errorf("Tracks = %v, want [/b /c /a]", got.Tracks)
	}

	if err := p.Reorder(pl.ID, 0, 9); err == nil {
		t.Error("out-of-range Reorder should fail")
	}
}

func smartCatalog() []catalog.Track {
	return []catalog.Track{
		{Path: "/jazz1", Genre: "Jazz", PlayCount: 9},
		{Path: "/jazz2", Genre: "Jazz", PlayCount: 2},
		{Path: "/rock1", Genre: "Rock", PlayCount: 40},
	}
}

func TestPlaylists_GenerateSmart(t *testing.T) {
	p := openTestPlaylists(t)

	criteria := query.SmartCriteria{Genres: []string{"Jazz"}, MinPlayCount: intp(5)}
	pl, err := p.GenerateSmart("Heavy Jazz", criteria, smartCatalog())
	if err != nil {
		t.Fatalf("GenerateSmart: %v", err)
	}
	if len(pl.Tracks) != 1 || pl.Tracks[0] != "/jazz1" {
		t.Errorf("Tracks = %v, want [/jazz1]", pl.Tracks)
	}

	// Criteria round-trip through the database.
	got, err := p.Get(pl.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.IsSmart || got.Criteria == nil {
		t.Fatal("loaded playlist should be smart with criteria")
	}
	if got.Criteria.MinPlayCount == nil || *got.Criteria.MinPlayCount != 5 {
		t.Errorf("Criteria = %+v, want min play count 5", got.Criteria)
	}
}

func TestPlaylists_GenerateSmart_InvalidCriteria(t *testing.T) {
	p := openTestPlaylists(t)

	_, err := p.GenerateSmart("bad", query.SmartCriteria{Limit: -1}, smartCatalog())
	if err == nil {
		t.Error("invalid criteria should fail")
	}
}

func TestPlaylists_SmartSnapshotDoesNotAutoUpdate(t *testing.T) {
	p := openTestPlaylists(t)

	criteria := query.SmartCriteria{Genres: []string{"Jazz"}}
	pl, err := p.GenerateSmart("Jazz", criteria, smartCatalog())
	if err != nil {
		t.Fatalf("GenerateSmart: %v", err)
	}
	if len(pl.Tracks) != 2 {
		t.Fatalf("Tracks = %v, want 2 jazz tracks", pl.Tracks)
	}

	// The catalog grows, but membership only moves on an explicit refresh.
	grown := append(smartCatalog(), catalog.Track{Path: "/jazz3", Genre: "Jazz"})

	got, _ := p.Get(pl.ID)
	if len(got.Tracks) != 2 {
		t.Errorf("Tracks = %v, membership must not change without refresh", got.Tracks)
	}

	if err := p.RefreshSmart(pl.ID, grown); err != nil {
		t.Fatalf("RefreshSmart: %v", err)
	}
	got, _ = p.Get(pl.ID)
	if len(got.Tracks) != 3 {
		t.Errorf("Tracks = %v, want 3 after refresh", got.Tracks)
	}
}

func TestPlaylists_RefreshSmart_ManualPlaylist(t *testing.T) {
	p := openTestPlaylists(t)
	pl, _ := p.Create("manual", "")

	if err := p.RefreshSmart(pl.ID, smartCatalog()); err == nil {
		t.Error("refreshing a manual playlist should fail")
	}
}

func TestPlaylists_UpdatedAtMoves(t *testing.T) {
	p := openTestPlaylists(t)
	pl, _ := p.Create("mix", "")

	before, _ := p.Get(pl.ID)
	time.Sleep(1100 * time.Millisecond)
	_ = p.AddTracks(pl.ID, []string{"/a"})

	after, _ := p.Get(pl.ID)
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want later than %v", after.UpdatedAt, before.UpdatedAt)
	}
}

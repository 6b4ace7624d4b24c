// Package playlists provides database-backed playlist records, including
// smart playlists whose membership is a materialized snapshot of a
// criteria evaluation.
package playlists

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/rvallade/maha/internal/catalog"
	dbutil "github.com/rvallade/maha/internal/db"
	"github.com/rvallade/maha/internal/query"
)

// Playlist is an ordered list of track references (file paths). A smart
// playlist additionally carries the criteria used to materialize it; its
// membership only changes through an explicit refresh.
type Playlist struct {
	ID          string
	Name        string
	Description string
	Tracks      []string // ordered file paths
	CreatedAt   time.Time
	UpdatedAt   time.Time
	IsSmart     bool
	Criteria    *query.SmartCriteria
}

// Playlists provides playlist storage operations.
type Playlists struct {
	db *sql.DB
}

// New creates a Playlists over the given database.
func New(db *sql.DB) *Playlists {
	return &Playlists{db: db}
}

// Create creates an empty manual playlist.
func (p *Playlists) Create(name, description string) (Playlist, error) {
	pl := Playlist{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	err := dbutil.WithTx(p.db, func(tx *sql.Tx) error {
		return insertPlaylist(tx, pl)
	})
	if err != nil {
		return Playlist{}, err
	}
	return pl, nil
}

// Get returns a playlist by ID.
func (p *Playlists) Get(id string) (*Playlist, error) {
	row := p.db.QueryRow(`
		SELECT id, name, description, is_smart, criteria, created_at, updated_at
		FROM playlists WHERE id = ?
	`, id)
	pl, err := scanPlaylist(row)
	if err != nil {
		return nil, err
	}
	pl.Tracks, err = p.tracksOf(id)
	if err != nil {
		return nil, err
	}
	return &pl, nil
}

// All returns every playlist with its tracks, oldest first.
func (p *Playlists) All() ([]Playlist, error) {
	rows, err := p.db.Query(`
		SELECT id, name, description, is_smart, criteria, created_at, updated_at
		FROM playlists ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Playlist
	for rows.Next() {
		pl, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Tracks, err = p.tracksOf(result[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Rename changes a playlist's name.
func (p *Playlists) Rename(id, name string) error {
	res, err := p.db.Exec(`UPDATE playlists SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().Unix(), id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

// Delete removes a playlist and its tracks.
func (p *Playlists) Delete(id string) error {
	return dbutil.WithTx(p.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM playlist_tracks WHERE playlist_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.Exec(`DELETE FROM playlists WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireRow(res, id)
	})
}

// AddTracks appends paths to a playlist, skipping paths already present.
func (p *Playlists) AddTracks(id string, paths []string) error {
	pl, err := p.Get(id)
	if err != nil {
		return err
	}
	merged := lo.Uniq(append(pl.Tracks, paths...))
	return p.replaceTracks(id, merged)
}

// RemoveTrack deletes every occurrence of path from the playlist.
func (p *Playlists) RemoveTrack(id, path string) error {
	pl, err := p.Get(id)
	if err != nil {
		return err
	}
	kept := lo.Filter(pl.Tracks, func(t string, _ int) bool { return t != path })
	return p.replaceTracks(id, kept)
}

// Reorder moves the track at fromIndex to toIndex.
func (p *Playlists) Reorder(id string, fromIndex, toIndex int) error {
	pl, err := p.Get(id)
	if err != nil {
		return err
	}
	if fromIndex < 0 || fromIndex >= len(pl.Tracks) || toIndex < 0 || toIndex >= len(pl.Tracks) {
		return fmt.Errorf("index out of range")
	}
	tracks := pl.Tracks
	moved := tracks[fromIndex]
	tracks = append(tracks[:fromIndex], tracks[fromIndex+1:]...)
	rest := make([]string, 0, len(tracks)+1)
	rest = append(rest, tracks[:toIndex]...)
	rest = append(rest, moved)
	rest = append(rest, tracks[toIndex:]...)
	return p.replaceTracks(id, rest)
}

// GenerateSmart materializes a new smart playlist from criteria evaluated
// over the catalog. The snapshot does not auto-update as the catalog
// changes; RefreshSmart is the only way membership moves.
func (p *Playlists) GenerateSmart(name string, criteria query.SmartCriteria, tracks []catalog.Track) (Playlist, error) {
	if err := criteria.Validate(); err != nil {
		return Playlist{}, fmt.Errorf("invalid criteria: %w", err)
	}
	matched := query.MatchSmart(tracks, criteria)
	pl := Playlist{
		ID:        uuid.NewString(),
		Name:      name,
		Tracks:    lo.Map(matched, func(t catalog.Track, _ int) string { return t.Path }),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		IsSmart:   true,
		Criteria:  &criteria,
	}
	err := dbutil.WithTx(p.db, func(tx *sql.Tx) error {
		if err := insertPlaylist(tx, pl); err != nil {
			return err
		}
		return insertTracks(tx, pl.ID, pl.Tracks)
	})
	if err != nil {
		return Playlist{}, err
	}
	return pl, nil
}

// RefreshSmart re-evaluates a smart playlist's criteria over the given
// catalog and replaces its snapshot.
func (p *Playlists) RefreshSmart(id string, tracks []catalog.Track) error {
	pl, err := p.Get(id)
	if err != nil {
		return err
	}
	if !pl.IsSmart || pl.Criteria == nil {
		return fmt.Errorf("playlist %s is not a smart playlist", id)
	}
	matched := query.MatchSmart(tracks, *pl.Criteria)
	paths := lo.Map(matched, func(t catalog.Track, _ int) string { return t.Path })
	return p.replaceTracks(id, paths)
}

func (p *Playlists) replaceTracks(id string, paths []string) error {
	return dbutil.WithTx(p.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM playlist_tracks WHERE playlist_id = ?`, id); err != nil {
			return err
		}
		if err := insertTracks(tx, id, paths); err != nil {
			return err
		}
		_, err := tx.Exec(`UPDATE playlists SET updated_at = ? WHERE id = ?`, time.Now().Unix(), id)
		return err
	})
}

func (p *Playlists) tracksOf(id string) ([]string, error) {
	rows, err := p.db.Query(`
		SELECT path FROM playlist_tracks WHERE playlist_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

func insertPlaylist(tx *sql.Tx, pl Playlist) error {
	var criteriaJSON any
	if pl.Criteria != nil {
		data, err := json.Marshal(pl.Criteria)
		if err != nil {
			return err
		}
		criteriaJSON = string(data)
	}
	_, err := tx.Exec(`
		INSERT INTO playlists (id, name, description, is_smart, criteria, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, pl.ID, pl.Name, pl.Description, pl.IsSmart, criteriaJSON, pl.CreatedAt.Unix(), pl.UpdatedAt.Unix())
	return err
}

func insertTracks(tx *sql.Tx, id string, paths []string) error {
	stmt, err := tx.Prepare(`
		INSERT INTO playlist_tracks (playlist_id, position, path) VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, path := range paths {
		if _, err := stmt.Exec(id, i, path); err != nil {
			return err
		}
	}
	return nil
}

func scanPlaylist(row rowScanner) (Playlist, error) {
	var pl Playlist
	var description, criteriaJSON sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(&pl.ID, &pl.Name, &description, &pl.IsSmart, &criteriaJSON, &createdAt, &updatedAt)
	if err != nil {
		return pl, err
	}
	pl.Description = dbutil.NullStringValue(description)
	pl.CreatedAt = time.Unix(createdAt, 0)
	pl.UpdatedAt = time.Unix(updatedAt, 0)
	if criteriaJSON.Valid && criteriaJSON.String != "" {
		var c query.SmartCriteria
		// A criteria blob that no longer parses leaves the playlist usable
		// as a plain snapshot; it just cannot be refreshed.
		if err := json.Unmarshal([]byte(criteriaJSON.String), &c); err == nil {
			pl.Criteria = &c
		}
	}
	return pl, nil
}

// rowScanner matches both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("playlist %s not found", id)
	}
	return nil
}

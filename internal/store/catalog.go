package store

import (
	"database/sql"
	"time"

	"github.com/rvallade/maha/internal/catalog"
	dbutil "github.com/rvallade/maha/internal/db"
)

// rowScanner matches both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrack(row rowScanner) (catalog.Track, error) {
	var t catalog.Track
	var artist, album, genre sql.NullString
	var year, rating, durationMS, addedAt sql.NullInt64

	err := row.Scan(&t.Path, &t.Title, &artist, &album, &genre, &year, &rating, &durationMS, &addedAt)
	if err != nil {
		return t, err
	}
	t.Artist = dbutil.NullStringValue(artist)
	t.Album = dbutil.NullStringValue(album)
	t.Genre = dbutil.NullStringValue(genre)
	t.Year = int(dbutil.NullInt64Value(year))
	t.Rating = int(dbutil.NullInt64Value(rating))
	t.Duration = time.Duration(dbutil.NullInt64Value(durationMS)) * time.Millisecond
	t.DateAddedAt = dbutil.TimeValue(addedAt)
	return t, nil
}

// ReplaceCatalog swaps the cached track catalog for a freshly scanned one.
func (m *Manager) ReplaceCatalog(tracks []catalog.Track) error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM library_tracks`); err != nil {
			return err
		}
		stmt, err := tx.Prepare(`
			INSERT INTO library_tracks (path, title, artist, album, genre, year, rating, duration_ms, added_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, t := range tracks {
			_, err := stmt.Exec(t.Path, t.Title, t.Artist, t.Album, t.Genre,
				t.Year, t.Rating, t.Duration.Milliseconds(), dbutil.UnixOrZero(t.DateAddedAt))
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Catalog returns the cached catalog with play statistics joined in,
// ordered by artist, album then path.
func (m *Manager) Catalog() ([]catalog.Track, error) {
	rows, err := m.db.Query(`
		SELECT lt.path, lt.title, lt.artist, lt.album, lt.genre, lt.year, lt.rating,
		       lt.duration_ms, lt.added_at,
		       COALESCE(ps.play_count, 0), ps.last_played
		FROM library_tracks lt
		LEFT JOIN play_stats ps ON ps.path = lt.path
		ORDER BY lt.artist COLLATE NOCASE, lt.album COLLATE NOCASE, lt.path
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []catalog.Track
	for rows.Next() {
		var t catalog.Track
		var artist, album, genre sql.NullString
		var year, rating, durationMS, addedAt, lastPlayed sql.NullInt64

		err := rows.Scan(&t.Path, &t.Title, &artist, &album, &genre, &year, &rating,
			&durationMS, &addedAt, &t.PlayCount, &lastPlayed)
		if err != nil {
			return nil, err
		}
		t.Artist = dbutil.NullStringValue(artist)
		t.Album = dbutil.NullStringValue(album)
		t.Genre = dbutil.NullStringValue(genre)
		t.Year = int(dbutil.NullInt64Value(year))
		t.Rating = int(dbutil.NullInt64Value(rating))
		t.Duration = time.Duration(dbutil.NullInt64Value(durationMS)) * time.Millisecond
		t.DateAddedAt = dbutil.TimeValue(addedAt)
		t.LastPlayedAt = dbutil.TimeValue(lastPlayed)
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// TrackCount returns the number of tracks in the cached catalog.
func (m *Manager) TrackCount() (int, error) {
	var count int
	err := m.db.QueryRow(`SELECT COUNT(*) FROM library_tracks`).Scan(&count)
	return count, err
}

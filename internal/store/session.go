package store

import (
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/rvallade/maha/internal/catalog"
	dbutil "github.com/rvallade/maha/internal/db"
	"github.com/rvallade/maha/internal/session"
)

// Verify Manager satisfies the session's persistence contract.
var _ session.Store = (*Manager)(nil)

// SaveSession writes a full session snapshot in one transaction. Callers
// rely on this being synchronous: when it returns, the snapshot is durable.
func (m *Manager) SaveSession(snap session.Snapshot) error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM session_tracks`); err != nil {
			return err
		}

		_, err := tx.Exec(`
			INSERT INTO session_state (id, current_index, shuffle, repeat_mode, playback_rate)
			VALUES (1, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				current_index = excluded.current_index,
				shuffle = excluded.shuffle,
				repeat_mode = excluded.repeat_mode,
				playback_rate = excluded.playback_rate
		`, snap.CurrentIndex, snap.Shuffle, int(snap.Repeat), snap.PlaybackRate)
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO session_tracks (list, position, path, title, artist, album, genre, year, rating, duration_ms, added_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		insert := func(list string, tracks []catalog.Track) error {
			for i, t := range tracks {
				_, err := stmt.Exec(list, i, t.Path, t.Title, t.Artist, t.Album, t.Genre,
					t.Year, t.Rating, t.Duration.Milliseconds(), dbutil.UnixOrZero(t.DateAddedAt))
				if err != nil {
					return err
				}
			}
			return nil
		}
		if err := insert("live", snap.Live); err != nil {
			return err
		}
		return insert("original", snap.Original)
	})
}

// LoadSession rehydrates the persisted session snapshot. Missing or
// malformed state degrades to the empty session so a corrupt store never
// prevents boot.
func (m *Manager) LoadSession() (session.Snapshot, error) {
	empty := session.Snapshot{CurrentIndex: -1, PlaybackRate: 1.0}

	var currentIndex, repeatMode int
	var shuffle bool
	var rate float64
	row := m.db.QueryRow(`SELECT current_index, shuffle, repeat_mode, playback_rate FROM session_state WHERE id = 1`)
	err := row.Scan(&currentIndex, &shuffle, &repeatMode, &rate)
	if errors.Is(err, sql.ErrNoRows) {
		return empty, nil
	}
	if err != nil {
		return empty, err
	}

	live, err := m.sessionTracks("live")
	if err != nil {
		return empty, err
	}
	original, err := m.sessionTracks("original")
	if err != nil {
		return empty, err
	}

	snap := session.Snapshot{
		Live:         live,
		Original:     original,
		CurrentIndex: currentIndex,
		Shuffle:      shuffle,
		Repeat:       session.RepeatMode(repeatMode),
		PlaybackRate: rate,
	}
	if !validSnapshot(snap) {
		m.log.Warn("discarding malformed session state",
			zap.Int("current_index", currentIndex),
			zap.Int("live_tracks", len(live)))
		return empty, nil
	}
	return snap, nil
}

func validSnapshot(snap session.Snapshot) bool {
	if snap.CurrentIndex < -1 || snap.CurrentIndex >= len(snap.Live) {
		return false
	}
	if snap.Repeat < session.RepeatNone || snap.Repeat > session.RepeatAll {
		return false
	}
	if snap.PlaybackRate <= 0 {
		return false
	}
	return true
}

func (m *Manager) sessionTracks(list string) ([]catalog.Track, error) {
	rows, err := m.db.Query(`
		SELECT path, title, artist, album, genre, year, rating, duration_ms, added_at
		FROM session_tracks
		WHERE list = ?
		ORDER BY position
	`, list)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []catalog.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

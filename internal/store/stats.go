package store

import (
	"database/sql"
	"time"

	dbutil "github.com/rvallade/maha/internal/db"
)

// historyCap bounds the play-history ring buffer.
const historyCap = 100

// PlayCount is the per-track statistics record.
type PlayCount struct {
	Count      int
	LastPlayed time.Time
}

// HistoryEntry is one play-history record.
type HistoryEntry struct {
	Path     string
	PlayedAt time.Time
}

// RecordPlay increments the track's play counter and appends to the
// play-history log, trimming the log to its cap. Playback start counts as
// a play; completion is not required.
func (m *Manager) RecordPlay(path string, at time.Time) error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO play_stats (path, play_count, last_played)
			VALUES (?, 1, ?)
			ON CONFLICT(path) DO UPDATE SET
				play_count = play_count + 1,
				last_played = excluded.last_played
		`, path, at.Unix())
		if err != nil {
			return err
		}

		if _, err := tx.Exec(`INSERT INTO play_history (path, played_at) VALUES (?, ?)`, path, at.Unix()); err != nil {
			return err
		}

		_, err = tx.Exec(`
			DELETE FROM play_history
			WHERE id NOT IN (SELECT id FROM play_history ORDER BY id DESC LIMIT ?)
		`, historyCap)
		return err
	})
}

// PlayCounts returns the play statistics for every played track, keyed by
// path.
func (m *Manager) PlayCounts() (map[string]PlayCount, error) {
	rows, err := m.db.Query(`SELECT path, play_count, last_played FROM play_stats`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]PlayCount)
	for rows.Next() {
		var path string
		var count int
		var lastPlayed sql.NullInt64
		if err := rows.Scan(&path, &count, &lastPlayed); err != nil {
			return nil, err
		}
		counts[path] = PlayCount{Count: count, LastPlayed: dbutil.TimeValue(lastPlayed)}
	}
	return counts, rows.Err()
}

// History returns up to limit history entries, newest first.
func (m *Manager) History(limit int) ([]HistoryEntry, error) {
	if limit <= 0 || limit > historyCap {
		limit = historyCap
	}
	rows, err := m.db.Query(`
		SELECT path, played_at FROM play_history ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var playedAt int64
		if err := rows.Scan(&e.Path, &playedAt); err != nil {
			return nil, err
		}
		e.PlayedAt = time.Unix(playedAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearStats wipes all play counters and history.
func (m *Manager) ClearStats() error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM play_stats`); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM play_history`)
		return err
	})
}

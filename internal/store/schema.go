package store

import "database/sql"

const currentSchemaVersion = 3

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS session_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			current_index INTEGER NOT NULL DEFAULT -1,
			shuffle INTEGER NOT NULL DEFAULT 0,
			repeat_mode INTEGER NOT NULL DEFAULT 0,
			playback_rate REAL NOT NULL DEFAULT 1.0
		);

		CREATE TABLE IF NOT EXISTS session_tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			list TEXT NOT NULL CHECK (list IN ('live', 'original')),
			position INTEGER NOT NULL,
			path TEXT NOT NULL,
			title TEXT NOT NULL,
			artist TEXT,
			album TEXT,
			genre TEXT,
			year INTEGER,
			rating INTEGER,
			duration_ms INTEGER,
			added_at INTEGER,
			UNIQUE(list, position)
		);

		CREATE TABLE IF NOT EXISTS library_tracks (
			path TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			artist TEXT,
			album TEXT,
			genre TEXT,
			year INTEGER,
			rating INTEGER,
			duration_ms INTEGER,
			added_at INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_library_artist ON library_tracks(artist);
		CREATE INDEX IF NOT EXISTS idx_library_album ON library_tracks(album);

		CREATE TABLE IF NOT EXISTS playlists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			is_smart INTEGER NOT NULL DEFAULT 0,
			criteria TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS playlist_tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			playlist_id TEXT NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			path TEXT NOT NULL,
			UNIQUE(playlist_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_playlist_tracks ON playlist_tracks(playlist_id, position);

		CREATE TABLE IF NOT EXISTS play_stats (
			path TEXT PRIMARY KEY,
			play_count INTEGER NOT NULL DEFAULT 0,
			last_played INTEGER
		);

		CREATE TABLE IF NOT EXISTS play_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL,
			played_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS search_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query TEXT NOT NULL,
			searched_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	if err != nil {
		return err
	}

	// Migration: playback_rate column was added after the first release.
	_, _ = db.Exec(`ALTER TABLE session_state ADD COLUMN playback_rate REAL NOT NULL DEFAULT 1.0`)

	return nil
}

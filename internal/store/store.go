// Package store is the persisted key-value/record store backing the
// session, catalog cache, play statistics and search history. It uses a
// single sqlite database under the user's data directory.
package store

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "maha"
	dbFileName = "maha.db"
)

// Manager owns the database handle.
type Manager struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens (creating if needed) the store at the default location.
func Open(log *zap.Logger) (*Manager, error) {
	dbPath, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	return OpenAt(dbPath, log)
}

// OpenAt opens the store at an explicit path (":memory:" for tests).
func OpenAt(path string, log *zap.Logger) (*Manager, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Manager{db: db, log: log}, nil
}

// DB exposes the underlying handle for collaborating stores.
func (m *Manager) DB() *sql.DB {
	return m.db
}

// Close closes the database.
func (m *Manager) Close() error {
	return m.db.Close()
}

package store

import (
	"database/sql"
	"strings"
	"time"

	dbutil "github.com/rvallade/maha/internal/db"
)

// searchHistoryCap bounds the saved search history.
const searchHistoryCap = 20

// AddSearch saves a search query, moving a repeated query to the front and
// trimming the history to its cap. Blank queries are ignored.
func (m *Manager) AddSearch(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM search_history WHERE query = ?`, query); err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO search_history (query, searched_at) VALUES (?, ?)`, query, time.Now().Unix()); err != nil {
			return err
		}
		_, err := tx.Exec(`
			DELETE FROM search_history
			WHERE id NOT IN (SELECT id FROM search_history ORDER BY id DESC LIMIT ?)
		`, searchHistoryCap)
		return err
	})
}

// SearchHistory returns saved queries, newest first.
func (m *Manager) SearchHistory() ([]string, error) {
	rows, err := m.db.Query(`SELECT query FROM search_history ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// RemoveSearch deletes one query from the history.
func (m *Manager) RemoveSearch(query string) error {
	_, err := m.db.Exec(`DELETE FROM search_history WHERE query = ?`, query)
	return err
}

// ClearSearchHistory wipes the search history.
func (m *Manager) ClearSearchHistory() error {
	_, err := m.db.Exec(`DELETE FROM search_history`)
	return err
}

package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Exchange is one dispatched command: what was heard, how it was classified,
// and what the assistant said back.
type Exchange struct {
	ID     string
	Heard  string
	Intent string
	Reply  string
	At     time.Time
}

// Store keeps an audit log of exchanges in SQLite. It records what happened;
// it is never read back to restore state (pending reminders in particular
// are not recoverable from it).
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database at dbPath, creating the exchanges
// table if needed.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	createTableSQL := `CREATE TABLE IF NOT EXISTS exchanges (
		id TEXT PRIMARY KEY,
		heard TEXT NOT NULL,
		intent TEXT NOT NULL,
		reply TEXT NOT NULL,
		at DATETIME NOT NULL
	);`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create exchanges table: %w", err)
	}

	return &Store{db: db}, nil
}

// Record inserts one exchange. A missing ID or timestamp is filled in.
func (s *Store) Record(ex Exchange) error {
	if ex.ID == "" {
		ex.ID = uuid.New().String()
	}
	if ex.At.IsZero() {
		ex.At = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO exchanges (id, heard, intent, reply, at) VALUES (?, ?, ?, ?, ?)`,
		ex.ID, ex.Heard, ex.Intent, ex.Reply, ex.At,
	)
	if err != nil {
		return fmt.Errorf("unable to insert exchange: %w", err)
	}
	return nil
}

// Recent returns up to n exchanges, newest first.
func (s *Store) Recent(n int) ([]Exchange, error) {
	rows, err := s.db.Query(
		`SELECT id, heard, intent, reply, at FROM exchanges ORDER BY at DESC, id LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("unable to query exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []Exchange
	for rows.Next() {
		var ex Exchange
		if err := rows.Scan(&ex.ID, &ex.Heard, &ex.Intent, &ex.Reply, &ex.At); err != nil {
			return nil, fmt.Errorf("unable to scan exchange: %w", err)
		}
		exchanges = append(exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return exchanges, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

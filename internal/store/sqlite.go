package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"signalnoise/internal/models"
)

// SQLiteStore implements the Store interface by keeping the snapshot document
// in a single row of a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite store with the given database path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// :memory: databases are per connection
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, dbPath: dbPath}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		document TEXT NOT NULL,
		saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Location returns the database path.
func (s *SQLiteStore) Location() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveAll replaces the stored snapshot document in one transaction.
func (s *SQLiteStore) SaveAll(ctx context.Context, signal, noise []models.Task) error {
	if err := ctx.Err(); err != nil {
		log.Printf("error saving tasks to %s: %v", s.dbPath, err)
		return err
	}

	data, err := encodeSnapshot(signal, noise)
	if err != nil {
		log.Printf("error saving tasks to %s: %v", s.dbPath, err)
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("error saving tasks to %s: %v", s.dbPath, err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, document, saved_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET document = excluded.document, saved_at = excluded.saved_at
	`, string(data), time.Now())
	if err != nil {
		log.Printf("error saving tasks to %s: %v", s.dbPath, err)
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		log.Printf("error saving tasks to %s: %v", s.dbPath, err)
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return nil
}

// LoadAll reads the stored snapshot. No row, or an undecodable one, loads as
// empty. A failed query is returned as an error.
func (s *SQLiteStore) LoadAll(ctx context.Context) (models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		log.Printf("error loading tasks from %s: %v", s.dbPath, err)
		return models.Snapshot{}, err
	}

	var document string

	err := s.db.QueryRowContext(ctx, `SELECT document FROM snapshots WHERE id = 1`).Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return emptySnapshot(), nil
		}
		log.Printf("error loading tasks from %s: %v", s.dbPath, err)
		return models.Snapshot{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	snapshot, err := decodeSnapshot([]byte(document))
	if err != nil {
		log.Printf("error loading tasks from %s: %v", s.dbPath, err)
		return emptySnapshot(), nil
	}

	return snapshot, nil
}

// EraseAll deletes the stored snapshot row.
func (s *SQLiteStore) EraseAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		log.Printf("error clearing %s: %v", s.dbPath, err)
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots`); err != nil {
		log.Printf("error clearing %s: %v", s.dbPath, err)
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	return nil
}

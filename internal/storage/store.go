// Package storage persists development application records in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/applications"
	pdferrors "github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/errors"
)

// DefaultPath is the database file created in the working directory
const DefaultPath = "data.sqlite"

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// ErrNotFound is returned by Get for an unknown application number
var ErrNotFound = errors.New("application not found")

// Store is a SQLite database of records keyed by application number
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path and ensures its schema
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close() // Close error less important than schema error
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert stores r unless a record with the same application number exists.
// It reports whether a row was inserted.
func (s *Store) Upsert(ctx context.Context, r applications.Record) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO data
			(council_reference, address, description, info_url, comment_url,
			 date_scraped, date_received, legal_description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ApplicationNumber, r.Address, r.Description, r.InformationURL, r.CommentURL,
		r.ScrapeDate, r.ReceivedDate, r.LegalDescription)
	if err != nil {
		return false, pdferrors.Wrap(pdferrors.KindStorageWrite, "failed to upsert "+r.ApplicationNumber, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, pdferrors.Wrap(pdferrors.KindStorageWrite, "failed to read upsert result", err)
	}
	return n > 0, nil
}

const selectRecord = `
	SELECT council_reference, address, description, COALESCE(info_url, ''), COALESCE(comment_url, ''),
		COALESCE(date_scraped, ''), COALESCE(date_received, ''), COALESCE(legal_description, '')
	FROM data`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (applications.Record, error) {
	var r applications.Record
	err := row.Scan(&r.ApplicationNumber, &r.Address, &r.Description, &r.InformationURL,
		&r.CommentURL, &r.ScrapeDate, &r.ReceivedDate, &r.LegalDescription)
	return r, err
}

// Get returns the record of an application number
func (s *Store) Get(ctx context.Context, applicationNumber string) (applications.Record, error) {
	r, err := scanRecord(s.db.QueryRowContext(ctx, selectRecord+` WHERE council_reference = ?`, applicationNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return applications.Record{}, fmt.Errorf("%s: %w", applicationNumber, ErrNotFound)
	}
	if err != nil {
		return applications.Record{}, fmt.Errorf("failed to get application: %w", err)
	}
	return r, nil
}

// List returns up to limit records, most recently scraped first. A limit
// of zero or less returns every record.
func (s *Store) List(ctx context.Context, limit int) ([]applications.Record, error) {
	query := selectRecord + ` ORDER BY date_scraped DESC, council_reference`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var records []applications.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Count returns the number of stored records
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM data`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return n, nil
}

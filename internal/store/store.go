// Package store persists scan results to a SQL database.
//
// Two drivers are supported: sqlite3 for local single-file storage and
// pgx for PostgreSQL. The schema and queries use numbered placeholders,
// which both drivers accept.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/typegraph-io/typegraph/scan"
)

// ErrScanNotFound is returned when a scan ID does not exist in the store.
var ErrScanNotFound = errors.New("scan not found")

// Store provides access to persisted scan results.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// ScanRecord summarizes a persisted scan result.
type ScanRecord struct {
	ID         string    `json:"id"`
	Generated  time.Time `json:"generated"`
	ClassCount int       `json:"class_count"`
}

// Open connects to the database identified by driver and dsn.
func Open(driver, dsn string, log *zap.Logger) (*Store, error) {
	switch driver {
	case "sqlite3", "pgx":
	default:
		return nil, fmt.Errorf("unsupported store driver: %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewWithDB(db, log), nil
}

// NewWithDB wraps an existing database handle. Used by tests.
func NewWithDB(db *sql.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log}
}

// Init creates the schema if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scans (
			id TEXT PRIMARY KEY,
			generated TIMESTAMP NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS scan_classes (
			scan_id TEXT NOT NULL,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			module TEXT NOT NULL,
			PRIMARY KEY (scan_id, name)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// SaveResult persists a scan result. The full result document is stored
// as JSON alongside one row per class for listing and search queries.
func (s *Store) SaveResult(ctx context.Context, r *scan.Result) error {
	payload, err := r.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scans (id, generated, payload) VALUES ($1, $2, $3)`,
		r.ID(), r.Generated(), string(payload))
	if err != nil {
		return fmt.Errorf("failed to insert scan: %w", err)
	}

	for _, ci := range r.AllClasses() {
		module := ""
		if ci.Provenance.Module != nil {
			module = ci.Provenance.Module.Name
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO scan_classes (scan_id, name, kind, module) VALUES ($1, $2, $3, $4)`,
			r.ID(), ci.Name, ci.Kind.String(), module)
		if err != nil {
			return fmt.Errorf("failed to insert class %s: %w", ci.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scan: %w", err)
	}

	s.log.Info("saved scan result",
		zap.String("scan_id", r.ID()),
		zap.Int("classes", r.Len()))
	return nil
}

// LoadResult restores a persisted scan result. The loader is attached to
// the restored result for subsequent handle resolution.
func (s *Store) LoadResult(ctx context.Context, id string, loader scan.Loader) (*scan.Result, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM scans WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query scan: %w", err)
	}

	r, err := scan.LoadResultJSON([]byte(payload), loader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode scan %s: %w", id, err)
	}
	return r, nil
}

// ListScans returns a summary of every persisted scan, newest first.
func (s *Store) ListScans(ctx context.Context) ([]ScanRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.generated, COUNT(c.name)
		 FROM scans s
		 LEFT JOIN scan_classes c ON c.scan_id = s.id
		 GROUP BY s.id, s.generated
		 ORDER BY s.generated DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var rec ScanRecord
		if err := rows.Scan(&rec.ID, &rec.Generated, &rec.ClassCount); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteScan removes a persisted scan and its class rows.
func (s *Store) DeleteScan(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM scan_classes WHERE scan_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete scan classes: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM scans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scan: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrScanNotFound
	}

	return tx.Commit()
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists reconciled datasets in SQLite and answers the
// read-only query surface. Writes are full-replace and all-or-nothing:
// a failed run leaves the previously committed dataset untouched.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/energyatlas/accessdb/internal/reconcile"
	"github.com/energyatlas/accessdb/pkg/types"
)

// StoreWriteError reports a failed dataset write. The transaction is
// rolled back; the store keeps its prior consistent state.
type StoreWriteError struct {
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("writing dataset: %v", e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// Store owns the SQLite database holding reconciled observations.
// Writes go through Replace; all other methods are read-only and safe
// to call concurrently.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at cfg.DBPath and ensures the
// schema exists.
func Open(cfg types.StoreConfig) (*Store, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "accessdb.db"
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS countries (
			code TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			region TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS observations (
			country_code TEXT NOT NULL REFERENCES countries(code),
			year INTEGER NOT NULL,
			indicator TEXT NOT NULL,
			value REAL NOT NULL,
			source_id TEXT NOT NULL,
			ambiguous INTEGER NOT NULL DEFAULT 0,
			outlier INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (country_code, year, indicator)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_observations_indicator_year
			ON observations(indicator, year)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			sources INTEGER NOT NULL,
			records INTEGER NOT NULL,
			warnings INTEGER NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Replace swaps the stored dataset for ds in a single transaction:
// readers see the old dataset or the new one, never a mix. Running the
// same dataset twice leaves the store query-identical. countries seeds
// the gazetteer as (code, name, region) triples.
func (s *Store) Replace(ctx context.Context, ds *reconcile.Dataset, countries [][3]string, report types.RunReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StoreWriteError{Err: fmt.Errorf("beginning transaction: %w", err)}
	}
	defer tx.Rollback()

	cstmt, err := tx.PrepareContext(ctx,
		`INSERT INTO countries (code, name, region) VALUES (?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET name=excluded.name, region=excluded.region`)
	if err != nil {
		return &StoreWriteError{Err: fmt.Errorf("preparing country insert: %w", err)}
	}
	defer cstmt.Close()
	for _, c := range countries {
		if _, err := cstmt.ExecContext(ctx, c[0], c[1], c[2]); err != nil {
			return &StoreWriteError{Err: fmt.Errorf("seeding country %s: %w", c[0], err)}
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM observations`); err != nil {
		return &StoreWriteError{Err: fmt.Errorf("clearing prior dataset: %w", err)}
	}

	ostmt, err := tx.PrepareContext(ctx,
		`INSERT INTO observations (country_code, year, indicator, value, source_id, ambiguous, outlier)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return &StoreWriteError{Err: fmt.Errorf("preparing observation insert: %w", err)}
	}
	defer ostmt.Close()

	for _, e := range ds.Sorted() {
		_, err := ostmt.ExecContext(ctx,
			e.CountryCode, e.Year, string(e.Indicator), e.Value, e.SourceID,
			boolInt(e.Ambiguous), boolInt(e.Outlier),
		)
		if err != nil {
			return &StoreWriteError{Err: fmt.Errorf("inserting %s/%d/%s: %w", e.CountryCode, e.Year, e.Indicator, err)}
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, finished_at, sources, records, warnings)
		 VALUES (?, ?, ?, ?, ?)`,
		report.StartedAt.UTC().Format(time.RFC3339Nano),
		report.FinishedAt.UTC().Format(time.RFC3339Nano),
		len(report.Sources), ds.Len(), report.TotalWarnings(),
	)
	if err != nil {
		return &StoreWriteError{Err: fmt.Errorf("recording run: %w", err)}
	}

	if err := tx.Commit(); err != nil {
		return &StoreWriteError{Err: fmt.Errorf("committing: %w", err)}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

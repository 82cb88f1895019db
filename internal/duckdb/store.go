// Package duckdb provides a persistent coordinate database of transcripts
// and a queryable table of exported aggregate units, both stored in DuckDB.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"
)

// Store manages a DuckDB connection holding transcripts, source
// fingerprints and aggregate units.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path, logger: zap.NewNop()}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// SetLogger sets the logger for import and query statistics.
func (s *Store) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, or "" for an in-memory database.
func (s *Store) Path() string {
	return s.path
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS transcripts (
		transcript_id VARCHAR,
		gene_id VARCHAR,
		gene_name VARCHAR,
		chrom VARCHAR,
		chrom_key VARCHAR,
		start_pos BIGINT,
		end_pos BIGINT,
		strand TINYINT,
		biotype VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS sources (
		path VARCHAR PRIMARY KEY,
		size BIGINT,
		mod_time VARCHAR,
		imported_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS aggregate_units (
		seq BIGINT,
		group_id VARCHAR,
		chrom VARCHAR,
		pos BIGINT,
		ref VARCHAR,
		alt VARCHAR
	)`,
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

func (fp FileFingerprint) modTime() string {
	return fp.ModTime.UTC().Format(time.RFC3339Nano)
}

// SourceCurrent reports whether fp matches the fingerprint recorded for its
// path by the last RecordSource.
func (s *Store) SourceCurrent(ctx context.Context, fp FileFingerprint) (bool, error) {
	var size int64
	var modTime string
	err := s.db.QueryRowContext(ctx,
		`SELECT size, mod_time FROM sources WHERE path=?`, fp.Path).Scan(&size, &modTime)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query source: %w", err)
	}
	return size == fp.Size && modTime == fp.modTime(), nil
}

// RecordSource stores fp as the current fingerprint of its path. Any other
// recorded source is forgotten, since the transcripts table holds a single
// import.
func (s *Store) RecordSource(ctx context.Context, fp FileFingerprint) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sources`); err != nil {
		return fmt.Errorf("clear sources: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sources VALUES (?, ?, ?, ?)`,
		fp.Path, fp.Size, fp.modTime(), time.Now().UTC()); err != nil {
		return fmt.Errorf("record source: %w", err)
	}
	return nil
}

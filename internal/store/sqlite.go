// BYZRA ⸻ internal/store/sqlite.go
// records in a SQLite table, used by the daemon for incremental appends

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"tempora/internal/media"
)

const schema = `CREATE TABLE IF NOT EXISTS records (
    file_path    TEXT PRIMARY KEY,
    position     INTEGER NOT NULL,
    capture_time TEXT NULL,
    source       TEXT NULL,
    sidecar_path TEXT NULL
)`

// an updated record keeps its position
const upsert = `INSERT INTO records (file_path, position, capture_time, source, sidecar_path)
    VALUES (?, ?, ?, ?, ?)
    ON CONFLICT(file_path) DO UPDATE SET
        capture_time = excluded.capture_time,
        source = excluded.source,
        sidecar_path = excluded.sidecar_path`

type SQLiteStore struct {
	db   *sql.DB
	path string
}

// opens or creates the database and its table
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// pragmas are per connection
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create records table: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// replaces the table contents in one transaction
func (s *SQLiteStore) Save(ctx context.Context, records []media.Record) error {
	return s.write(ctx, records, true)
}

// inserts or updates records by file path, keeping the others
func (s *SQLiteStore) Append(ctx context.Context, records ...media.Record) error {
	return s.write(ctx, records, false)
}

func (s *SQLiteStore) write(ctx context.Context, records []media.Record, replace bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	next := 0
	if replace {
		if _, err := tx.ExecContext(ctx, "DELETE FROM records"); err != nil {
			return fmt.Errorf("clear records: %w", err)
		}
	} else {
		row := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(position) + 1, 0) FROM records")
		if err := row.Scan(&next); err != nil {
			return fmt.Errorf("read last position: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		source, _ := rec.Source()
		sidecar, _ := rec.SidecarPath()
		if _, err := stmt.ExecContext(ctx,
			rec.FilePath(),
			next+i,
			nullableString(rec.CaptureTimeString()),
			nullableString(source),
			nullableString(sidecar),
		); err != nil {
			return fmt.Errorf("write record %s: %w", rec.FilePath(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit records: %w", err)
	}
	return nil
}

// records in the order they were saved, appended ones last
func (s *SQLiteStore) Load(ctx context.Context) ([]media.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT file_path, capture_time, source, sidecar_path FROM records ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []media.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// single record by path, false when missing
func (s *SQLiteStore) Get(ctx context.Context, filePath string) (media.Record, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT file_path, capture_time, source, sidecar_path FROM records WHERE file_path = ?", filePath)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return media.Record{}, false, nil
	}
	if err != nil {
		return media.Record{}, false, err
	}
	return rec, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (media.Record, error) {
	var (
		path                         string
		captureTime, source, sidecar sql.NullString
	)
	if err := row.Scan(&path, &captureTime, &source, &sidecar); err != nil {
		if err == sql.ErrNoRows {
			return media.Record{}, err
		}
		return media.Record{}, fmt.Errorf("scan record: %w", err)
	}

	var opts []media.Option
	if captureTime.Valid {
		t, err := media.ParseTime(captureTime.String)
		if err != nil {
			return media.Record{}, fmt.Errorf("record %s: %w", path, err)
		}
		opts = append(opts, media.WithCaptureTime(t))
	}
	if source.Valid {
		opts = append(opts, media.WithSource(source.String))
	}
	if sidecar.Valid {
		opts = append(opts, media.WithSidecar(sidecar.String))
	}
	return media.New(path, opts...)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

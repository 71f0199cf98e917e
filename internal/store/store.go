// BYZRA ⸻ internal/store/store.go
// record persistence between pipeline steps

package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"tempora/internal/media"
)

// ErrNotFound is returned by Load when the backing file does not exist.
var ErrNotFound = errors.New("record store not found")

// RecordStore saves and loads a whole list of records.
type RecordStore interface {
	Save(ctx context.Context, records []media.Record) error
	Load(ctx context.Context) ([]media.Record, error)
	Close() error
}

// Appender adds or replaces single records by file path.
type Appender interface {
	RecordStore
	Append(ctx context.Context, records ...media.Record) error
}

// Open picks SQLite for .db/.sqlite/.sqlite3 paths and JSON otherwise.
func Open(path string) (Appender, error) {
	if IsSQLitePath(path) {
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return NewJSONStore(path), nil
}

func IsSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// BYZRA ⸻ internal/store/json.go
// records as a JSON array on disk

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"tempora/internal/media"
	"tempora/internal/util"
)

// JSONStore keeps the whole list in one file; Append rewrites it.
type JSONStore struct {
	mu   sync.Mutex
	path string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Path() string {
	return s.path
}

// replaces the file atomically
func (s *JSONStore) Save(ctx context.Context, records []media.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, records)
}

func (s *JSONStore) save(ctx context.Context, records []media.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []media.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	data = append(data, '\n')
	if err := util.WriteFileAtomic(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}
	return nil
}

func (s *JSONStore) Load(ctx context.Context) ([]media.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *JSONStore) load(ctx context.Context) ([]media.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	var records []media.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse records %s: %w", s.path, err)
	}
	return records, nil
}

// rewrites the whole file; records sharing a path replace the stored one in place,
// new ones go last
func (s *JSONStore) Append(ctx context.Context, records ...media.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	byPath := make(map[string]int, len(existing))
	for i, r := range existing {
		byPath[r.FilePath()] = i
	}
	for _, r := range records {
		if i, ok := byPath[r.FilePath()]; ok {
			existing[i] = r
			continue
		}
		byPath[r.FilePath()] = len(existing)
		existing = append(existing, r)
	}
	return s.save(ctx, existing)
}

func (s *JSONStore) Close() error {
	return nil
}

// BYZRA ⸻ internal/store/tags.go
// tag dumps in exiftool -json -G form

package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"tempora/internal/tags"
	"tempora/internal/util"
)

// reads an exiftool JSON array; numbers keep their textual form
func LoadTags(path string) ([]tags.Dictionary, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tag dump: %w", err)
	}
	return ParseTags(data)
}

func ParseTags(data []byte) ([]tags.Dictionary, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse ExifTool JSON: %w", err)
	}

	dicts := make([]tags.Dictionary, len(raw))
	for i, obj := range raw {
		dicts[i] = tags.FromRaw(obj)
	}
	return dicts, nil
}

func SaveTags(path string, dicts []tags.Dictionary) error {
	if dicts == nil {
		dicts = []tags.Dictionary{}
	}
	data, err := json.MarshalIndent(dicts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	data = append(data, '\n')
	return util.WriteFileAtomic(path, data, 0644)
}

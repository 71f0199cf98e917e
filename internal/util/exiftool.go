// BYZRA ⸻ internal/util/exiftool.go
// exiftool wrapper producing one tag dictionary per file

package util

import (
	"fmt"
	"sync"

	"github.com/barasher/go-exiftool"

	"tempora/internal/tags"
)

// ExifTool keeps one exiftool process alive (-stay_open) for many files.
// Calls are serialised; the process is not safe for concurrent use.
type ExifTool struct {
	mu sync.Mutex
	et *exiftool.Exiftool
}

// starts exiftool with family 0 group names (EXIF:, QuickTime:, File:, ...)
func NewExifTool() (*ExifTool, error) {
	et, err := exiftool.NewExiftool(exiftool.PrintGroupNames("0"))
	if err != nil {
		return nil, fmt.Errorf("failed to start exiftool: %w", err)
	}
	return &ExifTool{et: et}, nil
}

// returns dictionaries for the files exiftool could read and one error per file it could not
func (e *ExifTool) Extract(paths ...string) ([]tags.Dictionary, []error) {
	if len(paths) == 0 {
		return nil, nil
	}

	e.mu.Lock()
	infos := e.et.ExtractMetadata(paths...)
	e.mu.Unlock()

	var dicts []tags.Dictionary
	var errs []error
	for _, info := range infos {
		if info.Err != nil {
			errs = append(errs, fmt.Errorf("failed to read metadata of %s: %w", info.File, info.Err))
			continue
		}
		d := tags.FromRaw(info.Fields)
		if d == nil {
			d = tags.Dictionary{}
		}
		if _, ok := d.SourceFile(); !ok {
			d[tags.SourceFileKey] = info.File
		}
		dicts = append(dicts, d)
	}
	return dicts, errs
}

// Extract behind a spinner
func (e *ExifTool) ExtractWithSpinner(label string, paths ...string) ([]tags.Dictionary, []error) {
	var dicts []tags.Dictionary
	var errs []error
	SpinWhile(label, func() (string, error) {
		dicts, errs = e.Extract(paths...)
		return "", nil
	})
	return dicts, errs
}

func (e *ExifTool) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.et == nil {
		return nil
	}
	err := e.et.Close()
	e.et = nil
	return err
}

// BYZRA ⸻ internal/resolve/engine.go
// assembly of records from tag dictionaries, one file or a whole batch

package resolve

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"golang.org/x/sync/errgroup"

	"tempora/internal/config"
	"tempora/internal/media"
	"tempora/internal/tags"
)

var (
	ErrMissingSourceFile = errors.New("dictionary has no SourceFile")
	ErrMalformed         = errors.New("malformed tag dictionary")
)

// FileError is a file that could not be processed at all.
// Index is its position in the batch, -1 outside a batch.
type FileError struct {
	Index int
	Path  string
	Err   error
}

func (e *FileError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("entry %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

type Engine struct {
	Dates    *DateResolver
	Sources  *SourceResolver
	Sidecars *SidecarResolver

	skip    map[string]bool
	workers int
	lua     *LuaDetectors
}

type EngineOption func(*engineOptions)

type engineOptions struct {
	prober    Prober
	dateOpts  []DateOption
	detectors []Detector
}

func WithProber(p Prober) EngineOption {
	return func(o *engineOptions) { o.prober = p }
}

func WithDateOptions(opts ...DateOption) EngineOption {
	return func(o *engineOptions) { o.dateOpts = append(o.dateOpts, opts...) }
}

// detectors appended after the built-in and scripted ones
func WithDetectors(d ...Detector) EngineOption {
	return func(o *engineOptions) { o.detectors = append(o.detectors, d...) }
}

func NewEngine(cfg *config.Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	o := engineOptions{prober: NewListingProber()}
	for _, opt := range opts {
		opt(&o)
	}

	dates, err := NewDateResolver(PolicyFromConfig(cfg.Dates), o.dateOpts...)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		Dates:    dates,
		Sidecars: NewSidecarResolver(o.prober, SidecarPolicyFromConfig(cfg.Sidecar).Conventions()...),
		skip:     make(map[string]bool),
		workers:  cfg.Batch.Workers,
	}
	if e.workers < 1 {
		e.workers = 1
	}
	for _, ext := range cfg.Scan.SkipExtensions {
		e.skip[strings.ToLower(ext)] = true
	}

	detectors := BuiltinDetectors()
	if cfg.Source.DetectorsScript != "" {
		ld, err := LoadLuaDetectors(cfg.Source.DetectorsScript)
		if err != nil {
			return nil, err
		}
		e.lua = ld
		detectors = append(detectors, ld.Detectors()...)
	}
	detectors = append(detectors, o.detectors...)
	e.Sources = NewSourceResolver(cfg.Source.Namespaces, detectors...)

	return e, nil
}

// releases the Lua state, if any
func (e *Engine) Close() {
	if e.lua != nil {
		e.lua.Close()
	}
}

func (e *Engine) Resolve(d tags.Dictionary) (media.Record, error) {
	if d == nil {
		return media.Record{}, &FileError{Index: -1, Err: ErrMalformed}
	}
	path, ok := d.SourceFile()
	if !ok {
		return media.Record{}, &FileError{Index: -1, Err: ErrMissingSourceFile}
	}

	var opts []media.Option
	if t, ok := e.Dates.Resolve(d); ok {
		opts = append(opts, media.WithCaptureTime(t))
	}
	if label, ok := e.Sources.Resolve(d, path); ok {
		opts = append(opts, media.WithSource(label))
	}
	if sidecar, ok := e.Sidecars.Resolve(path); ok {
		opts = append(opts, media.WithSidecar(sidecar))
	}

	rec, err := media.New(path, opts...)
	if err != nil {
		return media.Record{}, &FileError{Index: -1, Path: path, Err: err}
	}
	return rec, nil
}

// Skip reports whether path is a non-media companion file such as .aae or .DS_Store.
func (e *Engine) Skip(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return e.skip[strings.ToLower(filepath.Ext(base))] || e.skip[base]
}

type Batch struct {
	Records  []media.Record
	Failures []*FileError
	Skipped  []string
}

type outcome struct {
	rec     media.Record
	err     *FileError
	skipped string
	done    bool
}

// resolves every dictionary; Records keep the input order
func (e *Engine) ResolveBatch(ctx context.Context, dicts []tags.Dictionary) (*Batch, error) {
	results := make([]outcome, len(dicts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, d := range dicts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.resolveOne(i, d)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := &Batch{}
	for _, r := range results {
		switch {
		case r.skipped != "":
			batch.Skipped = append(batch.Skipped, r.skipped)
		case r.err != nil:
			batch.Failures = append(batch.Failures, r.err)
		case r.done:
			batch.Records = append(batch.Records, r.rec)
		}
	}
	return batch, nil
}

func (e *Engine) resolveOne(i int, d tags.Dictionary) outcome {
	if path, ok := d.SourceFile(); ok && e.Skip(path) {
		return outcome{skipped: path}
	}

	rec, err := e.Resolve(d)
	if err != nil {
		var fe *FileError
		if !errors.As(err, &fe) {
			fe = &FileError{Err: err}
		}
		return outcome{err: &FileError{Index: i, Path: fe.Path, Err: fe.Err}}
	}
	return outcome{rec: rec, done: true}
}

// dated records oldest first, undated ones last; ties in natural path order
func SortByCaptureTime(records []media.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, oki := records[i].CaptureTime()
		tj, okj := records[j].CaptureTime()
		switch {
		case oki && okj && !ti.Equal(tj):
			return ti.Before(tj)
		case oki != okj:
			return oki
		}
		return natural.Less(records[i].FilePath(), records[j].FilePath())
	})
}

// IMG_2.jpg before IMG_10.jpg
func SortByPath(records []media.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return natural.Less(records[i].FilePath(), records[j].FilePath())
	})
}

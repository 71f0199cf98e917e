// BYZRA ⸻ internal/daemon/daemon.go
// daemon management for background resolution of new media

package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"tempora/internal/config"
	"tempora/internal/resolve"
	"tempora/internal/scan"
	"tempora/internal/store"
	"tempora/internal/tags"
	"tempora/internal/util"
)

// reads tag dictionaries for files
type Extractor interface {
	Extract(paths ...string) ([]tags.Dictionary, []error)
	Close() error
}

// background service that records new media as it lands in watched folders
type Daemon struct {
	config    *config.Config
	logger    *Logger
	watcher   *Watcher
	engine    *resolve.Engine
	extractor Extractor
	store     store.Appender
	ctx       context.Context
	cancel    context.CancelFunc
	running   bool
	startTime time.Time

	processed atomic.Int64
	skipped   atomic.Int64
	errors    atomic.Int64
}

// current state of the daemon
type DaemonStatus struct {
	Running        bool
	WatchedDirs    []string
	FileTypes      []string
	StorePath      string
	LogPath        string
	ProcessedFiles int
	SkippedFiles   int
	ErrorCount     int
	StartTime      time.Time
}

type Option func(*Daemon)

func WithExtractor(e Extractor) Option {
	return func(d *Daemon) { d.extractor = e }
}

func WithStore(s store.Appender) Option {
	return func(d *Daemon) { d.store = s }
}

func WithLogger(l *Logger) Option {
	return func(d *Daemon) { d.logger = l }
}

// new daemon instance; a nil config loads tempora.toml or the defaults
func NewDaemon(cfg *config.Config, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		loaded, err := config.LoadOrDefault()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	d := &Daemon{config: cfg}
	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		if err := os.MkdirAll(cfg.Store.LogDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		logger, err := NewLogger(filepath.Join(cfg.Store.LogDir, "tempora-daemon.log"), ParseLevel(cfg.Watch.LogLevel))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		d.logger = logger
	}

	// sidecars can land after their media, so no cached listings here
	engine, err := resolve.NewEngine(cfg, resolve.WithProber(resolve.OSProber{}))
	if err != nil {
		d.logger.Close()
		return nil, fmt.Errorf("failed to build resolver: %w", err)
	}
	d.engine = engine

	if d.extractor == nil {
		et, err := util.NewExifTool()
		if err != nil {
			d.logger.Warning(fmt.Sprintf("[!] exiftool unavailable, using native EXIF reader: %v", err))
			d.extractor = scan.NativeExtractor{}
		} else {
			d.extractor = et
		}
	}

	if d.store == nil {
		s, err := store.Open(cfg.Store.Path)
		if err != nil {
			d.release()
			return nil, fmt.Errorf("failed to open record store: %w", err)
		}
		d.store = s
	}

	return d, nil
}

func (d *Daemon) Start() error {
	if d.running {
		return fmt.Errorf("daemon already running")
	}

	d.logger.Info("Starting daemon")

	options := WatchOptions{
		Filter:     scan.NewWalker(d.config),
		MinFileAge: time.Duration(d.config.Watch.MinFileAgeSeconds) * time.Second,
		Recursive:  d.config.Watch.Recursive,
	}

	watcher, err := NewWatcher(d.config.Watch.Paths, options, d.HandleFile, d.logger)
	if err != nil {
		d.logger.Error(fmt.Sprintf("[X] Failed to create watcher: %v", err))
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	d.ctx, d.cancel = context.WithCancel(context.Background())

	if err := watcher.Start(); err != nil {
		d.cancel()
		d.logger.Error(fmt.Sprintf("[X] Failed to start watcher: %v", err))
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	d.watcher = watcher
	d.running = true
	d.startTime = time.Now()
	d.logger.Info(fmt.Sprintf("Daemon started, recording into %s", d.config.Store.Path))

	return nil
}

// extracts, resolves and records one file
func (d *Daemon) HandleFile(path string) error {
	if d.engine.Skip(path) {
		d.skipped.Add(1)
		d.logger.Debug(fmt.Sprintf("Skipping %s", path))
		return nil
	}

	dicts, errs := d.extractor.Extract(path)
	if len(errs) > 0 {
		d.errors.Add(1)
		return errs[0]
	}
	if len(dicts) == 0 {
		d.errors.Add(1)
		return fmt.Errorf("no metadata returned for %s", path)
	}

	record, err := d.engine.Resolve(dicts[0])
	if err != nil {
		d.errors.Add(1)
		return err
	}

	ctx := d.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := d.store.Append(ctx, record); err != nil {
		d.errors.Add(1)
		return fmt.Errorf("failed to record %s: %w", path, err)
	}

	if _, ok := record.CaptureTime(); !ok {
		d.logger.Warning(fmt.Sprintf("[!] No capture time for %s", path))
	}
	d.processed.Add(1)
	d.logger.Info(fmt.Sprintf("Recorded %s", record))
	return nil
}

// halts the daemon
func (d *Daemon) Stop() error {
	if !d.running {
		d.release()
		return d.logger.Close()
	}

	d.logger.Info("Stopping daemon")

	// stop watcher
	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			d.logger.Warning(fmt.Sprintf("[!] Error stopping watcher: %v", err))
		}
	}
	d.cancel()
	d.release()

	d.logger.Info(fmt.Sprintf("Daemon stopped after %d files (%d errors)", d.processed.Load(), d.errors.Load()))

	// close logger
	if err := d.logger.Close(); err != nil {
		return fmt.Errorf("error closing logger: %w", err)
	}

	d.running = false
	return nil
}

// closes extractor, engine and store
func (d *Daemon) release() {
	if d.extractor != nil {
		if err := d.extractor.Close(); err != nil {
			d.logger.Warning(fmt.Sprintf("[!] Error closing extractor: %v", err))
		}
		d.extractor = nil
	}
	if d.engine != nil {
		d.engine.Close()
		d.engine = nil
	}
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			d.logger.Warning(fmt.Sprintf("[!] Error closing record store: %v", err))
		}
		d.store = nil
	}
}

// current daemon status
func (d *Daemon) Status() *DaemonStatus {
	status := &DaemonStatus{
		Running:        d.running,
		StorePath:      d.config.Store.Path,
		LogPath:        d.logger.Path(),
		ProcessedFiles: int(d.processed.Load()),
		SkippedFiles:   int(d.skipped.Load()),
		ErrorCount:     int(d.errors.Load()),
	}
	if !d.running {
		return status
	}

	status.WatchedDirs = d.watcher.Dirs()
	status.FileTypes = d.config.Filter.Extensions
	status.StartTime = d.startTime
	return status
}

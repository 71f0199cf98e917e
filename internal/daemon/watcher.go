// BYZRA ⸻ internal/daemon/watcher.go
// file system monitoring for the daemon

package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"tempora/internal/scan"
	"tempora/internal/util"
)

// processes a detected file
type FileHandler func(path string) error

// configures the watcher behavior
type WatchOptions struct {
	// decides which files and directories are looked at
	Filter *scan.Walker

	// min file age before processing (avoid processing incomplete files)
	MinFileAge time.Duration

	// delay after an event before the file is touched, defaults to 500ms
	Settle time.Duration

	// process files recursively in subdirectories?
	Recursive bool
}

// monitors directories for file changes
type Watcher struct {
	watcher     *fsnotify.Watcher
	dirs        []string
	options     WatchOptions
	handler     FileHandler
	logger      *Logger
	processed   map[string]time.Time
	pending     map[string]bool
	processLock sync.Mutex
	running     bool
	done        chan struct{}
	wg          sync.WaitGroup
}

// new file system watcher
func NewWatcher(dirs []string, options WatchOptions, handler FileHandler, logger *Logger) (*Watcher, error) {
	if options.Filter == nil {
		return nil, fmt.Errorf("watcher needs a file filter")
	}
	if options.Settle <= 0 {
		options.Settle = 500 * time.Millisecond
	}

	var validDirs []string
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			logger.Warning(fmt.Sprintf("Skipping invalid directory %s: %v", dir, err))
			continue
		}

		if !info.IsDir() {
			logger.Warning(fmt.Sprintf("Skipping non-directory path %s", dir))
			continue
		}

		validDirs = append(validDirs, dir)
	}

	if len(validDirs) == 0 {
		return nil, fmt.Errorf("no valid directories to watch")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		watcher:   fsWatcher,
		dirs:      validDirs,
		options:   options,
		handler:   handler,
		logger:    logger,
		processed: make(map[string]time.Time),
		pending:   make(map[string]bool),
		done:      make(chan struct{}),
	}, nil
}

func (w *Watcher) Dirs() []string {
	return w.dirs
}

// begins watching the configured directories
func (w *Watcher) Start() error {
	if w.running {
		return fmt.Errorf("watcher already running")
	}

	for _, dir := range w.dirs {
		if !w.options.Recursive {
			w.watch(dir)
			continue
		}

		if err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				w.logger.Warning(fmt.Sprintf("Error accessing path %s: %v", path, err))
				return nil // continue walking
			}
			if !d.IsDir() {
				return nil
			}
			if path != dir && w.options.Filter.ExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			w.watch(path)
			return nil
		}); err != nil {
			w.logger.Error(fmt.Sprintf("Error walking directory %s: %v", dir, err))
		}
	}

	w.wg.Add(2)
	go w.processEvents()
	go w.periodicCleanup()

	w.running = true
	w.logger.Info("File watcher started")

	return nil
}

func (w *Watcher) watch(dir string) {
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Warning(fmt.Sprintf("[!] Failed to watch directory %s: %v", dir, err))
		return
	}
	w.logger.Debug(fmt.Sprintf("Watching directory: %s", dir))
}

// terminates the watcher and waits for files in flight
func (w *Watcher) Stop() error {
	if !w.running {
		return nil
	}

	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	w.running = false
	w.logger.Info("File watcher stopped")

	return err
}

// claims path for processing unless it is queued or was handled within the last minute
func (w *Watcher) claim(path string) bool {
	w.processLock.Lock()
	defer w.processLock.Unlock()

	if w.pending[path] {
		return false
	}
	if lastProcessed, exists := w.processed[path]; exists {
		if time.Since(lastProcessed) < time.Minute {
			return false
		}
	}

	w.pending[path] = true
	return true
}

func (w *Watcher) release(path string, handled bool) {
	w.processLock.Lock()
	defer w.processLock.Unlock()

	delete(w.pending, path)
	if handled {
		w.processed[path] = time.Now()
	}
}

// sleeps unless the watcher stops first
func (w *Watcher) wait(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-w.done:
		return false
	}
}

// waits for the file to settle and reach MinFileAge, then runs the handler
func (w *Watcher) process(path string) {
	defer w.wg.Done()

	handled := false
	defer func() { w.release(path, handled) }()

	if !w.wait(w.options.Settle) {
		return
	}

	for {
		age, err := util.FileAge(path)
		if err != nil {
			w.logger.Debug(fmt.Sprintf("File vanished before processing: %s", path))
			return
		}
		if age >= w.options.MinFileAge {
			break
		}
		// still being written, check again once it could be old enough
		if !w.wait(w.options.MinFileAge - age) {
			return
		}
	}

	w.logger.Debug(fmt.Sprintf("Processing file: %s", path))

	if err := w.handler(path); err != nil {
		w.logger.Error(fmt.Sprintf("[X] Failed to process file %s: %v", path, err))
	} else {
		w.logger.Debug(fmt.Sprintf("Successfully processed file: %s", path))
	}
	handled = true
}

// file system events
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return // watcher was closed
			}

			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			path := event.Name

			info, err := os.Stat(path)
			if err != nil {
				continue
			}

			// if a new directory was created and we're in recursive mode, watch it
			if info.IsDir() {
				if w.options.Recursive && !w.options.Filter.ExcludedDir(info.Name()) {
					w.watch(path)
				}
				continue
			}

			if !info.Mode().IsRegular() || !w.options.Filter.Accept(path) {
				continue
			}

			if w.claim(path) {
				w.wg.Add(1)
				go w.process(path)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return // watcher closed
			}
			w.logger.Error(fmt.Sprintf("[X] Watcher error: %v", err))

		case <-w.done:
			return
		}
	}
}

// periodically cleans the processed files map
func (w *Watcher) periodicCleanup() {
	defer w.wg.Done()

	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.processLock.Lock()

			// clean entries older than 1 hour
			cutoff := time.Now().Add(-1 * time.Hour)
			for path, processed := range w.processed {
				if processed.Before(cutoff) {
					delete(w.processed, path)
				}
			}

			w.processLock.Unlock()

			w.logger.Debug("Cleaned processed files cache")

		case <-w.done:
			return
		}
	}
}

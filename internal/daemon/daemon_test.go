// BYZRA ⸻ internal/daemon/daemon_test.go
// file handling and watching with a fake extractor

package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tempora/internal/config"
	"tempora/internal/media"
	"tempora/internal/store"
	"tempora/internal/tags"
)

type fakeExtractor struct {
	fn func(path string) (tags.Dictionary, error)
}

func (f fakeExtractor) Extract(paths ...string) ([]tags.Dictionary, []error) {
	var dicts []tags.Dictionary
	var errs []error
	for _, p := range paths {
		d, err := f.fn(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		dicts = append(dicts, d)
	}
	return dicts, errs
}

func (fakeExtractor) Close() error { return nil }

func iphoneTags(path string) (tags.Dictionary, error) {
	return tags.Dictionary{
		tags.SourceFileKey:        path,
		"EXIF:DateTimeOriginal":   "2018:02:28 02:25:37",
		"EXIF:OffsetTimeOriginal": "+01:00",
		"EXIF:Model":              "iPhone 8",
		"File:FileModifyDate":     "2020:01:01 00:00:00+00:00",
	}, nil
}

func testConfig(t *testing.T, watched string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Dates.UseGPS = false
	cfg.Watch.Paths = []string{watched}
	cfg.Watch.MinFileAgeSeconds = 0
	cfg.Store.LogDir = filepath.Join(t.TempDir(), "logs")
	return cfg
}

func newTestDaemon(t *testing.T, cfg *config.Config, fn func(string) (tags.Dictionary, error)) (*Daemon, *store.JSONStore) {
	t.Helper()
	s := store.NewJSONStore(filepath.Join(t.TempDir(), "records.json"))
	logger, err := NewLogger(filepath.Join(cfg.Store.LogDir, "test.log"), LevelDebug)
	if err != nil {
		t.Fatal(err)
	}
	d, err := NewDaemon(cfg, WithExtractor(fakeExtractor{fn: fn}), WithStore(s), WithLogger(logger))
	if err != nil {
		t.Fatalf("NewDaemon: %v", err)
	}
	return d, s
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte{0xFF, 0xD8, 0xFF}, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestHandleFileRecords(t *testing.T) {
	dir := t.TempDir()
	media1 := filepath.Join(dir, "IMG_0001.HEIC")
	sidecar := filepath.Join(dir, "IMG_0001O.aae")
	touch(t, media1)
	touch(t, sidecar)

	d, s := newTestDaemon(t, testConfig(t, dir), iphoneTags)
	defer d.Stop()

	if err := d.HandleFile(media1); err != nil {
		t.Fatalf("HandleFile: %v", err)
	}
	if err := d.HandleFile(sidecar); err != nil {
		t.Fatalf("sidecars are skipped, not errors: %v", err)
	}

	records, err := s.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %v", records)
	}
	rec := records[0]
	if ts := rec.CaptureTimeString(); ts != "2018:02:28 01:25:37+00:00" {
		t.Fatalf("capture time = %q", ts)
	}
	if src, _ := rec.Source(); src != "iPhone 8" {
		t.Fatalf("source = %q", src)
	}
	if sc, _ := rec.SidecarPath(); sc != sidecar {
		t.Fatalf("sidecar = %q", sc)
	}

	status := d.Status()
	if status.ProcessedFiles != 1 || status.SkippedFiles != 1 || status.ErrorCount != 0 {
		t.Fatalf("status = %+v", status)
	}
	if status.Running {
		t.Fatal("daemon was never started")
	}
}

func TestHandleFileReplacesEarlierRecord(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "IMG_0002.MOV")
	touch(t, path)

	calls := 0
	d, s := newTestDaemon(t, testConfig(t, dir), func(p string) (tags.Dictionary, error) {
		calls++
		if calls == 1 {
			return tags.Dictionary{tags.SourceFileKey: p}, nil
		}
		return tags.Dictionary{tags.SourceFileKey: p, "QuickTime:CreateDate": "2018:06:11 16:32:57"}, nil
	})
	defer d.Stop()

	for i := 0; i < 2; i++ {
		if err := d.HandleFile(path); err != nil {
			t.Fatal(err)
		}
	}

	records, err := s.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].CaptureTimeString() != "2018:06:11 16:32:57+00:00" {
		t.Fatalf("records = %v", records)
	}
}

func TestHandleFileErrors(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("exiftool choked")

	d, _ := newTestDaemon(t, testConfig(t, dir), func(p string) (tags.Dictionary, error) {
		if strings.HasSuffix(p, "bad.jpg") {
			return nil, boom
		}
		return tags.Dictionary{"EXIF:Model": "X"}, nil
	})
	defer d.Stop()

	if err := d.HandleFile(filepath.Join(dir, "bad.jpg")); !errors.Is(err, boom) {
		t.Fatalf("expected extractor error, got %v", err)
	}
	// dictionary without SourceFile
	if err := d.HandleFile(filepath.Join(dir, "anon.jpg")); err == nil {
		t.Fatal("expected resolve error")
	}
	if got := d.Status().ErrorCount; got != 2 {
		t.Fatalf("ErrorCount = %d", got)
	}
}

func TestDaemonRecordsWatchedFiles(t *testing.T) {
	if testing.Short() {
		t.Skip("waits on file system events")
	}

	dir := t.TempDir()
	cfg := testConfig(t, dir)
	d, s := newTestDaemon(t, cfg, iphoneTags)

	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := d.Start(); err == nil {
		t.Fatal("second Start should fail")
	}

	sub := filepath.Join(dir, "2018")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// give the watcher a moment to pick up the new directory
	time.Sleep(200 * time.Millisecond)

	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(sub, "IMG_0001.HEIC"))

	var records []media.Record
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		loaded, err := s.Load(context.Background())
		if err == nil && len(loaded) > 0 {
			records = loaded
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	status := d.Status()
	if !status.Running || len(status.WatchedDirs) != 1 {
		t.Fatalf("status = %+v", status)
	}
	if err := d.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if len(records) != 1 || records[0].FilePath() != filepath.Join(sub, "IMG_0001.HEIC") {
		t.Fatalf("records = %v", records)
	}
	if d.Status().Running {
		t.Fatal("still running after Stop")
	}
}

func TestNewWatcherRejectsMissingDirs(t *testing.T) {
	logger, err := NewLogger(filepath.Join(t.TempDir(), "w.log"), LevelInfo)
	if err != nil {
		t.Fatal(err)
	}
	defer logger.Close()

	d, _ := newTestDaemon(t, testConfig(t, filepath.Join(t.TempDir(), "missing")), iphoneTags)
	defer d.Stop()
	if err := d.Start(); err == nil {
		t.Fatal("expected error without valid directories")
	}

	_, err = NewWatcher([]string{t.TempDir()}, WatchOptions{}, func(string) error { return nil }, logger)
	if err == nil {
		t.Fatal("a watcher needs a filter")
	}
}

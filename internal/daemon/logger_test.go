// BYZRA ⸻ internal/daemon/logger_test.go
// levels, rotation, concurrent writes

package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestLoggerLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tempora.log")
	l, err := NewLogger(path, LevelWarning)
	if err != nil {
		t.Fatal(err)
	}

	l.Debug("quiet")
	l.Info("also quiet")
	l.Warning("careful")
	l.Error("broken")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	out := readLog(t, path)
	if strings.Contains(out, "quiet") {
		t.Fatalf("messages below threshold were written:\n%s", out)
	}
	if !strings.Contains(out, "WARNING: careful") || !strings.Contains(out, "ERROR: broken") {
		t.Fatalf("missing entries:\n%s", out)
	}

	if err := l.Info("after close"); err == nil {
		t.Fatal("closed logger should refuse writes")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		" INFO ":  LevelInfo,
		"warn":    LevelWarning,
		"warning": LevelWarning,
		"error":   LevelError,
		"":        LevelInfo,
		"loud":    LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerRotate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tempora.log")
	l, err := NewLogger(path, LevelInfo)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	l.Info("before rotation")
	if err := l.Rotate(); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	l.Info("after rotation")

	current := readLog(t, path)
	if strings.Contains(current, "before rotation") || !strings.Contains(current, "after rotation") {
		t.Fatalf("current log:\n%s", current)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected archived log next to the current one, got %d files", len(entries))
	}
}

func TestLoggerConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tempora.log")
	l, err := NewLogger(path, LevelInfo)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Info(fmt.Sprintf("file %d", i))
		}(i)
	}
	wg.Wait()
	l.Close()

	lines := strings.Split(strings.TrimSpace(readLog(t, path)), "\n")
	if len(lines) != 20 {
		t.Fatalf("got %d lines", len(lines))
	}
}

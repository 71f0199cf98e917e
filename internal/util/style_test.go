// BYZRA ⸻ internal/util/style_test.go
// palette loading and capture time renderings

package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderTime(t *testing.T) {
	const ts = "2018:02:28 01:25:37+00:00"

	if got := RenderTime(ts, Dated); !strings.Contains(got, ts) || strings.Contains(got, "inferred") {
		t.Fatalf("dated: %q", got)
	}
	if got := RenderTime(ts, Inferred); !strings.Contains(got, ts) || !strings.Contains(got, "(inferred)") {
		t.Fatalf("inferred: %q", got)
	}
	for _, got := range []string{RenderTime("", Dated), RenderTime(ts, Undated)} {
		if !strings.Contains(got, "unresolved") {
			t.Fatalf("undated: %q", got)
		}
	}
}

func TestRenderMark(t *testing.T) {
	for _, mark := range []string{MarkChosen, MarkAnchored, MarkNaive, MarkUnparsable} {
		if got := RenderMark(mark); !strings.Contains(got, mark) {
			t.Errorf("RenderMark(%q) = %q", mark, got)
		}
	}
}

func TestLoadPaletteOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	if got := loadPalette(); got != DefaultPalette() {
		t.Fatalf("without a file: %+v", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "palette.toml"), []byte("alert = \"#00FF00\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got := loadPalette()
	if got.Alert != "#00FF00" {
		t.Fatalf("alert = %q", got.Alert)
	}
	if got.Heading != DefaultPalette().Heading {
		t.Fatalf("unset roles should keep their defaults: %+v", got)
	}
}

// BYZRA ⸻ internal/resolve/source_test.go
// origin labels and detector chains

package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"tempora/internal/config"
	"tempora/internal/tags"
)

func newSources(extra ...Detector) *SourceResolver {
	return NewSourceResolver(config.Default().Source.Namespaces, append(BuiltinDetectors(), extra...)...)
}

func TestModelWinsOverMake(t *testing.T) {
	r := newSources()
	d := tags.Dictionary{
		"EXIF:Make":  "Apple",
		"EXIF:Model": "iPhone 8",
	}
	if got, ok := r.Resolve(d, "/p/IMG_0001.HEIC"); !ok || got != "iPhone 8" {
		t.Fatalf("got %q, %v", got, ok)
	}
}

func TestMakeWhenModelMissingOrBlank(t *testing.T) {
	r := newSources()
	for _, d := range []tags.Dictionary{
		{"QuickTime:Make": "  Apple "},
		{"QuickTime:Make": "Apple", "QuickTime:Model": "   "},
	} {
		if got, ok := r.Resolve(d, "/p/a.mov"); !ok || got != "Apple" {
			t.Fatalf("got %q, %v for %v", got, ok, d)
		}
	}
}

func TestConflictingModelsFollowNamespacePreference(t *testing.T) {
	r := newSources()
	d := tags.Dictionary{
		"XMP:Model":       "Edited Camera",
		"QuickTime:Model": "iPhone 8",
	}
	c, ok := r.Classify(d, "/p/a.mov")
	if !ok || c.Label != "iPhone 8" || c.Via != "QuickTime:Model" {
		t.Fatalf("got %+v, %v", c, ok)
	}

	unknown := tags.Dictionary{
		"Zeta:Model":  "B",
		"Alpha:Model": "A",
	}
	if got, _ := r.Resolve(unknown, "/p/a.jpg"); got != "A" {
		t.Fatalf("unranked namespaces fall back to key order, got %q", got)
	}
}

func TestBuiltinDetectors(t *testing.T) {
	r := newSources()
	tests := []struct {
		name string
		d    tags.Dictionary
		path string
		want string
	}{
		{"screenshot comment", tags.Dictionary{"EXIF:UserComment": "Screenshot"}, "/p/IMG_1.PNG", "Screenshot"},
		{"screenshot name", tags.Dictionary{}, "/p/Screen Shot 2019-01-01 at 10.00.00.png", "Screenshot"},
		{"instagram", tags.Dictionary{"EXIF:Software": "Instagram"}, "/p/a.jpg", "Instagram"},
		{"facebook", tags.Dictionary{"XMP:Software": "Facebook for iOS"}, "/p/a.jpg", "Instagram"},
		{"picsart", tags.Dictionary{"EXIF:Software": "PicsArt"}, "/p/a.jpg", "PicsArt"},
		{"photoshop", tags.Dictionary{"EXIF:Software": "Adobe Photoshop CC 2019 (Macintosh)"}, "/p/a.jpg", "Photoshop"},
		{"whatsapp image", tags.Dictionary{}, "/p/IMG-20190101-WA0001.jpg", "WhatsApp"},
		{"whatsapp video", tags.Dictionary{}, "/p/VID-20190101-WA0012.mp4", "WhatsApp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := r.Classify(tt.d, tt.path)
			if !ok || c.Label != tt.want {
				t.Fatalf("got %+v, %v want %q", c, ok, tt.want)
			}
		})
	}
}

func TestDetectorOrderDecides(t *testing.T) {
	r := newSources()

	d := tags.Dictionary{"EXIF:UserComment": "Screenshot"}
	if got, _ := r.Resolve(d, "/p/IMG-20190101-WA0001.jpg"); got != "Screenshot" {
		t.Fatalf("screenshot is declared before whatsapp, got %q", got)
	}

	d = tags.Dictionary{
		"EXIF:Software": "Adobe Photoshop 21.0",
		"XMP:Software":  "Instagram",
	}
	if got, _ := r.Resolve(d, "/p/a.jpg"); got != "Instagram" {
		t.Fatalf("instagram is declared before photoshop, got %q", got)
	}
}

func TestDeviceTagsBeatDetectors(t *testing.T) {
	r := newSources()
	d := tags.Dictionary{"EXIF:Model": "Pixel 4", "EXIF:Software": "Instagram"}
	if got, _ := r.Resolve(d, "/p/IMG-20190101-WA0001.jpg"); got != "Pixel 4" {
		t.Fatalf("got %q", got)
	}
}

func TestAppendedDetectorsRunLast(t *testing.T) {
	always := Detector{Name: "always", Label: "Fallback", Match: func(tags.Dictionary, string) bool { return true }}
	r := newSources(always)

	if got, _ := r.Resolve(tags.Dictionary{}, "/p/IMG-20190101-WA0001.jpg"); got != "WhatsApp" {
		t.Fatalf("built-in should match first, got %q", got)
	}
	if got, _ := r.Resolve(tags.Dictionary{}, "/p/DSC_0001.JPG"); got != "Fallback" {
		t.Fatalf("appended detector should match, got %q", got)
	}
}

func TestNoMatchIsAbsent(t *testing.T) {
	r := newSources()
	if got, ok := r.Resolve(tags.Dictionary{"EXIF:Software": "GIMP"}, "/p/DSC_0001.JPG"); ok {
		t.Fatalf("expected absent, got %q", got)
	}
}

func TestLuaDetectors(t *testing.T) {
	ld, err := NewLuaDetectors(`
return {
  { name = "gopro", label = "GoPro", match = function(tags, path)
      return string.find(path, "GOPR") ~= nil
  end },
  { name = "scanner", label = "Scanner", match = function(tags, path)
      return tags["EXIF:Software"] == "VueScan"
  end },
  { name = "broken", label = "Broken", match = function(tags, path)
      error("boom")
  end },
}
`)
	if err != nil {
		t.Fatalf("NewLuaDetectors: %v", err)
	}
	defer ld.Close()

	dets := ld.Detectors()
	if len(dets) != 3 || dets[0].Name != "gopro" || dets[1].Label != "Scanner" {
		t.Fatalf("unexpected detectors %+v", dets)
	}
	if dets[2].Match(tags.Dictionary{}, "/p/x.jpg") {
		t.Fatal("a failing detector must not match")
	}

	r := newSources(dets...)
	if got, _ := r.Resolve(tags.Dictionary{}, "/p/GOPR0001.MP4"); got != "GoPro" {
		t.Fatalf("got %q", got)
	}
	if got, _ := r.Resolve(tags.Dictionary{"EXIF:Software": "VueScan"}, "/p/scan.tif"); got != "Scanner" {
		t.Fatalf("got %q", got)
	}
	if got, _ := r.Resolve(tags.Dictionary{"EXIF:Software": "Instagram"}, "/p/GOPR0001.MP4"); got != "Instagram" {
		t.Fatalf("built-ins come first, got %q", got)
	}
}

func TestLuaSandboxHasNoFileAccess(t *testing.T) {
	ld, err := NewLuaDetectors(`
assert(dofile == nil and loadfile == nil and require == nil and module == nil)
assert(io == nil and os == nil and package == nil)
return {
  { name = "reader", label = "Reader", match = function(tags, path)
      return dofile(path) ~= nil
  end },
}
`)
	if err != nil {
		t.Fatalf("NewLuaDetectors: %v", err)
	}
	defer ld.Close()

	path := filepath.Join(t.TempDir(), "match.lua")
	if err := os.WriteFile(path, []byte("return true"), 0o644); err != nil {
		t.Fatal(err)
	}
	if ld.Detectors()[0].Match(tags.Dictionary{}, path) {
		t.Fatal("detector read a file from disk")
	}
}

func TestLuaDetectorsRejectBadScripts(t *testing.T) {
	for name, src := range map[string]string{
		"syntax":      `return {`,
		"not a table": `return 42`,
		"no match":    `return { { name = "a", label = "A" } }`,
		"no label":    `return { { name = "a", match = function() return true end } }`,
		"entry type":  `return { "a" }`,
		"sandboxed":   `os.remove("/tmp/x") return {}`,
		"dofile":      `dofile("/etc/passwd") return {}`,
		"loadfile":    `loadfile("/etc/passwd") return {}`,
		"require":     `require("os") return {}`,
	} {
		t.Run(name, func(t *testing.T) {
			if ld, err := NewLuaDetectors(src); err == nil {
				ld.Close()
				t.Fatal("expected error")
			}
		})
	}
}

// BYZRA ⸻ internal/resolve/source.go
// origin label: device tags first, then the detector chain

package resolve

import (
	"path/filepath"
	"regexp"
	"strings"

	"tempora/internal/tags"
)

// Detector is a pure predicate over a dictionary and the file path.
type Detector struct {
	Name  string
	Label string
	Match func(d tags.Dictionary, path string) bool
}

// Classification says which label was chosen and what supplied it:
// a tag key ("EXIF:Model") or a detector name.
type Classification struct {
	Label string
	Via   string
}

type SourceResolver struct {
	namespaces []string
	detectors  []Detector
}

// detectors run in the given order; namespaces rank conflicting device tags
func NewSourceResolver(namespaces []string, detectors ...Detector) *SourceResolver {
	return &SourceResolver{
		namespaces: append([]string{}, namespaces...),
		detectors:  append([]Detector{}, detectors...),
	}
}

func (r *SourceResolver) Detectors() []Detector {
	return append([]Detector{}, r.detectors...)
}

func (r *SourceResolver) Resolve(d tags.Dictionary, path string) (string, bool) {
	c, ok := r.Classify(d, path)
	return c.Label, ok
}

func (r *SourceResolver) Classify(d tags.Dictionary, path string) (Classification, bool) {
	for _, name := range []string{"Model", "Make"} {
		if key, value, ok := r.deviceTag(d, name); ok {
			return Classification{Label: value, Via: key}, true
		}
	}

	for _, det := range r.detectors {
		if det.Match(d, path) {
			return Classification{Label: det.Label, Via: det.Name}, true
		}
	}
	return Classification{}, false
}

// first non-empty value by namespace preference, then key order
func (r *SourceResolver) deviceTag(d tags.Dictionary, name string) (string, string, bool) {
	keys := d.WithName(name)
	if len(keys) == 0 {
		return "", "", false
	}

	for _, ns := range r.namespaces {
		for _, key := range keys {
			if tags.Namespace(key) != ns {
				continue
			}
			if v := strings.TrimSpace(d[key]); v != "" {
				return key, v, true
			}
		}
	}
	for _, key := range keys {
		if v := strings.TrimSpace(d[key]); v != "" {
			return key, v, true
		}
	}
	return "", "", false
}

// built-in chain, most specific first
func BuiltinDetectors() []Detector {
	return []Detector{
		{Name: "screenshot", Label: "Screenshot", Match: isScreenshot},
		{Name: "instagram", Label: "Instagram", Match: softwareContains("instagram", "facebook")},
		{Name: "picsart", Label: "PicsArt", Match: softwareEquals("PicsArt")},
		{Name: "photoshop", Label: "Photoshop", Match: softwareContains("adobe photoshop")},
		{Name: "whatsapp", Label: "WhatsApp", Match: fileNameMatches(whatsAppName)},
	}
}

// IMG-20190101-WA0001.jpg, VID-20190101-WA0001.mp4
var whatsAppName = regexp.MustCompile(`(?i)^(IMG|VID)-\d{8}-WA\d+`)

func isScreenshot(d tags.Dictionary, path string) bool {
	for _, key := range d.WithName("UserComment") {
		if strings.Contains(strings.ToLower(d[key]), "screenshot") {
			return true
		}
	}
	base := filepath.Base(path)
	return strings.HasPrefix(base, "Screenshot") || strings.HasPrefix(base, "Screen Shot")
}

func softwareContains(fragments ...string) func(tags.Dictionary, string) bool {
	return func(d tags.Dictionary, _ string) bool {
		for _, key := range d.WithName("Software") {
			value := strings.ToLower(d[key])
			for _, f := range fragments {
				if strings.Contains(value, f) {
					return true
				}
			}
		}
		return false
	}
}

func softwareEquals(want string) func(tags.Dictionary, string) bool {
	return func(d tags.Dictionary, _ string) bool {
		for _, key := range d.WithName("Software") {
			if strings.TrimSpace(d[key]) == want {
				return true
			}
		}
		return false
	}
}

func fileNameMatches(re *regexp.Regexp) func(tags.Dictionary, string) bool {
	return func(_ tags.Dictionary, path string) bool {
		return re.MatchString(filepath.Base(path))
	}
}
